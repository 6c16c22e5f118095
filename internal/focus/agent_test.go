package focus

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samefarrar/inkwell/internal/llm"
	"github.com/samefarrar/inkwell/internal/protocol"
	"github.com/samefarrar/inkwell/internal/search"
)

func sendResponseCall(id, text string) llm.ToolCall {
	return llm.ToolCall{
		ID:        id,
		Name:      "send_response",
		Arguments: fmt.Sprintf(`{"text":%q}`, text),
	}
}

func newChatAgent(client llm.Client, out *sink, searcher search.Provider) *ChatAgent {
	return NewChatAgent(client, searcher, out.send, discardLogger(),
		"The quick brown fox jumps over the lazy dog.",
		"A story about foxes.",
		[]string{"foxes are fast"})
}

func TestChatAgent_SendResponse(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompleteResponse{
		{ToolCalls: []llm.ToolCall{sendResponseCall("c1", "The middle feels rushed.")}},
	}}
	out := &sink{}
	agent := newChatAgent(client, out, search.Disabled{})

	require.NoError(t, agent.HandleMessage(context.Background(), "How is the pacing?"))

	require.Len(t, out.messages, 1)
	resp := out.messages[0].(protocol.FocusChatResponse)
	assert.Equal(t, "The middle feels rushed.", resp.Content)
	assert.True(t, resp.Done)
	assert.Equal(t, 1, client.callCount())
}

func TestChatAgent_SeedsDraftAndMaterial(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompleteResponse{
		{ToolCalls: []llm.ToolCall{sendResponseCall("c1", "ok")}},
	}}
	out := &sink{}
	agent := newChatAgent(client, out, search.Disabled{})

	require.NoError(t, agent.HandleMessage(context.Background(), "hi"))

	seed := client.calls[0].Messages[1]
	assert.Equal(t, llm.ChatRoleUser, seed.Role)
	assert.Contains(t, seed.Content, "The quick brown fox")
	assert.Contains(t, seed.Content, "A story about foxes.")
	assert.Contains(t, seed.Content, "foxes are fast")
}

func TestChatAgent_SuggestEditLocatesQuote(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompleteResponse{
		{ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: "suggest_edit", Arguments: `{"quote":"lazy dog","replacement":"sleeping hound","explanation":"More vivid."}`},
			sendResponseCall("c2", "I suggested a change."),
		}},
	}}
	out := &sink{}
	agent := newChatAgent(client, out, search.Disabled{})

	require.NoError(t, agent.HandleMessage(context.Background(), "punch up the ending"))

	var suggestion protocol.FocusSuggestion
	for _, m := range out.messages {
		if s, ok := m.(protocol.FocusSuggestion); ok {
			suggestion = s
		}
	}
	assert.Equal(t, "lazy dog", suggestion.Quote)
	assert.Equal(t, 35, suggestion.Start)
	assert.Equal(t, 43, suggestion.End)
	assert.Equal(t, "sleeping hound", suggestion.Replacement)
	assert.Equal(t, "agent", suggestion.RuleID)
	assert.NotEmpty(t, suggestion.ID)
	// A response was also sent, so no continuation call happens.
	assert.Equal(t, 1, client.callCount())
}

func TestChatAgent_SuggestEditUnlocatableQuote(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompleteResponse{
		{ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: "suggest_edit", Arguments: `{"quote":"not in draft","replacement":"x","explanation":"y"}`},
			sendResponseCall("c2", "done"),
		}},
	}}
	out := &sink{}
	agent := newChatAgent(client, out, search.Disabled{})

	require.NoError(t, agent.HandleMessage(context.Background(), "edit something"))

	suggestion := out.messages[0].(protocol.FocusSuggestion)
	assert.Equal(t, 0, suggestion.Start)
	assert.Equal(t, 0, suggestion.End)
}

func TestChatAgent_ToolOnlyTurnContinues(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompleteResponse{
		{ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: "suggest_edit", Arguments: `{"quote":"quick","replacement":"swift","explanation":"tighter"}`},
		}},
		{ToolCalls: []llm.ToolCall{sendResponseCall("c2", "Suggested one edit.")}},
	}}
	out := &sink{}
	agent := newChatAgent(client, out, search.Disabled{})

	require.NoError(t, agent.HandleMessage(context.Background(), "tighten it"))
	assert.Equal(t, 2, client.callCount())

	last := out.messages[len(out.messages)-1].(protocol.FocusChatResponse)
	assert.Equal(t, "Suggested one edit.", last.Content)
}

func TestChatAgent_ContinuationLimit(t *testing.T) {
	// Every turn suggests an edit and never responds.
	client := &scriptedClient{responses: []*llm.CompleteResponse{
		{ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: "suggest_edit", Arguments: `{"quote":"quick","replacement":"swift","explanation":"tighter"}`},
		}},
	}}
	out := &sink{}
	agent := newChatAgent(client, out, search.Disabled{})

	require.NoError(t, agent.HandleMessage(context.Background(), "go wild"))
	assert.Equal(t, maxChatContinuations, client.callCount())

	last := out.messages[len(out.messages)-1].(protocol.FocusChatResponse)
	assert.True(t, last.Done)
	assert.Contains(t, last.Content, "limit")
}

func TestChatAgent_WebSearchFlowsBack(t *testing.T) {
	searcher := &stubSearcher{results: []search.Result{
		{Title: "Fox facts", URL: "https://example.com", Snippet: "Foxes run at 50 km/h."},
	}}
	client := &scriptedClient{responses: []*llm.CompleteResponse{
		{ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: "web_search", Arguments: `{"query":"fox speed"}`},
		}},
		{ToolCalls: []llm.ToolCall{sendResponseCall("c2", "Foxes are fast.")}},
	}}
	out := &sink{}
	agent := newChatAgent(client, out, searcher)

	require.NoError(t, agent.HandleMessage(context.Background(), "how fast are foxes?"))

	card := out.messages[0].(protocol.SearchResult)
	assert.Equal(t, "fox speed", card.Query)
	assert.Contains(t, card.Summary, "Found 1 results")
	assert.Contains(t, card.Summary, "Fox facts")

	// The model sees the summary as a tool reply on the follow-up call.
	var toolReply string
	for _, m := range client.calls[1].Messages {
		if m.Role == llm.ChatRoleTool && m.ToolCallID == "c1" {
			toolReply = m.Content
		}
	}
	assert.Contains(t, toolReply, "https://example.com")
}

func TestChatAgent_EmptySearchResults(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompleteResponse{
		{ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: "web_search", Arguments: `{"query":"nothing"}`},
		}},
		{ToolCalls: []llm.ToolCall{sendResponseCall("c2", "No luck.")}},
	}}
	out := &sink{}
	agent := newChatAgent(client, out, search.Disabled{})

	require.NoError(t, agent.HandleMessage(context.Background(), "search for nothing"))

	card := out.messages[0].(protocol.SearchResult)
	assert.Contains(t, card.Summary, "No results found")
}

func TestChatAgent_LLMFailure(t *testing.T) {
	client := &scriptedClient{err: fmt.Errorf("gateway down")}
	out := &sink{}
	agent := newChatAgent(client, out, search.Disabled{})

	require.NoError(t, agent.HandleMessage(context.Background(), "hello"))

	resp := out.messages[0].(protocol.FocusChatResponse)
	assert.True(t, resp.Done)
	assert.Contains(t, resp.Content, "trouble responding")
}

func TestChatAgent_PlainTextFallback(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompleteResponse{
		{Content: "Here is my answer without tools."},
	}}
	out := &sink{}
	agent := newChatAgent(client, out, search.Disabled{})

	require.NoError(t, agent.HandleMessage(context.Background(), "hello"))

	resp := out.messages[0].(protocol.FocusChatResponse)
	assert.Equal(t, "Here is my answer without tools.", resp.Content)
	assert.True(t, resp.Done)
}

type stubSearcher struct {
	results []search.Result
	queries []string
}

func (s *stubSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	s.queries = append(s.queries, query)
	return s.results, nil
}
