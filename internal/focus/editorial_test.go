package focus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samefarrar/inkwell/internal/llm"
	"github.com/samefarrar/inkwell/internal/protocol"
)

// scriptedClient replays a fixed sequence of responses, one per
// Complete call.
type scriptedClient struct {
	mu        sync.Mutex
	responses []*llm.CompleteResponse
	err       error
	calls     []llm.CompleteRequest
}

func (c *scriptedClient) Complete(ctx context.Context, req llm.CompleteRequest) (*llm.CompleteResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, req)
	if c.err != nil {
		return nil, c.err
	}
	if len(c.responses) == 0 {
		return &llm.CompleteResponse{}, nil
	}
	resp := c.responses[0]
	if len(c.responses) > 1 {
		c.responses = c.responses[1:]
	}
	return resp, nil
}

func (c *scriptedClient) StreamComplete(ctx context.Context, req llm.CompleteRequest, onChunk llm.ChunkFunc) (*llm.CompleteResponse, error) {
	return c.Complete(ctx, req)
}

func (c *scriptedClient) Available(ctx context.Context) bool { return true }

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

type sink struct {
	messages []protocol.ServerMessage
}

func (s *sink) send(msg protocol.ServerMessage) error {
	s.messages = append(s.messages, msg)
	return nil
}

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func leaveComment(id, quote, comment string) llm.ToolCall {
	return llm.ToolCall{
		ID:        id,
		Name:      "leave_comment",
		Arguments: fmt.Sprintf(`{"quote":%q,"comment":%q}`, quote, comment),
	}
}

func TestGenerateComments_AnchorsQuotes(t *testing.T) {
	text := "The opening paragraph sets the scene. The middle section drags a little."
	client := &scriptedClient{responses: []*llm.CompleteResponse{
		{ToolCalls: []llm.ToolCall{
			leaveComment("c1", "The middle section drags", "Tighten this passage."),
		}},
	}}

	comments, err := GenerateComments(context.Background(), client, discardLogger(), text, "summary", "")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Tighten this passage.", comments[0].Comment)
	assert.Equal(t, 38, comments[0].Start)
	assert.Equal(t, 38+len("The middle section drags"), comments[0].End)
	assert.NotEmpty(t, comments[0].ID)
}

func TestGenerateComments_CaseInsensitiveFallback(t *testing.T) {
	text := "An Unusual Opening Line here."
	client := &scriptedClient{responses: []*llm.CompleteResponse{
		{ToolCalls: []llm.ToolCall{
			leaveComment("c1", "an unusual opening line", "Nice hook."),
		}},
	}}

	comments, err := GenerateComments(context.Background(), client, discardLogger(), text, "", "")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, 0, comments[0].Start)
	assert.Equal(t, len("an unusual opening line"), comments[0].End)
}

func TestGenerateComments_UnlocatableQuoteAnchorsAtZero(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompleteResponse{
		{ToolCalls: []llm.ToolCall{
			leaveComment("c1", "text that does not exist", "A comment."),
		}},
	}}

	comments, err := GenerateComments(context.Background(), client, discardLogger(), "actual draft", "", "")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, 0, comments[0].Start)
	assert.Equal(t, 0, comments[0].End)
}

func TestGenerateComments_SkipsBadArgumentsAndOtherTools(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompleteResponse{
		{ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: "leave_comment", Arguments: `{broken`},
			{ID: "c2", Name: "something_else", Arguments: `{}`},
			leaveComment("c3", "draft", "Valid comment."),
		}},
	}}

	comments, err := GenerateComments(context.Background(), client, discardLogger(), "the draft text", "", "")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Valid comment.", comments[0].Comment)
}

func TestGenerateComments_LLMError(t *testing.T) {
	client := &scriptedClient{err: fmt.Errorf("gateway down")}

	comments, err := GenerateComments(context.Background(), client, discardLogger(), "text", "", "")
	assert.Error(t, err)
	assert.Nil(t, comments)
}

func TestGenerateComments_PrefContextInSystemPrompt(t *testing.T) {
	client := &scriptedClient{responses: []*llm.CompleteResponse{{}}}

	_, err := GenerateComments(context.Background(), client, discardLogger(), "text", "",
		"EDITORIAL PREFERENCES (based on past sessions):\nRules this writer consistently applies: filler_words")
	require.NoError(t, err)

	system := client.calls[0].Messages[0]
	assert.Equal(t, llm.ChatRoleSystem, system.Role)
	assert.Contains(t, system.Content, "EDITORIAL PREFERENCES")
}
