package focus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/samefarrar/inkwell/internal/llm"
	"github.com/samefarrar/inkwell/internal/protocol"
	"github.com/samefarrar/inkwell/internal/search"
)

// maxChatContinuations bounds tool-only turns in one chat exchange.
const maxChatContinuations = 5

const chatSystemPrompt = `You are an editorial collaborator helping improve a draft. You can see the current text, interview context, and key material.

Help the writer improve their work by answering questions, suggesting edits, and searching the web for supporting information.

You MUST use the provided tools for ALL responses. Do not send plain text.

Tools available:
- send_response: Send a text response to the writer
- suggest_edit: Suggest a specific text replacement in the draft
- web_search: Search the web for information

Always call send_response at least once per turn.`

type chatToolKind int

const (
	chatToolSendResponse chatToolKind = iota
	chatToolSuggestEdit
	chatToolWebSearch
)

var chatToolKinds = map[string]chatToolKind{
	"send_response": chatToolSendResponse,
	"suggest_edit":  chatToolSuggestEdit,
	"web_search":    chatToolWebSearch,
}

var chatTools = []llm.Tool{
	{
		Name:        "send_response",
		Description: "Send a text response to the writer.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string", "description": "Your response text"},
			},
			"required": []string{"text"},
		},
	},
	{
		Name:        "suggest_edit",
		Description: "Suggest a specific text edit in the draft.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"quote":       map[string]any{"type": "string", "description": "Exact text to replace in the draft"},
				"replacement": map[string]any{"type": "string", "description": "The replacement text"},
				"explanation": map[string]any{"type": "string", "description": "Brief explanation of why this edit improves the draft"},
			},
			"required": []string{"quote", "replacement", "explanation"},
		},
	},
	{
		Name:        "web_search",
		Description: "Search the web for information to support the draft.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "The search query"},
			},
			"required": []string{"query"},
		},
	},
}

// ChatAgent holds the focused-mode chat conversation for one draft.
type ChatAgent struct {
	client       llm.Client
	searcher     search.Provider
	send         protocol.SendFunc
	logger       *slog.Logger
	draftContent string
	messages     []llm.Message
}

// NewChatAgent seeds the conversation with the draft and its interview
// material.
func NewChatAgent(client llm.Client, searcher search.Provider, send protocol.SendFunc, logger *slog.Logger, draftContent, interviewSummary string, keyMaterial []string) *ChatAgent {
	if searcher == nil {
		searcher = search.Disabled{}
	}
	material, _ := json.Marshal(keyMaterial)
	seed := fmt.Sprintf("Here is the current draft:\n\n%s\n\nInterview context: %s\n\nKey material: %s",
		draftContent, interviewSummary, material)
	return &ChatAgent{
		client:       client,
		searcher:     searcher,
		send:         send,
		logger:       logger,
		draftContent: draftContent,
		messages: []llm.Message{
			{Role: llm.ChatRoleSystem, Content: chatSystemPrompt},
			{Role: llm.ChatRoleUser, Content: seed},
		},
	}
}

// HandleMessage processes one chat message from the writer.
func (a *ChatAgent) HandleMessage(ctx context.Context, userMessage string) error {
	a.messages = append(a.messages, llm.Message{Role: llm.ChatRoleUser, Content: userMessage})
	return a.callModel(ctx, 0)
}

func (a *ChatAgent) callModel(ctx context.Context, depth int) error {
	if depth >= maxChatContinuations {
		return a.send(protocol.NewFocusChatResponse(
			"I reached my search limit. Here's what I found so far.", true))
	}

	resp, err := a.client.Complete(ctx, llm.CompleteRequest{
		Task:     llm.TaskFocusChat,
		Messages: a.messages,
		Tools:    chatTools,
	})
	if err != nil {
		a.logger.Error("focus chat llm call failed", "error", err)
		return a.send(protocol.NewFocusChatResponse(
			"I'm having trouble responding. Please try again.", true))
	}

	a.messages = append(a.messages, llm.Message{
		Role:      llm.ChatRoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	})

	if len(resp.ToolCalls) == 0 {
		// Plain text despite instructions: pass it through.
		if resp.Content != "" {
			return a.send(protocol.NewFocusChatResponse(resp.Content, true))
		}
		return nil
	}

	needsContinuation := false
	hasResponse := false

	for _, tc := range resp.ToolCalls {
		kind, ok := chatToolKinds[tc.Name]
		if !ok {
			a.logger.Warn("focus agent called unknown tool", "tool", tc.Name)
			a.appendToolResult(tc.ID, "Unknown tool.")
			needsContinuation = true
			continue
		}

		switch kind {
		case chatToolSendResponse:
			done, err := a.handleSendResponse(tc)
			if err != nil {
				return err
			}
			if done {
				hasResponse = true
			}
		case chatToolSuggestEdit:
			if err := a.handleSuggestEdit(tc); err != nil {
				return err
			}
			needsContinuation = true
		case chatToolWebSearch:
			if err := a.handleWebSearch(ctx, tc); err != nil {
				return err
			}
			needsContinuation = true
		}
	}

	if needsContinuation && !hasResponse {
		return a.callModel(ctx, depth+1)
	}
	return nil
}

func (a *ChatAgent) handleSendResponse(tc llm.ToolCall) (bool, error) {
	var args struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
		a.logger.Warn("unparseable send_response arguments", "error", err)
		a.appendToolResult(tc.ID, fmt.Sprintf("Error parsing arguments: %v", err))
		return false, nil
	}
	a.appendToolResult(tc.ID, "Response sent to user.")
	return true, a.send(protocol.NewFocusChatResponse(args.Text, true))
}

func (a *ChatAgent) handleSuggestEdit(tc llm.ToolCall) error {
	var args struct {
		Quote       string `json:"quote"`
		Replacement string `json:"replacement"`
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
		a.logger.Warn("unparseable suggest_edit arguments", "error", err)
		a.appendToolResult(tc.ID, fmt.Sprintf("Error parsing arguments: %v", err))
		return nil
	}

	start := strings.Index(a.draftContent, args.Quote)
	end := 0
	if start >= 0 {
		end = start + len(args.Quote)
	} else {
		a.logger.Warn("could not locate quote in draft", "quote", truncateForLog(args.Quote, 50))
		start = 0
	}

	if err := a.send(protocol.FocusSuggestion{
		Type:        protocol.TypeFocusSuggestion,
		ID:          uuid.NewString(),
		Quote:       args.Quote,
		Start:       start,
		End:         end,
		Replacement: args.Replacement,
		Explanation: args.Explanation,
		RuleID:      "agent",
	}); err != nil {
		return err
	}
	a.appendToolResult(tc.ID, fmt.Sprintf("Edit suggestion created for: '%s...'", truncateForLog(args.Quote, 50)))
	return nil
}

func (a *ChatAgent) handleWebSearch(ctx context.Context, tc llm.ToolCall) error {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
		a.logger.Warn("unparseable web_search arguments", "error", err)
		a.appendToolResult(tc.ID, fmt.Sprintf("Error parsing arguments: %v", err))
		return nil
	}

	results, err := a.searcher.Search(ctx, args.Query)
	if err != nil {
		a.logger.Warn("focus search failed", "query", args.Query, "error", err)
	}

	var summary string
	if len(results) > 0 {
		summary = fmt.Sprintf("Found %d results for %q:\n\n%s",
			len(results), args.Query, search.FormatResults(results))
	} else {
		summary = fmt.Sprintf("No results found for %q.", args.Query)
	}

	if err := a.send(protocol.NewSearchResult(args.Query, summary)); err != nil {
		return err
	}
	a.appendToolResult(tc.ID, summary)
	return nil
}

func (a *ChatAgent) appendToolResult(toolCallID, content string) {
	a.messages = append(a.messages, llm.Message{
		Role:       llm.ChatRoleTool,
		ToolCallID: toolCallID,
		Content:    content,
	})
}
