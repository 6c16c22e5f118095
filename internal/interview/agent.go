// Package interview runs the elicitation loop that gathers material
// before drafting: one targeted question at a time, preceded by a
// visible thought, with optional web search between turns.
package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/samefarrar/inkwell/internal/domain"
	"github.com/samefarrar/inkwell/internal/llm"
	"github.com/samefarrar/inkwell/internal/protocol"
	"github.com/samefarrar/inkwell/internal/search"
)

// maxContinuations bounds the thought/search-only loop so an
// uncooperative model cannot spin forever.
const maxContinuations = 8

// Outcome reports whether the agent signalled readiness to draft.
type Outcome struct {
	Ready       bool
	Summary     string
	KeyMaterial []string
}

// RecordFunc persists one transcript entry. detailJSON carries the
// structured payload for thought, search, and ready entries.
type RecordFunc func(role, content, detailJSON string)

// toolKind is the closed set of tools the agent dispatches on.
type toolKind int

const (
	toolShowThought toolKind = iota
	toolAskQuestion
	toolReadyToDraft
	toolSearchWeb
)

var toolKinds = map[string]toolKind{
	"show_thought":   toolShowThought,
	"ask_question":   toolAskQuestion,
	"ready_to_draft": toolReadyToDraft,
	"search_web":     toolSearchWeb,
}

const systemPrompt = `You are an AI writing partner. Your job is to interview the user to extract real stories, insights, and experiences for a %s about "%s".

RULES:
1. Ask ONE question at a time, never a list of questions.
2. Ask the single most impactful question to fill the gap.
3. Before each question, assess what you know vs what's missing.
4. After each answer, evaluate whether you have enough material.
5. Typically 2-4 questions are sufficient. Don't over-interview.
6. Use search_web when a fact about the topic would sharpen your next question.

You MUST use the provided tools for ALL responses.

For each turn, call tools in this order:
1. ALWAYS call show_thought first
2. Then EITHER:
   - Call ask_question if you need more material
   - Call ready_to_draft if you have enough material

%s`

var agentTools = []llm.Tool{
	{
		Name:        "show_thought",
		Description: "Show your reasoning about what material you have and what's missing. ALWAYS call this first.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"assessment": map[string]any{"type": "string", "description": "What you know so far"},
				"missing": map[string]any{
					"type": "array", "items": map[string]any{"type": "string"},
					"description": "What info is still missing",
				},
				"sufficient": map[string]any{
					"type":        "boolean",
					"description": "Whether you have enough material to write a compelling draft",
				},
			},
			"required": []string{"assessment", "missing", "sufficient"},
		},
	},
	{
		Name:        "ask_question",
		Description: "Ask the user a single targeted question to gather writing material.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{"type": "string", "description": "The question to ask"},
				"context":  map[string]any{"type": "string", "description": "Brief context for why you're asking this question"},
			},
			"required": []string{"question", "context"},
		},
	},
	{
		Name:        "ready_to_draft",
		Description: "Signal that you have enough material.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"summary": map[string]any{"type": "string", "description": "Summary of material gathered"},
				"key_material": map[string]any{
					"type": "array", "items": map[string]any{"type": "string"},
					"description": "Key stories and details",
				},
			},
			"required": []string{"summary", "key_material"},
		},
	},
	{
		Name:        "search_web",
		Description: "Search the web for a fact that would sharpen your next question.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "The search query"},
			},
			"required": []string{"query"},
		},
	},
}

// Agent holds one interview conversation.
type Agent struct {
	client   llm.Client
	searcher search.Provider
	send     protocol.SendFunc
	record   RecordFunc
	logger   *slog.Logger
	messages []llm.Message
}

// NewAgent creates an Agent. record may be nil when transcript
// persistence is not wanted.
func NewAgent(client llm.Client, searcher search.Provider, send protocol.SendFunc, record RecordFunc, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	if record == nil {
		record = func(role, content, detailJSON string) {}
	}
	if searcher == nil {
		searcher = search.Disabled{}
	}
	return &Agent{
		client:   client,
		searcher: searcher,
		send:     send,
		record:   record,
		logger:   logger,
	}
}

// Start begins the interview and runs the agent's first turn.
func (a *Agent) Start(ctx context.Context, taskType domain.TaskType, topic, styleContext string) (*Outcome, error) {
	a.messages = []llm.Message{
		{Role: llm.ChatRoleSystem, Content: fmt.Sprintf(systemPrompt, taskType, topic, styleContext)},
		{Role: llm.ChatRoleUser, Content: fmt.Sprintf("I want to write a %s about: %s", taskType, topic)},
	}
	return a.run(ctx)
}

// ProcessAnswer appends the user's answer and runs the next turn.
func (a *Agent) ProcessAnswer(ctx context.Context, answer string) (*Outcome, error) {
	a.messages = append(a.messages, llm.Message{Role: llm.ChatRoleUser, Content: answer})
	return a.run(ctx)
}

// run invokes the model, dispatching tool calls until the model either
// asks a question, signals readiness, or the continuation bound trips.
func (a *Agent) run(ctx context.Context) (*Outcome, error) {
	for depth := 0; ; depth++ {
		if depth > maxContinuations {
			a.logger.Warn("interview continuation bound reached")
			return &Outcome{}, a.send(protocol.NewStatus(
				"The interviewer is taking too long to decide. Please answer again or cancel."))
		}

		resp, err := a.client.Complete(ctx, llm.CompleteRequest{
			Task:     llm.TaskInterview,
			Messages: a.messages,
			Tools:    agentTools,
		})
		if err != nil {
			a.logger.Error("interview llm call failed", "error", err)
			return &Outcome{}, a.send(protocol.NewStatus(
				fmt.Sprintf("The interviewer is temporarily unavailable: %v", err)))
		}

		a.messages = append(a.messages, llm.Message{
			Role:      llm.ChatRoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		outcome, sawUserVisible, err := a.dispatch(ctx, resp.ToolCalls)
		if err != nil {
			return nil, err
		}
		if outcome != nil {
			return outcome, nil
		}
		if sawUserVisible {
			// A question is on screen, wait for the answer.
			return &Outcome{}, nil
		}
		if len(resp.ToolCalls) == 0 {
			// No tools at all: treat stray text as a question so the
			// conversation cannot stall silently.
			if resp.Content != "" {
				a.record(domain.RoleAssistant, resp.Content, "")
				return &Outcome{}, a.send(protocol.NewInterviewQuestion(resp.Content, ""))
			}
			return &Outcome{}, nil
		}
		// Only thought or search tools ran: loop and re-invoke.
	}
}

// dispatch handles each tool call. Returns a non-nil outcome when the
// agent signalled ready, and whether a user-visible question was sent.
func (a *Agent) dispatch(ctx context.Context, calls []llm.ToolCall) (*Outcome, bool, error) {
	var outcome *Outcome
	askedQuestion := false
	seen := make(map[string]bool, len(calls))

	for _, tc := range calls {
		if tc.ID != "" && seen[tc.ID] {
			continue
		}
		seen[tc.ID] = true

		kind, ok := toolKinds[tc.Name]
		if !ok {
			a.logger.Warn("interview agent called unknown tool", "tool", tc.Name)
			a.appendToolResult(tc.ID, "Unknown tool.")
			continue
		}

		switch kind {
		case toolShowThought:
			if err := a.handleThought(tc); err != nil {
				return nil, false, err
			}
		case toolAskQuestion:
			if err := a.handleQuestion(tc); err != nil {
				return nil, false, err
			}
			askedQuestion = true
		case toolReadyToDraft:
			o, err := a.handleReady(tc)
			if err != nil {
				return nil, false, err
			}
			outcome = o
		case toolSearchWeb:
			if err := a.handleSearch(ctx, tc); err != nil {
				return nil, false, err
			}
		}
	}
	return outcome, askedQuestion, nil
}

func (a *Agent) handleThought(tc llm.ToolCall) error {
	var args struct {
		Assessment string   `json:"assessment"`
		Missing    []string `json:"missing"`
		Sufficient bool     `json:"sufficient"`
	}
	if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
		a.logger.Warn("unparseable show_thought arguments", "error", err)
		a.appendToolResult(tc.ID, "Arguments were unparseable.")
		return nil
	}
	a.record(domain.RoleThought, args.Assessment, tc.Arguments)
	a.appendToolResult(tc.ID, "Thought displayed to user.")
	return a.send(protocol.NewThought(args.Assessment, args.Missing, args.Sufficient))
}

func (a *Agent) handleQuestion(tc llm.ToolCall) error {
	var args struct {
		Question string `json:"question"`
		Context  string `json:"context"`
	}
	if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
		a.logger.Warn("unparseable ask_question arguments", "error", err)
		a.appendToolResult(tc.ID, "Arguments were unparseable.")
		return nil
	}
	a.record(domain.RoleAssistant, args.Question, "")
	a.appendToolResult(tc.ID, "Question shown. Waiting for answer.")
	return a.send(protocol.NewInterviewQuestion(args.Question, args.Context))
}

func (a *Agent) handleReady(tc llm.ToolCall) (*Outcome, error) {
	var args struct {
		Summary     string   `json:"summary"`
		KeyMaterial []string `json:"key_material"`
	}
	if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
		a.logger.Warn("unparseable ready_to_draft arguments", "error", err)
		a.appendToolResult(tc.ID, "Arguments were unparseable.")
		return nil, nil
	}
	a.record(domain.RoleReadyToDraft, args.Summary, tc.Arguments)
	a.appendToolResult(tc.ID, "Transitioning to drafting.")
	if err := a.send(protocol.NewReadyToDraft(args.Summary, args.KeyMaterial)); err != nil {
		return nil, err
	}
	return &Outcome{Ready: true, Summary: args.Summary, KeyMaterial: args.KeyMaterial}, nil
}

func (a *Agent) handleSearch(ctx context.Context, tc llm.ToolCall) error {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
		a.logger.Warn("unparseable search_web arguments", "error", err)
		a.appendToolResult(tc.ID, "Arguments were unparseable.")
		return nil
	}

	results, err := a.searcher.Search(ctx, args.Query)
	if err != nil {
		a.logger.Warn("interview search failed", "query", args.Query, "error", err)
	}
	summary := search.FormatResults(results)

	detail, _ := json.Marshal(map[string]any{"query": args.Query, "results": results})
	a.record(domain.RoleSearch, args.Query, string(detail))

	// The result block goes both to the client as a display card and
	// back into the conversation for later turns.
	a.appendToolResult(tc.ID, summary)
	return a.send(protocol.NewSearchResult(args.Query, summary))
}

func (a *Agent) appendToolResult(toolCallID, content string) {
	a.messages = append(a.messages, llm.Message{
		Role:       llm.ChatRoleTool,
		ToolCallID: toolCallID,
		Content:    content,
	})
}
