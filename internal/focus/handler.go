package focus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/samefarrar/inkwell/internal/domain"
	"github.com/samefarrar/inkwell/internal/llm"
	"github.com/samefarrar/inkwell/internal/protocol"
	"github.com/samefarrar/inkwell/internal/repository"
	"github.com/samefarrar/inkwell/internal/search"
)

var applyEditTool = llm.Tool{
	Name:        "apply_edit",
	Description: "Apply the editorial change to the draft text.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"old_text": map[string]any{
				"type":        "string",
				"description": "Exact passage to replace (copy verbatim from the draft)",
			},
			"new_text": map[string]any{
				"type":        "string",
				"description": "Improved replacement text implementing the suggestion",
			},
		},
		"required": []string{"old_text", "new_text"},
	},
}

// Handler runs all focused-mode operations for one session.
type Handler struct {
	client   llm.Client
	searcher search.Provider
	send     protocol.SendFunc
	feedback repository.FeedbackRepo
	logger   *slog.Logger

	sessionID        string
	interviewSummary string
	keyMaterial      []string
	prefContext      string

	draftIndex   int
	draftContent string

	chatMu    sync.Mutex
	agent     *ChatAgent
	cancelled atomic.Bool

	// Comments by ID so approve can look them up later.
	commentsMu sync.Mutex
	comments   map[string]protocol.FocusComment
}

// NewHandler creates a Handler for one session's focused mode.
// prefContext carries learned editorial preferences and may be empty.
func NewHandler(client llm.Client, searcher search.Provider, send protocol.SendFunc, feedback repository.FeedbackRepo, logger *slog.Logger, sessionID, interviewSummary string, keyMaterial []string, prefContext string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if searcher == nil {
		searcher = search.Disabled{}
	}
	return &Handler{
		client:           client,
		searcher:         searcher,
		send:             send,
		feedback:         feedback,
		logger:           logger,
		sessionID:        sessionID,
		interviewSummary: interviewSummary,
		keyMaterial:      keyMaterial,
		prefContext:      prefContext,
		draftIndex:       -1,
		comments:         make(map[string]protocol.FocusComment),
	}
}

// Cancel stops in-flight analysis from emitting further messages.
func (h *Handler) Cancel() {
	h.cancelled.Store(true)
}

// Enter begins focused mode on a draft: the deterministic style pass
// runs first, then the slower editorial pass.
func (h *Handler) Enter(ctx context.Context, draftIndex int, content string) error {
	h.draftIndex = draftIndex
	h.draftContent = content

	plain := Truncate(StripHTML(content))

	if err := h.runStyleAnalysis(plain); err != nil {
		return err
	}
	return h.runEditorialAnalysis(ctx, plain)
}

func (h *Handler) runStyleAnalysis(text string) error {
	for _, v := range Analyze(text) {
		if h.cancelled.Load() {
			return nil
		}
		if err := h.send(protocol.FocusSuggestion{
			Type:        protocol.TypeFocusSuggestion,
			ID:          v.ID,
			Quote:       v.Quote,
			Start:       v.Start,
			End:         v.End,
			Replacement: v.Replacement,
			Explanation: v.Explanation,
			RuleID:      v.RuleID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) runEditorialAnalysis(ctx context.Context, text string) error {
	if h.cancelled.Load() {
		return nil
	}
	comments, err := GenerateComments(ctx, h.client, h.logger, text, h.interviewSummary, h.prefContext)
	if err != nil {
		h.logger.Error("editorial analysis failed", "error", err)
		return h.send(protocol.FocusComment{
			Type:    protocol.TypeFocusComment,
			Comment: "Editorial analysis is temporarily unavailable.",
			Done:    true,
		})
	}
	if len(comments) == 0 {
		// Still signal done so the client stops waiting.
		return h.send(protocol.FocusComment{Type: protocol.TypeFocusComment, Done: true})
	}
	for i, c := range comments {
		if h.cancelled.Load() {
			return nil
		}
		msg := protocol.FocusComment{
			Type:    protocol.TypeFocusComment,
			ID:      c.ID,
			Quote:   c.Quote,
			Start:   c.Start,
			End:     c.End,
			Comment: c.Comment,
			Done:    i == len(comments)-1,
		}
		h.commentsMu.Lock()
		h.comments[c.ID] = msg
		h.commentsMu.Unlock()
		if err := h.send(msg); err != nil {
			return err
		}
	}
	return nil
}

// Feedback persists one accept/reject/dismiss decision.
func (h *Handler) Feedback(ctx context.Context, msg protocol.FocusFeedback) error {
	if h.sessionID == "" {
		return nil
	}
	fb := &domain.Feedback{
		ID:         uuid.NewString(),
		SessionID:  h.sessionID,
		DraftIndex: h.draftIndex,
		Accepted:   msg.Action == string(domain.ActionAccept),
		Action:     domain.FeedbackAction(msg.Action),
		Kind:       domain.FeedbackKind(msg.FeedbackType),
		RuleID:     msg.ID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.feedback.Create(ctx, fb); err != nil {
		return fmt.Errorf("persist feedback: %w", err)
	}
	return nil
}

// ApproveComment asks the model to turn an approved editorial comment
// into a concrete text edit. Failures are logged, never surfaced.
func (h *Handler) ApproveComment(ctx context.Context, commentID, currentContent string) error {
	h.commentsMu.Lock()
	comment, ok := h.comments[commentID]
	h.commentsMu.Unlock()
	if !ok {
		h.logger.Warn("approve for unknown comment", "comment_id", commentID)
		return nil
	}

	currentText := Truncate(StripHTML(currentContent))

	prompt := fmt.Sprintf(
		"You are an editor. The writer has approved this editorial comment and wants you to apply it to their draft.\n\n"+
			"Editorial comment: %s\n\n"+
			"The comment refers to this passage:\n%q\n\n"+
			"Current draft:\n%s\n\n"+
			"Call apply_edit with:\n"+
			"- old_text: the exact passage to replace (use the quoted passage or nearby context if needed)\n"+
			"- new_text: the improved version that implements the suggestion\n\n"+
			"Keep changes minimal and targeted.",
		comment.Comment, comment.Quote, currentText)

	resp, err := h.client.Complete(ctx, llm.CompleteRequest{
		Task:      llm.TaskApplyEdit,
		Messages:  []llm.Message{{Role: llm.ChatRoleUser, Content: prompt}},
		Tools:     []llm.Tool{applyEditTool},
		ForceTool: applyEditTool.Name,
	})
	if err != nil {
		h.logger.Error("approve_comment llm call failed", "error", err)
		return nil
	}
	if len(resp.ToolCalls) == 0 {
		return nil
	}

	var args struct {
		OldText string `json:"old_text"`
		NewText string `json:"new_text"`
	}
	if err := json.Unmarshal([]byte(resp.ToolCalls[0].Arguments), &args); err != nil {
		h.logger.Warn("unparseable apply_edit arguments", "error", err)
		return nil
	}
	if args.OldText == "" {
		return nil
	}
	return h.send(protocol.NewFocusEdit(commentID, args.OldText, args.NewText))
}

// Chat delegates to the chat agent. Messages arriving while a previous
// exchange is still running are silently dropped.
func (h *Handler) Chat(ctx context.Context, message string) error {
	if !h.chatMu.TryLock() {
		return nil
	}
	defer h.chatMu.Unlock()

	if h.agent == nil {
		h.agent = NewChatAgent(h.client, h.searcher, h.send, h.logger,
			h.draftContent, h.interviewSummary, h.keyMaterial)
	}
	return h.agent.HandleMessage(ctx, message)
}
