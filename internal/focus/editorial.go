package focus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/samefarrar/inkwell/internal/llm"
)

// Comment is one editorial observation anchored to a quote in the
// analyzed text. Offsets are zero when the quote could not be located.
type Comment struct {
	ID      string
	Quote   string
	Start   int
	End     int
	Comment string
}

const editorialSystemPrompt = `You are a senior editor reviewing a draft. Leave 3-5 editorial comments focused on structure, clarity, voice, and impact. Do NOT comment on grammar or spelling.

Each comment should be anchored to a specific quote from the draft. Pick the most important improvements the writer should consider.

You MUST use the leave_comment tool for each comment. Do not respond with plain text.`

var editorialTools = []llm.Tool{
	{
		Name:        "leave_comment",
		Description: "Leave an editorial comment anchored to a specific quote.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"quote": map[string]any{
					"type":        "string",
					"description": "Exact text from the draft to anchor this comment to (10-50 words)",
				},
				"comment": map[string]any{
					"type":        "string",
					"description": "Your editorial feedback (1-3 sentences)",
				},
			},
			"required": []string{"quote", "comment"},
		},
	},
}

// GenerateComments asks the model for editorial comments on text.
// prefContext carries learned rule preferences and may be empty.
func GenerateComments(ctx context.Context, client llm.Client, logger *slog.Logger, text, interviewContext, prefContext string) ([]Comment, error) {
	system := editorialSystemPrompt
	if prefContext != "" {
		system += "\n\n" + prefContext
	}
	user := "Here is the draft to review:\n\n" + text
	if interviewContext != "" {
		user += "\n\nContext from the interview:\n" + interviewContext
	}

	resp, err := client.Complete(ctx, llm.CompleteRequest{
		Task: llm.TaskEditorial,
		Messages: []llm.Message{
			{Role: llm.ChatRoleSystem, Content: system},
			{Role: llm.ChatRoleUser, Content: user},
		},
		Tools: editorialTools,
	})
	if err != nil {
		return nil, fmt.Errorf("editorial pass: %w", err)
	}

	var comments []Comment
	for _, tc := range resp.ToolCalls {
		if tc.Name != "leave_comment" {
			continue
		}
		var args struct {
			Quote   string `json:"quote"`
			Comment string `json:"comment"`
		}
		if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
			logger.Warn("unparseable leave_comment arguments", "error", err)
			continue
		}
		start, end := findQuotePosition(logger, text, args.Quote)
		comments = append(comments, Comment{
			ID:      uuid.NewString(),
			Quote:   args.Quote,
			Start:   start,
			End:     end,
			Comment: args.Comment,
		})
	}
	return comments, nil
}

// findQuotePosition locates quote in text, falling back to a
// case-insensitive scan. Unlocatable quotes anchor at zero.
func findQuotePosition(logger *slog.Logger, text, quote string) (int, int) {
	if idx := strings.Index(text, quote); idx >= 0 {
		return idx, idx + len(quote)
	}
	if idx := strings.Index(strings.ToLower(text), strings.ToLower(quote)); idx >= 0 {
		return idx, idx + len(quote)
	}
	logger.Warn("could not locate quote in text", "quote", truncateForLog(quote, 80))
	return 0, 0
}

func truncateForLog(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
