package drafting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/samefarrar/inkwell/internal/domain"
	"github.com/samefarrar/inkwell/internal/llm"
	"github.com/samefarrar/inkwell/internal/protocol"
)

// DraftCount is the number of concurrent drafts per round.
const DraftCount = 3

// Params carries the session material every generation round needs.
type Params struct {
	TaskType         domain.TaskType
	Topic            string
	InterviewSummary string
	KeyMaterial      []string
	StyleContext     string
	Outline          []domain.OutlineNode
}

// Result is one generated draft before persistence.
type Result struct {
	Title     string
	Angle     string
	Content   string
	WordCount int
}

// Generator produces the initial three drafts concurrently, streaming
// each over the send channel.
type Generator struct {
	client llm.Client
	send   protocol.SendFunc
	logger *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(client llm.Client, send protocol.SendFunc, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, send: send, logger: logger}
}

// Generate runs three streamed generations concurrently and returns
// exactly DraftCount results. A failed slot becomes an error
// placeholder; siblings are unaffected.
func (g *Generator) Generate(ctx context.Context, p Params) []Result {
	angles := GetAngles(p.TaskType)
	results := make([]Result, DraftCount)

	var eg errgroup.Group
	for i, angle := range angles {
		eg.Go(func() error {
			prompt := buildDraftPrompt(p, angle)
			results[i] = streamDraft(ctx, g.client, g.send, g.logger,
				llm.TaskDraft, i, angle, prompt, nil)
			return nil
		})
	}
	eg.Wait()
	return results
}

// streamDraft runs one streamed generation, emitting start, chunk, and
// complete events. scrub, when non-nil, filters each delta before it
// reaches the client or the accumulated content. Failures produce an
// error placeholder for this slot only.
func streamDraft(ctx context.Context, client llm.Client, send protocol.SendFunc, logger *slog.Logger,
	task llm.TaskType, draftIndex int, angle, systemPrompt string, scrub func(string) string) Result {

	_ = send(protocol.NewDraftStart(draftIndex, angle+" Draft", angle))

	var content strings.Builder
	_, err := client.StreamComplete(ctx, llm.CompleteRequest{
		Task: task,
		Messages: []llm.Message{
			{Role: llm.ChatRoleSystem, Content: systemPrompt},
			{Role: llm.ChatRoleUser, Content: "Write the draft now."},
		},
	}, func(delta string) error {
		if scrub != nil {
			delta = scrub(delta)
			if delta == "" {
				return nil
			}
		}
		content.WriteString(delta)
		return send(protocol.NewDraftChunk(draftIndex, delta, false))
	})

	if err != nil {
		logger.Error("draft generation failed", "draft_index", draftIndex, "angle", angle, "error", err)
		if ctx.Err() != nil {
			// Cancelled tasks stop emitting entirely.
			return Result{Title: fmt.Sprintf("Draft %d (Error)", draftIndex+1), Angle: angle,
				Content: fmt.Sprintf("Generation failed: %v", err)}
		}
		failure := fmt.Sprintf("Generation failed: %v", err)
		_ = send(protocol.NewDraftChunk(draftIndex, failure, false))
		_ = send(protocol.NewDraftChunk(draftIndex, "", true))
		_ = send(protocol.NewDraftComplete(draftIndex, 0))
		return Result{
			Title:   fmt.Sprintf("Draft %d (Error)", draftIndex+1),
			Angle:   angle,
			Content: failure,
		}
	}

	full := content.String()
	title := titleFromContent(full, angle)
	wordCount := domain.CountWords(full)

	_ = send(protocol.NewDraftChunk(draftIndex, "", true))
	_ = send(protocol.NewDraftComplete(draftIndex, wordCount))

	return Result{Title: title, Angle: angle, Content: full, WordCount: wordCount}
}

// titleFromContent takes the first line, stripped of markdown heading
// markers, falling back to the angle name.
func titleFromContent(content, angle string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return angle + " Draft"
	}
	first := strings.SplitN(trimmed, "\n", 2)[0]
	title := strings.TrimSpace(strings.Trim(first, "# "))
	if title == "" {
		return angle + " Draft"
	}
	return title
}
