package drafting

import (
	"context"
	"log/slog"
	"regexp"

	"golang.org/x/sync/errgroup"

	"github.com/samefarrar/inkwell/internal/domain"
	"github.com/samefarrar/inkwell/internal/llm"
	"github.com/samefarrar/inkwell/internal/protocol"
)

// The model is told about the annotation syntax, so every literal tag
// is scrubbed from output chunks before they reach the client.
var markupTagRe = regexp.MustCompile(`<[^>]+>`)

func scrubMarkup(s string) string {
	return markupTagRe.ReplaceAllString(s, "")
}

// Synthesizer regenerates the three drafts using highlight feedback:
// angles chosen by ChooseAngles, prior drafts embedded with their
// highlights annotated.
type Synthesizer struct {
	client llm.Client
	send   protocol.SendFunc
	logger *slog.Logger
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(client llm.Client, send protocol.SendFunc, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{client: client, send: send, logger: logger}
}

// Synthesize runs one synthesis round. round is 1-based for the prompt.
// The streaming contract matches Generator.Generate, with output
// chunks scrubbed of annotation markup.
func (s *Synthesizer) Synthesize(ctx context.Context, p Params, round int,
	priorDrafts []*domain.Draft, highlights []*domain.Highlight) []Result {

	angles := ChooseAngles(p.TaskType, priorDrafts, highlights)
	annotated := buildAnnotatedDraftsBlock(priorDrafts, highlights)
	results := make([]Result, len(angles))

	var eg errgroup.Group
	for i, angle := range angles {
		eg.Go(func() error {
			prompt := buildSynthesisPrompt(p, angle, round, annotated)
			results[i] = streamDraft(ctx, s.client, s.send, s.logger,
				llm.TaskSynthesis, i, angle, prompt, scrubMarkup)
			return nil
		})
	}
	eg.Wait()
	return results
}
