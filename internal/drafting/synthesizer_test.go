package drafting

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samefarrar/inkwell/internal/domain"
	"github.com/samefarrar/inkwell/internal/llm"
	"github.com/samefarrar/inkwell/internal/protocol"
)

func priorDrafts() []*domain.Draft {
	return []*domain.Draft{
		{DraftIndex: 0, Angle: "Thesis-led", Content: "first draft content"},
		{DraftIndex: 1, Angle: "Narrative-led", Content: "second draft content"},
		{DraftIndex: 2, Angle: "Contrarian-led", Content: "third draft content"},
	}
}

func TestSynthesizer_ScrubsMarkupFromChunks(t *testing.T) {
	client := &mockClient{
		streamFn: func(req llm.CompleteRequest, onChunk llm.ChunkFunc) (*llm.CompleteResponse, error) {
			for _, chunk := range []string{"Title\n\nKeep ", "<good>this</good>", " part"} {
				if err := onChunk(chunk); err != nil {
					return nil, err
				}
			}
			return &llm.CompleteResponse{}, nil
		},
	}
	collector := &messageCollector{}
	syn := NewSynthesizer(client, collector.send, slog.New(slog.DiscardHandler))

	results := syn.Synthesize(context.Background(), testParams(), 1, priorDrafts(), []*domain.Highlight{
		{DraftIndex: 0, Start: 0, End: 5, Sentiment: domain.SentimentLike},
	})

	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, "Title\n\nKeep this part", r.Content)
		assert.NotContains(t, r.Content, "<good>")
	}
	for _, m := range collector.byType(protocol.TypeDraftChunk) {
		chunk := m.(protocol.DraftChunk)
		assert.NotContains(t, chunk.Content, "<")
	}
}

func TestSynthesizer_PromptEmbedsAnnotatedDrafts(t *testing.T) {
	client := &mockClient{
		streamFn: func(req llm.CompleteRequest, onChunk llm.ChunkFunc) (*llm.CompleteResponse, error) {
			return &llm.CompleteResponse{}, nil
		},
	}
	collector := &messageCollector{}
	syn := NewSynthesizer(client, collector.send, slog.New(slog.DiscardHandler))

	highlights := []*domain.Highlight{
		{DraftIndex: 0, Start: 0, End: 5, Sentiment: domain.SentimentLike},
		{DraftIndex: 1, Start: 0, End: 6, Sentiment: domain.SentimentFlag, Label: "too_formal"},
	}
	syn.Synthesize(context.Background(), testParams(), 2, priorDrafts(), highlights)

	prompts := client.systemPrompts()
	require.NotEmpty(t, prompts)
	// Every slot's prompt carries all prior drafts with annotations.
	for _, p := range prompts {
		assert.Contains(t, p, "<good>first</good>")
		assert.Contains(t, p, "<too_formal>second</too_formal>")
		assert.Contains(t, p, "DRAFT 1 (Thesis-led):")
		assert.Contains(t, p, "round 2 of synthesis")
	}
}

func TestSynthesizer_AnglesFollowSelection(t *testing.T) {
	client := &mockClient{
		streamFn: func(req llm.CompleteRequest, onChunk llm.ChunkFunc) (*llm.CompleteResponse, error) {
			return &llm.CompleteResponse{}, nil
		},
	}
	collector := &messageCollector{}
	syn := NewSynthesizer(client, collector.send, slog.New(slog.DiscardHandler))

	// Flag draft 1 so its angle is replaced.
	highlights := []*domain.Highlight{
		{DraftIndex: 1, Start: 0, End: 6, Sentiment: domain.SentimentFlag},
	}
	results := syn.Synthesize(context.Background(), testParams(), 1, priorDrafts(), highlights)

	require.Len(t, results, 3)
	assert.Equal(t, "Thesis-led", results[0].Angle)
	assert.NotEqual(t, "Narrative-led", results[1].Angle)
	assert.Equal(t, "Contrarian-led", results[2].Angle)
}

func TestScrubMarkup(t *testing.T) {
	assert.Equal(t, "plain", scrubMarkup("plain"))
	assert.Equal(t, "ab", scrubMarkup("<good>a</good><bad>b</bad>"))
	assert.Equal(t, "", scrubMarkup("<solo/>"))
	// Partial angle brackets that never close are left alone.
	assert.Equal(t, "a < b", scrubMarkup("a < b"))
}

func TestBuildAnnotatedDraftsBlock_SeparatesDrafts(t *testing.T) {
	block := buildAnnotatedDraftsBlock(priorDrafts(), nil)
	assert.Contains(t, block, "DRAFT 1 (Thesis-led):\nfirst draft content")
	assert.Contains(t, block, "DRAFT 3 (Contrarian-led):\nthird draft content")
	assert.Equal(t, 2, strings.Count(block, "\n\n---\n\n"))
}
