package drafting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samefarrar/inkwell/internal/domain"
)

func draftsWithAngles(angles ...string) []*domain.Draft {
	drafts := make([]*domain.Draft, len(angles))
	for i, a := range angles {
		drafts[i] = &domain.Draft{DraftIndex: i, Angle: a, Content: "text"}
	}
	return drafts
}

func hl(draftIndex int, sentiment domain.Sentiment) *domain.Highlight {
	return &domain.Highlight{DraftIndex: draftIndex, Start: 0, End: 4, Sentiment: sentiment}
}

func TestGetAngles(t *testing.T) {
	assert.Equal(t, []string{"Thesis-led", "Narrative-led", "Contrarian-led"}, GetAngles(domain.TaskEssay))
	assert.Equal(t, []string{"Atmosphere-led", "Subject-led", "Recommendation-led"}, GetAngles(domain.TaskReview))
	// Unknown task types fall back to essay angles.
	assert.Equal(t, GetAngles(domain.TaskEssay), GetAngles(domain.TaskType("poem")))
}

func TestScoreAngles(t *testing.T) {
	drafts := draftsWithAngles("A", "B", "C")
	highlights := []*domain.Highlight{
		hl(0, domain.SentimentLike),
		hl(0, domain.SentimentLike),
		hl(1, domain.SentimentFlag),
		hl(2, domain.SentimentLike),
		hl(2, domain.SentimentFlag),
	}

	scores := ScoreAngles(drafts, highlights)
	require.Len(t, scores, 3)
	assert.Equal(t, 2, scores[0].Score)
	assert.Equal(t, -1, scores[1].Score)
	assert.Equal(t, 0, scores[2].Score)
}

func TestChooseAngles_AllNonNegativeUnchanged(t *testing.T) {
	drafts := draftsWithAngles("Thesis-led", "Narrative-led", "Contrarian-led")
	highlights := []*domain.Highlight{
		hl(0, domain.SentimentLike),
		// Draft 1 nets zero: one like, one flag. Still kept.
		hl(1, domain.SentimentLike),
		hl(1, domain.SentimentFlag),
	}

	result := ChooseAngles(domain.TaskEssay, drafts, highlights)
	assert.Equal(t, []string{"Thesis-led", "Narrative-led", "Contrarian-led"}, result)
}

func TestChooseAngles_NegativeSlotReplacedWithUnusedAngle(t *testing.T) {
	drafts := draftsWithAngles("Thesis-led", "Custom-led", "Contrarian-led")
	highlights := []*domain.Highlight{
		hl(0, domain.SentimentLike),
		hl(1, domain.SentimentFlag),
		hl(2, domain.SentimentLike),
	}

	result := ChooseAngles(domain.TaskEssay, drafts, highlights)
	assert.Equal(t, "Thesis-led", result[0])
	assert.Equal(t, "Contrarian-led", result[2])
	// The replacement is the first catalogue angle not already in use.
	assert.Equal(t, "Narrative-led", result[1])
}

func TestChooseAngles_FlaggedAngleNeverReassignedToItself(t *testing.T) {
	// Every catalogue angle is in use, so a flagged slot falls through
	// to the generic defaults rather than getting its own angle back.
	drafts := draftsWithAngles("Thesis-led", "Narrative-led", "Contrarian-led")
	highlights := []*domain.Highlight{
		hl(0, domain.SentimentLike),
		hl(1, domain.SentimentFlag),
		hl(2, domain.SentimentLike),
	}

	result := ChooseAngles(domain.TaskEssay, drafts, highlights)
	assert.Equal(t, "Fresh-perspective", result[1])
}

func TestChooseAngles_AllFlaggedFallsBackToDefaults(t *testing.T) {
	drafts := draftsWithAngles("Thesis-led", "Narrative-led", "Contrarian-led")
	highlights := []*domain.Highlight{
		hl(0, domain.SentimentFlag),
		hl(1, domain.SentimentFlag),
		hl(2, domain.SentimentFlag),
	}

	result := ChooseAngles(domain.TaskEssay, drafts, highlights)
	assert.Equal(t, []string{"Fresh-perspective", "Revised-approach", "Alternative-angle"}, result)
}

func TestChooseAngles_DefaultsThenOriginalAsLastResort(t *testing.T) {
	// Six slots flagged, catalogue of three: three go to catalogue
	// angles, three go to defaults. A seventh would keep its original.
	drafts := draftsWithAngles("X0", "X1", "X2", "X3", "X4", "X5", "X6")
	var highlights []*domain.Highlight
	for i := range drafts {
		highlights = append(highlights, hl(i, domain.SentimentFlag))
	}

	result := ChooseAngles(domain.TaskEssay, drafts, highlights)
	assert.Equal(t, "Thesis-led", result[0])
	assert.Equal(t, "Narrative-led", result[1])
	assert.Equal(t, "Contrarian-led", result[2])
	assert.Equal(t, "Fresh-perspective", result[3])
	assert.Equal(t, "Revised-approach", result[4])
	assert.Equal(t, "Alternative-angle", result[5])
	// Catalogue and defaults both exhausted: original angle survives.
	assert.Equal(t, "X6", result[6])
}

func TestChooseAngles_NoHighlightsUnchanged(t *testing.T) {
	drafts := draftsWithAngles("A", "B", "C")
	result := ChooseAngles(domain.TaskEssay, drafts, nil)
	assert.Equal(t, []string{"A", "B", "C"}, result)
}
