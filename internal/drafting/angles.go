// Package drafting generates and refines drafts in three rhetorical
// angles, guided by highlight feedback between rounds.
package drafting

import (
	"sort"

	"github.com/samefarrar/inkwell/internal/domain"
)

// angleCatalogue lists the three starting angles per task type.
var angleCatalogue = map[domain.TaskType][]string{
	domain.TaskReview:      {"Atmosphere-led", "Subject-led", "Recommendation-led"},
	domain.TaskEssay:       {"Thesis-led", "Narrative-led", "Contrarian-led"},
	domain.TaskNewsletter:  {"Insight-led", "Story-led", "Tactical-led"},
	domain.TaskLandingPage: {"Benefit-led", "Social-proof-led", "Problem-led"},
	domain.TaskBlogPost:    {"Personal-led", "How-to-led", "Opinion-led"},
}

// defaultAngles is the fallback pool when a task's catalogue is exhausted.
var defaultAngles = []string{"Fresh-perspective", "Revised-approach", "Alternative-angle"}

var angleInstructions = map[string]string{
	// Review angles
	"Atmosphere-led":     "Open with the setting, mood, and sensory details. Let the reader feel like they're there before discussing the subject directly.",
	"Subject-led":        "Lead with the subject itself: what makes it special, distinctive, or worth noting. Direct and evaluative.",
	"Recommendation-led": "Frame as a recommendation to a friend. Conversational, opinionated, and practical.",
	// Essay angles
	"Thesis-led":     "Open with a clear thesis statement. Build the argument logically with evidence from the interview.",
	"Narrative-led":  "Open with a story or anecdote. Use narrative structure to make the point.",
	"Contrarian-led": "Challenge conventional wisdom. Open with what most people think, then reveal a different perspective.",
	// Newsletter angles
	"Insight-led":  "Lead with a surprising insight or data point. Build outward from the 'aha' moment.",
	"Story-led":    "Lead with a personal story or case study. Extract the lesson at the end.",
	"Tactical-led": "Lead with actionable advice. What can the reader do differently starting today?",
	// Landing page angles
	"Benefit-led":      "Lead with the primary benefit to the user. What transformation will they experience?",
	"Social-proof-led": "Lead with evidence: who uses this, what results they got, why it's trusted.",
	"Problem-led":      "Lead with the pain point. Agitate the problem, then present the solution.",
	// Blog post angles
	"Personal-led": "Write from personal experience. First-person, vulnerable, relatable.",
	"How-to-led":   "Structure as a practical guide. Clear steps, actionable advice, concrete examples.",
	"Opinion-led":  "Take a strong stance. Be direct and bold about your perspective.",
}

// GetAngles returns the three starting angles for a task type. Unknown
// task types fall back to the essay angles.
func GetAngles(taskType domain.TaskType) []string {
	if angles, ok := angleCatalogue[taskType]; ok {
		return append([]string(nil), angles...)
	}
	return append([]string(nil), angleCatalogue[domain.TaskEssay]...)
}

func angleInstruction(angle string) string {
	if inst, ok := angleInstructions[angle]; ok {
		return inst
	}
	return "Write naturally."
}

// AngleScore aggregates highlight sentiment for one draft index.
type AngleScore struct {
	Index int
	Angle string
	Likes int
	Flags int
	Score int
}

// ScoreAngles computes likes minus flags for each draft, restricted to
// highlights on that draft's index.
func ScoreAngles(drafts []*domain.Draft, highlights []*domain.Highlight) []AngleScore {
	scores := make([]AngleScore, 0, len(drafts))
	for i, d := range drafts {
		var likes, flags int
		for _, h := range highlights {
			if h.DraftIndex != i {
				continue
			}
			switch h.Sentiment {
			case domain.SentimentLike:
				likes++
			case domain.SentimentFlag:
				flags++
			}
		}
		scores = append(scores, AngleScore{
			Index: i,
			Angle: d.Angle,
			Likes: likes,
			Flags: flags,
			Score: likes - flags,
		})
	}
	return scores
}

// ChooseAngles picks the angle for each synthesis slot. Net non-negative
// sentiment keeps the current angle; strictly negative slots are
// replaced from the catalogue, then from the generic defaults, and as a
// last resort keep their original angle.
func ChooseAngles(taskType domain.TaskType, drafts []*domain.Draft, highlights []*domain.Highlight) []string {
	scores := ScoreAngles(drafts, highlights)
	current := make([]string, len(drafts))
	for i, d := range drafts {
		current[i] = d.Angle
	}

	var toReplace []int
	for _, s := range scores {
		if s.Score < 0 {
			toReplace = append(toReplace, s.Index)
		}
	}
	if len(toReplace) == 0 {
		return current
	}
	sort.Ints(toReplace)

	// A replaced slot must get a genuinely new angle, so the pool
	// excludes everything currently in use, kept or flagged.
	inUse := make(map[string]bool, len(current))
	for _, a := range current {
		inUse[a] = true
	}
	var available []string
	for _, a := range GetAngles(taskType) {
		if !inUse[a] {
			available = append(available, a)
		}
	}

	result := append([]string(nil), current...)
	defaultIdx := 0
	for _, idx := range toReplace {
		switch {
		case len(available) > 0:
			result[idx] = available[0]
			available = available[1:]
		case defaultIdx < len(defaultAngles):
			result[idx] = defaultAngles[defaultIdx]
			defaultIdx++
		default:
			// Pool and defaults exhausted, keep the original angle.
		}
	}
	return result
}
