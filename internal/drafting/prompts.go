package drafting

import (
	"fmt"
	"strings"

	"github.com/samefarrar/inkwell/internal/domain"
)

const draftSystemPrompt = `You are an expert writer creating a %s about "%s" using the %s angle.

INTERVIEW MATERIAL:
%s

KEY DETAILS:
%s

%s

INSTRUCTIONS:
- Write in the %s style: %s
- Target 300-500 words
- Use specific details from the interview material
- Follow the house style guide:
  * Oxford comma always
  * Active voice preferred
  * Numbers: spell out 1-9, numerals for 10+
  * Cut filler words: "actually", "very", "just", "really"
- Do not use HTML tags or formatting. Output plain text only.
- Make it compelling and publication-ready
- Include a title

Write the draft now. Output the title on the first line, then a blank line, then the body.`

const synthesisSystemPrompt = `You are an expert writer refining a %s about "%s" using the %s angle.

This is round %d of synthesis. The reader highlighted parts of a previous draft to guide this revision.

PREVIOUS DRAFTS WITH READER FEEDBACK:
%s

INTERVIEW MATERIAL:
%s

KEY DETAILS:
%s

%s

HIGHLIGHT LEGEND:
- <good>text</good>: the reader loved this. MUST keep or improve it.
- <bad>text</bad>: the reader flagged this. Rewrite or omit entirely.
- Custom tags like <too_formal> or <good_insightful> carry the label as guidance for what to fix or why it was liked.
- Unlabeled text is background, use freely.

INSTRUCTIONS:
- Write in the %s style: %s
- Target 300-500 words
- Incorporate ALL <good> passages (keep the essence, improve if possible)
- Fix or omit ALL <bad> passages
- Follow the house style guide:
  * Oxford comma always
  * Active voice preferred
  * Cut filler words: "actually", "very", "just", "really"
- Do not use HTML tags or formatting. Output plain text only.
- Make it better than the previous round
- Include a title

Write the draft now. Output the title on the first line, then a blank line, then the body.`

// formatOutline renders the confirmed outline as a numbered block, or
// "" when the user skipped the outline step.
func formatOutline(nodes []domain.OutlineNode) string {
	if len(nodes) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("STRUCTURE TO FOLLOW:\n")
	for i, n := range nodes {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, n.NodeType, n.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatKeyMaterial(keyMaterial []string) string {
	var b strings.Builder
	for _, item := range keyMaterial {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return strings.TrimRight(b.String(), "\n")
}

// contextBlock merges the optional outline and style context sections.
func contextBlock(p Params) string {
	parts := make([]string, 0, 2)
	if outline := formatOutline(p.Outline); outline != "" {
		parts = append(parts, outline)
	}
	if p.StyleContext != "" {
		parts = append(parts, p.StyleContext)
	}
	return strings.Join(parts, "\n\n")
}

func buildDraftPrompt(p Params, angle string) string {
	return fmt.Sprintf(draftSystemPrompt,
		p.TaskType, p.Topic, angle,
		p.InterviewSummary,
		formatKeyMaterial(p.KeyMaterial),
		contextBlock(p),
		angle, angleInstruction(angle),
	)
}

func buildSynthesisPrompt(p Params, angle string, round int, annotatedDrafts string) string {
	return fmt.Sprintf(synthesisSystemPrompt,
		p.TaskType, p.Topic, angle,
		round,
		annotatedDrafts,
		p.InterviewSummary,
		formatKeyMaterial(p.KeyMaterial),
		contextBlock(p),
		angle, angleInstruction(angle),
	)
}

// buildAnnotatedDraftsBlock renders every prior draft with its
// highlights spliced in, separated for the prompt.
func buildAnnotatedDraftsBlock(drafts []*domain.Draft, highlights []*domain.Highlight) string {
	parts := make([]string, 0, len(drafts))
	for i, d := range drafts {
		var draftHl []*domain.Highlight
		for _, h := range highlights {
			if h.DraftIndex == i {
				draftHl = append(draftHl, h)
			}
		}
		annotated := Annotate(d.Content, draftHl)
		parts = append(parts, fmt.Sprintf("DRAFT %d (%s):\n%s", i+1, d.Angle, annotated))
	}
	return strings.Join(parts, "\n\n---\n\n")
}
