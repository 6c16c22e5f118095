package focus

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Violation is one style issue anchored to character offsets in the
// analyzed text. Replacement is empty when the fix is a removal.
type Violation struct {
	ID          string
	Quote       string
	Start       int
	End         int
	Replacement string
	Explanation string
	RuleID      string
}

// Style rule identifiers.
const (
	RuleFillerWords  = "filler_words"
	RulePassiveVoice = "passive_voice"
	RuleOxfordComma  = "oxford_comma"
)

var (
	fillerRe = regexp.MustCompile(`(?i)\b(very|really|just|actually|basically|literally)\b`)

	// Auxiliary verb followed by a likely past participle.
	passiveRe = regexp.MustCompile(`(?i)\b(was|were|been|being|is|are)\s+(\w+(?:ed|en|t))\b`)

	// "A, B and C" without a comma before the conjunction.
	oxfordRe = regexp.MustCompile(`(?i)(\w+),\s+(\w+)\s+(and|or)\s+(\w+)`)
)

// Analyze runs all style rules over text and returns violations ordered
// by start offset.
func Analyze(text string) []Violation {
	var violations []Violation
	violations = append(violations, checkFillerWords(text)...)
	violations = append(violations, checkPassiveVoice(text)...)
	violations = append(violations, checkOxfordComma(text)...)
	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Start < violations[j].Start
	})
	return violations
}

func checkFillerWords(text string) []Violation {
	var violations []Violation
	for _, loc := range fillerRe.FindAllStringIndex(text, -1) {
		word := text[loc[0]:loc[1]]
		violations = append(violations, Violation{
			ID:    uuid.NewString(),
			Quote: word,
			Start: loc[0],
			End:   loc[1],
			Explanation: fmt.Sprintf(
				"%q is a filler word that weakens your writing. Consider removing it.", word),
			RuleID: RuleFillerWords,
		})
	}
	return violations
}

func checkPassiveVoice(text string) []Violation {
	var violations []Violation
	for _, loc := range passiveRe.FindAllStringIndex(text, -1) {
		violations = append(violations, Violation{
			ID:    uuid.NewString(),
			Quote: text[loc[0]:loc[1]],
			Start: loc[0],
			End:   loc[1],
			Explanation: "This may be passive voice. Consider rewriting in active voice " +
				"for more direct, engaging prose.",
			RuleID: RulePassiveVoice,
		})
	}
	return violations
}

func checkOxfordComma(text string) []Violation {
	var violations []Violation
	for _, idx := range oxfordRe.FindAllStringSubmatchIndex(text, -1) {
		full := text[idx[0]:idx[1]]
		secondWord := text[idx[4]:idx[5]]
		conjunction := text[idx[6]:idx[7]]
		fixed := strings.Replace(full,
			secondWord+" "+conjunction,
			secondWord+", "+conjunction, 1)
		violations = append(violations, Violation{
			ID:          uuid.NewString(),
			Quote:       full,
			Start:       idx[0],
			End:         idx[1],
			Replacement: fixed,
			Explanation: fmt.Sprintf(
				"Consider adding an Oxford comma before %q for clarity.", conjunction),
			RuleID: RuleOxfordComma,
		})
	}
	return violations
}
