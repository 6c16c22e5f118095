package drafting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samefarrar/inkwell/internal/domain"
)

// Annotate wraps highlighted spans of content in semantic tags for
// model consumption. Tag mapping:
//
//	like + no label  → <good>text</good>
//	flag + no label  → <bad>text</bad>
//	like + label     → <good_label>text</good_label>
//	flag + label     → <label>text</label>
//
// Overlapping ranges are resolved left to right: each highlight's
// start is clamped to the current cursor, and spans that collapse to
// zero or negative width are skipped. Offsets past the end of content
// are clamped too; a manual edit can shrink a draft under highlights
// recorded against the longer text.
func Annotate(content string, highlights []*domain.Highlight) string {
	if len(highlights) == 0 {
		return content
	}

	sorted := append([]*domain.Highlight(nil), highlights...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var b strings.Builder
	pos := 0
	for _, h := range sorted {
		start := h.Start
		if start < pos {
			start = pos
		}
		if start > len(content) {
			start = len(content)
		}
		if start > pos {
			b.WriteString(content[pos:start])
		}

		end := h.End
		if end <= start {
			continue
		}
		if end > len(content) {
			end = len(content)
		}

		tag := highlightTag(h)
		fmt.Fprintf(&b, "<%s>%s</%s>", tag, content[start:end], tag)
		pos = end
	}
	if pos < len(content) {
		b.WriteString(content[pos:])
	}
	return b.String()
}

func highlightTag(h *domain.Highlight) string {
	if h.Label != "" {
		if h.Sentiment == domain.SentimentLike {
			return "good_" + h.Label
		}
		return h.Label
	}
	if h.Sentiment == domain.SentimentLike {
		return "good"
	}
	return "bad"
}
