package focus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Hello world", StripHTML("<p>Hello <b>world</b></p>"))
	assert.Equal(t, "plain text stays", StripHTML("plain text stays"))
	assert.Equal(t, "one two", StripHTML("one\n\n  \ttwo"))
	assert.Equal(t, "a b", StripHTML("<div>a</div><div>b</div>"))
	assert.Equal(t, "", StripHTML(""))
}

func TestStripHTML_DiscardsAttributesAndNesting(t *testing.T) {
	raw := `<article class="draft"><h1>Title</h1><p>Body <a href="https://x.test">link</a>.</p></article>`
	assert.Equal(t, "Title Body link .", StripHTML(raw))
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", MaxDraftChars+100)
	assert.Len(t, Truncate(long), MaxDraftChars)
	assert.Equal(t, "short", Truncate("short"))
}
