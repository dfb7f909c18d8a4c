// Package sanitize cleans user-supplied chat text before it is relayed
// to the other participants of a room.
package sanitize

import (
	"regexp"
	"strings"
)

// MaxMessageLength is the ceiling applied to chat messages, in runes.
const MaxMessageLength = 200

var tagPattern = regexp.MustCompile(`<[^>]*>`)

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&amp;", "&",
)

// Clean strips markup tags, decodes the supported named entities, truncates
// the result to MaxMessageLength and trims surrounding whitespace. An empty
// result means the input carried no usable text.
func Clean(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = entityReplacer.Replace(text)

	runes := []rune(text)
	if len(runes) > MaxMessageLength {
		text = string(runes[:MaxMessageLength])
	}

	return strings.TrimSpace(text)
}
