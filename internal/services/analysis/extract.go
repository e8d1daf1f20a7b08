package analysis

import (
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractJSON returns the JSON payload of a model reply. Models often wrap
// JSON in a markdown code fence despite instructions not to; the fence is
// stripped when present and the content is returned as-is otherwise.
func ExtractJSON(content string) string {
	if m := fencedJSON.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(content)
}
