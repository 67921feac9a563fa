package prompt

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	openFence   = regexp.MustCompile("(?i)^```(?:json)?\\s*\\n?")
	closeFence  = regexp.MustCompile("\\n?```\\s*$")
	outerSquare = regexp.MustCompile(`^\[|\]$`)
	quotedComma = regexp.MustCompile(`"\s*,\s*"`)
	edgeQuotes  = regexp.MustCompile(`(?m)^"|"$`)
	lineSplit   = regexp.MustCompile(`\r?\n`)
	listMarker  = regexp.MustCompile(`^(?:[-*•]\s+|\d+[.)]\s+)?(.+)$`)
)

// Tasks converts generated text, either a JSON array or a bullet/numbered
// list, into task strings. Empty entries are dropped; the result is never nil.
func Tasks(text string) []string {
	trimmed := strings.TrimSpace(text)
	tasks := []string{}

	var arr []any
	if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
		for _, v := range arr {
			if s := stringify(v); s != "" {
				tasks = append(tasks, s)
			}
		}
		return tasks
	}

	clean := openFence.ReplaceAllString(trimmed, "")
	clean = closeFence.ReplaceAllString(clean, "")
	clean = outerSquare.ReplaceAllString(clean, "")
	clean = quotedComma.ReplaceAllString(clean, "\n")
	clean = edgeQuotes.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(clean)

	for _, line := range lineSplit.Split(clean, -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := listMarker.FindStringSubmatch(line); m != nil {
			if s := strings.TrimSpace(m[1]); s != "" {
				tasks = append(tasks, s)
			}
		}
	}
	return tasks
}

// stringify renders a JSON array element as a task; null becomes empty.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
