package extraction

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/fairyhunter13/ai-recruit-assistant/internal/domain"
)

var trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

// ParseRaw decodes the JSON object embedded in raw model output. Markdown fences
// and surrounding prose are ignored and trailing commas are repaired. A bare
// array is returned only when no object in the text decodes.
func ParseRaw(raw string) (any, error) {
	return parseRaw(raw, false)
}

// parseRaw tries every balanced block in order and keeps the first that decodes.
// Objects win. With listRoot an array of objects is accepted as well, so a
// citation like "[1]" in prose never stands in for the answer.
func parseRaw(raw string, listRoot bool) (any, error) {
	text := stripFences(raw)
	var (
		array    any
		firstErr error
		found    bool
	)
	for start := nextOpen(text, 0); start >= 0; {
		end, ok := matchClose(text, start)
		if !ok {
			start = nextOpen(text, start+1)
			continue
		}
		found = true
		v, err := decodeBlock(text[start : end+1])
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			start = nextOpen(text, start+1)
			continue
		}
		if _, isObj := v.(map[string]any); isObj || (listRoot && isRecordList(v)) {
			return v, nil
		}
		if array == nil {
			array = v
		}
		start = nextOpen(text, end+1)
	}
	switch {
	case array != nil:
		return array, nil
	case !found:
		return nil, &domain.MalformedOutputError{Reason: "no JSON block found", Raw: snippet(raw)}
	default:
		return nil, &domain.MalformedOutputError{Reason: firstErr.Error(), Raw: snippet(raw)}
	}
}

func isRecordList(v any) bool {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return false
	}
	_, ok = list[0].(map[string]any)
	return ok
}

func decodeBlock(block string) (any, error) {
	var v any
	err := json.Unmarshal([]byte(block), &v)
	if err == nil {
		return v, nil
	}
	repaired := trailingCommaRe.ReplaceAllString(block, "$1")
	if json.Unmarshal([]byte(repaired), &v) == nil {
		return v, nil
	}
	return nil, err
}

func nextOpen(s string, from int) int {
	if from >= len(s) {
		return -1
	}
	i := strings.IndexAny(s[from:], "{[")
	if i < 0 {
		return -1
	}
	return from + i
}

// stripFences unwraps a markdown code fence that opens before any JSON. Backticks
// inside JSON string values are left alone.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	i := strings.Index(s, "```")
	if i < 0 {
		return s
	}
	if open := strings.IndexAny(s, "{["); open >= 0 && open < i {
		return s
	}
	rest := s[i+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// drop an optional language tag such as ```json
		if tag := strings.TrimSpace(rest[:nl]); !strings.ContainsAny(tag, "{[") {
			rest = rest[nl+1:]
		}
	}
	if j := strings.Index(rest, "```"); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}

func matchClose(s string, start int) (int, bool) {
	var stack []byte
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func snippet(s string) string {
	const n = 256
	if len(s) <= n {
		return s
	}
	return Truncate(s, n)
}
