package quickadd

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// extractObject strips code fences and surrounding prose and returns the
// first balanced JSON object in the model output.
func extractObject(raw string) (gjson.Result, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return gjson.Result{}, errors.New("empty output")
	}
	if strings.HasPrefix(cleaned, "[") {
		return gjson.Result{}, errors.New("output is a JSON array, not an object")
	}

	candidate := cleaned
	if obj, ok := firstObject(cleaned); ok {
		candidate = obj
	}

	if !gjson.Valid(candidate) {
		return gjson.Result{}, errors.New("output is not valid JSON")
	}
	res := gjson.Parse(candidate)
	if !res.IsObject() {
		return gjson.Result{}, errors.New("output is not a JSON object")
	}
	return res, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// language tag, e.g. ```json
		s = strings.TrimLeft(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func firstObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escape := false
	for i, r := range text {
		if start == -1 {
			if r == '{' {
				start = i
				depth = 1
			}
			continue
		}
		if inString {
			switch {
			case escape:
				escape = false
			case r == '\\':
				escape = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
