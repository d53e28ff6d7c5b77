package research

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNotList = errors.New("model reply is not a JSON array")

// cleanJSON strips markdown code fences and a leading "json" language tag
// that models like to wrap around JSON replies.
func cleanJSON(content string) string {
	s := strings.TrimSpace(content)

	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}

	if strings.HasPrefix(s, "json") {
		s = strings.TrimSpace(s[len("json"):])
	}
	return s
}

// parseStringList decodes a model reply expected to be a JSON array of strings.
// Non-string elements are stringified. When the reply is valid JSON but not an
// array, the decoded value is returned along with errNotList.
func parseStringList(content string) ([]string, any, error) {
	var v any
	if err := json.Unmarshal([]byte(cleanJSON(content)), &v); err != nil {
		return nil, nil, err
	}

	items, ok := v.([]any)
	if !ok {
		return nil, v, errNotList
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, stringify(item))
	}
	return out, v, nil
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
