package util

import "strings"

// StripCodeFence removes an optional markdown code fence wrapping from model
// output so the remainder can be parsed as JSON. Text that merely contains
// backticks mid-string is left alone.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = s[3:]
		}
	}
	if strings.HasSuffix(strings.TrimSpace(s), "```") {
		trimmed := strings.TrimSpace(s)
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			s = trimmed[:idx]
		}
	}
	return strings.TrimSpace(s)
}
