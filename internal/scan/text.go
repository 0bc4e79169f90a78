package scan

import "strings"

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func orDefault(s, def string) string {
	if s = CleanText(s); s == "" {
		return def
	}
	return s
}
