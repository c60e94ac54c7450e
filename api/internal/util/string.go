package util

import (
	"strings"
	"unicode/utf8"
)

// StripCodeFences вырезает содержимое markdown-блока: сначала ```json ... ```, иначе ``` ... ```.
// Текст до и после блока отбрасывается. Повторный вызов ничего не меняет.
func StripCodeFences(s string) string {
	for _, open := range []string{"```json", "```"} {
		i := strings.Index(s, open)
		if i < 0 {
			continue
		}
		rest := s[i+len(open):]
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(s)
}

// TruncateString режет по байтам, но не посреди UTF-8 символа.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
