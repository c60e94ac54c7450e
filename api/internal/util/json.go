package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var ErrNoJSONObject = errors.New("no JSON object in text")

// ExtractJSONObject возвращает срез от первой '{' до последней '}'.
// Если закрывающей скобки нет, возвращается хвост от '{', пусть его отвергнет декодер.
func ExtractJSONObject(s string) (string, error) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", ErrNoJSONObject
	}
	end := strings.LastIndex(s, "}")
	if end < start {
		return s[start:], nil
	}
	return s[start : end+1], nil
}

// LooksLikeJSONObject: быстрый фильтр перед строгим разбором всего ответа.
func LooksLikeJSONObject(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") && json.Valid([]byte(s))
}

// PrettyJSON: отступ в два пробела, как в сохраняемых отчётах.
func PrettyJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
