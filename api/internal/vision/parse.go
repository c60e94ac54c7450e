package vision

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"banner-check/api/internal/util"
	"banner-check/api/internal/vision/types"
)

var (
	ErrNoJSON  = errors.New("No JSON found in output")
	ErrBadJSON = errors.New("JSON parsing failed")
)

// ParseVerdict достаёт JSON-вердикт из ответа модели.
// Сначала пробуем весь ответ целиком; если модель обернула JSON в markdown или прозу,
// снимаем ограду ``` и берём срез от первой '{' до последней '}'.
func ParseVerdict(raw string) (types.Verdict, error) {
	var v types.Verdict
	if util.LooksLikeJSONObject(raw) {
		if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &v); err == nil {
			return normalize(v), nil
		}
	}

	text := util.StripCodeFences(raw)
	obj, err := util.ExtractJSONObject(text)
	if err != nil {
		return types.Verdict{}, ErrNoJSON
	}
	v = types.Verdict{}
	if err := json.Unmarshal([]byte(obj), &v); err != nil {
		return types.Verdict{}, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	return normalize(v), nil
}

func normalize(v types.Verdict) types.Verdict {
	if v.MorphedRegions == nil {
		v.MorphedRegions = []types.Region{}
	}
	v.ConfidenceScore = types.Confidence(strings.ToLower(strings.TrimSpace(string(v.ConfidenceScore))))
	for i := range v.MorphedRegions {
		r := &v.MorphedRegions[i]
		r.Severity = types.Severity(strings.ToLower(strings.TrimSpace(string(r.Severity))))
		r.ConfidenceScore = types.Confidence(strings.ToLower(strings.TrimSpace(string(r.ConfidenceScore))))
	}
	return v
}
