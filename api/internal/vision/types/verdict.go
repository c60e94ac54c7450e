package types

import "fmt"

// Severity of a flagged region. MINOR findings are never reported by the model.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityModerate Severity = "moderate"
)

// Confidence is used both for the overall verdict and per region.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// BBox: x1, y1, x2, y2 в процентах от ширины/высоты (0..100).
type BBox [4]float64

// Region: участок изображения с признаками монтажа.
type Region struct {
	Location        string     `json:"location"`
	BBox            BBox       `json:"bbox"`
	Reason          string     `json:"reason"`
	Severity        Severity   `json:"severity"`
	ConfidenceScore Confidence `json:"confidence_score"`
}

// Verdict is the JSON object returned by the vision model.
// IsMorphed stays nil when the model answered with null.
type Verdict struct {
	IsMorphed       *bool      `json:"is_morphed"`
	ConfidenceScore Confidence `json:"confidence_score,omitempty"`
	MorphedRegions  []Region   `json:"morphed_regions"`
}

func (v Verdict) Morphed() bool {
	return v.IsMorphed != nil && *v.IsMorphed
}

// Issues lists violations of the verdict invariants. The model is trusted, so
// callers only log these.
func (v Verdict) Issues() []string {
	var out []string
	switch {
	case v.Morphed() && len(v.MorphedRegions) == 0:
		out = append(out, "is_morphed=true without morphed_regions")
	case !v.Morphed() && len(v.MorphedRegions) > 0:
		out = append(out, fmt.Sprintf("is_morphed is not true but %d morphed_regions present", len(v.MorphedRegions)))
	}
	for i, r := range v.MorphedRegions {
		b := r.BBox
		for _, c := range b {
			if c < 0 || c > 100 {
				out = append(out, fmt.Sprintf("region %d: bbox %v outside 0..100", i+1, b))
				break
			}
		}
		if b[0] > b[2] || b[1] > b[3] {
			out = append(out, fmt.Sprintf("region %d: bbox %v has inverted corners", i+1, b))
		}
		if r.Severity != SeverityCritical && r.Severity != SeverityModerate {
			out = append(out, fmt.Sprintf("region %d: unexpected severity %q", i+1, r.Severity))
		}
	}
	return out
}

func BoolPtr(v bool) *bool { return &v }
