package report

import (
	"fmt"
	"io"
	"strings"

	"banner-check/api/internal/vision/types"
)

// Report mirrors analyze.Report so this package stays free of the pipeline.
type Report interface {
	Succeeded() bool
	Artifact() any
}

var (
	rule = strings.Repeat("=", 70)
	thin = strings.Repeat("-", 70)
)

// Print writes the human-readable summary of r to w.
func Print(w io.Writer, r Report) {
	fmt.Fprintf(w, "\n%s\n📊 MORPHING DETECTION RESULTS\n%s\n", rule, rule)

	switch v := r.(type) {
	case *types.PdfAnalysisResult:
		printPDF(w, v)
	case *types.AnalysisResult:
		printImage(w, v)
	default:
		fmt.Fprintf(w, "❌ ERROR: unsupported report %T\n", r)
	}

	fmt.Fprintf(w, "\n%s\n", rule)
}

func printImage(w io.Writer, r *types.AnalysisResult) {
	if !r.Success || r.Result == nil {
		fmt.Fprintf(w, "❌ ERROR: %s\n", r.Error)
		if r.RawOutput != "" {
			fmt.Fprintf(w, "\nRaw output: %s\n", r.RawOutput)
		}
		return
	}
	printVerdict(w, r.Result)
}

func printVerdict(w io.Writer, v *types.Verdict) {
	if !v.Morphed() {
		fmt.Fprintln(w, "✅ VERDICT: AUTHENTIC")
		fmt.Fprintln(w, "No morphing or manipulation detected")
		return
	}

	fmt.Fprintln(w, "⚠️  VERDICT: MORPHED/MANIPULATED")
	fmt.Fprintf(w, "🎯 Confidence: %s\n", strings.ToUpper(orUnknown(string(v.ConfidenceScore))))
	fmt.Fprintf(w, "📍 Regions detected: %d\n", len(v.MorphedRegions))
	if len(v.MorphedRegions) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\nSUSPICIOUS REGIONS:\n%s\n", thin, thin)
	for i, reg := range v.MorphedRegions {
		fmt.Fprintf(w, "\n[%d] Location: %s\n", i+1, reg.Location)
		fmt.Fprintf(w, "    Bounding Box: %s\n", formatBBox(reg.BBox))
		fmt.Fprintf(w, "    Severity: %s\n", strings.ToUpper(orUnknown(string(reg.Severity))))
		fmt.Fprintf(w, "    Confidence: %s\n", orUnknown(string(reg.ConfidenceScore)))
		fmt.Fprintf(w, "    Reason: %s\n", reg.Reason)
	}
}

func printPDF(w io.Writer, r *types.PdfAnalysisResult) {
	if !r.Success {
		fmt.Fprintf(w, "❌ ERROR: %s\n", r.Error)
		return
	}
	fmt.Fprintf(w, "📄 PDF: %s\n", r.PdfPath)
	fmt.Fprintf(w, "🖼️  Images analyzed: %d\n", r.ImagesAnalyzed)
	fmt.Fprintf(w, "⚠️  Morphed images found: %d\n", r.MorphedImagesFound)
	fmt.Fprintf(w, "\n%s\n", thin)

	for i, sub := range r.Results {
		fmt.Fprintf(w, "\n[Image %d] %s\n", i+1, orUnknown(sub.ImageFile))
		switch {
		case !sub.Success || sub.Result == nil:
			fmt.Fprintf(w, "  ❌ ERROR: %s\n", sub.Error)
		case sub.Result.Morphed():
			fmt.Fprintf(w, "  ⚠️  MORPHED - Confidence: %s\n", orUnknown(string(sub.Result.ConfidenceScore)))
			fmt.Fprintf(w, "  📍 Regions: %d\n", len(sub.Result.MorphedRegions))
		default:
			fmt.Fprintln(w, "  ✅ AUTHENTIC")
		}
	}
}

// formatBBox prints [x1, y1, x2, y2] without trailing zeros.
func formatBBox(b types.BBox) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%g", c)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
