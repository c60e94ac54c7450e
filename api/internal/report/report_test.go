package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banner-check/api/internal/vision/types"
)

func morphedVerdict() *types.Verdict {
	return &types.Verdict{
		IsMorphed:       types.BoolPtr(true),
		ConfidenceScore: types.ConfidenceHigh,
		MorphedRegions: []types.Region{{
			Location:        "doctor's face, center",
			BBox:            types.BBox{30, 20, 55.5, 60},
			Reason:          "lighting does not match the background",
			Severity:        types.SeverityCritical,
			ConfidenceScore: types.ConfidenceMedium,
		}},
	}
}

func TestArtifactPath(t *testing.T) {
	assert.Equal(t, "banner_analysis.jpg.json", ArtifactPath("banner.jpg"))
	assert.Equal(t, filepath.Join("in", "my.camp", "banner_v2_analysis.png.json"), ArtifactPath(filepath.Join("in", "my.camp", "banner_v2.png")))
	assert.Equal(t, filepath.Join("docs", "camp_analysis.pdf.json"), ArtifactPath(filepath.Join("docs", "camp.pdf")))
	assert.Equal(t, "README_analysis.json", ArtifactPath("README"))
}

func TestSaveImageWritesVerdictOnly(t *testing.T) {
	in := filepath.Join(t.TempDir(), "banner.jpg")
	rep := &types.AnalysisResult{Success: true, Result: morphedVerdict()}

	out, err := Save(in, rep)
	require.NoError(t, err)
	assert.Equal(t, ArtifactPath(in), out)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, true, got["is_morphed"])
	assert.NotContains(t, got, "success")
	assert.Contains(t, string(b), "\n  \"is_morphed\"")
}

func TestSavePDFWritesAggregate(t *testing.T) {
	in := filepath.Join(t.TempDir(), "camp.pdf")
	rep := &types.PdfAnalysisResult{
		Success:            true,
		PdfPath:            in,
		ImagesAnalyzed:     2,
		MorphedImagesFound: 1,
		Results: []types.AnalysisResult{
			{Success: true, Result: morphedVerdict(), ImageFile: "page1_img1.jpeg"},
			{Success: false, Error: "No JSON found in output", RawOutput: "sorry", ImageFile: "page2_img1.png"},
		},
	}

	out, err := Save(in, rep)
	require.NoError(t, err)
	b, err := os.ReadFile(out)
	require.NoError(t, err)

	var got types.PdfAnalysisResult
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, *rep, got)
}

func TestSaveUnwritableDir(t *testing.T) {
	in := filepath.Join(t.TempDir(), "missing-dir", "banner.jpg")
	_, err := Save(in, &types.AnalysisResult{Success: true, Result: morphedVerdict()})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPrintImage(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, &types.AnalysisResult{Success: true, Result: morphedVerdict()})
	s := buf.String()
	assert.Contains(t, s, "VERDICT: MORPHED/MANIPULATED")
	assert.Contains(t, s, "Confidence: HIGH")
	assert.Contains(t, s, "Regions detected: 1")
	assert.Contains(t, s, "[1] Location: doctor's face, center")
	assert.Contains(t, s, "Bounding Box: [30, 20, 55.5, 60]")
	assert.Contains(t, s, "Severity: CRITICAL")
	assert.Contains(t, s, "Confidence: medium")

	buf.Reset()
	Print(&buf, &types.AnalysisResult{Success: true, Result: &types.Verdict{IsMorphed: types.BoolPtr(false), MorphedRegions: []types.Region{}}})
	assert.Contains(t, buf.String(), "VERDICT: AUTHENTIC")

	buf.Reset()
	Print(&buf, &types.AnalysisResult{Success: false, Error: "No JSON found in output", RawOutput: "I cannot"})
	assert.Contains(t, buf.String(), "ERROR: No JSON found in output")
	assert.Contains(t, buf.String(), "Raw output: I cannot")
}

func TestPrintPDF(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, &types.PdfAnalysisResult{
		Success:            true,
		PdfPath:            "camp.pdf",
		ImagesAnalyzed:     3,
		MorphedImagesFound: 1,
		Results: []types.AnalysisResult{
			{Success: true, Result: morphedVerdict(), ImageFile: "page1_img1.jpeg"},
			{Success: true, Result: &types.Verdict{IsMorphed: types.BoolPtr(false)}, ImageFile: "page1_img2.png"},
			{Success: false, Error: "API call failed: timeout"},
		},
	})
	s := buf.String()
	assert.Contains(t, s, "PDF: camp.pdf")
	assert.Contains(t, s, "Images analyzed: 3")
	assert.Contains(t, s, "Morphed images found: 1")
	assert.Contains(t, s, "[Image 1] page1_img1.jpeg")
	assert.Contains(t, s, "MORPHED - Confidence: high")
	assert.Contains(t, s, "[Image 2] page1_img2.png\n  ✅ AUTHENTIC")
	assert.Contains(t, s, "[Image 3] unknown\n  ❌ ERROR: API call failed: timeout")

	buf.Reset()
	Print(&buf, &types.PdfAnalysisResult{Success: false, Error: "PDF processing failed: bad xref", Results: []types.AnalysisResult{}})
	assert.Contains(t, buf.String(), "ERROR: PDF processing failed: bad xref")
}
