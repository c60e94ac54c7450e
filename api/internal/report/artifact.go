package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"banner-check/api/internal/util"
)

// ArtifactPath returns the sibling file the report is saved to:
// banner.jpg -> banner_analysis.jpg.json, doc.pdf -> doc_analysis.pdf.json.
func ArtifactPath(inputPath string) string {
	dir, base := filepath.Split(inputPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+"_analysis"+ext+".json")
}

// Marshal renders the persisted form of r: the bare verdict for an image,
// the whole aggregate for a PDF.
func Marshal(r Report) ([]byte, error) {
	b, err := util.PrettyJSON(r.Artifact())
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return b, nil
}

// Save writes the artifact next to the input and returns its path.
func Save(inputPath string, r Report) (string, error) {
	b, err := Marshal(r)
	if err != nil {
		return "", err
	}
	out := ArtifactPath(inputPath)
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}
	return out, nil
}
