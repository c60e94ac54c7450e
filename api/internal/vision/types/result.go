package types

// AnalysisResult: итог по одному изображению.
type AnalysisResult struct {
	Success   bool     `json:"success"`
	Result    *Verdict `json:"result,omitempty"`
	Error     string   `json:"error,omitempty"`
	RawOutput string   `json:"raw_output,omitempty"`
	ImageFile string   `json:"image_file,omitempty"`
}

func (r *AnalysisResult) Succeeded() bool { return r.Success }

// Artifact: для одиночной картинки сохраняется только вердикт.
func (r *AnalysisResult) Artifact() any { return r.Result }

// PdfAnalysisResult aggregates the per-image results of one PDF.
type PdfAnalysisResult struct {
	Success            bool             `json:"success"`
	PdfPath            string           `json:"pdf_path"`
	ImagesAnalyzed     int              `json:"images_analyzed"`
	MorphedImagesFound int              `json:"morphed_images_found"`
	Results            []AnalysisResult `json:"results"`
	Error              string           `json:"error,omitempty"`
}

func (r *PdfAnalysisResult) Succeeded() bool { return r.Success }

func (r *PdfAnalysisResult) Artifact() any { return r }

// CountMorphed считает только успешные разборы с is_morphed=true.
func CountMorphed(results []AnalysisResult) int {
	n := 0
	for _, r := range results {
		if r.Success && r.Result != nil && r.Result.Morphed() {
			n++
		}
	}
	return n
}
