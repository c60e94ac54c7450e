package analyze

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"banner-check/api/internal/util"
	"banner-check/api/internal/vision"
	"banner-check/api/internal/vision/types"
)

// ImageExtractor pulls embedded images out of a PDF and returns their paths.
type ImageExtractor interface {
	Extract(ctx context.Context, pdfPath string) ([]string, error)
}

// Report is either *types.AnalysisResult or *types.PdfAnalysisResult.
type Report interface {
	Succeeded() bool
	Artifact() any
}

// Service runs the pipeline: PDF -> images -> encode -> model -> verdict.
// Images are processed one after another.
type Service struct {
	engine    vision.Engine
	extractor ImageExtractor
}

func NewService(engine vision.Engine, extractor ImageExtractor) *Service {
	return &Service{engine: engine, extractor: extractor}
}

// WithEngine returns a copy bound to another engine (per-chat selection in the bot).
func (s *Service) WithEngine(e vision.Engine) *Service {
	if e == nil {
		return s
	}
	return &Service{engine: e, extractor: s.extractor}
}

func IsPDFPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Analyze выбирает ветку по расширению файла.
func (s *Service) Analyze(ctx context.Context, path string) Report {
	if IsPDFPath(path) {
		r := s.AnalyzePDF(ctx, path)
		return &r
	}
	r := s.AnalyzeImage(ctx, path)
	return &r
}

// AnalyzeImage never returns an error: every failure is folded into the result.
func (s *Service) AnalyzeImage(ctx context.Context, path string) types.AnalysisResult {
	img, err := util.EncodeImageFile(path)
	if err != nil {
		return types.AnalysisResult{Success: false, Error: err.Error()}
	}

	raw, err := s.engine.Analyze(ctx, img)
	if err != nil {
		return types.AnalysisResult{Success: false, Error: fmt.Sprintf("API call failed: %v", err)}
	}

	v, err := vision.ParseVerdict(raw)
	if err != nil {
		return types.AnalysisResult{Success: false, Error: err.Error(), RawOutput: raw}
	}
	for _, issue := range v.Issues() {
		log.Printf("warning: %s: %s", filepath.Base(path), issue)
	}
	return types.AnalysisResult{Success: true, Result: &v}
}

// AnalyzePDF extracts the embedded images and analyzes them in order. A failed
// extraction fails the whole report; a failed image only marks its own entry.
// When ctx ends midway every image still gets an entry, and the report is
// marked unsuccessful so it can never read as a clean PDF.
func (s *Service) AnalyzePDF(ctx context.Context, path string) types.PdfAnalysisResult {
	images, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return types.PdfAnalysisResult{
			Success: false,
			PdfPath: path,
			Results: []types.AnalysisResult{},
			Error:   fmt.Sprintf("PDF processing failed: %v", err),
		}
	}
	log.Printf("extracted %d image(s) from %s", len(images), path)

	results := make([]types.AnalysisResult, 0, len(images))
	reached := 0
	for i, img := range images {
		r := types.AnalysisResult{ImageFile: filepath.Base(img)}
		if err := ctx.Err(); err != nil {
			// не дошли до картинки: она остаётся в отчёте как неуспешная
			r.Error = fmt.Sprintf("API call failed: %v", err)
			results = append(results, r)
			continue
		}
		log.Printf("[%d/%d] analyzing %s", i+1, len(images), r.ImageFile)
		r = s.AnalyzeImage(ctx, img)
		r.ImageFile = filepath.Base(img)
		results = append(results, r)
		reached++
	}

	out := types.PdfAnalysisResult{
		Success:            true,
		PdfPath:            path,
		ImagesAnalyzed:     len(results),
		MorphedImagesFound: types.CountMorphed(results),
		Results:            results,
	}
	if err := ctx.Err(); err != nil {
		log.Printf("analysis cut short after %d/%d image(s): %v", reached, len(images), err)
		out.Success = false
		out.Error = fmt.Sprintf("analysis interrupted after %d of %d image(s): %v", reached, len(images), err)
	}
	return out
}
