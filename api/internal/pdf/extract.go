package pdf

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Extractor writes the images embedded in a PDF next to it.
type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

// OutputDir: report.pdf -> report_images (расширение без учёта регистра).
func OutputDir(pdfPath string) string {
	base := pdfPath
	if ext := filepath.Ext(pdfPath); strings.EqualFold(ext, ".pdf") {
		base = strings.TrimSuffix(pdfPath, ext)
	}
	return base + "_images"
}

func newConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.Cmd = model.EXTRACTIMAGES
	return conf
}

// Extract saves every embedded image as page{P}_img{I}.{ext} in OutputDir(pdfPath)
// and returns the paths ordered by page, then by object number within the page.
func (x *Extractor) Extract(ctx context.Context, pdfPath string) ([]string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pctx, err := api.ReadValidateAndOptimize(f, newConfig())
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	outDir := OutputDir(pdfPath)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	var paths []string
	for page := 1; page <= pctx.PageCount; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		imgs, err := pdfcpu.ExtractPageImages(pctx, page, false)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		objNrs := make([]int, 0, len(imgs))
		for nr := range imgs {
			objNrs = append(objNrs, nr)
		}
		sort.Ints(objNrs)

		idx := 0
		for _, nr := range objNrs {
			img := imgs[nr]
			if img.Thumb {
				continue
			}
			idx++
			p := filepath.Join(outDir, fmt.Sprintf("page%d_img%d.%s", page, idx, extension(img.FileType)))
			if err := writeImage(p, img); err != nil {
				return nil, fmt.Errorf("page %d image %d: %w", page, idx, err)
			}
			paths = append(paths, p)
		}
	}
	log.Printf("pdf: %s: %d page(s), %d image(s) -> %s", filepath.Base(pdfPath), pctx.PageCount, len(paths), outDir)
	return paths, nil
}

func extension(fileType string) string {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(fileType), "."))
	if ext == "" {
		return "bin"
	}
	return ext
}

func writeImage(path string, r io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
