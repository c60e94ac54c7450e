package analyze

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"banner-check/api/internal/util"
)

// Stage writes an uploaded file into <workDir>/<uuid>/ so that a PDF's
// extracted images land in a private directory. cleanup removes it all.
func Stage(workDir, fileName string, data []byte) (path string, cleanup func(), err error) {
	dir := filepath.Join(workDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, err
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	path = filepath.Join(dir, UploadName(fileName, data))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

// UploadName keeps the client's base name and makes sure a PDF ends in .pdf,
// since Analyze picks its branch by extension.
func UploadName(name string, data []byte) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	if util.IsPDF(data) && !IsPDFPath(name) {
		name += ".pdf"
	}
	return name
}
