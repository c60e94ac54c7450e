package util

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
)

var (
	ErrImageNotFound = errors.New("image file not found")
	ErrImageRead     = errors.New("image read failed")
)

// EncodedImage: содержимое файла, готовое к отправке в модель.
type EncodedImage struct {
	Path   string
	MIME   string
	Base64 string
}

// DataURL собирает data:<mime>;base64,<payload> для image_url.
func (e EncodedImage) DataURL() string {
	return MakeDataURL(e.MIME, e.Base64)
}

// Bytes декодирует payload обратно (нужно движкам, которые шлют сырые байты).
func (e EncodedImage) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(e.Base64)
}

// imageError keeps the user-facing text while still matching the sentinel via errors.Is.
type imageError struct {
	kind error
	msg  string
	err  error
}

func (e *imageError) Error() string { return e.msg }

func (e *imageError) Is(target error) bool { return target == e.kind }

func (e *imageError) Unwrap() error { return e.err }

// EncodeImageFile читает файл и кодирует его в base64.
// Отсутствующий файл и прочие ошибки чтения различаются через ErrImageNotFound / ErrImageRead.
func EncodeImageFile(path string) (EncodedImage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return EncodedImage{}, &imageError{
				kind: ErrImageNotFound,
				msg:  "Image file not found: " + path,
				err:  err,
			}
		}
		return EncodedImage{}, &imageError{
			kind: ErrImageRead,
			msg:  fmt.Sprintf("Failed to read image: %v", err),
			err:  err,
		}
	}
	return EncodedImage{
		Path:   path,
		MIME:   PickImageMIME(b),
		Base64: base64.StdEncoding.EncodeToString(b),
	}, nil
}

func SniffMimeHTTP(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	return "application/octet-stream"
}

// PickImageMIME: сигнатуры JPEG/PNG, затем http.DetectContentType; не-картинки шлём как image/jpeg.
func PickImageMIME(data []byte) string {
	if m := SniffMimeHTTP(data); m != "application/octet-stream" {
		return m
	}
	if len(data) > 0 {
		m := http.DetectContentType(data)
		if strings.HasPrefix(m, "image/") {
			return m
		}
	}
	return "image/jpeg"
}

func MakeDataURL(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}

// IsPDF проверяет сигнатуру %PDF- (для файлов без расширения, например из Telegram).
func IsPDF(b []byte) bool {
	return len(b) >= 5 && b[0] == '%' && b[1] == 'P' && b[2] == 'D' && b[3] == 'F' && b[4] == '-'
}
