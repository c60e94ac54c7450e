package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"banner-check/api/internal/analyze"
)

// максимальный размер файла, который Bot API отдаёт на скачивание
const maxDownload = 20 << 20

// fetch скачивает файл в <WorkDir>/<uuid>/ и возвращает путь и функцию очистки.
func (r *Router) fetch(ctx context.Context, fileID, fileName string) (string, func(), error) {
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", nil, fmt.Errorf("get file: %w", err)
	}
	data, err := download(ctx, url)
	if err != nil {
		return "", nil, fmt.Errorf("download: %w", err)
	}
	return analyze.Stage(r.WorkDir, fileName, data)
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return readLimited(resp.Body, maxDownload)
}

// readLimited fails instead of returning a cut file when r holds more than limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("file is larger than %d MB", limit>>20)
	}
	return b, nil
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
