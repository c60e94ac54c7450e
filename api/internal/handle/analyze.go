package handle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"banner-check/api/internal/analyze"
	"banner-check/api/internal/vision/types"
)

// лимит тела запроса: PDF с несколькими баннерами в base64
const maxBody = 32 << 20

func stripDataURL(b64 string) string {
	s := strings.TrimSpace(b64)
	if i := strings.Index(s, ","); i != -1 && strings.HasPrefix(strings.ToLower(s[:i]), "data:") {
		return s[i+1:]
	}
	return s
}

// AnalyzeRequest carries one image or PDF. FileName is optional; a PDF is
// recognised by its signature when the name has no .pdf extension.
type AnalyzeRequest struct {
	LLMName  string `json:"llm_name"`
	FileName string `json:"file_name,omitempty"`
	FileB64  string `json:"file_b64"`
}

func requestDeadline(r *http.Request) time.Duration {
	deadline := 180 * time.Second
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	return deadline
}

// Analyze отвечает 200 с отчётом даже при success=false: ошибки анализа
// входят в сам отчёт. 4xx/5xx только для ошибок запроса и окружения.
func (h *Handle) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST only"})
		return
	}
	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json: " + err.Error()})
		return
	}

	data, err := base64.StdEncoding.DecodeString(stripDataURL(req.FileB64))
	if err != nil || len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad file_b64"})
		return
	}

	engine, err := h.engs.GetEngine(req.LLMName)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "engine: " + err.Error()})
		return
	}

	path, cleanup, err := analyze.Stage(h.workDir, req.FileName, data)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "stage upload: " + err.Error()})
		return
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(r.Context(), requestDeadline(r))
	defer cancel()

	rep := h.svc.WithEngine(engine).Analyze(ctx, path)
	// наружу не отдаём путь во временном каталоге
	if p, ok := rep.(*types.PdfAnalysisResult); ok {
		p.PdfPath = filepath.Base(path)
	}
	writeJSON(w, http.StatusOK, rep)
}
