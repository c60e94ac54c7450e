package handle

import (
	"encoding/json"
	"net/http"

	"banner-check/api/internal/analyze"
	"banner-check/api/internal/vision"
)

type Handle struct {
	engs    *vision.Engines
	svc     *analyze.Service
	workDir string
}

func New(engs *vision.Engines, svc *analyze.Service, workDir string) *Handle {
	return &Handle{
		engs:    engs,
		svc:     svc,
		workDir: workDir,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
