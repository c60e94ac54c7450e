package main

import (
	"fmt"
	"log"
	"os"

	"banner-check/api/internal/analyze"
	"banner-check/api/internal/config"
	handle "banner-check/api/internal/handle"
	"banner-check/api/internal/httpserver"
	"banner-check/api/internal/pdf"
	"banner-check/api/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(cfg.Telegram.WorkDir, 0o755); err != nil {
		log.Fatalf("work dir: %v", err)
	}

	engines, err := vision.NewEngines(cfg)
	if err != nil {
		log.Fatal(err)
	}
	def, err := engines.GetEngine(cfg.Engine)
	if err != nil {
		log.Fatal(err)
	}

	mux := httpserver.NewMux(func() string {
		return fmt.Sprintf("engine: %s (%s)", def.Name(), def.GetModel())
	})
	h := handle.New(engines, analyze.NewService(def, pdf.NewExtractor()), cfg.Telegram.WorkDir)
	mux.HandleFunc("/v1/morph/analyze", h.Analyze)

	log.Fatal(httpserver.StartHTTP(":"+cfg.Port, mux))
}
