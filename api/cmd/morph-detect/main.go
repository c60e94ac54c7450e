package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"banner-check/api/internal/analyze"
	"banner-check/api/internal/config"
	"banner-check/api/internal/pdf"
	"banner-check/api/internal/report"
	"banner-check/api/internal/vision"
)

const defaultInput = "medical_camp_banner.jpg"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) (code int) {
	defer func() {
		if rec := recover(); rec != nil {
			fmt.Fprintf(os.Stderr, "\n❌ FATAL ERROR: %v\n%s", rec, debug.Stack())
			code = 1
		}
	}()

	path := defaultInput
	if len(args) > 0 && args[0] != "" {
		path = args[0]
	} else {
		fmt.Printf("ℹ️  No file provided, using default: %s\n", path)
		fmt.Printf("   Usage: %s <path_to_image_or_pdf>\n\n", os.Args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		printConfigError(err)
		return 1
	}

	if _, err := os.Stat(path); err != nil {
		fmt.Printf("❌ ERROR: File not found: %s\n", path)
		return 1
	}

	engines, err := vision.NewEngines(cfg)
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return 1
	}
	engine, err := engines.GetEngine(cfg.Engine)
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return 1
	}
	log.Printf("engine: %s (%s)", engine.Name(), engine.GetModel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := analyze.NewService(engine, pdf.NewExtractor())
	if analyze.IsPDFPath(path) {
		fmt.Printf("📄 Processing PDF: %s\n", path)
	} else {
		fmt.Printf("🔍 Analyzing image: %s\n", path)
	}
	rep := svc.Analyze(ctx, path)

	if ctx.Err() != nil {
		fmt.Println("\n\n⚠️  Analysis interrupted by user")
		return 0
	}

	report.Print(os.Stdout, rep)

	if rep.Succeeded() {
		out, err := report.Save(path, rep)
		if err != nil {
			fmt.Printf("❌ ERROR: %v\n", err)
			return 1
		}
		fmt.Printf("\n💾 Results saved to: %s\n", out)
	}
	return 0
}

func printConfigError(err error) {
	var me *config.MissingError
	if !errors.As(err, &me) {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}
	fmt.Printf("❌ ERROR: %s credentials not found!\n", me.Engine)
	fmt.Println("\nPlease set environment variables:")
	for _, v := range me.Vars {
		fmt.Printf("  - %s\n", v)
	}
	if me.Engine == "azure" {
		fmt.Println("  - AZURE_OPENAI_DEPLOYMENT (optional, defaults to 'gpt-4-vision')")
		fmt.Println("  - MORPH_JSON_MODE (optional; off for Azure unless set, turn on for deployments that support response_format)")
	}
}
