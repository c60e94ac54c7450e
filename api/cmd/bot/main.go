package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"banner-check/api/internal/analyze"
	"banner-check/api/internal/config"
	"banner-check/api/internal/httpserver"
	"banner-check/api/internal/pdf"
	"banner-check/api/internal/telegram"
	"banner-check/api/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is empty")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(cfg.Telegram.WorkDir, 0o755); err != nil {
		log.Fatalf("work dir: %v", err)
	}

	// Engines
	engines, err := vision.NewEngines(cfg)
	if err != nil {
		log.Fatal(err)
	}
	def, err := engines.GetEngine(cfg.Engine)
	if err != nil {
		log.Fatal(err)
	}
	manager := vision.NewManager(def)

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Fatal(err)
	}
	bot.Debug = false
	log.Printf("authorized as @%s, default engine %s (%s)", bot.Self.UserName, def.Name(), def.GetModel())

	r := &telegram.Router{
		Bot:        bot,
		EngManager: manager,
		Engines:    engines,
		Service:    analyze.NewService(def, pdf.NewExtractor()),
		WorkDir:    cfg.Telegram.WorkDir,
	}

	// health endpoint, для polling не обязателен
	addr := "0.0.0.0:" + cfg.Port
	go func() {
		mux := httpserver.NewMux(func() string {
			return fmt.Sprintf("engine: %s (%s)", def.Name(), def.GetModel())
		})
		if err := httpserver.StartHTTP(addr, mux); err != nil {
			log.Fatal(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Устойчивый поллинг с backoff без log.Fatal/os.Exit
	runPolling(ctx, bot, func(upd tgbotapi.Update) {
		r.HandleUpdate(ctx, upd)
	})
}

// ---------------- Polling loop -----------------

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // HTTP 429 от Telegram
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

func clampDelay(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

// sleepCtx returns false when ctx is done before d elapses.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, handle func(tgbotapi.Update)) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		if ctx.Err() != nil {
			log.Printf("polling: context cancelled")
			return
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling timeout (sec)

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := clampDelay(retryDelayFromError(err), baseDelay, maxDelay)
			log.Printf("polling error: %v; retry in %v", err, d)
			if !sleepCtx(ctx, d) {
				return
			}
			continue
		}

		// по одному апдейту за раз: анализ последовательный
		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			sleepCtx(ctx, 200*time.Millisecond)
		}
	}
}
