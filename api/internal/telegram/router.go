package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"banner-check/api/internal/analyze"
	"banner-check/api/internal/vision"
)

// Sender is the part of *tgbotapi.BotAPI the router uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Router struct {
	Bot        Sender
	EngManager *vision.Manager
	Engines    *vision.Engines
	Service    *analyze.Service

	// WorkDir: сюда скачиваются присланные файлы, по подпапке на загрузку.
	WorkDir string
}

const startText = "Пришли баннер фото или файлом (JPG/PNG или PDF) — проверю, нет ли на нём монтажа.\n" +
	"Команды: /health, /engine"

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, startText)
	case "health":
		r.send(cid, "✅ OK")
	case "engine":
		r.handleEngineCommand(cid, msg.CommandArguments())
	default:
		r.send(cid, "Неизвестная команда")
	}
}

// handleEngineCommand переключает движок для чата.
// Форматы:
//
//	/engine
//	/engine azure
//	/engine openai [model]
//	/engine gemini [model]
func (r *Router) handleEngineCommand(chatID int64, argLine string) {
	args := strings.Fields(argLine)
	if len(args) == 0 {
		cur := r.EngManager.Get(chatID)
		r.send(chatID, fmt.Sprintf("Текущий движок: %s (%s)\nИспользование:\n/engine azure\n/engine openai [model]\n/engine gemini [model]",
			cur.Name(), cur.GetModel()))
		return
	}

	eng, err := r.Engines.GetEngine(args[0])
	if err != nil {
		r.send(chatID, "⚠️ "+err.Error())
		return
	}
	// модель меняем только в копии для этого чата
	if len(args) > 1 {
		eng = vision.WithModel(eng, args[1])
	}
	r.EngManager.Set(chatID, eng)
	r.send(chatID, fmt.Sprintf("✅ Движок: %s (%s)", eng.Name(), eng.GetModel()))
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = r.Bot.Send(msg)
}

func (r *Router) SendError(chatID int64, err error) {
	r.send(chatID, fmt.Sprintf("Ошибка: %v", err))
}
