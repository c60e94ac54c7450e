package telegram

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"banner-check/api/internal/report"
	"banner-check/api/internal/util"
)

// лимит Telegram на текст сообщения 4096, оставляем запас
const maxMessageLen = 3900

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		return
	}
	cid := msg.Chat.ID

	switch {
	case msg.IsCommand():
		r.HandleCommand(msg)
	case len(msg.Photo) > 0:
		// берём самое большое превью
		ph := msg.Photo[len(msg.Photo)-1]
		r.analyzeUpload(ctx, cid, ph.FileID, "photo.jpg")
	case msg.Document != nil:
		r.analyzeUpload(ctx, cid, msg.Document.FileID, msg.Document.FileName)
	default:
		r.send(cid, startText)
	}
}

func (r *Router) analyzeUpload(ctx context.Context, chatID int64, fileID, fileName string) {
	eng := r.EngManager.Get(chatID)
	if eng == nil {
		r.send(chatID, "⚠️ Движок не настроен")
		return
	}

	path, cleanup, err := r.fetch(ctx, fileID, fileName)
	if err != nil {
		r.SendError(chatID, err)
		return
	}
	defer cleanup()

	r.send(chatID, fmt.Sprintf("🔍 Анализирую %s (%s)…", filepath.Base(path), eng.Name()))
	_, _ = r.Bot.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))

	rep := r.Service.WithEngine(eng).Analyze(ctx, path)

	var buf bytes.Buffer
	report.Print(&buf, rep)
	r.send(chatID, util.TruncateString(strings.TrimSpace(buf.String()), maxMessageLen))

	if !rep.Succeeded() {
		return
	}
	b, err := report.Marshal(rep)
	if err != nil {
		r.SendError(chatID, err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  filepath.Base(report.ArtifactPath(path)),
		Bytes: b,
	})
	if _, err := r.Bot.Send(doc); err != nil {
		log.Printf("send artifact: %v", err)
	}
}
