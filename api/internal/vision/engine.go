package vision

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"banner-check/api/internal/util"
	"banner-check/api/internal/vision/gemini"
	"banner-check/api/internal/vision/openai"
)

// Engine отправляет картинку с промптом в модель и возвращает сырой текст ответа.
type Engine interface {
	Name() string
	GetModel() string
	Analyze(ctx context.Context, img util.EncodedImage) (string, error)
}

// Engines: набор сконфигурированных движков; незаданные остаются nil.
type Engines struct {
	Azure  Engine
	OpenAI Engine
	Gemini Engine
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	var eng Engine
	switch strings.ToLower(strings.TrimSpace(llmName)) {
	case "", "azure":
		eng = e.Azure
	case "gpt", "openai":
		eng = e.OpenAI
	case "gemini":
		eng = e.Gemini
	default:
		return nil, fmt.Errorf("unknown engine %q; use azure | openai | gemini", llmName)
	}
	if eng == nil {
		return nil, fmt.Errorf("engine %q is not configured", llmName)
	}
	return eng, nil
}

// Manager хранит выбор движка по чату (для бота).
type Manager struct {
	def Engine
	m   sync.Map // chatID -> Engine
}

func NewManager(defaultEngine Engine) *Manager {
	return &Manager{def: defaultEngine}
}

func (m *Manager) Get(chatID int64) Engine {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Engine)
	}
	return m.def
}

func (m *Manager) Set(chatID int64, e Engine) {
	m.m.Store(chatID, e)
}

// WithModel returns e bound to another model without touching e, which may be
// shared by other chats. Engines without a model switch come back unchanged.
func WithModel(e Engine, model string) Engine {
	switch v := e.(type) {
	case *openai.Engine:
		return v.WithModel(model)
	case *gemini.Engine:
		return v.WithModel(model)
	case interface{ WithModel(string) Engine }:
		return v.WithModel(model)
	}
	return e
}
