package gemini

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"banner-check/api/internal/util"
)

type Engine struct {
	APIKey string
	Model  string
	prompt string
	opts   []option.ClientOption
}

func New(apiKey, model, prompt string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
		prompt: prompt,
	}
}

// WithClientOptions adds options for genai.NewClient (e.g. option.WithEndpoint in tests).
func (e *Engine) WithClientOptions(opts ...option.ClientOption) *Engine {
	e.opts = append(e.opts, opts...)
	return e
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// WithModel returns a copy bound to model m, leaving e untouched.
func (e *Engine) WithModel(m string) *Engine {
	m = strings.TrimSpace(m)
	if m == "" || m == e.Model {
		return e
	}
	cp := *e
	cp.Model = m
	cp.opts = append([]option.ClientOption(nil), e.opts...)
	return &cp
}

// Analyze отправляет промпт и картинку одним запросом и возвращает текст ответа.
// Повторов нет: ошибка сразу уходит вызывающему.
func (e *Engine) Analyze(ctx context.Context, img util.EncodedImage) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	data, err := img.Bytes()
	if err != nil {
		return "", fmt.Errorf("gemini: bad base64: %w", err)
	}

	opts := append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.opts...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}

	parts := []genai.Part{
		genai.Text(e.prompt),
		&genai.Blob{MIMEType: img.MIME, Data: data},
	}

	start := time.Now()
	resp, err := m.GenerateContent(ctx, parts...)
	log.Printf("gemini analyze (%s): %d ms", e.Model, time.Since(start).Milliseconds())
	if err != nil {
		return "", err
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return txt, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
