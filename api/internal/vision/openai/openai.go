package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"banner-check/api/internal/util"
)

const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	AzureAPIVersion  = "2024-02-15-preview"
	defaultMaxTokens = 4096
	errorBodyPreview = 1024
)

// Engine talks to an OpenAI-compatible chat/completions endpoint: either
// api.openai.com (Bearer auth) or an Azure OpenAI deployment (api-key header).
type Engine struct {
	name     string
	model    string
	endpoint string
	auth     func(*http.Request)
	prompt   string
	jsonMode bool
	httpc    *http.Client
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		// vision-запросы с detail=high отвечают долго; ждём первые заголовки до 2 минут
		ResponseHeaderTimeout: 120 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   10,
	}
}

// New creates an engine for api.openai.com (or any compatible base URL).
func New(key, model, baseURL, prompt string) *Engine {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	key = strings.TrimSpace(key)
	return &Engine{
		name:     "openai",
		model:    strings.TrimSpace(model),
		endpoint: strings.TrimRight(baseURL, "/") + "/chat/completions",
		auth: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+key)
		},
		prompt:   prompt,
		jsonMode: true,
		httpc:    &http.Client{Transport: newTransport()},
	}
}

// NewAzure creates an engine bound to an Azure OpenAI deployment.
func NewAzure(endpoint, key, deployment, apiVersion, prompt string) *Engine {
	if apiVersion == "" {
		apiVersion = AzureAPIVersion
	}
	key = strings.TrimSpace(key)
	u := strings.TrimRight(strings.TrimSpace(endpoint), "/") +
		"/openai/deployments/" + url.PathEscape(deployment) +
		"/chat/completions?api-version=" + url.QueryEscape(apiVersion)
	return &Engine{
		name:     "azure",
		model:    deployment,
		endpoint: u,
		auth: func(r *http.Request) {
			r.Header.Set("api-key", key)
		},
		prompt:   prompt,
		jsonMode: true,
		httpc:    &http.Client{Transport: newTransport()},
	}
}

// WithHTTPClient overrides the internal HTTP client (tests, custom timeouts).
func (e *Engine) WithHTTPClient(c *http.Client) *Engine {
	if c != nil {
		e.httpc = c
	}
	return e
}

// WithJSONMode toggles response_format=json_object. Older vision deployments reject it.
func (e *Engine) WithJSONMode(on bool) *Engine {
	e.jsonMode = on
	return e
}

func (e *Engine) Name() string     { return e.name }
func (e *Engine) GetModel() string { return e.model }

// WithModel returns a copy bound to model m; e itself is never modified, so
// engines can be shared between chats. Azure takes its model from the
// deployment and returns e unchanged.
func (e *Engine) WithModel(m string) *Engine {
	m = strings.TrimSpace(m)
	if e.name != "openai" || m == "" || m == e.model {
		return e
	}
	cp := *e
	cp.model = m
	return &cp
}

func (e *Engine) buildBody(img util.EncodedImage) map[string]any {
	body := map[string]any{
		"messages": []any{
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": e.prompt},
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": img.DataURL(), "detail": "high"}},
				},
			},
		},
		"temperature": 0,
		"max_tokens":  defaultMaxTokens,
	}
	if e.jsonMode {
		body["response_format"] = map[string]any{"type": "json_object"}
	}
	// Azure берёт модель из deployment в URL
	if e.name == "openai" {
		body["model"] = e.model
	}
	return body
}

// Analyze returns the raw assistant text. It does not try to interpret it.
func (e *Engine) Analyze(ctx context.Context, img util.EncodedImage) (string, error) {
	if img.Base64 == "" {
		return "", errors.New("empty image payload")
	}
	payload, err := json.Marshal(e.buildBody(img))
	if err != nil {
		return "", fmt.Errorf("%s: marshal request: %w", e.name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%s: build request: %w", e.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	e.auth(req)

	start := time.Now()
	resp, err := e.httpc.Do(req)
	log.Printf("%s analyze (%s): %d ms", e.name, e.model, time.Since(start).Milliseconds())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: read response: %w", e.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s %d: %s", e.name, resp.StatusCode, util.TruncateString(strings.TrimSpace(string(raw)), errorBodyPreview))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%s: bad envelope: %w", e.name, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%s: empty response", e.name)
	}
	if fr := out.Choices[0].FinishReason; fr != "" && fr != "stop" {
		log.Printf("%s: finish_reason=%s", e.name, fr)
	}
	return out.Choices[0].Message.Content, nil
}
