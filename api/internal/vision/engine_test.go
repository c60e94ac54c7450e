package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banner-check/api/internal/config"
	"banner-check/api/internal/util"
	"banner-check/api/internal/vision/gemini"
	"banner-check/api/internal/vision/openai"
)

type stubEngine struct{ name string }

func (s stubEngine) Name() string     { return s.name }
func (s stubEngine) GetModel() string { return s.name + "-model" }
func (s stubEngine) Analyze(context.Context, util.EncodedImage) (string, error) {
	return "{}", nil
}

func TestGetEngine(t *testing.T) {
	engs := &Engines{Azure: stubEngine{"azure"}, OpenAI: stubEngine{"openai"}}

	for name, want := range map[string]string{"": "azure", "azure": "azure", " Azure ": "azure", "gpt": "openai", "openai": "openai"} {
		e, err := engs.GetEngine(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, e.Name())
	}

	_, err := engs.GetEngine("gemini")
	assert.ErrorContains(t, err, "not configured")

	_, err = engs.GetEngine("yandex")
	assert.ErrorContains(t, err, "unknown engine")
}

func TestManager(t *testing.T) {
	m := NewManager(stubEngine{"azure"})
	assert.Equal(t, "azure", m.Get(1).Name())

	m.Set(1, stubEngine{"gemini"})
	assert.Equal(t, "gemini", m.Get(1).Name())
	assert.Equal(t, "azure", m.Get(2).Name())
}

func TestNewEngines(t *testing.T) {
	cfg := &config.Config{
		Azure:  config.AzureConfig{Endpoint: "https://x.openai.azure.com", APIKey: "k", Deployment: "gpt-4-vision"},
		Gemini: config.GeminiConfig{APIKey: "g", Model: "gemini-2.5-flash"},
	}
	engs, err := NewEngines(cfg)
	require.NoError(t, err)

	require.NotNil(t, engs.Azure)
	assert.Equal(t, "gpt-4-vision", engs.Azure.GetModel())
	assert.Nil(t, engs.OpenAI)
	require.NotNil(t, engs.Gemini)
	assert.Equal(t, "gemini", engs.Gemini.Name())

	cfg.PromptFile = "/does/not/exist.txt"
	_, err = NewEngines(cfg)
	assert.Error(t, err)
}

func TestWithModelLeavesSharedEngine(t *testing.T) {
	gpt := openai.New("k", "gpt-4o", "", "p")
	mini := WithModel(gpt, "gpt-4o-mini")
	assert.Equal(t, "gpt-4o-mini", mini.GetModel())
	assert.Equal(t, "gpt-4o", gpt.GetModel())

	gem := gemini.New("k", "gemini-2.5-flash", "p")
	assert.Equal(t, "gemini-2.5-pro", WithModel(gem, "gemini-2.5-pro").GetModel())
	assert.Equal(t, "gemini-2.5-flash", gem.GetModel())

	stub := stubEngine{"azure"}
	assert.Equal(t, stub, WithModel(stub, "anything"))
}

func TestNewEnginesAzureSkipsJSONModeByDefault(t *testing.T) {
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "{}"}, "finish_reason": "stop"}]}`))
	}))
	defer srv.Close()

	img := util.EncodedImage{MIME: "image/jpeg", Base64: "/9j/"}
	cfg := &config.Config{
		Azure:  config.AzureConfig{Endpoint: srv.URL, APIKey: "k", Deployment: "gpt-4-vision"},
		OpenAI: config.OpenAIConfig{APIKey: "k", Model: "gpt-4o", BaseURL: srv.URL},
	}
	engs, err := NewEngines(cfg)
	require.NoError(t, err)
	_, err = engs.Azure.Analyze(context.Background(), img)
	require.NoError(t, err)
	_, err = engs.OpenAI.Analyze(context.Background(), img)
	require.NoError(t, err)

	on := true
	cfg.JSONMode = &on
	engs, err = NewEngines(cfg)
	require.NoError(t, err)
	_, err = engs.Azure.Analyze(context.Background(), img)
	require.NoError(t, err)

	require.Len(t, bodies, 3)
	assert.NotContains(t, bodies[0], "response_format", "azure default")
	assert.Contains(t, bodies[1], "response_format", "openai default")
	assert.Contains(t, bodies[2], "response_format", "azure with MORPH_JSON_MODE=true")
}
