package vision

import (
	"banner-check/api/internal/config"
	"banner-check/api/internal/vision/gemini"
	"banner-check/api/internal/vision/openai"
	"banner-check/api/internal/vision/prompt"
)

// NewEngines builds every engine that has credentials in cfg. The prompt
// override, if any, is read once here.
func NewEngines(cfg *config.Config) (*Engines, error) {
	text, err := prompt.Load(cfg.PromptFile)
	if err != nil {
		return nil, err
	}
	engs := &Engines{}
	if cfg.Azure.Endpoint != "" && cfg.Azure.APIKey != "" {
		engs.Azure = openai.NewAzure(cfg.Azure.Endpoint, cfg.Azure.APIKey, cfg.Azure.Deployment, cfg.Azure.APIVersion, text).
			WithJSONMode(cfg.JSONModeFor("azure"))
	}
	if cfg.OpenAI.APIKey != "" {
		engs.OpenAI = openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, text).
			WithJSONMode(cfg.JSONModeFor("openai"))
	}
	if cfg.Gemini.APIKey != "" {
		engs.Gemini = gemini.New(cfg.Gemini.APIKey, cfg.Gemini.Model, text)
	}
	return engs, nil
}
