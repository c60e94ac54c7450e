package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"MORPH_ENGINE", "MORPH_PROMPT_FILE", "MORPH_JSON_MODE", "MORPH_CONFIG_FILE",
	"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_KEY", "AZURE_OPENAI_DEPLOYMENT",
	"OPENAI_API_KEY", "GEMINI_API_KEY",
}

// cleanEnv runs the command from an empty dir (no .env) with no credentials.
func cleanEnv(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func writeBanner(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "banner.jpg")
	require.NoError(t, os.WriteFile(p, []byte{0xFF, 0xD8, 0xFF, 0xE0}, 0o644))
	return p
}

func azureServer(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	t.Setenv("AZURE_OPENAI_ENDPOINT", srv.URL)
	t.Setenv("AZURE_OPENAI_KEY", "test-key")
}

func reply(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{
				"message":       map[string]any{"content": content},
				"finish_reason": "stop",
			}},
		})
	}
}

func TestRunMissingCredentials(t *testing.T) {
	dir := cleanEnv(t)
	p := writeBanner(t, dir)

	assert.Equal(t, 1, run([]string{p}))
	assert.NoFileExists(t, filepath.Join(dir, "banner_analysis.jpg.json"))
}

func TestRunMissingFile(t *testing.T) {
	dir := cleanEnv(t)
	azureServer(t, reply(`{"is_morphed": false, "morphed_regions": []}`))

	assert.Equal(t, 1, run([]string{filepath.Join(dir, "nope.jpg")}))
}

func TestRunSavesArtifact(t *testing.T) {
	dir := cleanEnv(t)
	p := writeBanner(t, dir)
	azureServer(t, reply(`{"is_morphed": true, "confidence_score": "high", "morphed_regions": [{"location": "face", "bbox": [1, 2, 30, 40], "reason": "halo", "severity": "critical", "confidence_score": "high"}]}`))

	require.Equal(t, 0, run([]string{p}))

	b, err := os.ReadFile(filepath.Join(dir, "banner_analysis.jpg.json"))
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, true, got["is_morphed"])
	assert.NotContains(t, got, "success")
}

func TestRunFailedAnalysisSavesNothing(t *testing.T) {
	dir := cleanEnv(t)
	p := writeBanner(t, dir)
	azureServer(t, reply("I cannot analyze this image."))

	assert.Equal(t, 0, run([]string{p}))
	assert.NoFileExists(t, filepath.Join(dir, "banner_analysis.jpg.json"))
}

func TestRunInterrupted(t *testing.T) {
	dir := cleanEnv(t)
	p := writeBanner(t, dir)
	azureServer(t, func(w http.ResponseWriter, r *http.Request) {
		// Ctrl-C while the model is still thinking
		_ = syscall.Kill(os.Getpid(), syscall.SIGINT)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	assert.Equal(t, 0, run([]string{p}))
	assert.NoFileExists(t, filepath.Join(dir, "banner_analysis.jpg.json"))
}
