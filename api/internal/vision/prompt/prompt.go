package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed morphing.user.txt
var morphing string

// Morphing is the built-in instruction sent with every image.
func Morphing() string {
	return strings.TrimSpace(morphing)
}

// Load returns the override from path when it is set, otherwise the built-in prompt.
// An empty or unreadable override file is an error rather than a silent fallback.
func Load(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Morphing(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("prompt %q: %w", path, err)
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", fmt.Errorf("prompt %q is empty", path)
	}
	return s, nil
}
