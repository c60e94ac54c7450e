package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMorphingPrompt(t *testing.T) {
	p := Morphing()
	assert.NotEmpty(t, p)
	for _, s := range []string{"is_morphed", "morphed_regions", "bbox", "CRITICAL", "MODERATE"} {
		assert.Contains(t, p, s)
	}
}

func TestLoad(t *testing.T) {
	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Morphing(), got)

	dir := t.TempDir()
	custom := filepath.Join(dir, "custom.txt")
	require.NoError(t, os.WriteFile(custom, []byte("\n  Check the banner.\n"), 0o644))
	got, err = Load(custom)
	require.NoError(t, err)
	assert.Equal(t, "Check the banner.", got)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte(" \n"), 0o644))
	_, err = Load(empty)
	assert.ErrorContains(t, err, "is empty")

	_, err = Load(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
