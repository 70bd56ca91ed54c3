package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSha256Hex(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Sha256Hex(nil))
	assert.Equal(t, Sha256Hex([]byte("abc")), Sha256Hex([]byte("abc")))
	assert.NotEqual(t, Sha256Hex([]byte("abc")), Sha256Hex([]byte("abd")))
}

func TestDirSizeMB(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), make([]byte, 1024*1024), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.bin"), make([]byte, 512*1024), 0644))

	size, err := DirSizeMB(dir)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, size, 0.01)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "slides.pdf", SanitizeFilename("slides.pdf"))
	assert.Equal(t, "slides.pdf", SanitizeFilename("../../etc/slides.pdf"))
	assert.Equal(t, "week 2.pdf", SanitizeFilename("week 2.pdf"))
	assert.NotContains(t, SanitizeFilename("a\\b:c.pdf"), "\\")
	assert.NotContains(t, SanitizeFilename("bad\nname.pdf"), "\n")
}
