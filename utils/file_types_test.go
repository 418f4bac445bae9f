package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeExtensions(t *testing.T) {
	normalized := NormalizeExtensions([]string{"PY", ".py", " ts ", ".", ""})

	assert.Equal(t, map[string]struct{}{".py": {}, ".ts": {}}, normalized)
	assert.Nil(t, NormalizeExtensions(nil))
	assert.Nil(t, NormalizeExtensions([]string{" ", "."}))
}

func TestFileExtension(t *testing.T) {
	assert.Equal(t, ".go", FileExtension("main.go"))
	assert.Equal(t, ".md", FileExtension("README.MD"))
	assert.Equal(t, "", FileExtension("Makefile"))
	assert.Equal(t, ".gz", FileExtension("archive.tar.gz"))
}

func TestIsKnownBinaryExtension(t *testing.T) {
	assert.True(t, IsKnownBinaryExtension(".pyc"))
	assert.True(t, IsKnownBinaryExtension(".png"))
	assert.False(t, IsKnownBinaryExtension(".py"))
	assert.False(t, IsKnownBinaryExtension(""))
}
