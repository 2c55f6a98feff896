package httpserver

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{ after io.Reader }

func (f *failingReader) Read(p []byte) (int, error) {
	if n, err := f.after.Read(p); n > 0 || err == nil {
		return n, nil
	}
	return 0, errors.New("connection reset")
}

func TestSaveUploadWritesFile(t *testing.T) {
	dir := t.TempDir()
	name, err := saveUpload(dir, ".png", strings.NewReader("image bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(data))
}

func TestSaveUploadRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	_, err := saveUpload(dir, ".png", &failingReader{after: strings.NewReader("partial")})
	assert.ErrorContains(t, err, "connection reset")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
