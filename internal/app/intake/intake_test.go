package intake

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"speechbench/internal/app/engine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestSaveWritesScratchFile(t *testing.T) {
	store := newTestStore(t)

	scratch, err := store.Save("clip.wav", strings.NewReader("fake audio bytes"))
	require.NoError(t, err)
	defer scratch.Cleanup(zap.NewNop())

	assert.Equal(t, "clip.wav", scratch.OriginalName)
	assert.Equal(t, int64(len("fake audio bytes")), scratch.Size)
	assert.Equal(t, ".wav", filepath.Ext(scratch.Path))

	content, err := os.ReadFile(scratch.Path)
	require.NoError(t, err)
	assert.Equal(t, "fake audio bytes", string(content))
}

func TestSaveConcurrentIdenticalNames(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save("same.wav", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := store.Save("same.wav", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
}

func TestSaveRejectsUnsupportedFormat(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save("document.pdf", strings.NewReader("not audio"))
	require.Error(t, err)
	assert.Equal(t, engine.CodeUnsupportedFormat, engine.CodeOf(err))
}

func TestSaveRejectsOversizedWithoutRetention(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, zap.NewNop())
	require.NoError(t, err)
	store.maxBytes = 16

	_, err = store.Save("big.wav", strings.NewReader(strings.Repeat("x", 17)))
	require.Error(t, err)
	assert.Equal(t, engine.CodeOversized, engine.CodeOf(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "oversized upload must not leave a scratch file")
}

func TestSaveRejectsEmptyUpload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, zap.NewNop())
	require.NoError(t, err)

	_, err = store.Save("empty.wav", strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, engine.CodeInputMissing, engine.CodeOf(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCleanupRemovesFileAndTolerated(t *testing.T) {
	store := newTestStore(t)

	scratch, err := store.Save("clip.mp3", strings.NewReader("bytes"))
	require.NoError(t, err)

	scratch.Cleanup(zap.NewNop())
	_, statErr := os.Stat(scratch.Path)
	assert.True(t, os.IsNotExist(statErr))

	// Double cleanup and nil receiver are both safe.
	scratch.Cleanup(zap.NewNop())
	var nilFile *ScratchFile
	nilFile.Cleanup(zap.NewNop())
}

func TestAllowedExtension(t *testing.T) {
	assert.True(t, AllowedExtension("a.WAV"))
	assert.True(t, AllowedExtension("b.mp3"))
	assert.False(t, AllowedExtension("c.txt"))
	assert.False(t, AllowedExtension("noext"))
}
