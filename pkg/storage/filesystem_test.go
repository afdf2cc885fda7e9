package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) *LocalStorage {
	t.Helper()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := newStorage(t)

	_, err := store.Save("photo.png", []byte("png-bytes"))
	require.NoError(t, err)

	file, err := store.Open("photo.png")
	require.NoError(t, err)
	defer file.Close()

	content, err := os.ReadFile(file.Name())
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), content)
}

func TestSaveStream(t *testing.T) {
	store := newStorage(t)

	_, err := store.SaveStream("doc.pdf", bytes.NewReader([]byte("pdf-bytes")))
	require.NoError(t, err)

	content, err := os.ReadFile(store.Path("doc.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf-bytes"), content)
}

func TestDeleteMissingFileIsIdempotent(t *testing.T) {
	store := newStorage(t)
	assert.NoError(t, store.Delete("never-saved.png"))
}

func TestResolveConfinesToBaseDir(t *testing.T) {
	store := newStorage(t)
	base := store.BaseDir()

	for _, name := range []string{
		"../../etc/passwd",
		"..",
		"/etc/passwd",
		"a/../../../b.png",
		"nested/../photo.png",
	} {
		path := store.Path(name)
		rel, err := filepath.Rel(base, path)
		require.NoError(t, err, name)
		assert.False(t, strings.HasPrefix(rel, ".."), "escaped base dir: %s -> %s", name, path)
	}
}

func TestTraversalNameWritesInsideBaseDir(t *testing.T) {
	store := newStorage(t)

	_, err := store.Save("../outside.txt", []byte("x"))
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(store.BaseDir(), "outside.txt"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(filepath.Dir(store.BaseDir()), "outside.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
