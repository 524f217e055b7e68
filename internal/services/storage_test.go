package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionUsesTimestamp(t *testing.T) {
	dir := t.TempDir()
	store := &storageService{
		outputDir: dir,
		now:       func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) },
	}

	session, err := store.NewSession()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "session_20240309_140507"), session)
	assert.DirExists(t, session)
}

func TestWriteJSONIsIndentedAndUnescaped(t *testing.T) {
	store := NewStorageService(t.TempDir(), t.TempDir())
	dir := filepath.Join(t.TempDir(), "nested", "run")

	path, err := store.WriteJSON(dir, "out.json", map[string]string{"q": "C++ & <Go>"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"q\": \"C++ & <Go>\"\n}\n", string(data))

	// full overwrite
	_, err = store.WriteJSON(dir, "out.json", map[string]int{"n": 1})
	require.NoError(t, err)
	var got map[string]int
	require.NoError(t, store.ReadJSON(path, &got))
	assert.Equal(t, map[string]int{"n": 1}, got)
}

func TestReadJSONMissingFile(t *testing.T) {
	var v map[string]interface{}
	err := ReadJSONFile(filepath.Join(t.TempDir(), "absent.json"), &v)

	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestEnsureUploadDir(t *testing.T) {
	uploads := filepath.Join(t.TempDir(), "uploads")
	store := NewStorageService(t.TempDir(), uploads)

	require.NoError(t, store.EnsureUploadDir())
	assert.DirExists(t, uploads)
}
