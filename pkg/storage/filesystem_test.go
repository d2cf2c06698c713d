package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveStreamReturnsPublicPath(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "images/")
	require.NoError(t, err)

	public, err := store.SaveStream("car.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/images/car.png", public)

	raw, err := os.ReadFile(filepath.Join(dir, "car.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(raw))
}

func TestSaveStreamStaysInsideBaseDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(filepath.Join(dir, "uploads"), "/images")
	require.NoError(t, err)

	public, err := store.SaveStream("../../escape.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/images/escape.jpg", public)
	_, err = os.Stat(filepath.Join(dir, "uploads", "escape.jpg"))
	assert.NoError(t, err)
}

func TestDeleteByPublicPath(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "/images")
	require.NoError(t, err)

	public, err := store.SaveStream("before.webp", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(public))
	_, err = os.Stat(filepath.Join(dir, "before.webp"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete("/images/already-gone.webp"))
}
