package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiskStorage(t *testing.T) *DiskStorage {
	t.Helper()
	s, err := NewDiskStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestDiskStorage_SaveOpenRoundtrip(t *testing.T) {
	s := newDiskStorage(t)
	content := []byte("image bytes")

	err := s.Save(context.Background(), "abc.jpg", bytes.NewReader(content), int64(len(content)), "image/jpeg")
	require.NoError(t, err)

	rc, err := s.Open(context.Background(), "abc.jpg")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestDiskStorage_OpenMissing(t *testing.T) {
	s := newDiskStorage(t)

	_, err := s.Open(context.Background(), "nope.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiskStorage_RemoveThenOpen(t *testing.T) {
	s := newDiskStorage(t)
	require.NoError(t, s.Save(context.Background(), "abc.jpg", bytes.NewReader([]byte("x")), 1, "image/jpeg"))

	require.NoError(t, s.Remove(context.Background(), "abc.jpg"))

	_, err := s.Open(context.Background(), "abc.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiskStorage_RemoveMissingIsNotAnError(t *testing.T) {
	s := newDiskStorage(t)
	assert.NoError(t, s.Remove(context.Background(), "never-existed.jpg"))
}

func TestDiskStorage_ObjectNamesCannotEscapeBaseDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStorage(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	err = s.Save(context.Background(), "../escape.jpg", bytes.NewReader([]byte("x")), 1, "image/jpeg")
	require.NoError(t, err)

	// The file lands inside the base directory under its base name
	_, statErr := os.Stat(filepath.Join(dir, "escape.jpg"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(dir, "uploads", "escape.jpg"))
	assert.NoError(t, statErr)
}

func TestNewDiskStorage_CreatesBaseDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	_, err := NewDiskStorage(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
