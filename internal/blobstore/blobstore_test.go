package blobstore_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blocknotes/internal/blobstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*blobstore.LocalStore, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "media")
	s, err := blobstore.NewLocalStore(root, "http://localhost:8080/")
	require.NoError(t, err)
	return s, root
}

func TestPutOpenDelete(t *testing.T) {
	s, root := newStore(t)
	ctx := context.Background()

	url, err := s.Put(ctx, "user-1/image.png", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/user-1/image.png", url)

	// Put replaces existing content.
	_, err = s.Put(ctx, "user-1/image.png", strings.NewReader("second"))
	require.NoError(t, err)

	rc, err := s.Open("user-1/image.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "user-1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")

	require.NoError(t, s.Delete(ctx, "user-1/image.png"))
	_, err = s.Open("user-1/image.png")
	assert.ErrorIs(t, err, os.ErrNotExist)

	// Deleting a missing blob is not an error.
	assert.NoError(t, s.Delete(ctx, "user-1/image.png"))
}

func TestRejectsEscapingPaths(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for _, p := range []string{"", "/", "../outside.txt", "user/../../outside.txt"} {
		_, err := s.Put(ctx, p, strings.NewReader("x"))
		assert.ErrorIs(t, err, blobstore.ErrInvalidPath, p)
	}
	_, err := s.Open("../etc/passwd")
	assert.ErrorIs(t, err, blobstore.ErrInvalidPath)
}

func TestPutCancelled(t *testing.T) {
	s, _ := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Put(ctx, "user-1/file.txt", strings.NewReader("data"))
	assert.ErrorIs(t, err, context.Canceled)
}
