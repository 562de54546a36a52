package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"blocknotes/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImportService(env *testEnv, owner string) *service.ImportService {
	return service.NewImportService(env.stores.Users, env.docs, env.emitter, zerolog.Nop(), owner)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestImport_FileCreatesThenUpdates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "owner@example.com")
	imp := newImportService(env, "Owner@example.com")

	path := filepath.Join(t.TempDir(), "meeting-notes.md")
	writeFile(t, path, "# Agenda\n- item")

	res, err := imp.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "meeting-notes", res.Document.Title)
	assert.Equal(t, "# Agenda\n- item", res.Document.MarkdownContent)

	writeFile(t, path, "# Agenda\n- item\n- another")
	res, err = imp.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.False(t, res.Created)

	docs, err := env.docs.ListDocuments(ctx, userID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "# Agenda\n- item\n- another", docs[0].MarkdownContent)
	assert.Contains(t, env.emitter.Names(), service.EventDocumentImported)
}

func TestImport_FrontMatterPublishes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signUp(t, "owner@example.com")
	imp := newImportService(env, "owner@example.com")

	path := filepath.Join(t.TempDir(), "post.md")
	writeFile(t, path, "---\ntitle: Launch Day\nseo_description: Big news\npublish: true\n---\n\nWe shipped.\n")

	res, err := imp.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "Launch Day", res.Document.Title)
	assert.True(t, res.Document.IsPublished)
	assert.Equal(t, "launch-day", res.Document.PublishedSlug)
	assert.Equal(t, "Big news", res.Document.SEODescription)
	assert.Equal(t, "We shipped.\n", res.Document.MarkdownContent)
}

func TestImport_UnknownOwner(t *testing.T) {
	env := newTestEnv(t)
	imp := newImportService(env, "ghost@example.com")

	path := filepath.Join(t.TempDir(), "x.md")
	writeFile(t, path, "x")
	_, err := imp.ImportFile(context.Background(), path)
	assert.Error(t, err)
}

func TestImport_WatchPicksUpNewFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "owner@example.com")
	imp := newImportService(env, "owner@example.com")

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "existing.md"), "already here")
	require.NoError(t, imp.Watch(ctx, dir))
	t.Cleanup(imp.Stop)

	docs, err := env.docs.ListDocuments(ctx, userID)
	require.NoError(t, err)
	require.Len(t, docs, 1, "existing files are imported on start")

	writeFile(t, filepath.Join(dir, "fresh.md"), "new file")
	writeFile(t, filepath.Join(dir, "ignored.txt"), "not markdown")

	assert.Eventually(t, func() bool {
		docs, err := env.docs.ListDocuments(ctx, userID)
		return err == nil && len(docs) == 2
	}, 5*time.Second, 50*time.Millisecond)

	imp.Stop()
	imp.Stop()
}
