package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"blocknotes/internal/blobstore"
	"blocknotes/internal/domain"
	"blocknotes/internal/service"
	"blocknotes/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	stores   domain.Stores
	emitter  *service.MockEmitter
	auth     *service.AuthService
	docs     *service.DocumentService
	editor   *service.EditorService
	websites *service.WebsiteService
	media    *service.MediaService
	blobs    *blobstore.LocalStore
	dir      string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.Open(storage.Config{
		Driver: storage.DialectSQLite,
		Path:   filepath.Join(dir, "notes.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	blobs, err := blobstore.NewLocalStore(filepath.Join(dir, "media"), "http://localhost:8080")
	require.NoError(t, err)

	stores := db.Stores()
	emitter := &service.MockEmitter{}
	log := zerolog.Nop()
	docs := service.NewDocumentService(stores.Documents, stores.Versions, emitter, log, "http://localhost:8080/")
	return &testEnv{
		stores:   stores,
		emitter:  emitter,
		auth:     service.NewAuthService(stores.Users, stores.Sessions, emitter, log, time.Hour),
		docs:     docs,
		editor:   service.NewEditorService(docs, log),
		websites: service.NewWebsiteService(stores.Websites, docs),
		media:    service.NewMediaService(stores.Media, blobs, log),
		blobs:    blobs,
		dir:      dir,
	}
}

// signUp creates an account and returns its id.
func (e *testEnv) signUp(t *testing.T, email string) string {
	t.Helper()
	_, u, err := e.auth.SignUp(context.Background(), email, "secret-password", "")
	require.NoError(t, err)
	return u.ID
}
