package service_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"blocknotes/internal/domain"
	"blocknotes/internal/service"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedia_Upload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")

	m, err := env.media.Upload(ctx, userID, service.UploadInput{
		Filename: "Photo.PNG",
		MimeType: "image/png",
		AltText:  "a photo",
		Body:     strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Photo.PNG", m.OriginalFilename)
	assert.Equal(t, int64(len("png-bytes")), m.FileSize)
	assert.True(t, strings.HasPrefix(m.StoragePath, userID+"/"))
	assert.True(t, strings.HasSuffix(m.StoragePath, ".png"))
	assert.Equal(t, "http://localhost:8080/media/"+m.StoragePath, m.PublicURL)

	rc, err := env.blobs.Open(m.StoragePath)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png-bytes", string(data))

	files, err := env.media.ListMedia(ctx, userID)
	require.NoError(t, err)
	require.Len(t, files, 1)

	other := env.signUp(t, "bob@example.com")
	assert.ErrorIs(t, env.media.DeleteMedia(ctx, other, m.ID), domain.ErrNotFound)
	require.NoError(t, env.media.DeleteMedia(ctx, userID, m.ID))
	_, err = env.blobs.Open(m.StoragePath)
	assert.Error(t, err)
}

func TestMedia_UploadRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")

	_, err := env.media.Upload(ctx, userID, service.UploadInput{Body: strings.NewReader("x")})
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "filename")

	big := bytes.NewReader(make([]byte, service.MaxUploadSize+1))
	_, err = env.media.Upload(ctx, userID, service.UploadInput{Filename: "big.bin", Body: big})
	errs = nil
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "file")

	files, err := env.media.ListMedia(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, files)
}
