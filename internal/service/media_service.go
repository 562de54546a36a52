package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"blocknotes/internal/blobstore"
	"blocknotes/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxUploadSize caps a single media upload.
const MaxUploadSize = 10 << 20

// MediaService stores uploaded files and their metadata.
type MediaService struct {
	media domain.MediaStore
	blobs blobstore.Store
	log   zerolog.Logger
}

func NewMediaService(media domain.MediaStore, blobs blobstore.Store, log zerolog.Logger) *MediaService {
	return &MediaService{
		media: media,
		blobs: blobs,
		log:   log.With().Str("component", "media").Logger(),
	}
}

type UploadInput struct {
	DocumentID string
	Filename   string
	MimeType   string
	AltText    string
	Body       io.Reader
}

// Upload writes the body to <userID>/<uuid><ext> and records it.
func (s *MediaService) Upload(ctx context.Context, userID string, in UploadInput) (*domain.MediaFile, error) {
	original := filepath.Base(strings.TrimSpace(in.Filename))
	if err := validation.Validate(original, validation.Required, validation.NotIn(".", "/")); err != nil {
		return nil, validation.Errors{"filename": err}
	}
	id := uuid.NewString()
	name := id + strings.ToLower(filepath.Ext(original))
	storagePath := path.Join(userID, name)

	counter := &countingReader{r: io.LimitReader(in.Body, MaxUploadSize+1)}
	url, err := s.blobs.Put(ctx, storagePath, counter)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if counter.n > MaxUploadSize {
		s.blobs.Delete(ctx, storagePath)
		return nil, validation.Errors{"file": validation.NewError("media.too_large", "file exceeds the upload limit")}
	}

	m := &domain.MediaFile{
		ID:               id,
		UserID:           userID,
		DocumentID:       in.DocumentID,
		Filename:         name,
		OriginalFilename: original,
		FileSize:         counter.n,
		MimeType:         in.MimeType,
		StoragePath:      storagePath,
		PublicURL:        url,
		AltText:          in.AltText,
	}
	if err := s.media.CreateMedia(ctx, m); err != nil {
		s.blobs.Delete(ctx, storagePath)
		return nil, fmt.Errorf("record upload: %w", err)
	}
	s.log.Info().Str("media_id", id).Int64("size", counter.n).Msg("file uploaded")
	return m, nil
}

func (s *MediaService) ListMedia(ctx context.Context, userID string) ([]domain.MediaFile, error) {
	files, err := s.media.ListMedia(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	if files == nil {
		files = []domain.MediaFile{}
	}
	return files, nil
}

// DeleteMedia removes a file owned by userID.
func (s *MediaService) DeleteMedia(ctx context.Context, userID, id string) error {
	m, err := s.media.GetMedia(ctx, id)
	if err != nil {
		return err
	}
	if m.UserID != userID {
		return fmt.Errorf("delete media: %w", domain.ErrNotFound)
	}
	if err := s.blobs.Delete(ctx, m.StoragePath); err != nil {
		return err
	}
	return s.media.DeleteMedia(ctx, id)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
