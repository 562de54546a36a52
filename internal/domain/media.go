package domain

import (
	"context"
	"time"
)

// MediaFile records an uploaded file and where it can be fetched.
type MediaFile struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	DocumentID       string    `json:"document_id,omitempty"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type,omitempty"`
	StoragePath      string    `json:"storage_path"`
	PublicURL        string    `json:"public_url"`
	AltText          string    `json:"alt_text,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type MediaStore interface {
	CreateMedia(ctx context.Context, m *MediaFile) error
	GetMedia(ctx context.Context, id string) (*MediaFile, error)
	ListMedia(ctx context.Context, userID string) ([]MediaFile, error)
	DeleteMedia(ctx context.Context, id string) error
}
