package storage

import (
	"context"
	"fmt"
	"time"

	"blocknotes/internal/domain"
)

// MediaStore implements domain.MediaStore.
type MediaStore struct {
	db *DB
}

func NewMediaStore(db *DB) *MediaStore {
	return &MediaStore{db: db}
}

const mediaColumns = `id, user_id, document_id, filename, original_filename, file_size, mime_type, storage_path, public_url, alt_text, created_at`

func scanMedia(row rowScanner) (*domain.MediaFile, error) {
	m := &domain.MediaFile{}
	if err := row.Scan(&m.ID, &m.UserID, &m.DocumentID, &m.Filename, &m.OriginalFilename, &m.FileSize,
		&m.MimeType, &m.StoragePath, &m.PublicURL, &m.AltText, &m.CreatedAt); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MediaStore) CreateMedia(ctx context.Context, m *domain.MediaFile) error {
	m.CreatedAt = time.Now().UTC()
	_, err := s.db.conn.ExecContext(ctx, s.db.rebind(
		`INSERT INTO media_files (`+mediaColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		m.ID, m.UserID, m.DocumentID, m.Filename, m.OriginalFilename, m.FileSize, m.MimeType,
		m.StoragePath, m.PublicURL, m.AltText, m.CreatedAt,
	)
	return mapError(err)
}

func (s *MediaStore) GetMedia(ctx context.Context, id string) (*domain.MediaFile, error) {
	m, err := scanMedia(s.db.conn.QueryRowContext(ctx, s.db.rebind(
		`SELECT `+mediaColumns+` FROM media_files WHERE id = ?`), id))
	if err != nil {
		return nil, fmt.Errorf("get media: %w", mapError(err))
	}
	return m, nil
}

func (s *MediaStore) ListMedia(ctx context.Context, userID string) ([]domain.MediaFile, error) {
	rows, err := s.db.conn.QueryContext(ctx, s.db.rebind(
		`SELECT `+mediaColumns+` FROM media_files WHERE user_id = ? ORDER BY created_at DESC`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []domain.MediaFile
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *m)
	}
	return files, rows.Err()
}

func (s *MediaStore) DeleteMedia(ctx context.Context, id string) error {
	_, err := s.db.conn.ExecContext(ctx, s.db.rebind(`DELETE FROM media_files WHERE id = ?`), id)
	return err
}
