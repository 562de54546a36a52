package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"blocknotes/internal/domain"
)

// VersionStore implements domain.VersionStore.
type VersionStore struct {
	db *DB
}

func NewVersionStore(db *DB) *VersionStore {
	return &VersionStore{db: db}
}

const versionColumns = `id, document_id, content, markdown_content, version_number, created_at, created_by`

func scanVersion(row rowScanner) (*domain.DocumentVersion, error) {
	v := &domain.DocumentVersion{}
	var content string
	if err := row.Scan(&v.ID, &v.DocumentID, &content, &v.MarkdownContent, &v.VersionNumber, &v.CreatedAt, &v.CreatedBy); err != nil {
		return nil, err
	}
	v.Content = json.RawMessage(content)
	return v, nil
}

// CreateVersion allocates MAX(version_number)+1 inside a transaction so
// concurrent snapshots of one document cannot share a number.
func (s *VersionStore) CreateVersion(ctx context.Context, v *domain.DocumentVersion) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx, s.db.rebind(
		`SELECT COALESCE(MAX(version_number), 0) + 1 FROM document_versions WHERE document_id = ?`), v.DocumentID,
	).Scan(&next); err != nil {
		return fmt.Errorf("next version number: %w", err)
	}

	v.VersionNumber = next
	v.CreatedAt = time.Now().UTC()
	if _, err := tx.ExecContext(ctx, s.db.rebind(
		`INSERT INTO document_versions (`+versionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		v.ID, v.DocumentID, contentString(v.Content), v.MarkdownContent, v.VersionNumber, v.CreatedAt, v.CreatedBy,
	); err != nil {
		return fmt.Errorf("insert version: %w", mapError(err))
	}
	return tx.Commit()
}

func (s *VersionStore) GetVersion(ctx context.Context, documentID string, number int) (*domain.DocumentVersion, error) {
	v, err := scanVersion(s.db.conn.QueryRowContext(ctx, s.db.rebind(
		`SELECT `+versionColumns+` FROM document_versions WHERE document_id = ? AND version_number = ?`), documentID, number))
	if err != nil {
		return nil, fmt.Errorf("get version: %w", mapError(err))
	}
	return v, nil
}

func (s *VersionStore) LatestVersion(ctx context.Context, documentID string) (*domain.DocumentVersion, error) {
	v, err := scanVersion(s.db.conn.QueryRowContext(ctx, s.db.rebind(
		`SELECT `+versionColumns+` FROM document_versions WHERE document_id = ? ORDER BY version_number DESC LIMIT 1`), documentID))
	if err != nil {
		return nil, fmt.Errorf("latest version: %w", mapError(err))
	}
	return v, nil
}

func (s *VersionStore) ListVersions(ctx context.Context, documentID string) ([]domain.DocumentVersion, error) {
	rows, err := s.db.conn.QueryContext(ctx, s.db.rebind(
		`SELECT `+versionColumns+` FROM document_versions WHERE document_id = ? ORDER BY version_number DESC`), documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []domain.DocumentVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}

func (s *VersionStore) DeleteVersionsByDocument(ctx context.Context, documentID string) error {
	_, err := s.db.conn.ExecContext(ctx, s.db.rebind(`DELETE FROM document_versions WHERE document_id = ?`), documentID)
	return err
}
