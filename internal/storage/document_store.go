package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"blocknotes/internal/domain"
)

// DocumentStore implements domain.DocumentStore.
type DocumentStore struct {
	db *DB
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const documentColumns = `id, user_id, title, content, markdown_content, parent_id, is_published, published_url, published_slug, custom_domain, seo_title, seo_description, cover_image_url, icon_emoji, position, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	d := &domain.Document{}
	var content string
	if err := row.Scan(&d.ID, &d.UserID, &d.Title, &content, &d.MarkdownContent, &d.ParentID, &d.IsPublished,
		&d.PublishedURL, &d.PublishedSlug, &d.CustomDomain, &d.SEOTitle, &d.SEODescription, &d.CoverImageURL,
		&d.IconEmoji, &d.Position, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Content = json.RawMessage(content)
	return d, nil
}

func contentString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

func (s *DocumentStore) CreateDocument(ctx context.Context, d *domain.Document) error {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := s.db.conn.ExecContext(ctx, s.db.rebind(
		`INSERT INTO documents (`+documentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		d.ID, d.UserID, d.Title, contentString(d.Content), d.MarkdownContent, d.ParentID, d.IsPublished,
		d.PublishedURL, d.PublishedSlug, d.CustomDomain, d.SEOTitle, d.SEODescription, d.CoverImageURL,
		d.IconEmoji, d.Position, d.CreatedAt, d.UpdatedAt,
	)
	return mapError(err)
}

func (s *DocumentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	d, err := scanDocument(s.db.conn.QueryRowContext(ctx, s.db.rebind(
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`), id))
	if err != nil {
		return nil, fmt.Errorf("get document: %w", mapError(err))
	}
	return d, nil
}

func (s *DocumentStore) GetDocumentBySlug(ctx context.Context, slug string) (*domain.Document, error) {
	d, err := scanDocument(s.db.conn.QueryRowContext(ctx, s.db.rebind(
		`SELECT `+documentColumns+` FROM documents WHERE published_slug = ? AND is_published = ?`), slug, true))
	if err != nil {
		return nil, fmt.Errorf("get document by slug: %w", mapError(err))
	}
	return d, nil
}

func (s *DocumentStore) ListDocuments(ctx context.Context, userID string) ([]domain.Document, error) {
	rows, err := s.db.conn.QueryContext(ctx, s.db.rebind(
		`SELECT `+documentColumns+` FROM documents WHERE user_id = ? ORDER BY updated_at DESC`), userID)
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

func (s *DocumentStore) ListDocumentsUpdatedSince(ctx context.Context, t time.Time) ([]domain.Document, error) {
	rows, err := s.db.conn.QueryContext(ctx, s.db.rebind(
		`SELECT `+documentColumns+` FROM documents WHERE updated_at > ? ORDER BY updated_at ASC`), t.UTC())
	if err != nil {
		return nil, err
	}
	return collectDocuments(rows)
}

func collectDocuments(rows *sql.Rows) ([]domain.Document, error) {
	defer rows.Close()
	var docs []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

func (s *DocumentStore) UpdateDocument(ctx context.Context, d *domain.Document) error {
	d.UpdatedAt = time.Now().UTC()
	res, err := s.db.conn.ExecContext(ctx, s.db.rebind(
		`UPDATE documents SET title = ?, content = ?, markdown_content = ?, parent_id = ?, is_published = ?, published_url = ?, published_slug = ?, custom_domain = ?, seo_title = ?, seo_description = ?, cover_image_url = ?, icon_emoji = ?, position = ?, updated_at = ? WHERE id = ?`),
		d.Title, contentString(d.Content), d.MarkdownContent, d.ParentID, d.IsPublished, d.PublishedURL,
		d.PublishedSlug, d.CustomDomain, d.SEOTitle, d.SEODescription, d.CoverImageURL, d.IconEmoji,
		d.Position, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "update document")
}

func (s *DocumentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.conn.ExecContext(ctx, s.db.rebind(`DELETE FROM documents WHERE id = ?`), id)
	return err
}

// requireAffected turns a zero-row update into domain.ErrNotFound.
func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
