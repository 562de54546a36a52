package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"blocknotes/internal/domain"
)

// WebsiteStore implements domain.WebsiteStore.
type WebsiteStore struct {
	db *DB
}

func NewWebsiteStore(db *DB) *WebsiteStore {
	return &WebsiteStore{db: db}
}

const websiteColumns = `id, user_id, name, description, custom_domain, subdomain, theme_config, is_active, created_at, updated_at`

func scanWebsite(row rowScanner) (*domain.Website, error) {
	w := &domain.Website{}
	var theme string
	if err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.Description, &w.CustomDomain, &w.Subdomain, &theme,
		&w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.ThemeConfig = json.RawMessage(theme)
	return w, nil
}

func (s *WebsiteStore) CreateWebsite(ctx context.Context, w *domain.Website) error {
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	_, err := s.db.conn.ExecContext(ctx, s.db.rebind(
		`INSERT INTO websites (`+websiteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		w.ID, w.UserID, w.Name, w.Description, w.CustomDomain, w.Subdomain, contentString(w.ThemeConfig),
		w.IsActive, w.CreatedAt, w.UpdatedAt,
	)
	return mapError(err)
}

func (s *WebsiteStore) GetWebsite(ctx context.Context, id string) (*domain.Website, error) {
	w, err := scanWebsite(s.db.conn.QueryRowContext(ctx, s.db.rebind(
		`SELECT `+websiteColumns+` FROM websites WHERE id = ?`), id))
	if err != nil {
		return nil, fmt.Errorf("get website: %w", mapError(err))
	}
	return w, nil
}

func (s *WebsiteStore) ListWebsites(ctx context.Context, userID string) ([]domain.Website, error) {
	rows, err := s.db.conn.QueryContext(ctx, s.db.rebind(
		`SELECT `+websiteColumns+` FROM websites WHERE user_id = ? ORDER BY created_at DESC`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []domain.Website
	for rows.Next() {
		w, err := scanWebsite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, *w)
	}
	return sites, rows.Err()
}

func (s *WebsiteStore) CreatePage(ctx context.Context, p *domain.WebsitePage) error {
	p.CreatedAt = time.Now().UTC()
	_, err := s.db.conn.ExecContext(ctx, s.db.rebind(
		`INSERT INTO website_pages (id, website_id, document_id, slug, is_homepage, position, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.WebsiteID, p.DocumentID, p.Slug, p.IsHomepage, p.Position, p.CreatedAt,
	)
	return mapError(err)
}

func (s *WebsiteStore) ListPages(ctx context.Context, websiteID string) ([]domain.WebsitePage, error) {
	rows, err := s.db.conn.QueryContext(ctx, s.db.rebind(
		`SELECT id, website_id, document_id, slug, is_homepage, position, created_at FROM website_pages WHERE website_id = ? ORDER BY position ASC, created_at ASC`),
		websiteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []domain.WebsitePage
	for rows.Next() {
		var p domain.WebsitePage
		if err := rows.Scan(&p.ID, &p.WebsiteID, &p.DocumentID, &p.Slug, &p.IsHomepage, &p.Position, &p.CreatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (s *WebsiteStore) UpdatePage(ctx context.Context, p *domain.WebsitePage) error {
	res, err := s.db.conn.ExecContext(ctx, s.db.rebind(
		`UPDATE website_pages SET document_id = ?, slug = ?, is_homepage = ?, position = ? WHERE id = ?`),
		p.DocumentID, p.Slug, p.IsHomepage, p.Position, p.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "update website page")
}
