package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Website groups published documents under one domain.
type Website struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	CustomDomain string          `json:"custom_domain,omitempty"`
	Subdomain    string          `json:"subdomain,omitempty"`
	ThemeConfig  json.RawMessage `json:"theme_config"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// WebsitePage mounts a document on a website at a slug.
type WebsitePage struct {
	ID         string    `json:"id"`
	WebsiteID  string    `json:"website_id"`
	DocumentID string    `json:"document_id"`
	Slug       string    `json:"slug"`
	IsHomepage bool      `json:"is_homepage"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

type WebsiteStore interface {
	CreateWebsite(ctx context.Context, w *Website) error
	GetWebsite(ctx context.Context, id string) (*Website, error)
	// ListWebsites returns a user's websites, newest first.
	ListWebsites(ctx context.Context, userID string) ([]Website, error)

	CreatePage(ctx context.Context, p *WebsitePage) error
	ListPages(ctx context.Context, websiteID string) ([]WebsitePage, error)
	UpdatePage(ctx context.Context, p *WebsitePage) error
}
