package service

import (
	"context"
	"fmt"
	"strings"

	"blocknotes/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

const DefaultWebsiteName = "Untitled Website"

// WebsiteService groups documents into websites.
type WebsiteService struct {
	sites domain.WebsiteStore
	docs  *DocumentService
}

func NewWebsiteService(sites domain.WebsiteStore, docs *DocumentService) *WebsiteService {
	return &WebsiteService{sites: sites, docs: docs}
}

func (s *WebsiteService) ListWebsites(ctx context.Context, userID string) ([]domain.Website, error) {
	sites, err := s.sites.ListWebsites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list websites: %w", err)
	}
	if sites == nil {
		sites = []domain.Website{}
	}
	return sites, nil
}

type CreateWebsiteInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Subdomain   string `json:"subdomain"`
}

func (s *WebsiteService) CreateWebsite(ctx context.Context, userID string, in CreateWebsiteInput) (*domain.Website, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = DefaultWebsiteName
	}
	w := &domain.Website{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: in.Description,
		ThemeConfig: []byte("{}"),
		IsActive:    true,
	}
	if in.Subdomain != "" {
		sub, err := slug.Normalize(in.Subdomain)
		if err != nil || sub == "" {
			return nil, validation.Errors{"subdomain": validation.NewError("website.subdomain_invalid", "subdomain is not valid")}
		}
		w.Subdomain = sub
	}
	if err := s.sites.CreateWebsite(ctx, w); err != nil {
		return nil, fmt.Errorf("create website: %w", err)
	}
	return w, nil
}

// GetWebsite returns a website owned by userID.
func (s *WebsiteService) GetWebsite(ctx context.Context, userID, id string) (*domain.Website, error) {
	w, err := s.sites.GetWebsite(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, fmt.Errorf("get website: %w", domain.ErrNotFound)
	}
	return w, nil
}

type AddPageInput struct {
	DocumentID string `json:"document_id"`
	Slug       string `json:"slug"`
	IsHomepage bool   `json:"is_homepage"`
	Position   int    `json:"position"`
}

// AddPage mounts one of the user's documents on a website. The slug defaults
// to the document title. Marking a page as homepage demotes the previous one.
func (s *WebsiteService) AddPage(ctx context.Context, userID, websiteID string, in AddPageInput) (*domain.WebsitePage, error) {
	if err := validation.Validate(in.DocumentID, validation.Required); err != nil {
		return nil, validation.Errors{"document_id": err}
	}
	if _, err := s.GetWebsite(ctx, userID, websiteID); err != nil {
		return nil, err
	}
	doc, err := s.docs.GetDocument(ctx, userID, in.DocumentID)
	if err != nil {
		return nil, err
	}

	raw := in.Slug
	if strings.TrimSpace(raw) == "" {
		raw = doc.Title
	}
	pageSlug, err := slug.Normalize(raw)
	if err != nil || pageSlug == "" {
		return nil, validation.Errors{"slug": validation.NewError("website.slug_invalid", "slug is not valid")}
	}

	p := &domain.WebsitePage{
		ID:         uuid.NewString(),
		WebsiteID:  websiteID,
		DocumentID: doc.ID,
		Slug:       pageSlug,
		IsHomepage: in.IsHomepage,
		Position:   in.Position,
	}
	if err := s.sites.CreatePage(ctx, p); err != nil {
		return nil, fmt.Errorf("add page: %w", err)
	}

	// The previous homepage is only demoted once the new page exists.
	if in.IsHomepage {
		pages, err := s.sites.ListPages(ctx, websiteID)
		if err != nil {
			return nil, fmt.Errorf("list pages: %w", err)
		}
		for i := range pages {
			if !pages[i].IsHomepage || pages[i].ID == p.ID {
				continue
			}
			pages[i].IsHomepage = false
			if err := s.sites.UpdatePage(ctx, &pages[i]); err != nil {
				return nil, fmt.Errorf("demote homepage: %w", err)
			}
		}
	}
	return p, nil
}

func (s *WebsiteService) ListPages(ctx context.Context, userID, websiteID string) ([]domain.WebsitePage, error) {
	if _, err := s.GetWebsite(ctx, userID, websiteID); err != nil {
		return nil, err
	}
	pages, err := s.sites.ListPages(ctx, websiteID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if pages == nil {
		pages = []domain.WebsitePage{}
	}
	return pages, nil
}
