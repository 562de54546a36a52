package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blocknotes/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// WebsiteStore implements domain.WebsiteStore.
type WebsiteStore struct {
	sites *mongo.Collection
	pages *mongo.Collection
}

func (s *WebsiteStore) CreateWebsite(ctx context.Context, w *domain.Website) error {
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	_, err := s.sites.InsertOne(ctx, websiteRecord{
		ID:           w.ID,
		UserID:       w.UserID,
		Name:         w.Name,
		Description:  w.Description,
		CustomDomain: w.CustomDomain,
		Subdomain:    w.Subdomain,
		ThemeConfig:  jsonString(w.ThemeConfig),
		IsActive:     w.IsActive,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	})
	return mapError(err)
}

func (s *WebsiteStore) GetWebsite(ctx context.Context, id string) (*domain.Website, error) {
	var r websiteRecord
	if err := s.sites.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&r); err != nil {
		return nil, fmt.Errorf("get website: %w", mapError(err))
	}
	w := r.toDomain()
	return &w, nil
}

func (s *WebsiteStore) ListWebsites(ctx context.Context, userID string) ([]domain.Website, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.sites.Find(ctx, bson.D{{Key: "user_id", Value: userID}}, opts)
	if err != nil {
		return nil, err
	}
	var records []websiteRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	sites := make([]domain.Website, 0, len(records))
	for _, r := range records {
		sites = append(sites, r.toDomain())
	}
	return sites, nil
}

func (s *WebsiteStore) CreatePage(ctx context.Context, p *domain.WebsitePage) error {
	p.CreatedAt = time.Now().UTC()
	_, err := s.pages.InsertOne(ctx, pageRecord(*p))
	return mapError(err)
}

func (s *WebsiteStore) ListPages(ctx context.Context, websiteID string) ([]domain.WebsitePage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := s.pages.Find(ctx, bson.D{{Key: "website_id", Value: websiteID}}, opts)
	if err != nil {
		return nil, err
	}
	var records []pageRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	pages := make([]domain.WebsitePage, 0, len(records))
	for _, r := range records {
		pages = append(pages, domain.WebsitePage(r))
	}
	return pages, nil
}

func (s *WebsiteStore) UpdatePage(ctx context.Context, p *domain.WebsitePage) error {
	res, err := s.pages.UpdateOne(ctx, bson.D{{Key: "_id", Value: p.ID}}, bson.D{{Key: "$set", Value: bson.D{
		{Key: "document_id", Value: p.DocumentID},
		{Key: "slug", Value: p.Slug},
		{Key: "is_homepage", Value: p.IsHomepage},
		{Key: "position", Value: p.Position},
	}}})
	if err != nil {
		return mapError(err)
	}
	return requireMatched(res, "update website page")
}

// MediaStore implements domain.MediaStore.
type MediaStore struct {
	col *mongo.Collection
}

func (s *MediaStore) CreateMedia(ctx context.Context, m *domain.MediaFile) error {
	m.CreatedAt = time.Now().UTC()
	_, err := s.col.InsertOne(ctx, mediaRecord(*m))
	return mapError(err)
}

func (s *MediaStore) GetMedia(ctx context.Context, id string) (*domain.MediaFile, error) {
	var r mediaRecord
	if err := s.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&r); err != nil {
		return nil, fmt.Errorf("get media: %w", mapError(err))
	}
	m := domain.MediaFile(r)
	return &m, nil
}

func (s *MediaStore) ListMedia(ctx context.Context, userID string) ([]domain.MediaFile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.D{{Key: "user_id", Value: userID}}, opts)
	if err != nil {
		return nil, err
	}
	var records []mediaRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	files := make([]domain.MediaFile, 0, len(records))
	for _, r := range records {
		files = append(files, domain.MediaFile(r))
	}
	return files, nil
}

func (s *MediaStore) DeleteMedia(ctx context.Context, id string) error {
	_, err := s.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	return err
}
