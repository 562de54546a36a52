package mongostore

import (
	"encoding/json"
	"time"

	"blocknotes/internal/domain"
)

// Records mirror the domain types with bson tags. JSON blobs are kept as
// strings so they survive the round trip byte for byte.

type userRecord struct {
	ID           string              `bson:"_id"`
	Email        string              `bson:"email"`
	PasswordHash string              `bson:"password_hash"`
	DisplayName  string              `bson:"display_name"`
	AvatarURL    string              `bson:"avatar_url"`
	Settings     domain.UserSettings `bson:"settings"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at"`
}

func fromUser(u *domain.User) userRecord {
	return userRecord(*u)
}

func (r userRecord) toDomain() *domain.User {
	u := domain.User(r)
	return &u
}

type sessionRecord struct {
	Token     string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

type documentRecord struct {
	ID              string    `bson:"_id"`
	UserID          string    `bson:"user_id"`
	Title           string    `bson:"title"`
	Content         string    `bson:"content"`
	MarkdownContent string    `bson:"markdown_content"`
	ParentID        string    `bson:"parent_id"`
	IsPublished     bool      `bson:"is_published"`
	PublishedURL    string    `bson:"published_url"`
	PublishedSlug   string    `bson:"published_slug"`
	CustomDomain    string    `bson:"custom_domain"`
	SEOTitle        string    `bson:"seo_title"`
	SEODescription  string    `bson:"seo_description"`
	CoverImageURL   string    `bson:"cover_image_url"`
	IconEmoji       string    `bson:"icon_emoji"`
	Position        int       `bson:"position"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func jsonString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

func fromDocument(d *domain.Document) documentRecord {
	return documentRecord{
		ID:              d.ID,
		UserID:          d.UserID,
		Title:           d.Title,
		Content:         jsonString(d.Content),
		MarkdownContent: d.MarkdownContent,
		ParentID:        d.ParentID,
		IsPublished:     d.IsPublished,
		PublishedURL:    d.PublishedURL,
		PublishedSlug:   d.PublishedSlug,
		CustomDomain:    d.CustomDomain,
		SEOTitle:        d.SEOTitle,
		SEODescription:  d.SEODescription,
		CoverImageURL:   d.CoverImageURL,
		IconEmoji:       d.IconEmoji,
		Position:        d.Position,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (r documentRecord) toDomain() domain.Document {
	return domain.Document{
		ID:              r.ID,
		UserID:          r.UserID,
		Title:           r.Title,
		Content:         json.RawMessage(r.Content),
		MarkdownContent: r.MarkdownContent,
		ParentID:        r.ParentID,
		IsPublished:     r.IsPublished,
		PublishedURL:    r.PublishedURL,
		PublishedSlug:   r.PublishedSlug,
		CustomDomain:    r.CustomDomain,
		SEOTitle:        r.SEOTitle,
		SEODescription:  r.SEODescription,
		CoverImageURL:   r.CoverImageURL,
		IconEmoji:       r.IconEmoji,
		Position:        r.Position,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type versionRecord struct {
	ID              string    `bson:"_id"`
	DocumentID      string    `bson:"document_id"`
	Content         string    `bson:"content"`
	MarkdownContent string    `bson:"markdown_content"`
	VersionNumber   int       `bson:"version_number"`
	CreatedAt       time.Time `bson:"created_at"`
	CreatedBy       string    `bson:"created_by"`
}

func (r versionRecord) toDomain() domain.DocumentVersion {
	return domain.DocumentVersion{
		ID:              r.ID,
		DocumentID:      r.DocumentID,
		Content:         json.RawMessage(r.Content),
		MarkdownContent: r.MarkdownContent,
		VersionNumber:   r.VersionNumber,
		CreatedAt:       r.CreatedAt,
		CreatedBy:       r.CreatedBy,
	}
}

type websiteRecord struct {
	ID           string    `bson:"_id"`
	UserID       string    `bson:"user_id"`
	Name         string    `bson:"name"`
	Description  string    `bson:"description"`
	CustomDomain string    `bson:"custom_domain"`
	Subdomain    string    `bson:"subdomain"`
	ThemeConfig  string    `bson:"theme_config"`
	IsActive     bool      `bson:"is_active"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (r websiteRecord) toDomain() domain.Website {
	return domain.Website{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		Description:  r.Description,
		CustomDomain: r.CustomDomain,
		Subdomain:    r.Subdomain,
		ThemeConfig:  json.RawMessage(r.ThemeConfig),
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type pageRecord struct {
	ID         string    `bson:"_id"`
	WebsiteID  string    `bson:"website_id"`
	DocumentID string    `bson:"document_id"`
	Slug       string    `bson:"slug"`
	IsHomepage bool      `bson:"is_homepage"`
	Position   int       `bson:"position"`
	CreatedAt  time.Time `bson:"created_at"`
}

type mediaRecord struct {
	ID               string    `bson:"_id"`
	UserID           string    `bson:"user_id"`
	DocumentID       string    `bson:"document_id"`
	Filename         string    `bson:"filename"`
	OriginalFilename string    `bson:"original_filename"`
	FileSize         int64     `bson:"file_size"`
	MimeType         string    `bson:"mime_type"`
	StoragePath      string    `bson:"storage_path"`
	PublicURL        string    `bson:"public_url"`
	AltText          string    `bson:"alt_text"`
	CreatedAt        time.Time `bson:"created_at"`
}
