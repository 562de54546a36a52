package domain

import (
	"context"
	"encoding/json"
	"time"
)

// EditorMode selects how a document is edited.
type EditorMode string

const (
	EditorModeBlocks   EditorMode = "blocks"
	EditorModeMarkdown EditorMode = "markdown"
)

// Document is a user's note. MarkdownContent is the canonical body; Content
// mirrors it as a JSON object for clients that expect structured content.
type Document struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Title           string          `json:"title"`
	Content         json.RawMessage `json:"content"`
	MarkdownContent string          `json:"markdown_content"`
	ParentID        string          `json:"parent_id,omitempty"`
	IsPublished     bool            `json:"is_published"`
	PublishedURL    string          `json:"published_url,omitempty"`
	PublishedSlug   string          `json:"published_slug,omitempty"`
	CustomDomain    string          `json:"custom_domain,omitempty"`
	SEOTitle        string          `json:"seo_title,omitempty"`
	SEODescription  string          `json:"seo_description,omitempty"`
	CoverImageURL   string          `json:"cover_image_url,omitempty"`
	IconEmoji       string          `json:"icon_emoji,omitempty"`
	Position        int             `json:"position"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DocumentVersion is a point-in-time snapshot of a document body.
type DocumentVersion struct {
	ID              string          `json:"id"`
	DocumentID      string          `json:"document_id"`
	Content         json.RawMessage `json:"content"`
	MarkdownContent string          `json:"markdown_content"`
	VersionNumber   int             `json:"version_number"`
	CreatedAt       time.Time       `json:"created_at"`
	CreatedBy       string          `json:"created_by"`
}

// TextContent builds the structured content mirror for a markdown body.
func TextContent(markdown string) json.RawMessage {
	data, _ := json.Marshal(map[string]string{"text": markdown})
	return data
}

// DocumentStore persists documents.
type DocumentStore interface {
	CreateDocument(ctx context.Context, d *Document) error
	GetDocument(ctx context.Context, id string) (*Document, error)
	GetDocumentBySlug(ctx context.Context, slug string) (*Document, error)
	// ListDocuments returns a user's documents, most recently updated first.
	ListDocuments(ctx context.Context, userID string) ([]Document, error)
	// ListDocumentsUpdatedSince returns documents of all users changed after t.
	ListDocumentsUpdatedSince(ctx context.Context, t time.Time) ([]Document, error)
	UpdateDocument(ctx context.Context, d *Document) error
	DeleteDocument(ctx context.Context, id string) error
}

// VersionStore persists document snapshots.
type VersionStore interface {
	// CreateVersion assigns the next version number for the document.
	CreateVersion(ctx context.Context, v *DocumentVersion) error
	GetVersion(ctx context.Context, documentID string, number int) (*DocumentVersion, error)
	LatestVersion(ctx context.Context, documentID string) (*DocumentVersion, error)
	ListVersions(ctx context.Context, documentID string) ([]DocumentVersion, error)
	DeleteVersionsByDocument(ctx context.Context, documentID string) error
}
