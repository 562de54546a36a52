package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"blocknotes/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultDocumentTitle is used when a document is created without a title.
const DefaultDocumentTitle = "Untitled Document"

// DocumentService owns document CRUD, publishing and version history.
type DocumentService struct {
	docs          domain.DocumentStore
	versions      domain.VersionStore
	emitter       EventEmitter
	log           zerolog.Logger
	publicBaseURL string
}

func NewDocumentService(docs domain.DocumentStore, versions domain.VersionStore, emitter EventEmitter, log zerolog.Logger, publicBaseURL string) *DocumentService {
	return &DocumentService{
		docs:          docs,
		versions:      versions,
		emitter:       emitter,
		log:           log.With().Str("component", "documents").Logger(),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// ListDocuments returns the user's documents, most recently updated first.
func (s *DocumentService) ListDocuments(ctx context.Context, userID string) ([]domain.Document, error) {
	docs, err := s.docs.ListDocuments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

// SearchDocuments filters the user's documents by a case-insensitive title
// substring. An empty query returns everything.
func (s *DocumentService) SearchDocuments(ctx context.Context, userID, query string) ([]domain.Document, error) {
	docs, err := s.ListDocuments(ctx, userID)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return docs, nil
	}
	out := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		if strings.Contains(strings.ToLower(d.Title), q) {
			out = append(out, d)
		}
	}
	return out, nil
}

// GetDocument loads a document owned by userID. Other users' documents are
// reported as not found.
func (s *DocumentService) GetDocument(ctx context.Context, userID, id string) (*domain.Document, error) {
	d, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, fmt.Errorf("get document: %w", domain.ErrNotFound)
	}
	return d, nil
}

type CreateDocumentInput struct {
	Title           string `json:"title"`
	MarkdownContent string `json:"markdown_content"`
	ParentID        string `json:"parent_id,omitempty"`
	IconEmoji       string `json:"icon_emoji,omitempty"`
}

func (in CreateDocumentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Length(0, 500)),
	)
}

// CreateDocument stores a new document for userID.
func (s *DocumentService) CreateDocument(ctx context.Context, userID string, in CreateDocumentInput) (*domain.Document, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultDocumentTitle
	}
	content := domain.TextContent(in.MarkdownContent)
	if in.MarkdownContent == "" {
		content = []byte("{}")
	}
	d := &domain.Document{
		ID:              uuid.NewString(),
		UserID:          userID,
		Title:           title,
		Content:         content,
		MarkdownContent: in.MarkdownContent,
		ParentID:        in.ParentID,
		IconEmoji:       in.IconEmoji,
	}
	if err := s.docs.CreateDocument(ctx, d); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.log.Debug().Str("document_id", d.ID).Msg("document created")
	s.emitter.Emit(ctx, EventDocumentCreated, d)
	return d, nil
}

// UpdateDocumentInput carries the fields to change; nil fields are kept.
type UpdateDocumentInput struct {
	Title           *string `json:"title,omitempty"`
	MarkdownContent *string `json:"markdown_content,omitempty"`
	ParentID        *string `json:"parent_id,omitempty"`
	SEOTitle        *string `json:"seo_title,omitempty"`
	SEODescription  *string `json:"seo_description,omitempty"`
	CoverImageURL   *string `json:"cover_image_url,omitempty"`
	IconEmoji       *string `json:"icon_emoji,omitempty"`
	Position        *int    `json:"position,omitempty"`

	// BaseMarkdown, when set, must equal the stored markdown or the update
	// fails with domain.ErrConflict.
	BaseMarkdown *string `json:"-"`
}

func (in UpdateDocumentInput) Validate() error {
	errs := validation.Errors{}
	if in.Title != nil {
		if err := validation.Validate(*in.Title, validation.Length(0, 500)); err != nil {
			errs["title"] = err
		}
	}
	if in.SEODescription != nil {
		if err := validation.Validate(*in.SEODescription, validation.Length(0, 320)); err != nil {
			errs["seo_description"] = err
		}
	}
	if in.Position != nil && *in.Position < 0 {
		errs["position"] = validation.NewError("document.position_negative", "position must not be negative")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateDocument applies in to the user's document. Setting the markdown
// also refreshes the structured content mirror.
func (s *DocumentService) UpdateDocument(ctx context.Context, userID, id string, in UpdateDocumentInput) (*domain.Document, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	d, err := s.GetDocument(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.BaseMarkdown != nil && *in.BaseMarkdown != d.MarkdownContent {
		return nil, fmt.Errorf("update document %s: %w", id, domain.ErrConflict)
	}
	if in.Title != nil {
		d.Title = strings.TrimSpace(*in.Title)
		if d.Title == "" {
			d.Title = DefaultDocumentTitle
		}
	}
	if in.MarkdownContent != nil {
		d.MarkdownContent = *in.MarkdownContent
		d.Content = domain.TextContent(*in.MarkdownContent)
	}
	if in.ParentID != nil {
		if *in.ParentID == d.ID {
			return nil, validation.Errors{"parent_id": validation.NewError("document.parent_self", "document cannot be its own parent")}
		}
		d.ParentID = *in.ParentID
	}
	if in.SEOTitle != nil {
		d.SEOTitle = *in.SEOTitle
	}
	if in.SEODescription != nil {
		d.SEODescription = *in.SEODescription
	}
	if in.CoverImageURL != nil {
		d.CoverImageURL = *in.CoverImageURL
	}
	if in.IconEmoji != nil {
		d.IconEmoji = *in.IconEmoji
	}
	if in.Position != nil {
		d.Position = *in.Position
	}
	if err := s.docs.UpdateDocument(ctx, d); err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	s.emitter.Emit(ctx, EventDocumentUpdated, d)
	return d, nil
}

// DeleteDocument removes the document and its version history.
func (s *DocumentService) DeleteDocument(ctx context.Context, userID, id string) error {
	if _, err := s.GetDocument(ctx, userID, id); err != nil {
		return err
	}
	if err := s.versions.DeleteVersionsByDocument(ctx, id); err != nil {
		return fmt.Errorf("delete versions: %w", err)
	}
	if err := s.docs.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.emitter.Emit(ctx, EventDocumentDeleted, map[string]string{"id": id})
	return nil
}

// PublishInput overrides the SEO title and description on publish.
type PublishInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Publish makes the document public under a slug derived from its title.
// Slugs already used by another published document get a numeric suffix.
func (s *DocumentService) Publish(ctx context.Context, userID, id string, in PublishInput) (*domain.Document, error) {
	d, err := s.GetDocument(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = d.Title
	}

	base, err := slug.Normalize(title)
	if err != nil || base == "" {
		base = "document-" + d.ID[:8]
	}
	publishedSlug, err := s.uniqueSlug(ctx, base, d.ID)
	if err != nil {
		return nil, err
	}

	d.IsPublished = true
	d.PublishedSlug = publishedSlug
	d.PublishedURL = s.PublishedURL(publishedSlug)
	d.SEOTitle = title
	d.SEODescription = in.Description
	if err := s.docs.UpdateDocument(ctx, d); err != nil {
		return nil, fmt.Errorf("publish document: %w", err)
	}
	s.log.Info().Str("document_id", d.ID).Str("slug", publishedSlug).Msg("document published")
	s.emitter.Emit(ctx, EventDocumentPublished, d)
	return d, nil
}

func (s *DocumentService) uniqueSlug(ctx context.Context, base, docID string) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		existing, err := s.docs.GetDocumentBySlug(ctx, candidate)
		if errors.Is(err, domain.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if existing.ID == docID {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

// PublishedURL is the public address of a published slug.
func (s *DocumentService) PublishedURL(publishedSlug string) string {
	return s.publicBaseURL + "/published/" + publishedSlug
}

// Unpublish hides the document. Its slug is kept so republishing reuses it.
func (s *DocumentService) Unpublish(ctx context.Context, userID, id string) (*domain.Document, error) {
	d, err := s.GetDocument(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	d.IsPublished = false
	d.PublishedURL = ""
	if err := s.docs.UpdateDocument(ctx, d); err != nil {
		return nil, fmt.Errorf("unpublish document: %w", err)
	}
	s.emitter.Emit(ctx, EventDocumentUpdated, d)
	return d, nil
}

// GetPublished looks up a published document by slug for anonymous readers.
func (s *DocumentService) GetPublished(ctx context.Context, publishedSlug string) (*domain.Document, error) {
	return s.docs.GetDocumentBySlug(ctx, publishedSlug)
}

// SnapshotVersion records the document's current body as a new version.
func (s *DocumentService) SnapshotVersion(ctx context.Context, userID, id string) (*domain.DocumentVersion, error) {
	d, err := s.GetDocument(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, d, userID)
}

func (s *DocumentService) snapshot(ctx context.Context, d *domain.Document, createdBy string) (*domain.DocumentVersion, error) {
	v := &domain.DocumentVersion{
		ID:              uuid.NewString(),
		DocumentID:      d.ID,
		Content:         d.Content,
		MarkdownContent: d.MarkdownContent,
		CreatedBy:       createdBy,
	}
	if err := s.versions.CreateVersion(ctx, v); err != nil {
		return nil, fmt.Errorf("snapshot document: %w", err)
	}
	s.emitter.Emit(ctx, EventVersionCreated, v)
	return v, nil
}

// ListVersions returns the document's versions, newest first.
func (s *DocumentService) ListVersions(ctx context.Context, userID, id string) ([]domain.DocumentVersion, error) {
	if _, err := s.GetDocument(ctx, userID, id); err != nil {
		return nil, err
	}
	versions, err := s.versions.ListVersions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	if versions == nil {
		versions = []domain.DocumentVersion{}
	}
	return versions, nil
}

// RestoreVersion copies version n back into the document body. The body
// being replaced is snapshotted first so the restore can be undone.
func (s *DocumentService) RestoreVersion(ctx context.Context, userID, id string, n int) (*domain.Document, error) {
	d, err := s.GetDocument(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	v, err := s.versions.GetVersion(ctx, id, n)
	if err != nil {
		return nil, err
	}
	if _, err := s.snapshot(ctx, d, userID); err != nil {
		return nil, err
	}
	d.MarkdownContent = v.MarkdownContent
	d.Content = domain.TextContent(v.MarkdownContent)
	if err := s.docs.UpdateDocument(ctx, d); err != nil {
		return nil, fmt.Errorf("restore version: %w", err)
	}
	s.emitter.Emit(ctx, EventDocumentUpdated, d)
	return d, nil
}
