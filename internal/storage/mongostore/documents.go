package mongostore

import (
	"context"
	"fmt"
	"time"

	"blocknotes/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DocumentStore implements domain.DocumentStore.
type DocumentStore struct {
	col *mongo.Collection
}

func (s *DocumentStore) CreateDocument(ctx context.Context, d *domain.Document) error {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := s.col.InsertOne(ctx, fromDocument(d))
	return mapError(err)
}

func (s *DocumentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return s.findOne(ctx, "get document", bson.D{{Key: "_id", Value: id}})
}

func (s *DocumentStore) GetDocumentBySlug(ctx context.Context, slug string) (*domain.Document, error) {
	return s.findOne(ctx, "get document by slug", bson.D{
		{Key: "published_slug", Value: slug},
		{Key: "is_published", Value: true},
	})
}

func (s *DocumentStore) findOne(ctx context.Context, op string, filter bson.D) (*domain.Document, error) {
	var r documentRecord
	if err := s.col.FindOne(ctx, filter).Decode(&r); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	d := r.toDomain()
	return &d, nil
}

func (s *DocumentStore) ListDocuments(ctx context.Context, userID string) ([]domain.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	return s.find(ctx, bson.D{{Key: "user_id", Value: userID}}, opts)
}

func (s *DocumentStore) ListDocumentsUpdatedSince(ctx context.Context, t time.Time) ([]domain.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: 1}})
	return s.find(ctx, bson.D{{Key: "updated_at", Value: bson.D{{Key: "$gt", Value: t.UTC()}}}}, opts)
}

func (s *DocumentStore) find(ctx context.Context, filter bson.D, opts *options.FindOptionsBuilder) ([]domain.Document, error) {
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var records []documentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	docs := make([]domain.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, r.toDomain())
	}
	return docs, nil
}

func (s *DocumentStore) UpdateDocument(ctx context.Context, d *domain.Document) error {
	d.UpdatedAt = time.Now().UTC()
	res, err := s.col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: d.ID}}, fromDocument(d))
	if err != nil {
		return mapError(err)
	}
	return requireMatched(res, "update document")
}

func (s *DocumentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	return err
}

// VersionStore implements domain.VersionStore.
type VersionStore struct {
	col *mongo.Collection
}

// CreateVersion reads the highest number and inserts the next one. The unique
// (document_id, version_number) index rejects a racing insert, which is
// retried a few times.
func (s *VersionStore) CreateVersion(ctx context.Context, v *domain.DocumentVersion) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		var next int
		next, err = s.nextNumber(ctx, v.DocumentID)
		if err != nil {
			return err
		}
		v.VersionNumber = next
		v.CreatedAt = time.Now().UTC()
		_, err = s.col.InsertOne(ctx, versionRecord{
			ID:              v.ID,
			DocumentID:      v.DocumentID,
			Content:         jsonString(v.Content),
			MarkdownContent: v.MarkdownContent,
			VersionNumber:   v.VersionNumber,
			CreatedAt:       v.CreatedAt,
			CreatedBy:       v.CreatedBy,
		})
		if !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("insert version: %w", mapError(err))
	}
	return nil
}

func (s *VersionStore) nextNumber(ctx context.Context, documentID string) (int, error) {
	latest, err := s.LatestVersion(ctx, documentID)
	if err != nil {
		if isNotFound(err) {
			return 1, nil
		}
		return 0, err
	}
	return latest.VersionNumber + 1, nil
}

func (s *VersionStore) GetVersion(ctx context.Context, documentID string, number int) (*domain.DocumentVersion, error) {
	var r versionRecord
	err := s.col.FindOne(ctx, bson.D{
		{Key: "document_id", Value: documentID},
		{Key: "version_number", Value: number},
	}).Decode(&r)
	if err != nil {
		return nil, fmt.Errorf("get version: %w", mapError(err))
	}
	v := r.toDomain()
	return &v, nil
}

func (s *VersionStore) LatestVersion(ctx context.Context, documentID string) (*domain.DocumentVersion, error) {
	var r versionRecord
	opts := options.FindOne().SetSort(bson.D{{Key: "version_number", Value: -1}})
	if err := s.col.FindOne(ctx, bson.D{{Key: "document_id", Value: documentID}}, opts).Decode(&r); err != nil {
		return nil, fmt.Errorf("latest version: %w", mapError(err))
	}
	v := r.toDomain()
	return &v, nil
}

func (s *VersionStore) ListVersions(ctx context.Context, documentID string) ([]domain.DocumentVersion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "version_number", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.D{{Key: "document_id", Value: documentID}}, opts)
	if err != nil {
		return nil, err
	}
	var records []versionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	versions := make([]domain.DocumentVersion, 0, len(records))
	for _, r := range records {
		versions = append(versions, r.toDomain())
	}
	return versions, nil
}

func (s *VersionStore) DeleteVersionsByDocument(ctx context.Context, documentID string) error {
	_, err := s.col.DeleteMany(ctx, bson.D{{Key: "document_id", Value: documentID}})
	return err
}
