package service_test

import (
	"context"
	"testing"

	"blocknotes/internal/domain"
	"blocknotes/internal/service"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDocuments_CreateDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")

	d, err := env.docs.CreateDocument(ctx, userID, service.CreateDocumentInput{})
	require.NoError(t, err)
	assert.Equal(t, service.DefaultDocumentTitle, d.Title)
	assert.Equal(t, "", d.MarkdownContent)
	assert.JSONEq(t, `{}`, string(d.Content))
	assert.Contains(t, env.emitter.Names(), service.EventDocumentCreated)
}

func TestDocuments_ListAndSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")
	otherID := env.signUp(t, "bob@example.com")

	for _, title := range []string{"Grocery list", "Meeting notes", "Travel LIST"} {
		_, err := env.docs.CreateDocument(ctx, userID, service.CreateDocumentInput{Title: title})
		require.NoError(t, err)
	}
	_, err := env.docs.CreateDocument(ctx, otherID, service.CreateDocumentInput{Title: "Bob's list"})
	require.NoError(t, err)

	all, err := env.docs.ListDocuments(ctx, userID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Travel LIST", all[0].Title, "newest first")

	found, err := env.docs.SearchDocuments(ctx, userID, "list")
	require.NoError(t, err)
	require.Len(t, found, 2)
	for _, d := range found {
		assert.Equal(t, userID, d.UserID)
	}

	none, err := env.docs.SearchDocuments(ctx, userID, "zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}

func TestDocuments_OwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")
	otherID := env.signUp(t, "bob@example.com")

	d, err := env.docs.CreateDocument(ctx, userID, service.CreateDocumentInput{Title: "Private"})
	require.NoError(t, err)

	_, err = env.docs.GetDocument(ctx, otherID, d.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.docs.UpdateDocument(ctx, otherID, d.ID, service.UpdateDocumentInput{Title: strPtr("Mine")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, env.docs.DeleteDocument(ctx, otherID, d.ID), domain.ErrNotFound)
}

func TestDocuments_UpdateMirrorsContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")
	d, err := env.docs.CreateDocument(ctx, userID, service.CreateDocumentInput{Title: "Note"})
	require.NoError(t, err)

	md := "# Heading\n- item"
	pos := 4
	updated, err := env.docs.UpdateDocument(ctx, userID, d.ID, service.UpdateDocumentInput{
		MarkdownContent: &md,
		IconEmoji:       strPtr("📓"),
		Position:        &pos,
	})
	require.NoError(t, err)
	assert.Equal(t, "Note", updated.Title, "nil fields are kept")
	assert.Equal(t, md, updated.MarkdownContent)
	assert.JSONEq(t, `{"text":"# Heading\n- item"}`, string(updated.Content))

	stored, err := env.docs.GetDocument(ctx, userID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "📓", stored.IconEmoji)
	assert.Equal(t, 4, stored.Position)

	_, err = env.docs.UpdateDocument(ctx, userID, d.ID, service.UpdateDocumentInput{ParentID: &d.ID})
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "parent_id")
}

func TestDocuments_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")
	d, err := env.docs.CreateDocument(ctx, userID, service.CreateDocumentInput{Title: "Gone"})
	require.NoError(t, err)
	_, err = env.docs.SnapshotVersion(ctx, userID, d.ID)
	require.NoError(t, err)

	require.NoError(t, env.docs.DeleteDocument(ctx, userID, d.ID))
	_, err = env.docs.GetDocument(ctx, userID, d.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	versions, err := env.stores.Versions.ListVersions(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestDocuments_PublishSlugs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")

	first, err := env.docs.CreateDocument(ctx, userID, service.CreateDocumentInput{Title: "My First Note", MarkdownContent: "hello"})
	require.NoError(t, err)
	second, err := env.docs.CreateDocument(ctx, userID, service.CreateDocumentInput{Title: "My First Note"})
	require.NoError(t, err)

	pub, err := env.docs.Publish(ctx, userID, first.ID, service.PublishInput{Description: "intro"})
	require.NoError(t, err)
	assert.True(t, pub.IsPublished)
	assert.Equal(t, "my-first-note", pub.PublishedSlug)
	assert.Equal(t, "http://localhost:8080/published/my-first-note", pub.PublishedURL)
	assert.Equal(t, "My First Note", pub.SEOTitle)
	assert.Equal(t, "intro", pub.SEODescription)

	// Republishing keeps the slug.
	again, err := env.docs.Publish(ctx, userID, first.ID, service.PublishInput{})
	require.NoError(t, err)
	assert.Equal(t, "my-first-note", again.PublishedSlug)

	dup, err := env.docs.Publish(ctx, userID, second.ID, service.PublishInput{})
	require.NoError(t, err)
	assert.Equal(t, "my-first-note-2", dup.PublishedSlug)

	got, err := env.docs.GetPublished(ctx, "my-first-note")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Contains(t, env.emitter.Names(), service.EventDocumentPublished)

	_, err = env.docs.Unpublish(ctx, userID, first.ID)
	require.NoError(t, err)
	_, err = env.docs.GetPublished(ctx, "my-first-note")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocuments_Versions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")
	d, err := env.docs.CreateDocument(ctx, userID, service.CreateDocumentInput{Title: "Draft", MarkdownContent: "v1"})
	require.NoError(t, err)

	v1, err := env.docs.SnapshotVersion(ctx, userID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v1.VersionNumber)
	assert.Equal(t, userID, v1.CreatedBy)

	_, err = env.docs.UpdateDocument(ctx, userID, d.ID, service.UpdateDocumentInput{MarkdownContent: strPtr("v2")})
	require.NoError(t, err)

	restored, err := env.docs.RestoreVersion(ctx, userID, d.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "v1", restored.MarkdownContent)

	versions, err := env.docs.ListVersions(ctx, userID, d.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2, "restore snapshots the replaced body")
	assert.Equal(t, 2, versions[0].VersionNumber)
	assert.Equal(t, "v2", versions[0].MarkdownContent)

	_, err = env.docs.RestoreVersion(ctx, userID, d.ID, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
