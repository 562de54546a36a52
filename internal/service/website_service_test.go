package service_test

import (
	"context"
	"testing"

	"blocknotes/internal/domain"
	"blocknotes/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebsites_CreateAndPages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")

	site, err := env.websites.CreateWebsite(ctx, userID, service.CreateWebsiteInput{})
	require.NoError(t, err)
	assert.Equal(t, service.DefaultWebsiteName, site.Name)
	assert.True(t, site.IsActive)

	home, err := env.docs.CreateDocument(ctx, userID, service.CreateDocumentInput{Title: "Welcome Home"})
	require.NoError(t, err)
	about, err := env.docs.CreateDocument(ctx, userID, service.CreateDocumentInput{Title: "About"})
	require.NoError(t, err)

	p1, err := env.websites.AddPage(ctx, userID, site.ID, service.AddPageInput{DocumentID: home.ID, IsHomepage: true})
	require.NoError(t, err)
	assert.Equal(t, "welcome-home", p1.Slug)

	_, err = env.websites.AddPage(ctx, userID, site.ID, service.AddPageInput{DocumentID: about.ID, Slug: "about", IsHomepage: true, Position: 1})
	require.NoError(t, err)

	pages, err := env.websites.ListPages(ctx, userID, site.ID)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	homepages := 0
	for _, p := range pages {
		if p.IsHomepage {
			homepages++
			assert.Equal(t, about.ID, p.DocumentID)
		}
	}
	assert.Equal(t, 1, homepages, "one homepage per site")

	_, err = env.websites.AddPage(ctx, userID, site.ID, service.AddPageInput{DocumentID: about.ID, Slug: "about"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	sites, err := env.websites.ListWebsites(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, sites, 1)
}

func TestWebsites_Ownership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")
	otherID := env.signUp(t, "bob@example.com")

	site, err := env.websites.CreateWebsite(ctx, userID, service.CreateWebsiteInput{Name: "Mine"})
	require.NoError(t, err)
	otherDoc, err := env.docs.CreateDocument(ctx, otherID, service.CreateDocumentInput{Title: "Theirs"})
	require.NoError(t, err)

	_, err = env.websites.ListPages(ctx, otherID, site.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.websites.AddPage(ctx, userID, site.ID, service.AddPageInput{DocumentID: otherDoc.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWebsites_FailedHomepageKeepsCurrentHomepage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")

	site, err := env.websites.CreateWebsite(ctx, userID, service.CreateWebsiteInput{Name: "Mine"})
	require.NoError(t, err)
	first, err := env.docs.CreateDocument(ctx, userID, service.CreateDocumentInput{Title: "First"})
	require.NoError(t, err)
	second, err := env.docs.CreateDocument(ctx, userID, service.CreateDocumentInput{Title: "Second"})
	require.NoError(t, err)

	home, err := env.websites.AddPage(ctx, userID, site.ID, service.AddPageInput{DocumentID: first.ID, Slug: "home", IsHomepage: true})
	require.NoError(t, err)

	// Same slug: the insert fails and the existing homepage must survive.
	_, err = env.websites.AddPage(ctx, userID, site.ID, service.AddPageInput{DocumentID: second.ID, Slug: "home", IsHomepage: true})
	require.ErrorIs(t, err, domain.ErrConflict)

	pages, err := env.websites.ListPages(ctx, userID, site.ID)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, home.ID, pages[0].ID)
	assert.True(t, pages[0].IsHomepage)
}
