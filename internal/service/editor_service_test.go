package service_test

import (
	"context"
	"testing"
	"time"

	"blocknotes/internal/blocks"
	"blocknotes/internal/domain"
	"blocknotes/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openEditor(t *testing.T, env *testEnv, markdown string) (string, *service.EditorSession) {
	t.Helper()
	ctx := context.Background()
	userID := env.signUp(t, "ada@example.com")
	d, err := env.docs.CreateDocument(ctx, userID, service.CreateDocumentInput{Title: "Doc", MarkdownContent: markdown})
	require.NoError(t, err)
	es, err := env.editor.Open(ctx, userID, d.ID, domain.EditorModeBlocks)
	require.NoError(t, err)
	return userID, es
}

func storedMarkdown(t *testing.T, env *testEnv, userID, docID string) string {
	t.Helper()
	d, err := env.docs.GetDocument(context.Background(), userID, docID)
	require.NoError(t, err)
	return d.MarkdownContent
}

func TestEditor_OpenParsesBlocks(t *testing.T) {
	env := newTestEnv(t)
	userID, es := openEditor(t, env, "# Title\nbody")

	bs, err := env.editor.Blocks(userID, es.ID)
	require.NoError(t, err)
	require.Len(t, bs, 2)
	assert.Equal(t, blocks.TypeHeading1, bs[0].Type)
	assert.Equal(t, "Title", bs[0].Content)
	assert.Equal(t, blocks.TypeParagraph, bs[1].Type)
}

func TestEditor_ApplyWritesThrough(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID, es := openEditor(t, env, "# Title\nbody")
	bs, err := env.editor.Blocks(userID, es.ID)
	require.NoError(t, err)

	view, err := env.editor.Apply(ctx, userID, es.ID, service.Op{Kind: service.OpUpdate, BlockID: bs[1].ID, Content: "changed"})
	require.NoError(t, err)
	assert.Equal(t, "# Title\nchanged", view.Markdown)
	assert.Equal(t, "# Title\nchanged", storedMarkdown(t, env, userID, es.DocumentID))

	view, err = env.editor.Apply(ctx, userID, es.ID, service.Op{Kind: service.OpInsertAfter, BlockID: bs[0].ID, Type: blocks.TypeQuote})
	require.NoError(t, err)
	require.Len(t, view.Blocks, 3)
	assert.Equal(t, blocks.TypeQuote, view.Blocks[1].Type)
	assert.Equal(t, "# Title\n> \nchanged", view.Markdown)

	view, err = env.editor.Apply(ctx, userID, es.ID, service.Op{Kind: service.OpChangeType, BlockID: bs[1].ID, Type: blocks.TypeList})
	require.NoError(t, err)
	assert.Equal(t, "# Title\n> \n- changed", view.Markdown)

	view, err = env.editor.Apply(ctx, userID, es.ID, service.Op{Kind: service.OpMove, BlockID: bs[1].ID, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, "- changed\n# Title\n> ", view.Markdown)

	view, err = env.editor.Apply(ctx, userID, es.ID, service.Op{Kind: service.OpDelete, BlockID: bs[0].ID})
	require.NoError(t, err)
	assert.Equal(t, "- changed\n> ", view.Markdown)
	assert.Equal(t, "- changed\n> ", storedMarkdown(t, env, userID, es.DocumentID))
}

func TestEditor_InsertAfterUnknownGoesFirst(t *testing.T) {
	env := newTestEnv(t)
	userID, es := openEditor(t, env, "a\nb")

	view, err := env.editor.Apply(context.Background(), userID, es.ID, service.Op{Kind: service.OpInsertAfter, BlockID: "missing"})
	require.NoError(t, err)
	require.Len(t, view.Blocks, 3)
	assert.Equal(t, blocks.TypeParagraph, view.Blocks[0].Type)
	assert.Equal(t, "", view.Blocks[0].Content)
	assert.Equal(t, "\na\nb", view.Markdown)
}

func TestEditor_DeleteOnlyBlockIsNoop(t *testing.T) {
	env := newTestEnv(t)
	userID, es := openEditor(t, env, "only")
	bs, err := env.editor.Blocks(userID, es.ID)
	require.NoError(t, err)

	view, err := env.editor.Apply(context.Background(), userID, es.ID, service.Op{Kind: service.OpDelete, BlockID: bs[0].ID})
	require.NoError(t, err)
	assert.Len(t, view.Blocks, 1)
	assert.Equal(t, "only", view.Markdown)
}

func TestEditor_RejectsBadOps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID, es := openEditor(t, env, "a")
	bs, err := env.editor.Blocks(userID, es.ID)
	require.NoError(t, err)

	_, err = env.editor.Apply(ctx, userID, es.ID, service.Op{Kind: "explode"})
	assert.ErrorIs(t, err, service.ErrUnknownOp)
	_, err = env.editor.Apply(ctx, userID, es.ID, service.Op{Kind: service.OpChangeType, BlockID: bs[0].ID, Type: "table"})
	assert.ErrorIs(t, err, service.ErrInvalidBlockType)
	_, err = env.editor.WriteMarkdown(ctx, userID, es.ID, "text")
	assert.ErrorIs(t, err, service.ErrWrongMode)

	other := env.signUp(t, "bob@example.com")
	_, err = env.editor.Apply(ctx, other, es.ID, service.Op{Kind: service.OpUpdate, BlockID: bs[0].ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditor_SwitchModes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID, es := openEditor(t, env, "# A")
	before, err := env.editor.Blocks(userID, es.ID)
	require.NoError(t, err)

	view, err := env.editor.SwitchMode(ctx, userID, es.ID, domain.EditorModeMarkdown)
	require.NoError(t, err)
	assert.Empty(t, view.Blocks)
	_, err = env.editor.Apply(ctx, userID, es.ID, service.Op{Kind: service.OpUpdate, BlockID: before[0].ID, Content: "x"})
	assert.ErrorIs(t, err, service.ErrWrongMode)

	view, err = env.editor.WriteMarkdown(ctx, userID, es.ID, "## B\n> quote")
	require.NoError(t, err)
	assert.Equal(t, "## B\n> quote", view.Markdown)

	view, err = env.editor.SwitchMode(ctx, userID, es.ID, domain.EditorModeBlocks)
	require.NoError(t, err)
	require.Len(t, view.Blocks, 2)
	assert.Equal(t, blocks.TypeHeading2, view.Blocks[0].Type)
	assert.NotEqual(t, before[0].ID, view.Blocks[0].ID, "blocks are re-parsed with new ids")
}

func TestEditor_SetTitleAndClose(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID, es := openEditor(t, env, "")

	view, err := env.editor.SetTitle(ctx, userID, es.ID, "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", view.Title)

	require.NoError(t, env.editor.Close(userID, es.ID))
	_, err = env.editor.Blocks(userID, es.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditor_StaleSessionDoesNotOverwrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID, es := openEditor(t, env, "original\nline")
	bs, err := env.editor.Blocks(userID, es.ID)
	require.NoError(t, err)

	_, err = env.editor.Apply(ctx, userID, es.ID, service.Op{Kind: service.OpUpdate, BlockID: bs[0].ID, Content: "edited"})
	require.NoError(t, err)

	outside := "outside\nline"
	_, err = env.docs.UpdateDocument(ctx, userID, es.DocumentID, service.UpdateDocumentInput{MarkdownContent: &outside})
	require.NoError(t, err)

	_, err = env.editor.Apply(ctx, userID, es.ID, service.Op{Kind: service.OpUpdate, BlockID: bs[1].ID, Content: "line2"})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, outside, storedMarkdown(t, env, userID, es.DocumentID))

	// The session was reloaded, so a retry against the new blocks lands.
	view := es.View()
	assert.Equal(t, outside, view.Markdown)
	require.Len(t, view.Blocks, 2)
	_, err = env.editor.Apply(ctx, userID, es.ID, service.Op{Kind: service.OpUpdate, BlockID: view.Blocks[1].ID, Content: "line2"})
	require.NoError(t, err)
	assert.Equal(t, "outside\nline2", storedMarkdown(t, env, userID, es.DocumentID))
}

func TestEditor_StaleMarkdownSessionConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID, es := openEditor(t, env, "v1")
	other, err := env.editor.Open(ctx, userID, es.DocumentID, domain.EditorModeMarkdown)
	require.NoError(t, err)
	_, err = env.editor.SwitchMode(ctx, userID, es.ID, domain.EditorModeMarkdown)
	require.NoError(t, err)

	_, err = env.editor.WriteMarkdown(ctx, userID, es.ID, "from first")
	require.NoError(t, err)
	_, err = env.editor.WriteMarkdown(ctx, userID, other.ID, "from second")
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "from first", storedMarkdown(t, env, userID, es.DocumentID))
	assert.Equal(t, "from first", other.View().Markdown)
}

func TestEditor_CloseIdle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	env.editor.SetClock(func() time.Time { return now })

	userID, idle := openEditor(t, env, "a")
	active, err := env.editor.Open(ctx, userID, idle.DocumentID, domain.EditorModeBlocks)
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	_, err = env.editor.Session(userID, active.ID)
	require.NoError(t, err)
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 1, env.editor.CloseIdle(30*time.Minute))
	_, err = env.editor.Session(userID, idle.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.editor.Session(userID, active.ID)
	assert.NoError(t, err)
}

func TestEditor_CloseUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID, es := openEditor(t, env, "a")
	otherID := env.signUp(t, "bob@example.com")
	d, err := env.docs.CreateDocument(ctx, otherID, service.CreateDocumentInput{Title: "Bob"})
	require.NoError(t, err)
	theirs, err := env.editor.Open(ctx, otherID, d.ID, domain.EditorModeMarkdown)
	require.NoError(t, err)

	assert.Equal(t, 1, env.editor.CloseUser(userID))
	_, err = env.editor.Session(userID, es.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.editor.Session(otherID, theirs.ID)
	assert.NoError(t, err)
}
