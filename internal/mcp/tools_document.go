package mcpserver

import (
	"context"
	"time"

	"blocknotes/internal/blocks"
	"blocknotes/internal/domain"
	"blocknotes/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDocumentTools() {
	// ── list_documents ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List the user's documents, optionally filtered by a title search"),
		mcp.WithString("query", mcp.Description("Case-insensitive title filter (optional)")),
	), s.handleListDocuments)

	// ── read_document ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a document's markdown and its blocks. Block operations address blocks by index"),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
	), s.handleReadDocument)

	// ── create_document ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new document"),
		mcp.WithString("title", mcp.Description("Title (defaults to Untitled Document)")),
		mcp.WithString("markdown", mcp.Description("Initial markdown body (optional)")),
	), s.handleCreateDocument)

	// ── write_markdown ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("write_markdown",
		mcp.WithDescription("Replace a document's whole body with markdown"),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
		mcp.WithString("content", mcp.Description("Markdown content"), mcp.Required()),
	), s.handleWriteMarkdown)

	// ── publish_document ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("publish_document",
		mcp.WithDescription("Publish a document as a public page and return its URL"),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
		mcp.WithString("title", mcp.Description("SEO title (defaults to the document title)")),
		mcp.WithString("description", mcp.Description("SEO description")),
	), s.handlePublishDocument)
}

type documentSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	IsPublished bool      `json:"isPublished"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type indexedBlock struct {
	Index   int         `json:"index"`
	Type    blocks.Type `json:"type"`
	Content string      `json:"content"`
}

type documentView struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Markdown     string         `json:"markdown"`
	PublishedURL string         `json:"publishedUrl,omitempty"`
	Blocks       []indexedBlock `json:"blocks"`
}

func viewDocument(d *domain.Document) documentView {
	parsed := blocks.Parse(d.MarkdownContent)
	out := make([]indexedBlock, len(parsed))
	for i, b := range parsed {
		out[i] = indexedBlock{Index: i, Type: b.Type, Content: b.Content}
	}
	v := documentView{
		ID:       d.ID,
		Title:    d.Title,
		Markdown: d.MarkdownContent,
		Blocks:   out,
	}
	if d.IsPublished {
		v.PublishedURL = d.PublishedURL
	}
	return v
}

func summarize(docs []domain.Document) []documentSummary {
	out := make([]documentSummary, len(docs))
	for i, d := range docs {
		out[i] = documentSummary{ID: d.ID, Title: d.Title, IsPublished: d.IsPublished, UpdatedAt: d.UpdatedAt}
	}
	return out
}

func (s *Server) handleListDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.docs.SearchDocuments(ctx, s.userID, req.GetString("query", ""))
	if err != nil {
		return nil, err
	}
	return jsonResult(summarize(docs))
}

func (s *Server) handleReadDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "documentId")
	if err != nil {
		return nil, err
	}
	d, err := s.docs.GetDocument(ctx, s.userID, id)
	if err != nil {
		return nil, err
	}
	return jsonResult(viewDocument(d))
}

func (s *Server) handleCreateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, err := s.docs.CreateDocument(ctx, s.userID, service.CreateDocumentInput{
		Title:           req.GetString("title", ""),
		MarkdownContent: req.GetString("markdown", ""),
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("document_id", d.ID).Msg("document created")
	return jsonResult(viewDocument(d))
}

func (s *Server) handleWriteMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "documentId")
	if err != nil {
		return nil, err
	}
	content, _ := args["content"].(string)
	d, err := s.docs.UpdateDocument(ctx, s.userID, id, service.UpdateDocumentInput{MarkdownContent: &content})
	if err != nil {
		return nil, err
	}
	return jsonResult(viewDocument(d))
}

func (s *Server) handlePublishDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "documentId")
	if err != nil {
		return nil, err
	}
	d, err := s.docs.Publish(ctx, s.userID, id, service.PublishInput{
		Title:       req.GetString("title", ""),
		Description: req.GetString("description", ""),
	})
	if err != nil {
		return nil, err
	}
	return textResult("Published at " + d.PublishedURL), nil
}
