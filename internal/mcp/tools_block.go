package mcpserver

import (
	"context"
	"fmt"

	"blocknotes/internal/blocks"
	"blocknotes/internal/domain"
	"blocknotes/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerBlockTools() {
	// ── insert_block ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("insert_block",
		mcp.WithDescription("Insert a block into a document. Without afterIndex the block is appended"),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
		mcp.WithNumber("afterIndex", mcp.Description("Index of the block to insert after; -1 inserts at the start")),
		mcp.WithString("type", mcp.Description("paragraph, heading1, heading2, heading3, code, quote or list (default paragraph)")),
		mcp.WithString("content", mcp.Description("Block text")),
	), s.handleInsertBlock)

	// ── update_block ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_block",
		mcp.WithDescription("Replace a block's text and optionally change its type"),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Block index from read_document"), mcp.Required()),
		mcp.WithString("content", mcp.Description("New block text"), mcp.Required()),
		mcp.WithString("type", mcp.Description("New block type (optional)")),
	), s.handleUpdateBlock)

	// ── move_block ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move a block to a new index"),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Current block index"), mcp.Required()),
		mcp.WithNumber("to", mcp.Description("Target index, clamped to the document"), mcp.Required()),
	), s.handleMoveBlock)

	// ── delete_block ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_block",
		mcp.WithDescription("Delete a block. The last remaining block is never deleted"),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Block index from read_document"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteBlock)
}

// editBlocks parses the stored markdown, lets fn edit the sequence and saves
// the re-serialized result.
func (s *Server) editBlocks(ctx context.Context, docID string, fn func(seq *blocks.Sequence) error) (*domain.Document, error) {
	d, err := s.docs.GetDocument(ctx, s.userID, docID)
	if err != nil {
		return nil, err
	}
	seq := blocks.NewSequence(d.MarkdownContent)
	if err := fn(seq); err != nil {
		return nil, err
	}
	markdown := seq.Markdown()
	return s.docs.UpdateDocument(ctx, s.userID, d.ID, service.UpdateDocumentInput{MarkdownContent: &markdown})
}

func blockAt(seq *blocks.Sequence, index int) (blocks.Block, error) {
	all := seq.Blocks()
	if index < 0 || index >= len(all) {
		return blocks.Block{}, fmt.Errorf("block index %d out of range (document has %d blocks)", index, len(all))
	}
	return all[index], nil
}

func blockType(args map[string]any) (blocks.Type, error) {
	raw, _ := args["type"].(string)
	if raw == "" {
		return "", nil
	}
	t := blocks.Type(raw)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", service.ErrInvalidBlockType, raw)
	}
	return t, nil
}

func (s *Server) handleInsertBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	docID, err := requireString(args, "documentId")
	if err != nil {
		return nil, err
	}
	t, err := blockType(args)
	if err != nil {
		return nil, err
	}
	if t == "" {
		t = blocks.TypeParagraph
	}
	after, hasAfter, err := intArg(args, "afterIndex")
	if err != nil {
		return nil, err
	}
	content, _ := args["content"].(string)

	d, err := s.editBlocks(ctx, docID, func(seq *blocks.Sequence) error {
		if !hasAfter {
			after = seq.Len() - 1
		}
		afterID := ""
		if after >= 0 {
			b, err := blockAt(seq, after)
			if err != nil {
				return err
			}
			afterID = b.ID
		}
		inserted := seq.InsertAfter(afterID, t)
		seq.UpdateContent(inserted.ID, content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert block: %w", err)
	}
	return jsonResult(viewDocument(d))
}

func (s *Server) handleUpdateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	docID, err := requireString(args, "documentId")
	if err != nil {
		return nil, err
	}
	index, ok, err := intArg(args, "index")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("index is required")
	}
	t, err := blockType(args)
	if err != nil {
		return nil, err
	}
	content, _ := args["content"].(string)

	d, err := s.editBlocks(ctx, docID, func(seq *blocks.Sequence) error {
		b, err := blockAt(seq, index)
		if err != nil {
			return err
		}
		seq.UpdateContent(b.ID, content)
		if t != "" {
			seq.ChangeType(b.ID, t)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update block: %w", err)
	}
	return jsonResult(viewDocument(d))
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	docID, err := requireString(args, "documentId")
	if err != nil {
		return nil, err
	}
	index, hasIndex, err := intArg(args, "index")
	if err != nil {
		return nil, err
	}
	to, hasTo, err := intArg(args, "to")
	if err != nil {
		return nil, err
	}
	if !hasIndex || !hasTo {
		return nil, fmt.Errorf("index and to are required")
	}

	d, err := s.editBlocks(ctx, docID, func(seq *blocks.Sequence) error {
		b, err := blockAt(seq, index)
		if err != nil {
			return err
		}
		seq.Move(b.ID, to)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("move block: %w", err)
	}
	return jsonResult(viewDocument(d))
}

func (s *Server) handleDeleteBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	docID, err := requireString(args, "documentId")
	if err != nil {
		return nil, err
	}
	index, ok, err := intArg(args, "index")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("index is required")
	}

	d, err := s.editBlocks(ctx, docID, func(seq *blocks.Sequence) error {
		b, err := blockAt(seq, index)
		if err != nil {
			return err
		}
		seq.Delete(b.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete block: %w", err)
	}
	return jsonResult(viewDocument(d))
}
