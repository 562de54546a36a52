package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("outline_document",
		mcp.WithPromptDescription("Draft a structured document from a topic using block tools"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("What the document is about"),
			mcp.RequiredArgument(),
		),
	), s.handleOutlinePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("publish_checklist",
		mcp.WithPromptDescription("Review a document and publish it with SEO metadata"),
		mcp.WithArgument("documentId",
			mcp.ArgumentDescription("Document to review"),
			mcp.RequiredArgument(),
		),
	), s.handlePublishPrompt)
}

func (s *Server) handleOutlinePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Outline a document about: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Write a document about "%s". Follow these steps:

1. Use create_document with the title "%s".
2. Add a heading1 block with the title, then heading2 blocks for each section using insert_block.
3. Under each heading add paragraph, list or quote blocks.
4. Call read_document at the end and fix any block with update_block.

Each block holds a single line of text. Code blocks hold no text.`, topic, topic),
				},
			},
		},
	}, nil
}

func (s *Server) handlePublishPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	docID := req.Params.Arguments["documentId"]
	return &mcp.GetPromptResult{
		Description: "Review and publish a document",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Review document %s before publishing:

1. Use read_document and check the title and the first heading agree.
2. Fix spelling with update_block.
3. Call publish_document with a description under 160 characters.
4. Report the published URL.`, docID),
				},
			},
		},
	}, nil
}
