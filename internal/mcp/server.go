// Package mcpserver exposes documents to AI agents over the Model Context
// Protocol. The server acts on behalf of a single configured user.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"blocknotes/internal/domain"
	"blocknotes/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Server is the MCP server for blocknotes.
type Server struct {
	mcp    *server.MCPServer
	docs   *service.DocumentService
	log    zerolog.Logger
	userID string
}

// Deps holds the services the MCP server needs.
type Deps struct {
	Documents *service.DocumentService
	Users     domain.UserStore
	UserEmail string
	Log       zerolog.Logger
}

// New resolves the acting user and registers tools, resources and prompts.
func New(ctx context.Context, deps Deps) (*Server, error) {
	email := strings.ToLower(strings.TrimSpace(deps.UserEmail))
	if email == "" {
		return nil, errors.New("mcp: user email is not configured")
	}
	u, err := deps.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("mcp user %s: %w", email, err)
	}

	s := &Server{
		docs:   deps.Documents,
		log:    deps.Log,
		userID: u.ID,
	}
	s.mcp = server.NewMCPServer(
		"blocknotes-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerDocumentTools()
	s.registerBlockTools()
	s.registerResources()
	s.registerPrompts()
	return s, nil
}

// ServeStdio serves MCP on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.log.Info().Str("user_id", s.userID).Msg("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func requireString(args map[string]any, key string) (string, error) {
	v, _ := args[key].(string)
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// intArg reads a JSON number argument. ok is false when the argument is absent.
func intArg(args map[string]any, key string) (n int, ok bool, err error) {
	raw, present := args[key]
	if !present || raw == nil {
		return 0, false, nil
	}
	f, isNum := raw.(float64)
	if !isNum {
		return 0, false, fmt.Errorf("%s must be a number", key)
	}
	if f != float64(int(f)) {
		return 0, false, fmt.Errorf("%s must be a whole number", key)
	}
	return int(f), true, nil
}

func boolPtr(v bool) *bool { return &v }
