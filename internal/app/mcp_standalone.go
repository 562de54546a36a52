package app

import (
	"context"

	"blocknotes/internal/logging"
	mcpserver "blocknotes/internal/mcp"
)

// ServeMCP runs the MCP server on stdin/stdout as the configured user.
func (a *App) ServeMCP(ctx context.Context) error {
	srv, err := mcpserver.New(ctx, mcpserver.Deps{
		Documents: a.documents,
		Users:     a.stores.Users,
		UserEmail: a.cfg.MCP.UserEmail,
		Log:       logging.Component(a.log, "mcp"),
	})
	if err != nil {
		return err
	}
	return srv.ServeStdio()
}
