package app

import (
	"context"
	"fmt"
)

// ImportFiles imports each markdown file for the configured owner and
// reports how many succeeded.
func (a *App) ImportFiles(ctx context.Context, paths []string) (int, error) {
	imported := 0
	var firstErr error
	for _, path := range paths {
		res, err := a.imports.ImportFile(ctx, path)
		if err != nil {
			a.log.Error().Err(err).Str("path", path).Msg("import failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		a.log.Info().Str("path", path).Str("document_id", res.Document.ID).Bool("created", res.Created).Msg("imported")
		imported++
	}
	if firstErr != nil {
		return imported, fmt.Errorf("import: %d of %d files failed: %w", len(paths)-imported, len(paths), firstErr)
	}
	return imported, nil
}
