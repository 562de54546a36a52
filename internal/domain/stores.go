package domain

import "errors"

var (
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by stores on unique constraint violations.
	ErrConflict = errors.New("conflict")
)

// Stores bundles every persistence interface a backend must provide.
type Stores struct {
	Users     UserStore
	Sessions  SessionStore
	Documents DocumentStore
	Versions  VersionStore
	Websites  WebsiteStore
	Media     MediaStore
}
