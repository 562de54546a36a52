package service

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	// ErrWrongMode is returned when an editor operation does not match the
	// session's current mode.
	ErrWrongMode        = errors.New("operation not allowed in current editor mode")
	ErrUnknownOp        = errors.New("unknown editor operation")
	ErrInvalidBlockType = errors.New("invalid block type")
)
