package backend

import "errors"

// Sentinel errors shared by all backend implementations. Callers compare
// with errors.Is and map them to display-ready messages at the edge.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrUnauthorized       = errors.New("unauthorized")
)
