package apperr

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrNoManifest = errors.New("no manifest configured")
)
