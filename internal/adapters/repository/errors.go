package repository

import "errors"

// Sentinel kinds for snapshot lookups.
var (
	ErrNotFound   = errors.New("subject not found")
	ErrNoSnapshot = errors.New("no snapshot published")
)
