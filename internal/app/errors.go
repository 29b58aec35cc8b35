package service

import "github.com/okian/riskview/internal/domain/model"

// Sentinel kinds for service lookups.
var (
	ErrNotFound  = model.ErrNotFound
	ErrInvalidID = model.ErrInvalidID
)
