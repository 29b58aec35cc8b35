package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Lookup failures shared by the service and its transports.
var (
	ErrNotFound  = errors.New("subject not found")
	ErrInvalidID = errors.New("invalid subject id")
)

// Listing is a filtered view over one snapshot.
type Listing struct {
	CycleID             uuid.UUID       `json:"cycle_id"`
	UsedDegradedDataset bool            `json:"used_degraded_dataset"`
	UsedSalvage         bool            `json:"used_salvage"`
	CompletedAt         time.Time       `json:"completed_at"`
	Total               int             `json:"total"`
	Subjects            []SubjectRecord `json:"subjects"`
}

// NewListing describes records as a view over r. Total counts the whole
// snapshot, not just records.
func NewListing(r AggregateResult, records []SubjectRecord) Listing {
	if records == nil {
		records = []SubjectRecord{}
	}
	return Listing{
		CycleID:             r.CycleID,
		UsedDegradedDataset: r.UsedDegradedDataset,
		UsedSalvage:         r.UsedSalvage,
		CompletedAt:         r.CompletedAt,
		Total:               r.Len(),
		Subjects:            records,
	}
}
