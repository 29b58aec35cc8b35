// Package repository holds the latest completed aggregation snapshot.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/riskview/internal/domain/model"
)

// Cycle summarises one published snapshot.
type Cycle struct {
	CycleID             uuid.UUID `json:"cycle_id"`
	Seq                 uint64    `json:"seq"`
	Subjects            int       `json:"subjects"`
	UsedDegradedDataset bool      `json:"used_degraded_dataset"`
	UsedSalvage         bool      `json:"used_salvage"`
	CompletedAt         time.Time `json:"completed_at"`
}

// Store provides read/write access to the published snapshot.
type Store interface {
	// Publish stores result if its Seq is newer than the stored one.
	// It reports whether the snapshot was replaced.
	Publish(ctx context.Context, result model.AggregateResult) bool

	// Latest returns the current snapshot, false if none was published yet.
	Latest(ctx context.Context) (model.AggregateResult, bool)

	// Get returns one subject from the current snapshot.
	// Returns ErrNoSnapshot or ErrNotFound.
	Get(ctx context.Context, id int) (model.SubjectRecord, error)

	// Count returns the number of subjects in the current snapshot.
	Count(ctx context.Context) int

	// History returns the most recent published cycles, newest first.
	History(ctx context.Context) []Cycle
}
