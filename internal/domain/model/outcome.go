package model

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of one provider invocation: either a success
// carrying records or an unavailable marker with a reason. It is never an error.
type Outcome struct {
	Provider string
	Records  []SubjectRecord
	// Skipped counts malformed entries dropped from an otherwise valid payload.
	Skipped  int
	Reason   string
	Duration time.Duration

	ok bool
}

// Success builds a successful outcome.
func Success(provider string, records []SubjectRecord) Outcome {
	return Outcome{Provider: provider, Records: records, ok: true}
}

// Unavailable builds a failed outcome.
func Unavailable(provider, reason string) Outcome {
	return Outcome{Provider: provider, Reason: reason}
}

// OK reports whether the provider produced a structurally valid payload.
func (o Outcome) OK() bool { return o.ok }

// ProviderReport summarises one provider's contribution to a cycle.
type ProviderReport struct {
	Provider   string `json:"provider"`
	Available  bool   `json:"available"`
	Reason     string `json:"reason,omitempty"`
	Records    int    `json:"records"`
	Skipped    int    `json:"skipped"`
	DurationMs int64  `json:"duration_ms"`
}

// Report converts the outcome into its summary form.
func (o Outcome) Report() ProviderReport {
	return ProviderReport{
		Provider:   o.Provider,
		Available:  o.ok,
		Reason:     o.Reason,
		Records:    len(o.Records),
		Skipped:    o.Skipped,
		DurationMs: o.Duration.Milliseconds(),
	}
}

// AggregateResult is the immutable output of one aggregation cycle.
// Order holds subject ids in merge order; Records holds the values.
type AggregateResult struct {
	CycleID             uuid.UUID
	Seq                 uint64
	Order               []int
	Index               map[int]SubjectRecord
	UsedDegradedDataset bool
	UsedSalvage         bool
	Reports             []ProviderReport
	StartedAt           time.Time
	CompletedAt         time.Time
}

// Len returns the number of subjects in the result.
func (r AggregateResult) Len() int { return len(r.Order) }

// Records returns the subjects in merge order. The slice is a fresh copy.
func (r AggregateResult) Records() []SubjectRecord {
	out := make([]SubjectRecord, 0, len(r.Order))
	for _, id := range r.Order {
		out = append(out, r.Index[id])
	}
	return out
}

// Get returns the record for id.
func (r AggregateResult) Get(id int) (SubjectRecord, bool) {
	rec, ok := r.Index[id]
	return rec, ok
}
