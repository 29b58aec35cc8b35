package aggregate

import (
	"fmt"

	"github.com/okian/riskview/internal/domain/model"
)

// Policy decides how a later provider's record combines with an earlier one
// for the same subject.
type Policy string

// Merge policies.
const (
	// Overwrite replaces the earlier record wholesale.
	Overwrite Policy = "overwrite"
	// Enrich takes only the later record's non-default fields.
	Enrich Policy = "enrich"
)

// ParsePolicy maps a configuration value onto a Policy. Empty means Overwrite.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", Overwrite:
		return Overwrite, nil
	case Enrich:
		return Enrich, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// merged is an insertion-ordered map of records keyed by subject id.
type merged struct {
	order []int
	index map[int]model.SubjectRecord
}

func newMerged(capacity int) *merged {
	return &merged{
		order: make([]int, 0, capacity),
		index: make(map[int]model.SubjectRecord, capacity),
	}
}

// add folds r in. A replaced id keeps the position of its first insertion.
func (m *merged) add(r model.SubjectRecord, p Policy) {
	prev, seen := m.index[r.SubjectID]
	if !seen {
		m.order = append(m.order, r.SubjectID)
		m.index[r.SubjectID] = r
		return
	}
	if p == Enrich {
		m.index[r.SubjectID] = enrich(prev, r)
		return
	}
	m.index[r.SubjectID] = r
}

func (m *merged) len() int { return len(m.order) }

// enrich overlays the non-default fields of next onto prev.
func enrich(prev, next model.SubjectRecord) model.SubjectRecord {
	out := prev
	if next.DisplayName != model.UnknownName {
		out.DisplayName = next.DisplayName
	}
	if next.IdentifierCode != model.NotAvailable {
		out.IdentifierCode = next.IdentifierCode
	}
	if next.GroupLabel != model.NotAvailable {
		out.GroupLabel = next.GroupLabel
	}
	if next.Classified() {
		out.RiskLevel = next.RiskLevel
	}
	if next.Score != model.DefaultScore {
		out.Score = next.Score
	}
	if next.TotalEvents != 0 {
		out.TotalEvents = next.TotalEvents
	}
	if next.RecentEvents != 0 {
		out.RecentEvents = next.RecentEvents
	}
	if next.InterventionCount != 0 {
		out.InterventionCount = next.InterventionCount
	}
	if next.LastEventDate != "" {
		out.LastEventDate = next.LastEventDate
	}
	out.Source = next.Source
	return out
}
