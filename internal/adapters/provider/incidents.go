package provider

import (
	"context"
	"encoding/json"
	"time"

	"github.com/okian/riskview/internal/domain/model"
	"github.com/okian/riskview/pkg/logger"
)

// SalvageSource is the Source stamped on records synthesised from raw incidents.
const SalvageSource = "incident-log"

var (
	incidentSubjectKeys = []string{"student_id", "subject_id"}
	incidentDateKeys    = []string{"date", "incident_date"}
)

// IncidentLog reads a raw incident log and synthesises one record per
// distinct subject. It is the salvage source used when every collection
// provider came back empty.
type IncidentLog struct {
	endpoint
}

// NewIncidentLog creates an incident-log client for url.
func NewIncidentLog(url string, opts ...Option) *IncidentLog {
	return &IncidentLog{endpoint: newEndpoint(SalvageSource, url, opts...)}
}

// Name returns the provider name.
func (c *IncidentLog) Name() string { return c.name }

// Fetch issues one request and folds the incidents into subject records in
// first-seen order. Incidents without a usable subject id are skipped.
func (c *IncidentLog) Fetch(ctx context.Context, s model.Session) (out model.Outcome) {
	start := time.Now()
	defer c.finish(ctx, &out, start)
	defer c.recoverInto(&out)

	body, err := c.call(ctx, s)
	if err != nil {
		return model.Unavailable(c.name, reason(err))
	}
	items, err := DecodeCollection(body, c.dataKey)
	if err != nil {
		return model.Unavailable(c.name, reason(err))
	}

	records, skipped := Synthesise(items)
	for i := range records {
		records[i].Source = c.name
	}
	if skipped > 0 {
		c.logger.Debug(ctx, "skipped incidents", logger.Int("skipped", skipped))
	}

	out = model.Success(c.name, records)
	out.Skipped = skipped
	return out
}

// Synthesise folds raw incidents into subject records. TotalEvents is the
// incident count and LastEventDate the greatest ISO date seen.
func Synthesise(items []json.RawMessage) ([]model.SubjectRecord, int) {
	order := make([]int, 0, len(items))
	byID := make(map[int]*model.SubjectRecord, len(items))
	skipped := 0

	for _, raw := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			skipped++
			continue
		}
		id, err := pickID(fields, incidentSubjectKeys)
		if err != nil || id == nil || *id <= 0 {
			skipped++
			continue
		}

		rec, seen := byID[*id]
		if !seen {
			r := model.NewSubjectRecord(*id)
			rec = &r
			byID[*id] = rec
			order = append(order, *id)
		}
		rec.TotalEvents++
		if rec.DisplayName == model.UnknownName {
			rec.DisplayName = pickString(fields, nameKeys, model.UnknownName)
		}
		if rec.IdentifierCode == model.NotAvailable {
			rec.IdentifierCode = pickString(fields, codeKeys, model.NotAvailable)
		}
		if rec.GroupLabel == model.NotAvailable {
			rec.GroupLabel = pickString(fields, groupKeys, model.NotAvailable)
		}
		// ISO-8601 dates order lexicographically.
		if d := pickString(fields, incidentDateKeys, ""); d > rec.LastEventDate {
			rec.LastEventDate = d
		}
	}

	out := make([]model.SubjectRecord, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, skipped
}
