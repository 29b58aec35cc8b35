// Package classify derives a risk tier for records whose source did not supply one.
package classify

import "github.com/okian/riskview/internal/domain/model"

// Thresholds of the risk ladder. The HIGH score bound is inclusive: a score
// of exactly 50 is HIGH. The other score bounds are strict.
const (
	highScoreMax     = 50
	highTotalEvents  = 5
	highRecentEvents = 3

	mediumScoreBelow   = 70
	mediumTotalEvents  = 3
	mediumRecentEvents = 2

	lowScoreBelow   = 85
	lowTotalEvents  = 1
	lowRecentEvents = 1
)

// Classify returns r with RiskLevel filled in. A level supplied by the source
// is always kept. The function is pure.
func Classify(r model.SubjectRecord) model.SubjectRecord {
	if r.Classified() {
		return r
	}
	r.RiskLevel = Level(r.Score, r.TotalEvents, r.RecentEvents)
	return r
}

// Level computes the tier from raw counters; the first matching rule wins.
func Level(score, totalEvents, recentEvents int) model.RiskLevel {
	switch {
	case score <= highScoreMax || totalEvents >= highTotalEvents || recentEvents >= highRecentEvents:
		return model.RiskHigh
	case score < mediumScoreBelow || totalEvents >= mediumTotalEvents || recentEvents >= mediumRecentEvents:
		return model.RiskMedium
	case score < lowScoreBelow || totalEvents >= lowTotalEvents || recentEvents >= lowRecentEvents:
		return model.RiskLow
	default:
		return model.RiskNone
	}
}

// All classifies every record of rs into a new slice.
func All(rs []model.SubjectRecord) []model.SubjectRecord {
	out := make([]model.SubjectRecord, len(rs))
	for i, r := range rs {
		out[i] = Classify(r)
	}
	return out
}
