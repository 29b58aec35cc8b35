// Package model contains domain models passed between layers.
package model

import (
	"strings"
)

// Sentinels used when a source omits descriptive fields.
const (
	UnknownName  = "Unknown"
	NotAvailable = "N/A"
	DefaultScore = 100
	MaxScore     = 100
)

// RiskLevel is the classified risk tier of a subject.
type RiskLevel string

// Risk tiers. RiskNone means "unclassified", not "no risk".
const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
	RiskNone   RiskLevel = "NONE"
)

// ParseRiskLevel maps a source-provided risk string onto a RiskLevel.
// Unknown or empty values are treated as unclassified.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH", "ELEVE", "ÉLEVÉ":
		return RiskHigh
	case "MEDIUM", "MOYEN":
		return RiskMedium
	case "LOW", "FAIBLE":
		return RiskLow
	default:
		return RiskNone
	}
}

// SubjectRecord is the unit of aggregation. SubjectID is the only stable
// join key; every other field is best-effort.
type SubjectRecord struct {
	SubjectID         int       `json:"subject_id"`
	DisplayName       string    `json:"display_name"`
	IdentifierCode    string    `json:"identifier_code"`
	GroupLabel        string    `json:"group_label"`
	RiskLevel         RiskLevel `json:"risk_level"`
	Score             int       `json:"score"`
	TotalEvents       int       `json:"total_events"`
	RecentEvents      int       `json:"recent_events"`
	InterventionCount int       `json:"intervention_count"`
	LastEventDate     string    `json:"last_event_date,omitempty"`

	// Source names the provider whose record won the merge.
	Source string `json:"source,omitempty"`
}

// NewSubjectRecord returns a record for id with every optional field at its default.
func NewSubjectRecord(id int) SubjectRecord {
	return SubjectRecord{
		SubjectID:      id,
		DisplayName:    UnknownName,
		IdentifierCode: NotAvailable,
		GroupLabel:     NotAvailable,
		RiskLevel:      RiskNone,
		Score:          DefaultScore,
	}
}

// Classified reports whether the record carries a usable risk tier.
func (r SubjectRecord) Classified() bool {
	return r.RiskLevel != "" && r.RiskLevel != RiskNone
}
