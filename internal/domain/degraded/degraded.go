// Package degraded ships the static dataset served when every live provider fails.
package degraded

import "github.com/okian/riskview/internal/domain/model"

// SourceName tags records coming from the degraded dataset.
const SourceName = "degraded"

var dataset = []model.SubjectRecord{ //nolint:gochecknoglobals // fixed, read-only dataset
	{SubjectID: 9001, DisplayName: "Amina Diallo", IdentifierCode: "MAT-2024-001", GroupLabel: "6e A", RiskLevel: model.RiskHigh, Score: 42, TotalEvents: 6, RecentEvents: 3, InterventionCount: 2, LastEventDate: "2024-05-14"},
	{SubjectID: 9002, DisplayName: "Lucas Bernard", IdentifierCode: "MAT-2024-002", GroupLabel: "6e A", RiskLevel: model.RiskMedium, Score: 65, TotalEvents: 3, RecentEvents: 1, InterventionCount: 1, LastEventDate: "2024-05-02"},
	{SubjectID: 9003, DisplayName: "Sofia Rossi", IdentifierCode: "MAT-2024-003", GroupLabel: "5e B", RiskLevel: model.RiskLow, Score: 80, TotalEvents: 1, RecentEvents: 0, InterventionCount: 0, LastEventDate: "2024-03-21"},
	{SubjectID: 9004, DisplayName: "Noah Kouassi", IdentifierCode: "MAT-2024-004", GroupLabel: "5e B", RiskLevel: model.RiskNone, Score: 96, TotalEvents: 0, RecentEvents: 0, InterventionCount: 0},
	{SubjectID: 9005, DisplayName: "Inès Moreau", IdentifierCode: "MAT-2024-005", GroupLabel: "4e C", RiskLevel: model.RiskMedium, Score: 58, TotalEvents: 2, RecentEvents: 2, InterventionCount: 1, LastEventDate: "2024-05-10"},
	{SubjectID: 9006, DisplayName: "Yanis Haddad", IdentifierCode: "MAT-2024-006", GroupLabel: "4e C", RiskLevel: model.RiskHigh, Score: 35, TotalEvents: 8, RecentEvents: 4, InterventionCount: 3, LastEventDate: "2024-05-16"},
	{SubjectID: 9007, DisplayName: "Emma Laurent", IdentifierCode: "MAT-2024-007", GroupLabel: "3e A", RiskLevel: model.RiskLow, Score: 83, TotalEvents: 1, RecentEvents: 1, InterventionCount: 0, LastEventDate: "2024-04-30"},
	{SubjectID: 9008, DisplayName: "Omar Benali", IdentifierCode: "MAT-2024-008", GroupLabel: "3e A", RiskLevel: model.RiskNone, Score: 100, TotalEvents: 0, RecentEvents: 0, InterventionCount: 0},
}

// Dataset returns a fresh copy of the degraded dataset, in display order.
func Dataset() []model.SubjectRecord {
	out := make([]model.SubjectRecord, len(dataset))
	for i, r := range dataset {
		r.Source = SourceName
		out[i] = r
	}
	return out
}
