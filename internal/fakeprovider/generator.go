package fakeprovider

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Generator value ranges.
const (
	firstSubjectID   = 1
	maxTotalEvents   = 8
	maxInterventions = 4
	incidentSpanDays = 120
)

var (
	firstNames = []string{"Alice", "Bruno", "Chloé", "Driss", "Emma", "Farid", "Inès", "Jules", "Léa", "Malik", "Nora", "Omar"}
	lastNames  = []string{"Martin", "Bernard", "Dubois", "Benali", "Moreau", "Haddad", "Laurent", "Simon"}
	classes    = []string{"6A", "6B", "5A", "5B", "4A", "3A"}
)

// Generator produces deterministic wire-shaped payloads for a seed.
type Generator struct {
	rnd  *rand.Rand
	base time.Time
}

// NewGenerator returns a generator for seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rnd:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		base: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Subjects returns n subject objects using the canonical wire names.
func (g *Generator) Subjects(n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := range n {
		id := firstSubjectID + i
		total := g.rnd.IntN(maxTotalEvents + 1)
		recent := 0
		if total > 0 {
			recent = g.rnd.IntN(total + 1)
		}
		rec := map[string]any{
			"id":                 id,
			"name":               g.name(),
			"matricule":          fmt.Sprintf("MAT-%04d", id),
			"class_name":         classes[g.rnd.IntN(len(classes))],
			"behavior_score":     40 + g.rnd.IntN(61),
			"total_incidents":    total,
			"recent_incidents":   recent,
			"intervention_count": g.rnd.IntN(maxInterventions + 1),
		}
		if total > 0 {
			rec["last_incident_date"] = g.date()
		}
		out = append(out, rec)
	}
	return out
}

// Incidents returns raw incidents spread across subjects 1..subjects.
func (g *Generator) Incidents(n, subjects int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for range n {
		id := firstSubjectID + g.rnd.IntN(subjects)
		out = append(out, map[string]any{
			"student_id": id,
			"matricule":  fmt.Sprintf("MAT-%04d", id),
			"date":       g.date(),
		})
	}
	return out
}

func (g *Generator) name() string {
	return firstNames[g.rnd.IntN(len(firstNames))] + " " + lastNames[g.rnd.IntN(len(lastNames))]
}

func (g *Generator) date() string {
	return g.base.AddDate(0, 0, g.rnd.IntN(incidentSpanDays)).Format(time.DateOnly)
}
