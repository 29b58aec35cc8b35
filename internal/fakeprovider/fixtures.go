package fakeprovider

import (
	"net/http"
	"strconv"
)

// Route patterns served by Populate.
const (
	DashboardPath = "/api/dashboard"
	StudentsPath  = "/api/students"
	IncidentsPath = "/api/incidents"
	DetailPath    = "/api/students/{id}"
)

// DashboardDataKey is the field of the dashboard payload holding its array.
const DashboardDataKey = "students"

// Populate scripts a realistic provider set on s: a dashboard endpoint nesting
// its array under "students", a plain roster using alias field names, an
// incident log and a detail endpoint.
func Populate(s *Server, g *Generator, subjects int) {
	records := g.Subjects(subjects)
	byID := make(map[int]map[string]any, len(records))
	for _, r := range records {
		byID[r["id"].(int)] = r
	}

	s.Set("GET "+DashboardPath, OK(map[string]any{DashboardDataKey: records}))
	s.Set("GET "+StudentsPath, OK(aliased(records)))
	s.Set("GET "+IncidentsPath, OK(g.Incidents(subjects*3, subjects)))
	s.Handle("GET "+DetailPath, func(r *http.Request) Response {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			return Status(http.StatusBadRequest)
		}
		rec, ok := byID[id]
		if !ok {
			return Status(http.StatusNotFound)
		}
		return OK(rec)
	})
}

// aliased rewrites records with the roster's alternative field names.
func aliased(records []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		out = append(out, map[string]any{
			"student_id":   r["id"],
			"student_name": r["name"],
			"code":         r["matricule"],
			"class":        r["class_name"],
			"score":        r["behavior_score"],
		})
	}
	return out
}
