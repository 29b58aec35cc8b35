package provider

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/riskview/internal/domain/model"
)

// Accepted wire aliases per field, first present wins.
var (
	idKeys           = []string{"id", "subject_id", "student_id"}
	nameKeys         = []string{"name", "full_name", "student_name"}
	codeKeys         = []string{"matricule", "code", "identifier"}
	groupKeys        = []string{"class_name", "class", "group"}
	riskKeys         = []string{"risk_level", "risk"}
	scoreKeys        = []string{"behavior_score", "score"}
	totalKeys        = []string{"total_incidents", "total_events"}
	recentKeys       = []string{"recent_incidents", "recent_events"}
	interventionKeys = []string{"intervention_count", "interventions"}
	dateKeys         = []string{"last_incident_date", "last_event_date"}
)

// wireRecord holds the numeric fields that need range checks.
type wireRecord struct {
	SubjectID     int  `validate:"gt=0"`
	Score         *int `validate:"omitempty,gte=0,lte=100"`
	Total         *int `validate:"omitempty,gte=0"`
	Recent        *int `validate:"omitempty,gte=0"`
	Interventions *int `validate:"omitempty,gte=0"`
}

var validate = validator.New() //nolint:gochecknoglobals // validator caches struct metadata and is safe for concurrent use

// DecodeRecord decodes one subject-like object. Missing descriptive fields
// get their sentinel defaults.
func DecodeRecord(raw json.RawMessage) (model.SubjectRecord, error) {
	return decodeRecord(raw, 0)
}

// DecodeSubject decodes a detail payload for id; a payload without its own
// id inherits the requested one.
func DecodeSubject(raw json.RawMessage, id int) (model.SubjectRecord, error) {
	return decodeRecord(raw, id)
}

func decodeRecord(raw json.RawMessage, fallbackID int) (model.SubjectRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return model.SubjectRecord{}, fmt.Errorf("%w: not an object", ErrInvalidEntry)
	}

	id, err := pickID(fields, idKeys)
	if err != nil {
		return model.SubjectRecord{}, err
	}
	w := wireRecord{SubjectID: fallbackID}
	if id != nil {
		w.SubjectID = *id
	}
	if w.Score, err = pickInt(fields, scoreKeys); err != nil {
		return model.SubjectRecord{}, err
	}
	if w.Total, err = pickInt(fields, totalKeys); err != nil {
		return model.SubjectRecord{}, err
	}
	if w.Recent, err = pickInt(fields, recentKeys); err != nil {
		return model.SubjectRecord{}, err
	}
	if w.Interventions, err = pickInt(fields, interventionKeys); err != nil {
		return model.SubjectRecord{}, err
	}
	if err := validate.Struct(w); err != nil {
		return model.SubjectRecord{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	r := model.NewSubjectRecord(w.SubjectID)
	r.DisplayName = pickString(fields, nameKeys, model.UnknownName)
	r.IdentifierCode = pickString(fields, codeKeys, model.NotAvailable)
	r.GroupLabel = pickString(fields, groupKeys, model.NotAvailable)
	r.RiskLevel = model.ParseRiskLevel(pickString(fields, riskKeys, ""))
	r.LastEventDate = pickString(fields, dateKeys, "")
	if w.Score != nil {
		r.Score = *w.Score
	}
	if w.Total != nil {
		r.TotalEvents = *w.Total
	}
	if w.Recent != nil {
		r.RecentEvents = *w.Recent
	}
	if w.Interventions != nil {
		r.InterventionCount = *w.Interventions
	}
	return r, nil
}

// pickID returns the first present id alias. Ids are join keys, so a value
// with a fractional part is rejected rather than rounded onto another subject.
func pickID(fields map[string]json.RawMessage, keys []string) (*int, error) {
	f, key, err := pickNumber(fields, keys)
	if err != nil || f == nil {
		return nil, err
	}
	if *f != math.Trunc(*f) {
		return nil, fmt.Errorf("%w: %s is not an integer", ErrInvalidEntry, key)
	}
	n := int(*f)
	return &n, nil
}

// pickInt returns the first present, non-null alias as an int. Numbers with a
// fractional part are rounded; numeric strings are accepted.
func pickInt(fields map[string]json.RawMessage, keys []string) (*int, error) {
	f, _, err := pickNumber(fields, keys)
	if err != nil || f == nil {
		return nil, err
	}
	n := int(math.Round(*f))
	return &n, nil
}

// pickNumber reads the first present alias as a JSON number or numeric string.
func pickNumber(fields map[string]json.RawMessage, keys []string) (*float64, string, error) {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok || isNull(raw) {
			continue
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return &f, k, nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, k, fmt.Errorf("%w: %s is not numeric", ErrInvalidEntry, k)
			}
			return &f, k, nil
		}
		return nil, k, fmt.Errorf("%w: %s has wrong type", ErrInvalidEntry, k)
	}
	return nil, "", nil
}

// pickString returns the first present, non-blank alias as text, or def.
// Numeric values are kept in their literal form.
func pickString(fields map[string]json.RawMessage, keys []string, def string) string {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok || isNull(raw) {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return def
}
