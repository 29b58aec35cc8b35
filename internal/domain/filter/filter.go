// Package filter narrows a classified subject list by search text and risk category.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/okian/riskview/internal/domain/model"
)

// ErrUnknownCategory is returned by ParseCategory for unrecognised names.
var ErrUnknownCategory = errors.New("unknown category")

// Category selects records by risk tier.
type Category string

// Supported categories. LowOrNone is the combined "low or unclassified" tier.
const (
	All       Category = "all"
	High      Category = "high"
	Medium    Category = "medium"
	Low       Category = "low"
	None      Category = "none"
	LowOrNone Category = "low_or_none"
)

// ParseCategory resolves a category name; empty input means All.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return All, nil
	case All, High, Medium, Low, None, LowOrNone:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}

// Match reports whether level belongs to the category.
func (c Category) Match(level model.RiskLevel) bool {
	switch c {
	case All, "":
		return true
	case High:
		return level == model.RiskHigh
	case Medium:
		return level == model.RiskMedium
	case Low:
		return level == model.RiskLow
	case None:
		return level == model.RiskNone || level == ""
	case LowOrNone:
		return level == model.RiskLow || level == model.RiskNone || level == ""
	default:
		return false
	}
}

// Filter returns the records matching both the search text and the category,
// preserving input order. The search is a case-folded substring match against
// DisplayName and IdentifierCode; blank search matches everything.
func Filter(records []model.SubjectRecord, search string, category Category) []model.SubjectRecord {
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(search))

	out := make([]model.SubjectRecord, 0, len(records))
	for _, r := range records {
		if !category.Match(r.RiskLevel) {
			continue
		}
		if needle != "" &&
			!strings.Contains(folder.String(r.DisplayName), needle) &&
			!strings.Contains(folder.String(r.IdentifierCode), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}
