package filter_test

import (
	"errors"
	"testing"

	"github.com/okian/riskview/internal/domain/filter"
	"github.com/okian/riskview/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func subject(id int, name, code string, level model.RiskLevel) model.SubjectRecord {
	r := model.NewSubjectRecord(id)
	r.DisplayName = name
	r.IdentifierCode = code
	r.RiskLevel = level
	return r
}

func fixtures() []model.SubjectRecord {
	return []model.SubjectRecord{
		subject(1, "Alice Brown", "MAT-001", model.RiskHigh),
		subject(2, "Bob Martin", "MAT-002", model.RiskMedium),
		subject(3, "Chloé Dubois", "MAT-003", model.RiskLow),
		subject(4, "Dan Alison", "MAT-004", model.RiskNone),
		subject(5, "Eve Stone", "ALI-905", model.RiskHigh),
	}
}

func ids(rs []model.SubjectRecord) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.SubjectID
	}
	return out
}

func TestFilter_Search(t *testing.T) {
	Convey("Given a classified list", t, func() {
		records := fixtures()

		Convey("When searching in lower case for part of a name", func() {
			out := filter.Filter(records, "ali", filter.All)

			Convey("Then names and identifier codes match case-insensitively", func() {
				So(ids(out), ShouldResemble, []int{1, 4, 5})
			})
		})

		Convey("When searching with accents in a different case", func() {
			out := filter.Filter(records, "CHLOÉ", filter.All)
			So(ids(out), ShouldResemble, []int{3})
		})

		Convey("When the search is blank", func() {
			out := filter.Filter(records, "   ", filter.All)
			So(ids(out), ShouldResemble, []int{1, 2, 3, 4, 5})
		})

		Convey("When nothing matches", func() {
			out := filter.Filter(records, "zzz", filter.All)
			So(out, ShouldBeEmpty)
		})
	})
}

func TestFilter_Category(t *testing.T) {
	Convey("Given a classified list", t, func() {
		records := fixtures()

		So(ids(filter.Filter(records, "", filter.High)), ShouldResemble, []int{1, 5})
		So(ids(filter.Filter(records, "", filter.Medium)), ShouldResemble, []int{2})
		So(ids(filter.Filter(records, "", filter.Low)), ShouldResemble, []int{3})
		So(ids(filter.Filter(records, "", filter.None)), ShouldResemble, []int{4})
		So(ids(filter.Filter(records, "", filter.LowOrNone)), ShouldResemble, []int{3, 4})

		Convey("And search and category combine", func() {
			So(ids(filter.Filter(records, "ali", filter.High)), ShouldResemble, []int{1, 5})
		})
	})
}

func TestFilter_Idempotent(t *testing.T) {
	Convey("Given any search and category", t, func() {
		records := fixtures()
		for _, c := range []filter.Category{filter.All, filter.High, filter.LowOrNone} {
			for _, s := range []string{"", "ali", "MAT"} {
				once := filter.Filter(records, s, c)
				twice := filter.Filter(once, s, c)
				So(twice, ShouldResemble, once)
			}
		}
	})
}

func TestParseCategory(t *testing.T) {
	Convey("Given category names", t, func() {
		c, err := filter.ParseCategory("")
		So(err, ShouldBeNil)
		So(c, ShouldEqual, filter.All)

		c, err = filter.ParseCategory(" HIGH ")
		So(err, ShouldBeNil)
		So(c, ShouldEqual, filter.High)

		c, err = filter.ParseCategory("low_or_none")
		So(err, ShouldBeNil)
		So(c, ShouldEqual, filter.LowOrNone)

		_, err = filter.ParseCategory("critical")
		So(errors.Is(err, filter.ErrUnknownCategory), ShouldBeTrue)
	})
}
