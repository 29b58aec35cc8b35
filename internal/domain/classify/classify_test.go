package classify_test

import (
	"testing"

	"github.com/okian/riskview/internal/domain/classify"
	"github.com/okian/riskview/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func record(score, total, recent int) model.SubjectRecord {
	r := model.NewSubjectRecord(1)
	r.Score = score
	r.TotalEvents = total
	r.RecentEvents = recent
	return r
}

func TestClassify_Thresholds(t *testing.T) {
	Convey("Given unclassified records", t, func() {
		Convey("When the score sits on the HIGH boundary", func() {
			Convey("Then 50 and below are HIGH and 51 is MEDIUM", func() {
				So(classify.Classify(record(49, 0, 0)).RiskLevel, ShouldEqual, model.RiskHigh)
				So(classify.Classify(record(50, 0, 0)).RiskLevel, ShouldEqual, model.RiskHigh)
				So(classify.Classify(record(51, 0, 0)).RiskLevel, ShouldEqual, model.RiskMedium)
			})
		})

		Convey("When the score is 85 with no events", func() {
			So(classify.Classify(record(85, 0, 0)).RiskLevel, ShouldEqual, model.RiskNone)
		})

		Convey("When the score is 84 with no events", func() {
			So(classify.Classify(record(84, 0, 0)).RiskLevel, ShouldEqual, model.RiskLow)
		})

		Convey("When counters trip a higher tier than the score", func() {
			So(classify.Classify(record(100, 5, 0)).RiskLevel, ShouldEqual, model.RiskHigh)
			So(classify.Classify(record(100, 0, 3)).RiskLevel, ShouldEqual, model.RiskHigh)
			So(classify.Classify(record(100, 3, 0)).RiskLevel, ShouldEqual, model.RiskMedium)
			So(classify.Classify(record(100, 0, 2)).RiskLevel, ShouldEqual, model.RiskMedium)
			So(classify.Classify(record(100, 1, 0)).RiskLevel, ShouldEqual, model.RiskLow)
			So(classify.Classify(record(100, 0, 1)).RiskLevel, ShouldEqual, model.RiskLow)
		})

		Convey("When the score is in the medium band", func() {
			So(classify.Classify(record(69, 0, 0)).RiskLevel, ShouldEqual, model.RiskMedium)
			So(classify.Classify(record(70, 0, 0)).RiskLevel, ShouldEqual, model.RiskLow)
		})
	})
}

func TestClassify_PreservesSourceLevel(t *testing.T) {
	Convey("Given a record with an explicit level", t, func() {
		r := record(10, 9, 9)
		r.RiskLevel = model.RiskLow

		Convey("Then the level is kept unchanged", func() {
			out := classify.Classify(r)
			So(out, ShouldResemble, r)
		})
	})

	Convey("Given a record with an empty level", t, func() {
		r := record(10, 0, 0)
		r.RiskLevel = ""

		Convey("Then it is treated as unclassified", func() {
			So(classify.Classify(r).RiskLevel, ShouldEqual, model.RiskHigh)
		})
	})
}

func TestClassify_Deterministic(t *testing.T) {
	Convey("Given every counter triple in a grid", t, func() {
		mismatches := 0
		for score := 0; score <= 100; score += 5 {
			for total := 0; total <= 6; total++ {
				for recent := 0; recent <= 4; recent++ {
					a := classify.Classify(record(score, total, recent))
					b := classify.Classify(record(score, total, recent))
					if a.RiskLevel != b.RiskLevel {
						mismatches++
					}
				}
			}
		}

		Convey("Then two runs always agree", func() {
			So(mismatches, ShouldEqual, 0)
		})
	})
}

func TestAll(t *testing.T) {
	Convey("Given a slice of records", t, func() {
		in := []model.SubjectRecord{record(30, 0, 0), record(100, 0, 0)}
		out := classify.All(in)

		Convey("Then each record is classified and the input is untouched", func() {
			So(out[0].RiskLevel, ShouldEqual, model.RiskHigh)
			So(out[1].RiskLevel, ShouldEqual, model.RiskNone)
			So(in[0].RiskLevel, ShouldEqual, model.RiskNone)
		})
	})
}
