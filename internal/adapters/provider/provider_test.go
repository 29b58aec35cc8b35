package provider_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/riskview/internal/adapters/provider"
	"github.com/okian/riskview/internal/domain/model"
	"github.com/okian/riskview/internal/fakeprovider"
	"github.com/okian/riskview/pkg/logger"
)

func init() {
	_ = logger.Init()
}

const route = "GET /list"

func newFake() (*fakeprovider.Server, *httptest.Server) {
	fake := fakeprovider.New()
	return fake, httptest.NewServer(fake)
}

func TestHTTPClientFetch(t *testing.T) {
	ctx := context.Background()
	session := model.Session{Token: "tok", Role: "counsellor", AcademicYear: "2025-2026"}

	Convey("Given a collection provider", t, func() {
		fake, srv := newFake()
		defer srv.Close()
		client := provider.NewHTTPClient("roster", srv.URL+"/list", provider.WithTimeout(200*time.Millisecond))

		Convey("A valid payload yields every record with its source", func() {
			fake.Set(route, fakeprovider.OK([]map[string]any{
				{"id": 1, "name": "Alice", "behavior_score": 40},
				{"student_id": "2", "student_name": "Bruno", "risk": "medium"},
			}))
			out := client.Fetch(ctx, session)
			So(out.OK(), ShouldBeTrue)
			So(out.Provider, ShouldEqual, "roster")
			So(out.Records, ShouldHaveLength, 2)
			So(out.Records[0].Score, ShouldEqual, 40)
			So(out.Records[0].Source, ShouldEqual, "roster")
			So(out.Records[1].SubjectID, ShouldEqual, 2)
			So(out.Records[1].RiskLevel, ShouldEqual, model.RiskMedium)
			So(out.Records[1].Score, ShouldEqual, model.DefaultScore)
			So(out.Records[1].IdentifierCode, ShouldEqual, model.NotAvailable)
		})

		Convey("Session headers are forwarded", func() {
			fake.Set(route, fakeprovider.OK([]any{}))
			client.Fetch(ctx, session)
			h := fake.LastHeaders(route)
			So(h.Get("Authorization"), ShouldEqual, "Bearer tok")
			So(h.Get("X-Role"), ShouldEqual, "counsellor")
			So(h.Get("X-Academic-Year"), ShouldEqual, "2025-2026")
		})

		Convey("An empty array is a success with no records", func() {
			fake.Set(route, fakeprovider.OK([]any{}))
			out := client.Fetch(ctx, session)
			So(out.OK(), ShouldBeTrue)
			So(out.Records, ShouldBeEmpty)
		})

		Convey("One malformed entry among valid ones is skipped", func() {
			items := make([]any, 0, 10)
			for i := 1; i <= 9; i++ {
				items = append(items, map[string]any{"id": i})
			}
			items = append(items, map[string]any{"name": "no id"})
			fake.Set(route, fakeprovider.OK(items))
			out := client.Fetch(ctx, session)
			So(out.OK(), ShouldBeTrue)
			So(out.Records, ShouldHaveLength, 9)
			So(out.Skipped, ShouldEqual, 1)
		})

		Convey("Out of range values are skipped", func() {
			fake.Set(route, fakeprovider.OK([]any{
				map[string]any{"id": 1, "score": 140},
				map[string]any{"id": 2, "total_incidents": -1},
				map[string]any{"id": 3, "score": true},
				"not an object",
				map[string]any{"id": 4},
			}))
			out := client.Fetch(ctx, session)
			So(out.Records, ShouldHaveLength, 1)
			So(out.Skipped, ShouldEqual, 4)
		})

		Convey("Fractional ids are skipped, not rounded onto another subject", func() {
			fake.Set(route, fakeprovider.OK([]any{
				map[string]any{"id": 7.6},
				map[string]any{"student_id": "7.5"},
				map[string]any{"id": 8.0, "score": 72.6},
			}))
			out := client.Fetch(ctx, session)
			So(out.Records, ShouldHaveLength, 1)
			So(out.Skipped, ShouldEqual, 2)
			So(out.Records[0].SubjectID, ShouldEqual, 8)
			So(out.Records[0].Score, ShouldEqual, 73)
		})

		Convey("Long upstream errors are cut on a character boundary", func() {
			fake.Set(route, fakeprovider.Failure(strings.Repeat("é", 150)))
			out := client.Fetch(ctx, session)
			So(out.OK(), ShouldBeFalse)
			So(len(out.Reason), ShouldBeLessThanOrEqualTo, 200)
			So(utf8.ValidString(out.Reason), ShouldBeTrue)
		})

		Convey("Failures become unavailable outcomes", func() {
			cases := map[string]fakeprovider.Response{
				"status":      fakeprovider.Status(http.StatusInternalServerError),
				"not success": fakeprovider.Failure("denied"),
				"null data":   fakeprovider.NullData(),
				"malformed":   fakeprovider.Malformed(),
				"object data": fakeprovider.OK(map[string]any{"id": 1}),
				"no flag":     fakeprovider.Raw(`{"data":[]}`),
				"timeout":     fakeprovider.OK([]any{}).After(time.Second),
			}
			for _, resp := range cases {
				fake.Set(route, resp)
				out := client.Fetch(ctx, session)
				So(out.OK(), ShouldBeFalse)
				So(out.Reason, ShouldNotBeEmpty)
				So(out.Records, ShouldBeEmpty)
			}
		})

		Convey("A refused connection is unavailable", func() {
			dead := provider.NewHTTPClient("dead", "http://127.0.0.1:1/list")
			out := dead.Fetch(ctx, session)
			So(out.OK(), ShouldBeFalse)
		})
	})

	Convey("Given a POST provider with a data key", t, func() {
		fake, srv := newFake()
		defer srv.Close()
		fake.Set("POST /dash", fakeprovider.OK(map[string]any{
			"students": []any{map[string]any{"id": 5, "full_name": "Emma"}},
		}))
		client := provider.NewHTTPClient("dash", srv.URL+"/dash",
			provider.WithMethod("post"),
			provider.WithDataKey("students"),
			provider.WithBody(map[string]any{"year": "2025"}),
		)

		Convey("The nested array is decoded", func() {
			out := client.Fetch(ctx, model.Session{})
			So(out.OK(), ShouldBeTrue)
			So(out.Records, ShouldHaveLength, 1)
			So(out.Records[0].DisplayName, ShouldEqual, "Emma")
			So(fake.LastHeaders("POST /dash").Get("Content-Type"), ShouldContainSubstring, "application/json")
		})

		Convey("A missing data key is unavailable", func() {
			fake.Set("POST /dash", fakeprovider.OK(map[string]any{"other": []any{}}))
			So(client.Fetch(ctx, model.Session{}).OK(), ShouldBeFalse)
		})
	})
}

func TestIncidentLog(t *testing.T) {
	ctx := context.Background()

	Convey("Given an incident log", t, func() {
		fake, srv := newFake()
		defer srv.Close()
		client := provider.NewIncidentLog(srv.URL + "/list")

		Convey("Incidents fold into one record per subject in first-seen order", func() {
			fake.Set(route, fakeprovider.OK([]any{
				map[string]any{"student_id": 7, "date": "2025-03-02", "student_name": "Nora"},
				map[string]any{"student_id": 3, "date": "2025-01-10"},
				map[string]any{"student_id": 7, "date": "2025-04-11", "matricule": "M7"},
				map[string]any{"student_id": 7, "date": "2025-02-01"},
				map[string]any{"date": "2025-02-01"},
			}))
			out := client.Fetch(ctx, model.Session{})
			So(out.OK(), ShouldBeTrue)
			So(out.Provider, ShouldEqual, provider.SalvageSource)
			So(out.Skipped, ShouldEqual, 1)
			So(out.Records, ShouldHaveLength, 2)

			first := out.Records[0]
			So(first.SubjectID, ShouldEqual, 7)
			So(first.TotalEvents, ShouldEqual, 3)
			So(first.LastEventDate, ShouldEqual, "2025-04-11")
			So(first.DisplayName, ShouldEqual, "Nora")
			So(first.IdentifierCode, ShouldEqual, "M7")
			So(first.RiskLevel, ShouldEqual, model.RiskNone)
			So(first.Source, ShouldEqual, provider.SalvageSource)

			So(out.Records[1].SubjectID, ShouldEqual, 3)
			So(out.Records[1].TotalEvents, ShouldEqual, 1)
		})

		Convey("A failed log is unavailable", func() {
			fake.Set(route, fakeprovider.Failure("down"))
			So(client.Fetch(ctx, model.Session{}).OK(), ShouldBeFalse)
		})
	})
}
