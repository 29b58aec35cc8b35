package fakeprovider_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/riskview/internal/fakeprovider"
)

func get(t *testing.T, url string, header map[string]string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var out map[string]any
	_ = json.Unmarshal(body, &out)
	return resp.StatusCode, out
}

func TestServer(t *testing.T) {
	Convey("Given a scripted server", t, func() {
		fake := fakeprovider.New()
		srv := httptest.NewServer(fake)
		defer srv.Close()

		Convey("An unscripted path answers 404", func() {
			code, _ := get(t, srv.URL+"/nope", nil)
			So(code, ShouldEqual, http.StatusNotFound)
		})

		Convey("A scripted route answers its envelope and counts hits", func() {
			fake.Set("GET /a", fakeprovider.OK([]int{1, 2}))
			code, body := get(t, srv.URL+"/a", map[string]string{"X-Role": "counsellor"})
			So(code, ShouldEqual, http.StatusOK)
			So(body["success"], ShouldEqual, true)
			So(body["data"], ShouldHaveLength, 2)
			So(fake.Hits("GET /a"), ShouldEqual, 1)
			So(fake.LastHeaders("GET /a").Get("X-Role"), ShouldEqual, "counsellor")
		})

		Convey("A route can be re-scripted", func() {
			fake.Set("GET /a", fakeprovider.OK(nil))
			fake.Set("GET /a", fakeprovider.Status(http.StatusServiceUnavailable))
			code, body := get(t, srv.URL+"/a", nil)
			So(code, ShouldEqual, http.StatusServiceUnavailable)
			So(body["success"], ShouldEqual, false)
		})
	})
}

func TestPopulate(t *testing.T) {
	Convey("Given a populated server", t, func() {
		fake := fakeprovider.New()
		fakeprovider.Populate(fake, fakeprovider.NewGenerator(7), 5)
		srv := httptest.NewServer(fake)
		defer srv.Close()

		Convey("The detail route resolves known ids", func() {
			code, body := get(t, srv.URL+"/api/students/3", nil)
			So(code, ShouldEqual, http.StatusOK)
			data, ok := body["data"].(map[string]any)
			So(ok, ShouldBeTrue)
			So(data["id"], ShouldEqual, float64(3))
		})

		Convey("Unknown ids answer 404", func() {
			code, _ := get(t, srv.URL+"/api/students/99", nil)
			So(code, ShouldEqual, http.StatusNotFound)
		})

		Convey("The dashboard nests its array", func() {
			_, body := get(t, srv.URL+fakeprovider.DashboardPath, nil)
			data, ok := body["data"].(map[string]any)
			So(ok, ShouldBeTrue)
			So(data[fakeprovider.DashboardDataKey], ShouldHaveLength, 5)
		})
	})

	Convey("The same seed yields the same subjects", t, func() {
		a := fakeprovider.NewGenerator(42).Subjects(4)
		b := fakeprovider.NewGenerator(42).Subjects(4)
		So(a, ShouldResemble, b)
	})
}
