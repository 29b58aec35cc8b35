package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/riskview/pkg/metrics"
)

// Error codes carried in error bodies and used as the error_type label.
const (
	codeBadRequest   = "bad_request"
	codeBadCategory  = "bad_category"
	codeBadID        = "bad_id"
	codeNotFound     = "not_found"
	codeBackpressure = "backpressure"
	codeInternal     = "internal_error"
)

// MetricsMiddleware records request and error metrics under route. Error
// metrics use the code the handler wrote, so a 429 is counted as refresh
// backpressure and a 400 as the specific input that was rejected.
func MetricsMiddleware(next http.HandlerFunc, route string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &recorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		ms := float64(time.Since(start).Milliseconds())
		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(route, r.Method, status)
		metrics.RecordHTTPRequestDuration(route, r.Method, status, ms)

		if rec.status < http.StatusBadRequest {
			return
		}
		code := rec.code
		if code == "" {
			code = codeForStatus(rec.status)
		}
		metrics.RecordErrorByEndpoint(route, r.Method, code)
		metrics.RecordErrorByType(code, severity(code))
		metrics.RecordErrorLatency("api."+route, code, ms)
	}
}

// codeForStatus covers responses not written through writeError, such as the
// mux's own 404 and 405.
func codeForStatus(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return codeInternal
	case status == http.StatusTooManyRequests:
		return codeBackpressure
	case status == http.StatusNotFound:
		return codeNotFound
	default:
		return codeBadRequest
	}
}

// severity ranks codes for alerting. Backpressure means refreshes are being
// shed, which is worth noticing; bad input and misses are the caller's.
func severity(code string) string {
	switch code {
	case codeInternal:
		return "high"
	case codeBackpressure:
		return "medium"
	default:
		return "low"
	}
}

// recorder captures the status and error code of a response.
type recorder struct {
	http.ResponseWriter
	status int
	code   string
}

func (rw *recorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}
