// Package fakeprovider serves scripted provider endpoints. It backs the
// fake-providers binary and the httptest servers used across the test suite.
package fakeprovider

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response scripts what an endpoint answers.
type Response struct {
	Status int
	Body   []byte
	Delay  time.Duration
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Error   string `json:"error,omitempty"`
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// OK answers 200 with a successful envelope around data.
func OK(data any) Response {
	return Response{Status: http.StatusOK, Body: mustJSON(envelope{Success: true, Data: data})}
}

// Failure answers 200 with success=false.
func Failure(msg string) Response {
	return Response{Status: http.StatusOK, Body: mustJSON(envelope{Success: false, Error: msg})}
}

// NullData answers 200 with success=true and a null data field.
func NullData() Response {
	return Response{Status: http.StatusOK, Body: []byte(`{"success":true,"data":null}`)}
}

// Malformed answers 200 with a body that is not JSON.
func Malformed() Response {
	return Response{Status: http.StatusOK, Body: []byte(`{"success":tru`)}
}

// Raw answers 200 with body verbatim.
func Raw(body string) Response {
	return Response{Status: http.StatusOK, Body: []byte(body)}
}

// Status answers code with a failure envelope.
func Status(code int) Response {
	r := Failure(http.StatusText(code))
	r.Status = code
	return r
}

// After delays the response by d.
func (r Response) After(d time.Duration) Response {
	r.Delay = d
	return r
}
