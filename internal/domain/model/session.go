package model

import "time"

// Session carries the caller's auth and scoping context into every provider
// call. It is opaque to the aggregation layer beyond header forwarding.
type Session struct {
	Token        string
	Role         string
	AcademicYear string
}

// Headers returns the request headers a provider call should carry.
func (s Session) Headers() map[string]string {
	h := make(map[string]string, 3)
	if s.Token != "" {
		h["Authorization"] = "Bearer " + s.Token
	}
	if s.Role != "" {
		h["X-Role"] = s.Role
	}
	if s.AcademicYear != "" {
		h["X-Academic-Year"] = s.AcademicYear
	}
	return h
}

// RefreshRequest asks the refresh workers to run one aggregation cycle.
type RefreshRequest struct {
	ID          string
	Seq         uint64
	Reason      string
	Session     Session
	RequestedAt time.Time
}
