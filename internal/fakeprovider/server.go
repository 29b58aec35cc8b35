package fakeprovider

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/okian/riskview/pkg/logger"
)

// HandlerFunc builds a response per request, for routes with path values.
type HandlerFunc func(r *http.Request) Response

// Server is an http.Handler whose routes can be re-scripted at any time.
type Server struct {
	mu      sync.RWMutex
	mux     *http.ServeMux
	routes  map[string]HandlerFunc
	hits    map[string]int
	headers map[string]http.Header
	logger  logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns an empty server. Unscripted paths answer 404.
func New(opts ...Option) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		routes:  make(map[string]HandlerFunc),
		hits:    make(map[string]int),
		headers: make(map[string]http.Header),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set scripts a fixed response for pattern (a ServeMux pattern).
func (s *Server) Set(pattern string, resp Response) {
	s.Handle(pattern, func(*http.Request) Response { return resp })
}

// Handle scripts a per-request response for pattern.
func (s *Server) Handle(pattern string, fn HandlerFunc) {
	s.mu.Lock()
	_, registered := s.routes[pattern]
	s.routes[pattern] = fn
	s.mu.Unlock()

	if !registered {
		s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			s.serve(pattern, w, r)
		})
	}
}

// Hits returns how many requests pattern has served.
func (s *Server) Hits(pattern string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits[pattern]
}

// LastHeaders returns the headers of the latest request to pattern.
func (s *Server) LastHeaders(pattern string) http.Header {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.headers[pattern].Clone()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) serve(pattern string, w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	fn := s.routes[pattern]
	s.hits[pattern]++
	s.headers[pattern] = r.Header.Clone()
	s.mu.Unlock()

	resp := fn(r)
	if resp.Delay > 0 {
		if !sleep(r.Context(), resp.Delay) {
			return
		}
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(resp.Body); err != nil {
		s.logger.Debug(r.Context(), "write failed", logger.String("path", r.URL.Path), logger.Error(err))
	}
	s.logger.Debug(r.Context(), "served",
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
		logger.Int("status", status),
	)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
