// Package resolver fetches a single subject by trying an ordered list of
// equivalent endpoints until one answers with a usable record.
package resolver

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/okian/riskview/internal/adapters/provider"
	"github.com/okian/riskview/internal/domain/model"
	"github.com/okian/riskview/pkg/logger"
	"github.com/okian/riskview/pkg/metrics"
)

// IDPlaceholder is replaced by the subject id in endpoint templates.
const IDPlaceholder = "{id}"

const defaultTimeout = 5 * time.Second

// Metric labels for resolve attempts and results.
const (
	attemptSuccess = "success"
	attemptFailure = "failure"
	resultFound    = "found"
	resultMissing  = "exhausted"
)

// Resolver tries detail endpoints sequentially.
type Resolver struct {
	http    *resty.Client
	timeout time.Duration
	logger  logger.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithHTTPClient replaces the underlying resty client.
func WithHTTPClient(c *resty.Client) Option {
	return func(r *Resolver) {
		if c != nil {
			r.http = c
		}
	}
}

// New returns a resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	if r.http == nil {
		r.http = resty.New()
	}
	r.http.SetRetryCount(0).SetTimeout(r.timeout)
	if r.logger == nil {
		r.logger = logger.Get().Named("resolver")
	}
	return r
}

// Resolve returns the first valid record any endpoint yields for subjectID.
// Endpoints after the winner are never called. It reports false only when
// every endpoint failed.
func (r *Resolver) Resolve(ctx context.Context, s model.Session, subjectID int, endpoints []string) (model.SubjectRecord, bool) {
	id := strconv.Itoa(subjectID)
	for i, tmpl := range endpoints {
		if ctx.Err() != nil {
			break
		}
		url := strings.ReplaceAll(tmpl, IDPlaceholder, id)
		rec, err := r.attempt(ctx, s, url, subjectID)
		if err != nil {
			metrics.RecordResolveAttempt(attemptFailure)
			r.logger.Debug(ctx, "detail endpoint failed",
				logger.Int("subject_id", subjectID),
				logger.Int("attempt", i+1),
				logger.String("url", url),
				logger.Error(err),
			)
			continue
		}
		metrics.RecordResolveAttempt(attemptSuccess)
		metrics.RecordResolveResult(resultFound)
		return rec, true
	}

	metrics.RecordResolveResult(resultMissing)
	r.logger.Warn(ctx, "no detail endpoint answered",
		logger.Int("subject_id", subjectID),
		logger.Int("endpoints", len(endpoints)),
	)
	return model.SubjectRecord{}, false
}

func (r *Resolver) attempt(ctx context.Context, s model.Session, url string, subjectID int) (rec model.SubjectRecord, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeaders(s.Headers()).
		Get(url)
	if err != nil {
		return model.SubjectRecord{}, fmt.Errorf("%w: %v", provider.ErrTransport, err)
	}
	if !resp.IsSuccess() {
		return model.SubjectRecord{}, fmt.Errorf("%w: %d", provider.ErrStatus, resp.StatusCode())
	}
	data, err := provider.DecodeEnvelope(resp.Body())
	if err != nil {
		return model.SubjectRecord{}, err
	}
	return provider.DecodeSubject(data, subjectID)
}
