// Package provider wraps remote data endpoints. A provider issues exactly one
// request per Fetch and reports either the decoded records or an Unavailable
// outcome; it never returns an error or panics past Fetch.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/okian/riskview/internal/domain/model"
	"github.com/okian/riskview/pkg/logger"
	"github.com/okian/riskview/pkg/metrics"
)

// Default provider configuration constants.
const (
	defaultTimeout = 8 * time.Second
	maxReasonLen   = 200
)

// Client is one remote source of subject records.
type Client interface {
	// Name identifies the provider in logs, metrics and merge provenance.
	Name() string
	// Fetch performs a single call. It always returns an outcome.
	Fetch(ctx context.Context, s model.Session) model.Outcome
}

// endpoint holds the transport shared by every provider flavour.
type endpoint struct {
	name    string
	url     string
	method  string
	dataKey string
	body    map[string]any
	timeout time.Duration
	http    *resty.Client
	logger  logger.Logger
}

// Option applies a configuration option to a provider.
type Option func(*endpoint)

// WithMethod sets the HTTP method (GET or POST).
func WithMethod(method string) Option {
	return func(e *endpoint) {
		if method != "" {
			e.method = strings.ToUpper(method)
		}
	}
}

// WithDataKey makes the provider read its array from data[key].
func WithDataKey(key string) Option {
	return func(e *endpoint) { e.dataKey = key }
}

// WithBody sets the JSON body sent by POST providers.
func WithBody(body map[string]any) Option {
	return func(e *endpoint) { e.body = body }
}

// WithTimeout sets the fixed per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *endpoint) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *endpoint) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHTTPClient replaces the underlying resty client. Its timeout is
// overridden by WithTimeout.
func WithHTTPClient(c *resty.Client) Option {
	return func(e *endpoint) {
		if c != nil {
			e.http = c
		}
	}
}

func newEndpoint(name, url string, opts ...Option) endpoint {
	e := endpoint{
		name:    name,
		url:     url,
		method:  http.MethodGet,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(&e)
	}
	if e.http == nil {
		e.http = resty.New()
	}
	// Single attempt: the aggregator falls back instead of retrying.
	e.http.SetRetryCount(0).SetTimeout(e.timeout)
	if e.logger == nil {
		e.logger = logger.Get().Named("provider")
	}
	e.logger = e.logger.With(logger.String("provider", name))
	return e
}

// call performs the request and returns the raw 2xx body.
func (e *endpoint) call(ctx context.Context, s model.Session) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req := e.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeaders(s.Headers())
	if e.method == http.MethodPost {
		body := e.body
		if body == nil {
			body = map[string]any{}
		}
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(e.method, e.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}
	return resp.Body(), nil
}

// finish stamps duration and records metrics for a completed Fetch.
func (e *endpoint) finish(ctx context.Context, out *model.Outcome, start time.Time) {
	out.Provider = e.name
	out.Duration = time.Since(start)
	metrics.RecordProviderLatency(e.name, float64(out.Duration.Milliseconds()))
	if out.OK() {
		metrics.RecordProviderFetch(e.name, metrics.OutcomeSuccess)
		metrics.RecordProviderSkipped(e.name, out.Skipped)
		e.logger.Debug(ctx, "provider fetched",
			logger.Int("records", len(out.Records)),
			logger.Int("skipped", out.Skipped),
			logger.Duration("duration", out.Duration),
		)
		return
	}
	metrics.RecordProviderFetch(e.name, metrics.OutcomeUnavailable)
	metrics.RecordErrorByComponent("provider", e.name)
	e.logger.Warn(ctx, "provider unavailable",
		logger.String("reason", out.Reason),
		logger.Duration("duration", out.Duration),
	)
}

// recoverInto turns a panic inside Fetch into an Unavailable outcome.
func (e *endpoint) recoverInto(out *model.Outcome) {
	if r := recover(); r != nil {
		*out = model.Unavailable(e.name, fmt.Sprintf("panic: %v", r))
	}
}

func reason(err error) string {
	msg := err.Error()
	if len(msg) <= maxReasonLen {
		return msg
	}
	cut := maxReasonLen
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}

// HTTPClient is a provider returning a collection of subject-like objects.
type HTTPClient struct {
	endpoint
}

// NewHTTPClient creates a collection provider for url.
func NewHTTPClient(name, url string, opts ...Option) *HTTPClient {
	return &HTTPClient{endpoint: newEndpoint(name, url, opts...)}
}

// Name returns the provider name.
func (c *HTTPClient) Name() string { return c.name }

// Fetch issues one request and decodes the collection. Malformed entries are
// skipped and counted; any envelope or transport failure yields Unavailable.
func (c *HTTPClient) Fetch(ctx context.Context, s model.Session) (out model.Outcome) {
	start := time.Now()
	defer c.finish(ctx, &out, start)
	defer c.recoverInto(&out)

	body, err := c.call(ctx, s)
	if err != nil {
		return model.Unavailable(c.name, reason(err))
	}
	items, err := DecodeCollection(body, c.dataKey)
	if err != nil {
		return model.Unavailable(c.name, reason(err))
	}

	records := make([]model.SubjectRecord, 0, len(items))
	skipped := 0
	for i, raw := range items {
		rec, err := DecodeRecord(raw)
		if err != nil {
			skipped++
			c.logger.Debug(ctx, "skipping malformed entry", logger.Int("index", i), logger.Error(err))
			continue
		}
		rec.Source = c.name
		records = append(records, rec)
	}

	out = model.Success(c.name, records)
	out.Skipped = skipped
	return out
}
