package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/ncobase/unicourse/course"
	"github.com/ncobase/unicourse/tracing"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

// ErrNoEndpoint is returned when the client has no base URL.
var ErrNoEndpoint = errors.New("search: endpoint is not configured")

const (
	defaultTimeout = 8 * time.Second
	maxBodySize    = 4 << 20
)

// Params are the query parameters of the search endpoint.
type Params struct {
	Term string `url:"term"`
}

// Client calls GET {base}/search_courses.
type Client struct {
	base string
	path string
	http *http.Client
	cb   *gobreaker.CircuitBreaker
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithPath overrides the endpoint path.
func WithPath(p string) ClientOption {
	return func(c *Client) { c.path = "/" + strings.TrimLeft(p, "/") }
}

// NewClient creates a client for base. A zero timeout uses the default.
func NewClient(base string, timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		base: strings.TrimRight(base, "/"),
		path: "/search_courses",
		http: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "search_courses",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return c
}

// State reports the circuit breaker state.
func (c *Client) State() gobreaker.State {
	return c.cb.State()
}

// Search returns the raw, unfiltered results for term.
func (c *Client) Search(ctx context.Context, term string) ([]course.Course, error) {
	if c.base == "" {
		return nil, ErrNoEndpoint
	}
	ctx, span := tracing.Start(ctx, "search.Client.Search", attribute.String("search.endpoint", c.base+c.path))
	res, err := c.cb.Execute(func() (interface{}, error) {
		return c.do(ctx, term)
	})
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}
	return res.([]course.Course), nil
}

func (c *Client) do(ctx context.Context, term string) ([]course.Course, error) {
	qs, err := query.Values(Params{Term: term})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+c.path+"?"+qs.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, fmt.Errorf("search endpoint returned status %d", resp.StatusCode)
	}

	var out []course.Course
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	if out == nil {
		out = []course.Course{}
	}
	return out, nil
}
