// Package tracking proxies the external aircraft-position feed.  The
// three failure modes map onto distinct HTTP statuses at the handler:
// unreachable upstream (503), upstream error status (502), malformed
// payload (500).
package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/adamwrona/airport-ops/internal/metrics"
)

var (
	// ErrUnreachable means the feed could not be contacted at all.
	ErrUnreachable = errors.New("tracking feed unreachable")
	// ErrUpstreamStatus means the feed answered with a non-2xx status.
	ErrUpstreamStatus = errors.New("tracking feed returned error status")
	// ErrBadPayload means the feed answered 2xx with undecodable JSON.
	ErrBadPayload = errors.New("tracking feed returned malformed payload")
)

// Position is the shaped result of one aircraft lookup.
type Position struct {
	Aircraft  string  `json:"aircraft"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AltitudeM float64 `json:"altitude_m"`
	AsOf      string  `json:"as_of"`
}

// Client queries the position feed with a shared, injected
// *http.Client carrying an explicit timeout.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Metrics *metrics.Metrics
}

func NewClient(baseURL string, httpClient *http.Client, m *metrics.Metrics) *Client {
	return &Client{BaseURL: baseURL, HTTP: httpClient, Metrics: m}
}

// Locate returns the last known position of an aircraft.  Errors wrap
// one of the package sentinels so the handler can pick the status.
func (c *Client) Locate(ctx context.Context, aircraft string) (Position, error) {
	q := url.Values{}
	q.Set("aircraft", aircraft)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/positions?"+q.Encode(), nil)
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if c.Metrics != nil {
		c.Metrics.ExternalCallTime.WithLabelValues("tracking").Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.countError()
		return Position{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.countError()
		return Position{}, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.countError()
		return Position{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	var p Position
	if err := json.Unmarshal(body, &p); err != nil {
		c.countError()
		return Position{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if p.Aircraft == "" {
		p.Aircraft = aircraft
	}
	return p, nil
}

func (c *Client) countError() {
	if c.Metrics != nil {
		c.Metrics.ExternalCallErrors.WithLabelValues("tracking").Inc()
	}
}
