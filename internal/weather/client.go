// Package weather calls the external forecast service.  Failures never
// propagate as crashes: callers get a degraded fallback report and the
// error for logging.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/adamwrona/airport-ops/internal/metrics"
)

// Report is the shaped result of one forecast lookup.
type Report struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	TemperatureC float64 `json:"temperature_c"`
	WindSpeedKMH float64 `json:"wind_speed_kmh"`
	Condition    string  `json:"condition"`
	Degraded     bool    `json:"degraded"` // true when fallback constants were served
}

// Fallback constants served when the upstream is unavailable.
const (
	FallbackTemperatureC = 15.0
	FallbackWindSpeedKMH = 10.0
	FallbackCondition    = "unavailable"
)

// Client queries the forecast endpoint with a shared, injected
// *http.Client carrying an explicit timeout.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Metrics *metrics.Metrics
}

func NewClient(baseURL string, httpClient *http.Client, m *metrics.Metrics) *Client {
	return &Client{BaseURL: baseURL, HTTP: httpClient, Metrics: m}
}

// upstream mirrors the subset of the forecast payload we consume.
type upstream struct {
	Current struct {
		Temperature2M float64 `json:"temperature_2m"`
		WindSpeed10M  float64 `json:"wind_speed_10m"`
		WeatherCode   int     `json:"weather_code"`
	} `json:"current"`
}

// Fetch returns the current conditions at the given coordinates.  On
// any upstream failure it returns a degraded Report built from the
// fallback constants together with the underlying error; the Report is
// always usable.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (Report, error) {
	fallback := Report{
		Latitude:     lat,
		Longitude:    lon,
		TemperatureC: FallbackTemperatureC,
		WindSpeedKMH: FallbackWindSpeedKMH,
		Condition:    FallbackCondition,
		Degraded:     true,
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("current", "temperature_2m,wind_speed_10m,weather_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fallback, err
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if c.Metrics != nil {
		c.Metrics.ExternalCallTime.WithLabelValues("weather").Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.countError()
		return fallback, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.countError()
		return fallback, fmt.Errorf("weather upstream status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.countError()
		return fallback, err
	}
	var u upstream
	if err := json.Unmarshal(body, &u); err != nil {
		c.countError()
		return fallback, fmt.Errorf("weather payload: %w", err)
	}
	return Report{
		Latitude:     lat,
		Longitude:    lon,
		TemperatureC: u.Current.Temperature2M,
		WindSpeedKMH: u.Current.WindSpeed10M,
		Condition:    conditionLabel(u.Current.WeatherCode),
	}, nil
}

func (c *Client) countError() {
	if c.Metrics != nil {
		c.Metrics.ExternalCallErrors.WithLabelValues("weather").Inc()
	}
}

// conditionLabel collapses WMO weather codes into coarse labels.
func conditionLabel(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code <= 3:
		return "cloudy"
	case code >= 45 && code <= 48:
		return "fog"
	case code >= 51 && code <= 67:
		return "rain"
	case code >= 71 && code <= 77:
		return "snow"
	case code >= 80 && code <= 82:
		return "showers"
	case code >= 95:
		return "thunderstorm"
	default:
		return "unknown"
	}
}
