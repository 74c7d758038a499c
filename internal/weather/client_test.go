package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchHappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "40.1234", r.URL.Query().Get("latitude"))
		assert.Equal(t, "-100.5000", r.URL.Query().Get("longitude"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":21.5,"wind_speed_10m":12.3,"weather_code":61}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil)
	rep, err := c.Fetch(context.Background(), 40.1234, -100.5)
	require.NoError(t, err)
	assert.Equal(t, 21.5, rep.TemperatureC)
	assert.Equal(t, 12.3, rep.WindSpeedKMH)
	assert.Equal(t, "rain", rep.Condition)
	assert.False(t, rep.Degraded)
}

func TestFetchUpstreamStatusFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil)
	rep, err := c.Fetch(context.Background(), 30, -90)
	require.Error(t, err)
	assert.True(t, rep.Degraded)
	assert.Equal(t, FallbackTemperatureC, rep.TemperatureC)
	assert.Equal(t, FallbackCondition, rep.Condition)
}

func TestFetchMalformedPayloadFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current":`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil)
	rep, err := c.Fetch(context.Background(), 30, -90)
	require.Error(t, err)
	assert.True(t, rep.Degraded)
}

func TestFetchUnreachableFallsBack(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", &http.Client{Timeout: 200 * time.Millisecond}, nil)
	rep, err := c.Fetch(context.Background(), 30, -90)
	require.Error(t, err)
	assert.True(t, rep.Degraded)
}

func TestConditionLabel(t *testing.T) {
	assert.Equal(t, "clear", conditionLabel(0))
	assert.Equal(t, "cloudy", conditionLabel(2))
	assert.Equal(t, "fog", conditionLabel(45))
	assert.Equal(t, "snow", conditionLabel(73))
	assert.Equal(t, "thunderstorm", conditionLabel(96))
	assert.Equal(t, "unknown", conditionLabel(40))
}
