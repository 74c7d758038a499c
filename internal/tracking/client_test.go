package tracking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateHappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/positions", r.URL.Path)
		assert.Equal(t, "SP-LRA", r.URL.Query().Get("aircraft"))
		_, _ = w.Write([]byte(`{"aircraft":"SP-LRA","latitude":52.16,"longitude":20.96,"altitude_m":10600,"as_of":"2026-03-01T12:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil)
	p, err := c.Locate(context.Background(), "SP-LRA")
	require.NoError(t, err)
	assert.Equal(t, "SP-LRA", p.Aircraft)
	assert.Equal(t, 52.16, p.Latitude)
	assert.Equal(t, 10600.0, p.AltitudeM)
}

func TestLocateUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", &http.Client{Timeout: 200 * time.Millisecond}, nil)
	_, err := c.Locate(context.Background(), "SP-LRA")
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestLocateUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil)
	_, err := c.Locate(context.Background(), "SP-LRA")
	assert.ErrorIs(t, err, ErrUpstreamStatus)
}

func TestLocateMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), nil)
	_, err := c.Locate(context.Background(), "SP-LRA")
	assert.ErrorIs(t, err, ErrBadPayload)
}
