package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamwrona/airport-ops/internal/geo"
	"github.com/adamwrona/airport-ops/internal/logger"
	"github.com/adamwrona/airport-ops/internal/repository"
	"github.com/adamwrona/airport-ops/internal/weather"
)

const routeColsTest = "id,takeoff_airport,landing_airport,distance_km,duration_min,altitude_m,created_at,updated_at"

func routeWeatherFixture(t *testing.T, upstream http.HandlerFunc) (*RouteHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	wc := weather.NewClient(srv.URL, srv.Client(), nil)
	h := NewRouteHandler(repository.NewRouteRepo(db), repository.NewWeatherRepo(db), wc, logger.NewNop())
	return h, mock
}

func weatherRequest(t *testing.T, routeID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/routes/"+routeID+"/weather", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(routeID)
	return c, rec
}

func TestRouteWeatherFetchesAndStores(t *testing.T) {
	h, mock := routeWeatherFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("latitude"))
		assert.NotEmpty(t, r.URL.Query().Get("longitude"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":21.5,"wind_speed_10m":12.0,"weather_code":61}}`))
	})
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM routes WHERE id=?")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(strings.Split(routeColsTest, ",")).
			AddRow(5, "WAW", "JFK", 6854.0, 540, 11000, now, now))
	// No fresh snapshot stored.
	mock.ExpectQuery(regexp.QuoteMeta("FROM weather_forecasts WHERE route_id=?")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weather_forecasts")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := weatherRequest(t, "5")
	require.NoError(t, h.RouteWeather(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp weatherResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "WAW", resp.Airport)
	assert.Equal(t, 21.5, resp.TemperatureC)
	assert.Equal(t, "rain", resp.Condition)
	assert.False(t, resp.Degraded)

	// The queried coordinates are synthesized from the airport code.
	lat, lon := geo.SynthesizeCoords("WAW")
	assert.Equal(t, lat, resp.Latitude)
	assert.Equal(t, lon, resp.Longitude)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteWeatherDegradesOnUpstreamFailure(t *testing.T) {
	h, mock := routeWeatherFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM routes WHERE id=?")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(strings.Split(routeColsTest, ",")).
			AddRow(5, "WAW", "JFK", 6854.0, 540, 11000, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM weather_forecasts WHERE route_id=?")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	// No insert: degraded placeholders are never persisted.

	c, rec := weatherRequest(t, "5")
	require.NoError(t, h.RouteWeather(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp weatherResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Degraded)
	assert.Equal(t, weather.FallbackTemperatureC, resp.TemperatureC)
	assert.Equal(t, weather.FallbackWindSpeedKMH, resp.WindSpeedKMH)
	assert.Equal(t, weather.FallbackCondition, resp.Condition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteWeatherServesFreshSnapshot(t *testing.T) {
	called := false
	h, mock := routeWeatherFixture(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM routes WHERE id=?")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(strings.Split(routeColsTest, ",")).
			AddRow(5, "WAW", "JFK", 6854.0, 540, 11000, now, now))
	snapCols := []string{"id", "route_id", "latitude", "longitude", "temperature_c", "wind_speed_kmh", "condition", "fetched_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM weather_forecasts WHERE route_id=?")).
		WillReturnRows(sqlmock.NewRows(snapCols).
			AddRow(9, 5, 40.0, -100.0, 18.0, 7.5, "clear", now.Add(-10*time.Minute)))

	c, rec := weatherRequest(t, "5")
	require.NoError(t, h.RouteWeather(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp weatherResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 18.0, resp.TemperatureC)
	assert.Equal(t, "clear", resp.Condition)
	assert.False(t, called, "a fresh snapshot must not trigger an upstream call")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteWeatherHistoryListsSnapshots(t *testing.T) {
	called := false
	h, mock := routeWeatherFixture(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM routes WHERE id=?")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(strings.Split(routeColsTest, ",")).
			AddRow(5, "WAW", "JFK", 6850.0, 510, 11000, now, now))

	lat, lon := geo.SynthesizeCoords("WAW")
	snaps := sqlmock.NewRows([]string{"id", "route_id", "latitude", "longitude", "temperature_c", "wind_speed_kmh", "condition", "fetched_at"}).
		AddRow(2, 5, lat, lon, 18.0, 9.5, "cloudy", now.Add(-30*time.Minute)).
		AddRow(1, 5, lat, lon, 21.5, 12.0, "rain", now.Add(-3*time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM weather_forecasts WHERE route_id=? ORDER BY fetched_at DESC")).
		WithArgs(5).WillReturnRows(snaps)

	c, rec := weatherRequest(t, "5")
	require.NoError(t, h.WeatherHistory(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called, "history must not hit the upstream")

	var resp struct {
		History []weatherResp `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.History, 2)
	assert.Equal(t, "cloudy", resp.History[0].Condition)
	assert.Equal(t, "rain", resp.History[1].Condition)
	assert.NoError(t, mock.ExpectationsWereMet())
}
