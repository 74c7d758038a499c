package handler

import (
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

	"github.com/adamwrona/airport-ops/internal/logger"
	"github.com/adamwrona/airport-ops/internal/repository"
	"github.com/adamwrona/airport-ops/internal/tracking"
)

const baggageColsTest = "id,client_id,flight_id,weight_kg,status,created_at,updated_at"

func newBaggageHandler(t *testing.T, trackingURL string) (*BaggageHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tc := tracking.NewClient(trackingURL, &http.Client{Timeout: 2 * time.Second}, nil)
	h := NewBaggageHandler(
		repository.NewBaggageRepo(db),
		repository.NewClientRepo(db),
		repository.NewFlightRepo(db),
		tc,
		logger.NewNop(),
	)
	return h, mock
}

func staffRequest(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(1))
	c.Set("role", "WORKER")
	return c, rec
}

func baggageRows(id, clientID uint64, flightID interface{}) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(strings.Split(baggageColsTest, ",")).
		AddRow(id, clientID, flightID, 18.5, "LOADED", now, now)
}

func TestLocationWithoutFlight(t *testing.T) {
	h, mock := newBaggageHandler(t, "http://127.0.0.1:1")

	mock.ExpectQuery(regexp.QuoteMeta("FROM baggage WHERE id=?")).
		WithArgs(9).WillReturnRows(baggageRows(9, 2, nil))

	c, rec := staffRequest(t, "/api/baggage/9/location")
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.Location(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "not on a flight")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationUnreachableFeed(t *testing.T) {
	// Nothing listens on port 1; the dial fails immediately.
	h, mock := newBaggageHandler(t, "http://127.0.0.1:1")
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM baggage WHERE id=?")).
		WithArgs(9).WillReturnRows(baggageRows(9, 2, 42))
	mock.ExpectQuery(regexp.QuoteMeta("FROM flights WHERE id=?")).
		WithArgs(42).WillReturnRows(flightRows(42, 3, nil, 5, now.Add(24*time.Hour)))

	c, rec := staffRequest(t, "/api/baggage/9/location")
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.Location(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationUpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	h, mock := newBaggageHandler(t, srv.URL)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM baggage WHERE id=?")).
		WithArgs(9).WillReturnRows(baggageRows(9, 2, 42))
	mock.ExpectQuery(regexp.QuoteMeta("FROM flights WHERE id=?")).
		WithArgs(42).WillReturnRows(flightRows(42, 3, nil, 5, now.Add(24*time.Hour)))

	c, rec := staffRequest(t, "/api/baggage/9/location")
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.Location(c))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationRecordsTrackingEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SP-ABC", r.URL.Query().Get("aircraft"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"aircraft":"SP-ABC","latitude":52.1,"longitude":20.9,"altitude_m":10500,"as_of":"2026-08-29T10:00:00Z"}`))
	}))
	defer srv.Close()

	h, mock := newBaggageHandler(t, srv.URL)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM baggage WHERE id=?")).
		WithArgs(9).WillReturnRows(baggageRows(9, 2, 42))
	mock.ExpectQuery(regexp.QuoteMeta("FROM flights WHERE id=?")).
		WithArgs(42).WillReturnRows(flightRows(42, 3, nil, 5, now.Add(24*time.Hour)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO baggage_tracking")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := staffRequest(t, "/api/baggage/9/location")
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.Location(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "52.1")
	assert.NoError(t, mock.ExpectationsWereMet())
}
