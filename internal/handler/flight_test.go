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

	"github.com/adamwrona/airport-ops/internal/logger"
	"github.com/adamwrona/airport-ops/internal/metrics"
	"github.com/adamwrona/airport-ops/internal/repository"
)

// Shared across the package's tests; prometheus registration is global
// and must happen once per binary.
var testMetrics = metrics.New("airport_ops_test")

const (
	pilotColsTest  = "id,user_id,license_number,missing_work_hours,vacation_start,vacation_end,created_at,updated_at"
	flightColsTest = "id,route_id,main_pilot_id,co_pilot_id,working_hours,departure_at,aircraft,status,repeat_hours,created_at,updated_at"
)

func newFlightHandler(t *testing.T) (*FlightHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewFlightHandler(
		repository.NewFlightRepo(db),
		repository.NewPilotRepo(db),
		repository.NewUserRepo(db),
		logger.NewNop(),
		testMetrics,
	)
	return h, mock
}

func pilotRows(pilotID, userID uint64, missingHours float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(strings.Split(pilotColsTest, ",")).
		AddRow(pilotID, userID, "PL-1234", missingHours, nil, nil, now, now)
}

func flightRows(flightID uint64, mainPilot, coPilot interface{}, hours float64, departure time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(strings.Split(flightColsTest, ",")).
		AddRow(flightID, 1, mainPilot, coPilot, hours, departure, "SP-ABC", "SCHEDULED", nil, now, now)
}

func pilotRequest(t *testing.T, method, target, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(userID)) // JWT claims decode numbers as float64
	c.Set("role", "PILOT")
	return c, rec
}

func TestAcceptTakenSlotConflicts(t *testing.T) {
	h, mock := newFlightHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM pilots WHERE user_id=?")).
		WithArgs(7).WillReturnRows(pilotRows(3, 7, 20))
	mock.ExpectQuery(regexp.QuoteMeta("FROM flights WHERE id=?")).
		WithArgs(42).WillReturnRows(flightRows(42, 99, nil, 5, time.Now().Add(48*time.Hour)))
	// Conditional update matches zero rows: the slot is already taken.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE flights SET main_pilot_id=?")).
		WithArgs(3, 42).WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := pilotRequest(t, http.MethodPost, "/api/flight/accept/42", `{"role":"main"}`, 7)
	c.SetParamNames("flightId")
	c.SetParamValues("42")

	require.NoError(t, h.Accept(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already assigned")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptCoSlot(t *testing.T) {
	h, mock := newFlightHandler(t)
	dep := time.Now().Add(48 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM pilots WHERE user_id=?")).
		WithArgs(7).WillReturnRows(pilotRows(3, 7, 20))
	mock.ExpectQuery(regexp.QuoteMeta("FROM flights WHERE id=?")).
		WithArgs(42).WillReturnRows(flightRows(42, 99, nil, 5, dep))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE flights SET co_pilot_id=?")).
		WithArgs(3, 42).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM flights WHERE id=?")).
		WithArgs(42).WillReturnRows(flightRows(42, 99, 3, 5, dep))

	c, rec := pilotRequest(t, http.MethodPost, "/api/flight/accept/42", `{"role":"co-pilot"}`, 7)
	c.SetParamNames("flightId")
	c.SetParamValues("42")

	require.NoError(t, h.Accept(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp flightResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.CoPilotID)
	assert.Equal(t, uint64(3), *resp.CoPilotID)
	require.NotNil(t, resp.MainPilotID)
	assert.Equal(t, uint64(99), *resp.MainPilotID, "other slot must stay untouched")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptUnknownRole(t *testing.T) {
	h, _ := newFlightHandler(t)

	c, rec := pilotRequest(t, http.MethodPost, "/api/flight/accept/42", `{"role":"navigator"}`, 7)
	c.SetParamNames("flightId")
	c.SetParamValues("42")

	require.NoError(t, h.Accept(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeclineWhenNotAssigned(t *testing.T) {
	h, mock := newFlightHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM pilots WHERE user_id=?")).
		WithArgs(7).WillReturnRows(pilotRows(3, 7, 20))
	mock.ExpectQuery(regexp.QuoteMeta("FROM flights WHERE id=?")).
		WithArgs(42).WillReturnRows(flightRows(42, 99, 100, 5, time.Now().Add(48*time.Hour)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE flights")).
		WithArgs(3, 3, 42, 3, 3).WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := pilotRequest(t, http.MethodPost, "/api/flight/decline/42", "", 7)
	c.SetParamNames("flightId")
	c.SetParamValues("42")

	require.NoError(t, h.Decline(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not assigned")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnassignedFiltersByHoursAndVacation(t *testing.T) {
	h, mock := newFlightHandler(t)
	now := time.Now()

	// Vacation spans days 10..12 from now; missing 10 hours.
	vacStart := now.Add(10 * 24 * time.Hour)
	vacEnd := now.Add(12 * 24 * time.Hour)
	rows := sqlmock.NewRows(strings.Split(pilotColsTest, ",")).
		AddRow(3, 7, "PL-1234", 10.0, vacStart, vacEnd, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM pilots WHERE id=?")).
		WithArgs(3).WillReturnRows(rows)

	open := sqlmock.NewRows(strings.Split(flightColsTest, ","))
	// Qualifies: open slot, under the deficit, outside vacation.
	open.AddRow(1, 1, nil, nil, 5.0, now.Add(15*24*time.Hour), "SP-AAA", "SCHEDULED", nil, now, now)
	// Departs during vacation.
	open.AddRow(2, 1, nil, nil, 5.0, now.Add(11*24*time.Hour), "SP-BBB", "SCHEDULED", nil, now, now)
	// Hours equal to the deficit do not qualify.
	open.AddRow(3, 1, nil, nil, 10.0, now.Add(15*24*time.Hour), "SP-CCC", "SCHEDULED", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("main_pilot_id IS NULL OR co_pilot_id IS NULL")).
		WillReturnRows(open)

	c, rec := pilotRequest(t, http.MethodGet, "/api/flight/unassigned/3", "", 7)
	c.SetParamNames("pilotId")
	c.SetParamValues("3")

	require.NoError(t, h.Unassigned(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp recommendationResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Flights, 1)
	assert.Equal(t, uint64(1), resp.Flights[0].ID)
	assert.Equal(t, 10.0, resp.MissingHours)
	assert.True(t, resp.HasVacation)
	assert.False(t, resp.OnVacation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePilotSetsDeficitAndVacation(t *testing.T) {
	h, mock := newFlightHandler(t)
	now := time.Now()
	vacStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	vacEnd := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM pilots WHERE id=?")).
		WithArgs(3).WillReturnRows(pilotRows(3, 7, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE pilots SET missing_work_hours=?")).
		WithArgs(42.5, 3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE pilots SET vacation_start=?, vacation_end=?")).
		WithArgs(vacStart, vacEnd, 3).WillReturnResult(sqlmock.NewResult(0, 1))
	updated := sqlmock.NewRows(strings.Split(pilotColsTest, ",")).
		AddRow(3, 7, "PL-1234", 42.5, vacStart, vacEnd, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM pilots WHERE id=?")).
		WithArgs(3).WillReturnRows(updated)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(7).WillReturnRows(userRows(7, "PILOT"))

	c, rec := jsonRequest(t, http.MethodPut, "/api/flight/pilot/3",
		`{"missing_work_hours":42.5,"vacation_start":"2026-09-01","vacation_end":"2026-09-10"}`)
	c.SetParamNames("pilotId")
	c.SetParamValues("3")

	require.NoError(t, h.UpdatePilot(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp pilotProfileResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 42.5, resp.MissingWorkHours)
	require.NotNil(t, resp.VacationStart)
	assert.Equal(t, "2026-09-01", *resp.VacationStart)
	require.NotNil(t, resp.VacationEnd)
	assert.Equal(t, "2026-09-10", *resp.VacationEnd)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePilotRejectsLoneVacationBound(t *testing.T) {
	h, _ := newFlightHandler(t)

	c, rec := jsonRequest(t, http.MethodPut, "/api/flight/pilot/3", `{"vacation_start":"2026-09-01"}`)
	c.SetParamNames("pilotId")
	c.SetParamValues("3")

	require.NoError(t, h.UpdatePilot(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "set together")
}

func TestUpdateFlightEmptyBodyIsNoOp(t *testing.T) {
	h, mock := newFlightHandler(t)
	dep := time.Now().Add(48 * time.Hour)

	// No UPDATE expected: absent fields leave the row untouched.
	mock.ExpectQuery(regexp.QuoteMeta("FROM flights WHERE id=?")).
		WithArgs(42).WillReturnRows(flightRows(42, 99, nil, 5, dep))

	c, rec := jsonRequest(t, http.MethodPut, "/api/flight/42", `{}`)
	c.SetParamNames("flightId")
	c.SetParamValues("42")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp flightResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(42), resp.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
