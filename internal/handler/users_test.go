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

	"github.com/adamwrona/airport-ops/internal/repository"
)

const userColsTest = "id,email,password_hash,role,first_name,last_name,is_active,created_at,updated_at"

func newUserHandler(t *testing.T) (*UserHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewUserHandler(repository.NewUserRepo(db), repository.NewEmployeeRepo(db)), mock
}

func userRows(id uint64, role string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(strings.Split(userColsTest, ",")).
		AddRow(id, "someone@example.com", "x", role, "Anna", "Nowak", true, now, now)
}

func meRequest(t *testing.T, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(userID))
	c.Set("role", role)
	return c, rec
}

func TestMeIncludesWorkerPosition(t *testing.T) {
	h, mock := newUserHandler(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(5).WillReturnRows(userRows(5, "WORKER"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM employees WHERE user_id=?")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "position", "hired_at", "created_at"}).
			AddRow(2, 5, "ground crew", now, now))

	c, rec := meRequest(t, 5, "WORKER")
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp userResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Position)
	assert.Equal(t, "ground crew", *resp.Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeOmitsPositionForClients(t *testing.T) {
	h, mock := newUserHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(9).WillReturnRows(userRows(9, "CLIENT"))

	c, rec := meRequest(t, 9, "CLIENT")
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "position")
	assert.NoError(t, mock.ExpectationsWereMet())
}
