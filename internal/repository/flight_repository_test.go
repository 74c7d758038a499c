package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignSlotKeepsExistingAssignment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewFlightRepo(db)

	// The WHERE ... IS NULL guard matches nothing when the slot is
	// taken, so the update is a no-op and the caller sees a conflict.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE flights SET main_pilot_id=?, updated_at=NOW() WHERE id=? AND main_pilot_id IS NULL")).
		WithArgs(3, 42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.AssignMain(context.Background(), 42, 3)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearPilotNotAssigned(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewFlightRepo(db)

	mock.ExpectExec("UPDATE flights").
		WithArgs(3, 3, 42, 3, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.ClearPilot(context.Background(), 42, 3)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDepartingBetweenGroupsPilotEmails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewFlightRepo(db)

	dep := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	cols := []string{"id", "aircraft", "departure_at", "takeoff_airport", "landing_airport", "email"}
	mock.ExpectQuery("JOIN pilots").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "SP-AAA", dep, "WAW", "JFK", "captain@example.com").
			AddRow(1, "SP-AAA", dep, "WAW", "JFK", "copilot@example.com").
			AddRow(2, "SP-BBB", dep.Add(time.Hour), "WAW", "LHR", "solo@example.com"))

	out, err := repo.ListDepartingBetween(context.Background(), dep.Add(-time.Hour), dep.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, uint64(1), out[0].FlightID)
	assert.Equal(t, []string{"captain@example.com", "copilot@example.com"}, out[0].PilotEmails)
	assert.Equal(t, []string{"solo@example.com"}, out[1].PilotEmails)
	assert.NoError(t, mock.ExpectationsWereMet())
}
