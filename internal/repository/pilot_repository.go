package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/adamwrona/airport-ops/internal/model"
)

// PilotRepo persists pilot records.  The vacation columns are nullable
// DATETIMEs; NULL maps to the zero time.Time sentinel on the model.
type PilotRepo struct{ DB *sql.DB }

func NewPilotRepo(db *sql.DB) *PilotRepo { return &PilotRepo{DB: db} }

const pilotCols = "id,user_id,license_number,missing_work_hours,vacation_start,vacation_end,created_at,updated_at"

func scanPilot(row *sql.Row) (model.Pilot, error) {
	var (
		p          model.Pilot
		start, end sql.NullTime
	)
	err := row.Scan(&p.ID, &p.UserID, &p.LicenseNumber, &p.MissingWorkHours,
		&start, &end, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if start.Valid {
		p.VacationStart = start.Time
	}
	if end.Valid {
		p.VacationEnd = end.Time
	}
	return p, nil
}

// Create inserts a pilot row for a freshly registered user.
func (r *PilotRepo) Create(ctx context.Context, userID uint64, licenseNumber string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO pilots (user_id, license_number, missing_work_hours) VALUES (?,?,0)",
		userID, licenseNumber)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a pilot by id.
func (r *PilotRepo) GetByID(ctx context.Context, id uint64) (model.Pilot, error) {
	return scanPilot(r.DB.QueryRowContext(ctx,
		"SELECT "+pilotCols+" FROM pilots WHERE id=? LIMIT 1", id))
}

// GetByUserID fetches the pilot owned by a user account.
func (r *PilotRepo) GetByUserID(ctx context.Context, userID uint64) (model.Pilot, error) {
	return scanPilot(r.DB.QueryRowContext(ctx,
		"SELECT "+pilotCols+" FROM pilots WHERE user_id=? LIMIT 1", userID))
}

// UpdateMissingHours sets the pilot's outstanding hour deficit.
func (r *PilotRepo) UpdateMissingHours(ctx context.Context, pilotID uint64, hours float64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE pilots SET missing_work_hours=?, updated_at=NOW() WHERE id=?", hours, pilotID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateVacation sets or clears the vacation window.  Zero times are
// written as NULL, restoring the "no vacation" sentinel.
func (r *PilotRepo) UpdateVacation(ctx context.Context, pilotID uint64, start, end time.Time) error {
	var s, e interface{}
	if !start.IsZero() {
		s = start
	}
	if !end.IsZero() {
		e = end
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE pilots SET vacation_start=?, vacation_end=?, updated_at=NOW() WHERE id=?",
		s, e, pilotID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
