package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/adamwrona/airport-ops/internal/model"
)

// FlightRepo persists flights.  Flights are created by an external
// scheduling process; this repo only reads them and mutates the pilot
// slots and worker-editable fields.
type FlightRepo struct{ DB *sql.DB }

func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{DB: db} }

const flightCols = "id,route_id,main_pilot_id,co_pilot_id,working_hours,departure_at,aircraft,status,repeat_hours,created_at,updated_at"

func scanFlightRow(scan func(dest ...interface{}) error) (model.Flight, error) {
	var (
		f            model.Flight
		mainID, coID sql.NullInt64
		repeat       sql.NullInt32
	)
	err := scan(&f.ID, &f.RouteID, &mainID, &coID, &f.WorkingHours,
		&f.DepartureAt, &f.Aircraft, &f.Status, &repeat, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return f, err
	}
	if mainID.Valid {
		v := uint64(mainID.Int64)
		f.MainPilotID = &v
	}
	if coID.Valid {
		v := uint64(coID.Int64)
		f.CoPilotID = &v
	}
	if repeat.Valid {
		v := uint32(repeat.Int32)
		f.RepeatHours = &v
	}
	return f, nil
}

func (r *FlightRepo) queryFlights(ctx context.Context, q string, args ...interface{}) ([]model.Flight, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Flight{}
	for rows.Next() {
		f, err := scanFlightRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetByID fetches a flight by id.
func (r *FlightRepo) GetByID(ctx context.Context, id uint64) (model.Flight, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+flightCols+" FROM flights WHERE id=? LIMIT 1", id)
	return scanFlightRow(row.Scan)
}

// List returns all flights ordered by departure.
func (r *FlightRepo) List(ctx context.Context) ([]model.Flight, error) {
	return r.queryFlights(ctx,
		"SELECT "+flightCols+" FROM flights ORDER BY departure_at")
}

// ListByPilot returns flights where the pilot occupies either slot.
func (r *FlightRepo) ListByPilot(ctx context.Context, pilotID uint64) ([]model.Flight, error) {
	return r.queryFlights(ctx,
		"SELECT "+flightCols+" FROM flights WHERE main_pilot_id=? OR co_pilot_id=? ORDER BY departure_at",
		pilotID, pilotID)
}

// ListOpen returns flights with at least one unassigned pilot slot.
// These are the recommendation candidates before the hour and vacation
// filters run.
func (r *FlightRepo) ListOpen(ctx context.Context) ([]model.Flight, error) {
	return r.queryFlights(ctx,
		"SELECT "+flightCols+" FROM flights WHERE main_pilot_id IS NULL OR co_pilot_id IS NULL ORDER BY departure_at")
}

// AssignMain fills the main slot if and only if it is still open.
// ErrConflict is returned when another assignment won the race; the
// existing value is never overwritten.
func (r *FlightRepo) AssignMain(ctx context.Context, flightID, pilotID uint64) error {
	return r.assignSlot(ctx, "main_pilot_id", flightID, pilotID)
}

// AssignCo fills the co-pilot slot if and only if it is still open.
func (r *FlightRepo) AssignCo(ctx context.Context, flightID, pilotID uint64) error {
	return r.assignSlot(ctx, "co_pilot_id", flightID, pilotID)
}

func (r *FlightRepo) assignSlot(ctx context.Context, col string, flightID, pilotID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE flights SET "+col+"=?, updated_at=NOW() WHERE id=? AND "+col+" IS NULL",
		pilotID, flightID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// ClearPilot empties every slot on the flight the pilot occupies.
// Each column clears independently; sql.ErrNoRows is returned when the
// pilot held neither slot.
func (r *FlightRepo) ClearPilot(ctx context.Context, flightID, pilotID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE flights
		    SET main_pilot_id = IF(main_pilot_id=?, NULL, main_pilot_id),
		        co_pilot_id   = IF(co_pilot_id=?, NULL, co_pilot_id),
		        updated_at    = NOW()
		  WHERE id=? AND (main_pilot_id=? OR co_pilot_id=?)`,
		pilotID, pilotID, flightID, pilotID, pilotID)
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

// UpdateWorkerFields overwrites the aircraft label and/or the takeoff
// airport on the flight's route.  Both parameters are optional; nil
// leaves the field unchanged.  The two updates run in one transaction.
func (r *FlightRepo) UpdateWorkerFields(ctx context.Context, flightID uint64, aircraft, takeoffAirport *string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var routeID uint64
	err = tx.QueryRowContext(ctx,
		"SELECT route_id FROM flights WHERE id=? LIMIT 1", flightID).Scan(&routeID)
	if err != nil {
		return err
	}
	if aircraft != nil {
		if _, err := tx.ExecContext(ctx,
			"UPDATE flights SET aircraft=?, updated_at=NOW() WHERE id=?",
			*aircraft, flightID); err != nil {
			return err
		}
	}
	if takeoffAirport != nil {
		if _, err := tx.ExecContext(ctx,
			"UPDATE routes SET takeoff_airport=?, updated_at=NOW() WHERE id=?",
			*takeoffAirport, routeID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReminderFlight is one upcoming departure with the email addresses of
// its assigned pilots, loaded for the reminder sweep.
type ReminderFlight struct {
	FlightID       uint64
	Aircraft       string
	DepartureAt    time.Time
	TakeoffAirport string
	LandingAirport string
	PilotEmails    []string
}

// ListDepartingBetween returns flights departing in [from, to) that
// have at least one pilot assigned, with the assigned pilots' emails.
func (r *FlightRepo) ListDepartingBetween(ctx context.Context, from, to time.Time) ([]ReminderFlight, error) {
	const q = `SELECT f.id, f.aircraft, f.departure_at, rt.takeoff_airport, rt.landing_airport, u.email
	             FROM flights f
	             JOIN routes rt ON rt.id = f.route_id
	             JOIN pilots p  ON p.id IN (f.main_pilot_id, f.co_pilot_id)
	             JOIN users u   ON u.id = p.user_id
	            WHERE f.departure_at >= ? AND f.departure_at < ?
	            ORDER BY f.departure_at, f.id`
	rows, err := r.DB.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ReminderFlight{}
	byID := map[uint64]int{}
	for rows.Next() {
		var (
			rf    ReminderFlight
			email string
		)
		if err := rows.Scan(&rf.FlightID, &rf.Aircraft, &rf.DepartureAt,
			&rf.TakeoffAirport, &rf.LandingAirport, &email); err != nil {
			return nil, err
		}
		if i, ok := byID[rf.FlightID]; ok {
			out[i].PilotEmails = append(out[i].PilotEmails, email)
			continue
		}
		rf.PilotEmails = []string{email}
		byID[rf.FlightID] = len(out)
		out = append(out, rf)
	}
	return out, rows.Err()
}
