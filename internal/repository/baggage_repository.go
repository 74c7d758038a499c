package repository

import (
	"context"
	"database/sql"

	"github.com/adamwrona/airport-ops/internal/model"
)

// BaggageRepo persists checked baggage and its tracking events.
type BaggageRepo struct{ DB *sql.DB }

func NewBaggageRepo(db *sql.DB) *BaggageRepo { return &BaggageRepo{DB: db} }

const baggageCols = "id,client_id,flight_id,weight_kg,status,created_at,updated_at"

func scanBaggageRow(scan func(dest ...interface{}) error) (model.Baggage, error) {
	var (
		b        model.Baggage
		flightID sql.NullInt64
	)
	err := scan(&b.ID, &b.ClientID, &flightID, &b.WeightKG, &b.Status,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	if flightID.Valid {
		v := uint64(flightID.Int64)
		b.FlightID = &v
	}
	return b, nil
}

// Create inserts a bag and returns its ID.
func (r *BaggageRepo) Create(ctx context.Context, b model.Baggage) (uint64, error) {
	var flightID interface{}
	if b.FlightID != nil {
		flightID = *b.FlightID
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO baggage (client_id, flight_id, weight_kg, status) VALUES (?,?,?,?)",
		b.ClientID, flightID, b.WeightKG, b.Status)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a bag by id.
func (r *BaggageRepo) GetByID(ctx context.Context, id uint64) (model.Baggage, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+baggageCols+" FROM baggage WHERE id=? LIMIT 1", id)
	return scanBaggageRow(row.Scan)
}

// List returns all bags, or only one client's bags when clientID is
// non-zero.
func (r *BaggageRepo) List(ctx context.Context, clientID uint64) ([]model.Baggage, error) {
	q := "SELECT " + baggageCols + " FROM baggage ORDER BY id"
	args := []interface{}{}
	if clientID != 0 {
		q = "SELECT " + baggageCols + " FROM baggage WHERE client_id=? ORDER BY id"
		args = append(args, clientID)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Baggage{}
	for rows.Next() {
		b, err := scanBaggageRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update overwrites the mutable fields of a bag.
func (r *BaggageRepo) Update(ctx context.Context, b model.Baggage) error {
	var flightID interface{}
	if b.FlightID != nil {
		flightID = *b.FlightID
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE baggage SET flight_id=?, weight_kg=?, status=?, updated_at=NOW() WHERE id=?",
		flightID, b.WeightKG, b.Status, b.ID)
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

// Delete removes a bag; tracking events cascade.
func (r *BaggageRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM baggage WHERE id=?", id)
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

// AddTracking appends a scan event for a bag.
func (r *BaggageRepo) AddTracking(ctx context.Context, baggageID uint64, location string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO baggage_tracking (baggage_id, location, recorded_at) VALUES (?,?,NOW())",
		baggageID, location)
	return err
}

// Tracking returns a bag's scan events, newest first.
func (r *BaggageRepo) Tracking(ctx context.Context, baggageID uint64) ([]model.BaggageTracking, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,baggage_id,location,recorded_at FROM baggage_tracking WHERE baggage_id=? ORDER BY recorded_at DESC",
		baggageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BaggageTracking{}
	for rows.Next() {
		var t model.BaggageTracking
		if err := rows.Scan(&t.ID, &t.BaggageID, &t.Location, &t.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
