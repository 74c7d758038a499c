package repository

import (
	"context"
	"database/sql"

	"github.com/adamwrona/airport-ops/internal/model"
)

// RouteRepo persists routes.
type RouteRepo struct{ DB *sql.DB }

func NewRouteRepo(db *sql.DB) *RouteRepo { return &RouteRepo{DB: db} }

const routeCols = "id,takeoff_airport,landing_airport,distance_km,duration_min,altitude_m,created_at,updated_at"

// Create inserts a route and returns its ID.
func (r *RouteRepo) Create(ctx context.Context, rt model.Route) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO routes (takeoff_airport, landing_airport, distance_km, duration_min, altitude_m) VALUES (?,?,?,?,?)",
		rt.TakeoffAirport, rt.LandingAirport, rt.DistanceKM, rt.DurationMin, rt.AltitudeM)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a route by id.
func (r *RouteRepo) GetByID(ctx context.Context, id uint64) (model.Route, error) {
	var rt model.Route
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+routeCols+" FROM routes WHERE id=? LIMIT 1", id).
		Scan(&rt.ID, &rt.TakeoffAirport, &rt.LandingAirport, &rt.DistanceKM,
			&rt.DurationMin, &rt.AltitudeM, &rt.CreatedAt, &rt.UpdatedAt)
	return rt, err
}

// List returns all routes ordered by id.
func (r *RouteRepo) List(ctx context.Context) ([]model.Route, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+routeCols+" FROM routes ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Route{}
	for rows.Next() {
		var rt model.Route
		if err := rows.Scan(&rt.ID, &rt.TakeoffAirport, &rt.LandingAirport, &rt.DistanceKM,
			&rt.DurationMin, &rt.AltitudeM, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// Update overwrites all mutable route fields.
func (r *RouteRepo) Update(ctx context.Context, rt model.Route) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE routes SET takeoff_airport=?, landing_airport=?, distance_km=?, duration_min=?, altitude_m=?, updated_at=NOW() WHERE id=?",
		rt.TakeoffAirport, rt.LandingAirport, rt.DistanceKM, rt.DurationMin, rt.AltitudeM, rt.ID)
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

// Delete removes a route.  ErrConflict is returned while flights still
// reference it; forecasts cascade.
func (r *RouteRepo) Delete(ctx context.Context, id uint64) error {
	var flights int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM flights WHERE route_id=?", id).Scan(&flights)
	if err != nil {
		return err
	}
	if flights > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM routes WHERE id=?", id)
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
