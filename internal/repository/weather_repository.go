package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/adamwrona/airport-ops/internal/model"
)

// WeatherRepo persists append-only forecast snapshots.  Rows are never
// updated or deleted by the application.
type WeatherRepo struct{ DB *sql.DB }

func NewWeatherRepo(db *sql.DB) *WeatherRepo { return &WeatherRepo{DB: db} }

// Insert appends a snapshot and returns its ID.
func (r *WeatherRepo) Insert(ctx context.Context, w model.WeatherForecast) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO weather_forecasts (route_id, latitude, longitude, temperature_c, wind_speed_kmh, `condition`, fetched_at) VALUES (?,?,?,?,?,?,?)",
		w.RouteID, w.Latitude, w.Longitude, w.TemperatureC, w.WindSpeedKMH, w.Condition, w.FetchedAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// LatestSince returns the newest snapshot for a route fetched at or
// after the cutoff; sql.ErrNoRows when none qualifies.  The weather
// handler uses this to serve a recent snapshot instead of calling the
// upstream again.
func (r *WeatherRepo) LatestSince(ctx context.Context, routeID uint64, cutoff time.Time) (model.WeatherForecast, error) {
	var w model.WeatherForecast
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,route_id,latitude,longitude,temperature_c,wind_speed_kmh,`condition`,fetched_at FROM weather_forecasts WHERE route_id=? AND fetched_at>=? ORDER BY fetched_at DESC LIMIT 1",
		routeID, cutoff).
		Scan(&w.ID, &w.RouteID, &w.Latitude, &w.Longitude, &w.TemperatureC,
			&w.WindSpeedKMH, &w.Condition, &w.FetchedAt)
	return w, err
}

// History returns every snapshot for a route, newest first.
func (r *WeatherRepo) History(ctx context.Context, routeID uint64) ([]model.WeatherForecast, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,route_id,latitude,longitude,temperature_c,wind_speed_kmh,`condition`,fetched_at FROM weather_forecasts WHERE route_id=? ORDER BY fetched_at DESC",
		routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.WeatherForecast{}
	for rows.Next() {
		var w model.WeatherForecast
		if err := rows.Scan(&w.ID, &w.RouteID, &w.Latitude, &w.Longitude,
			&w.TemperatureC, &w.WindSpeedKMH, &w.Condition, &w.FetchedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
