package model

import "time"

// WeatherForecast is an append-only snapshot in the
// `weather_forecasts` table, written lazily the first time weather is
// requested for a route.  The coordinates are the synthesized values
// fed to the external service, kept for traceability.
//
// Fields:
//  ID           – primary key identifier.
//  RouteID      – route the snapshot belongs to.
//  Latitude     – synthesized latitude queried.
//  Longitude    – synthesized longitude queried.
//  TemperatureC – air temperature in Celsius.
//  WindSpeedKMH – wind speed in km/h.
//  Condition    – short condition label (clear, rain, fallback...).
//  FetchedAt    – when the upstream call was made.
type WeatherForecast struct {
	ID           uint64    // weather_forecasts.id
	RouteID      uint64    // weather_forecasts.route_id
	Latitude     float64   // weather_forecasts.latitude
	Longitude    float64   // weather_forecasts.longitude
	TemperatureC float64   // weather_forecasts.temperature_c
	WindSpeedKMH float64   // weather_forecasts.wind_speed_kmh
	Condition    string    // weather_forecasts.condition
	FetchedAt    time.Time // weather_forecasts.fetched_at
}
