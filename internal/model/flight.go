package model

import "time"

// Flight represents a scheduled flight in the `flights` table.  The
// main-pilot and co-pilot slots are independent nullable foreign
// keys: assigning or clearing one never touches the other.  Status
// is a free-text label and is not driven by the assignment logic.
//
// Fields:
//  ID            – primary key identifier.
//  RouteID       – route flown.
//  MainPilotID   – pilot in the captain slot (nil = open).
//  CoPilotID     – pilot in the co-pilot slot (nil = open).
//  WorkingHours  – hours credited to an assigned pilot.
//  DepartureAt   – scheduled departure timestamp.
//  Aircraft      – aircraft label (tail number or type).
//  Status        – free-text status label.
//  RepeatHours   – recurrence period in hours; nil = one-time flight.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Flight struct {
	ID           uint64     // flights.id
	RouteID      uint64     // flights.route_id
	MainPilotID  *uint64    // flights.main_pilot_id (nullable)
	CoPilotID    *uint64    // flights.co_pilot_id (nullable)
	WorkingHours float64    // flights.working_hours
	DepartureAt  time.Time  // flights.departure_at
	Aircraft     string     // flights.aircraft
	Status       string     // flights.status
	RepeatHours  *uint32    // flights.repeat_hours (nullable)
	CreatedAt    time.Time  // flights.created_at
	UpdatedAt    time.Time  // flights.updated_at
}

// Route represents a row in the `routes` table.  A route has many
// flights and many weather forecast snapshots.
//
// Fields:
//  ID             – primary key identifier.
//  TakeoffAirport – departure airport code.
//  LandingAirport – arrival airport code.
//  DistanceKM     – great-circle distance in kilometres.
//  DurationMin    – nominal duration in minutes.
//  AltitudeM      – cruise altitude in metres.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Route struct {
	ID             uint64    // routes.id
	TakeoffAirport string    // routes.takeoff_airport
	LandingAirport string    // routes.landing_airport
	DistanceKM     float64   // routes.distance_km
	DurationMin    uint32    // routes.duration_min
	AltitudeM      uint32    // routes.altitude_m
	CreatedAt      time.Time // routes.created_at
	UpdatedAt      time.Time // routes.updated_at
}
