package model

import "time"

// Baggage represents a checked item in the `baggage` table.  A bag
// belongs to a client and is optionally attached to a flight; the
// flight link is what makes the external position lookup possible.
//
// Fields:
//  ID        – primary key identifier.
//  ClientID  – owning client.
//  FlightID  – flight the bag travels on (nil = not checked in).
//  WeightKG  – weight in kilograms.
//  Status    – free-text handling status (CHECKED_IN, LOADED, DELIVERED...).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Baggage struct {
	ID        uint64    // baggage.id
	ClientID  uint64    // baggage.client_id
	FlightID  *uint64   // baggage.flight_id (nullable)
	WeightKG  float64   // baggage.weight_kg
	Status    string    // baggage.status
	CreatedAt time.Time // baggage.created_at
	UpdatedAt time.Time // baggage.updated_at
}

// BaggageTracking is an append-only scan event in the
// `baggage_tracking` table recorded as a bag moves through handling.
//
// Fields:
//  ID         – primary key identifier.
//  BaggageID  – bag the event belongs to.
//  Location   – free-text scan location.
//  RecordedAt – when the scan happened.
type BaggageTracking struct {
	ID         uint64    // baggage_tracking.id
	BaggageID  uint64    // baggage_tracking.baggage_id
	Location   string    // baggage_tracking.location
	RecordedAt time.Time // baggage_tracking.recorded_at
}
