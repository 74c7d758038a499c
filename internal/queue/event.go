// Package queue defines message payloads exchanged over the message broker.
package queue

// FlightReminderEvent is published by the reminder sweep for each
// upcoming departure with at least one assigned pilot.  It carries
// everything the consumer needs to build the notification without
// querying the primary database.
type FlightReminderEvent struct {
	FlightID       uint64   `json:"flight_id"`
	Aircraft       string   `json:"aircraft"`
	DepartureAt    string   `json:"departure_at"`
	TakeoffAirport string   `json:"takeoff_airport"`
	LandingAirport string   `json:"landing_airport"`
	PilotEmails    []string `json:"pilot_emails"`
	SweptAt        string   `json:"swept_at"`
}

// FlightAssignedEvent is published when a pilot accepts or declines a
// slot, for downstream logging and analytics.
type FlightAssignedEvent struct {
	FlightID uint64 `json:"flight_id"`
	PilotID  uint64 `json:"pilot_id"`
	Slot     string `json:"slot"`   // "main" or "co"
	Action   string `json:"action"` // "accept" or "decline"
	ActedAt  string `json:"acted_at"`
}
