package model

import "time"

// Client represents a passenger account in the `clients` table.  A
// client belongs to exactly one user and owns zero or more service
// orders and baggage items.  Points is a plain counter mutated by
// direct assignment; there is no ledger of point-earning events.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – owning user account.
//  BirthDate    – date of birth.
//  LoyaltyTier  – last tier label shown to the client (Bronze, Silver, Gold).
//  Points       – accumulated loyalty points.
//  RegisteredAt – when the client registered.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Client struct {
	ID           uint64    // clients.id
	UserID       uint64    // clients.user_id
	BirthDate    time.Time // clients.birth_date
	LoyaltyTier  string    // clients.loyalty_tier
	Points       int64     // clients.points
	RegisteredAt time.Time // clients.registered_at
	CreatedAt    time.Time // clients.created_at
	UpdatedAt    time.Time // clients.updated_at
}
