package model

import "time"

// Service represents a purchasable extra in the `services` table
// (lounge access, extra baggage, fast track...).
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name.
//  Description – longer description shown in the shop.
//  PriceCents  – unit price in cents.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Service struct {
	ID          uint64    // services.id
	Name        string    // services.name
	Description string    // services.description
	PriceCents  uint32    // services.price_cents
	CreatedAt   time.Time // services.created_at
	UpdatedAt   time.Time // services.updated_at
}

// ServiceOrder links a client to a purchased service in the
// `service_orders` table.  Each order contributes a fixed weight of
// 100 points toward the loyalty ranking score regardless of price
// or quantity.
//
// Fields:
//  ID              – primary key identifier.
//  ClientID        – purchasing client.
//  ServiceID       – purchased service.
//  Quantity        – number of units ordered.
//  TotalPriceCents – total charged in cents.
//  CreatedAt       – creation timestamp.
type ServiceOrder struct {
	ID              uint64    // service_orders.id
	ClientID        uint64    // service_orders.client_id
	ServiceID       uint64    // service_orders.service_id
	Quantity        uint32    // service_orders.quantity
	TotalPriceCents uint32    // service_orders.total_price_cents
	CreatedAt       time.Time // service_orders.created_at
}
