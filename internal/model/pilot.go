package model

import "time"

// Pilot represents a row in the `pilots` table.  The vacation window
// uses the zero time.Time as a sentinel: when both VacationStart and
// VacationEnd are the zero value, no vacation is scheduled.  The
// columns are nullable DATETIMEs; NULL scans to the zero value.
//
// Fields:
//  ID               – primary key identifier.
//  UserID           – owning user account.
//  LicenseNumber    – pilot license reference shown to workers.
//  MissingWorkHours – outstanding deficit against the hour quota.
//  VacationStart    – first day of the scheduled vacation (zero = none).
//  VacationEnd      – last day of the scheduled vacation (zero = none).
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Pilot struct {
	ID               uint64    // pilots.id
	UserID           uint64    // pilots.user_id
	LicenseNumber    string    // pilots.license_number
	MissingWorkHours float64   // pilots.missing_work_hours
	VacationStart    time.Time // pilots.vacation_start (nullable)
	VacationEnd      time.Time // pilots.vacation_end (nullable)
	CreatedAt        time.Time // pilots.created_at
	UpdatedAt        time.Time // pilots.updated_at
}

// Employee represents back-office staff in the `employees` table.
// Workers manage flights, routes and services but have no pilot or
// client record of their own.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning user account.
//  Position  – free-text job title.
//  HiredAt   – employment start date.
//  CreatedAt – creation timestamp.
type Employee struct {
	ID        uint64    // employees.id
	UserID    uint64    // employees.user_id
	Position  string    // employees.position
	HiredAt   time.Time // employees.hired_at
	CreatedAt time.Time // employees.created_at
}
