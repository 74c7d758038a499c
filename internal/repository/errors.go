// Package repository is the persistence gateway: one repo struct per
// aggregate over *sql.DB with hand-written SQL.  Missing rows surface
// as sql.ErrNoRows; the sentinels below let handlers translate other
// failure scenarios into HTTP statuses without string matching.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot proceed because of
// conflicting state, such as accepting a pilot slot that is already
// occupied.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned on registration with a duplicate email.
var ErrEmailExists = errors.New("email already exists")
