// Package scheduling holds the pilot-facing flight rules: the
// recommendation filter, the vacation window checks and the
// accept/decline slot transitions.  Everything here is pure; the
// handlers load state, call in, and persist the outcome.
package scheduling

import (
	"errors"
	"strings"
	"time"

	"github.com/adamwrona/airport-ops/internal/model"
)

// Slot identifies one of the two independent pilot slots on a flight.
type Slot int

const (
	SlotMain Slot = iota
	SlotCo
)

var (
	// ErrUnknownRole means the accept request named a role that maps
	// to neither slot.
	ErrUnknownRole = errors.New("unknown pilot role")
	// ErrSlotTaken means the requested slot is already occupied.
	ErrSlotTaken = errors.New("slot already assigned")
	// ErrNotAssigned means a declining pilot occupies neither slot.
	ErrNotAssigned = errors.New("pilot not assigned to flight")
)

// ParseRole maps a requested role string onto a slot.  Matching is
// case-insensitive; "main" and "captain" both select the main slot,
// the usual co-pilot spellings select the co slot.
func ParseRole(role string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "main", "captain":
		return SlotMain, nil
	case "co", "copilot", "co-pilot", "co_pilot":
		return SlotCo, nil
	}
	return 0, ErrUnknownRole
}

// HasVacation reports whether the pilot has a valid scheduled vacation:
// both bounds set (after the zero sentinel) and start not after end.
func HasVacation(p model.Pilot) bool {
	if p.VacationStart.IsZero() || p.VacationEnd.IsZero() {
		return false
	}
	return !p.VacationStart.After(p.VacationEnd)
}

// OnVacation reports whether now falls inside the pilot's scheduled
// vacation window, bounds inclusive.
func OnVacation(p model.Pilot, now time.Time) bool {
	if !HasVacation(p) {
		return false
	}
	return !now.Before(p.VacationStart) && !now.After(p.VacationEnd)
}

// inVacation reports whether t falls inside the window; callers must
// have checked HasVacation first.
func inVacation(p model.Pilot, t time.Time) bool {
	return !t.Before(p.VacationStart) && !t.After(p.VacationEnd)
}

// Recommendation is the result of filtering open flights for a pilot.
type Recommendation struct {
	Flights      []model.Flight
	MissingHours float64
	HasVacation  bool
	OnVacation   bool
}

// Recommend filters candidate flights for a pilot trying to close a
// work-hour deficit.  Candidates must have at least one open pilot
// slot, credit fewer hours than the pilot is missing, and depart
// outside the pilot's vacation window when one is scheduled.
func Recommend(p model.Pilot, candidates []model.Flight, now time.Time) Recommendation {
	hasVac := HasVacation(p)
	rec := Recommendation{
		Flights:      []model.Flight{},
		MissingHours: p.MissingWorkHours,
		HasVacation:  hasVac,
		OnVacation:   OnVacation(p, now),
	}
	for _, f := range candidates {
		if f.MainPilotID != nil && f.CoPilotID != nil {
			continue // both slots filled
		}
		if f.WorkingHours >= p.MissingWorkHours {
			continue // would overshoot the deficit
		}
		if hasVac && inVacation(p, f.DepartureAt) {
			continue // departs during vacation
		}
		rec.Flights = append(rec.Flights, f)
	}
	return rec
}

// Accept assigns the pilot to the requested slot on the flight.  The
// flight is mutated in place.  ErrSlotTaken is returned when the slot
// is occupied; the existing assignment and the other slot are left
// untouched in every case.
func Accept(f *model.Flight, pilotID uint64, slot Slot) error {
	switch slot {
	case SlotMain:
		if f.MainPilotID != nil {
			return ErrSlotTaken
		}
		f.MainPilotID = &pilotID
	case SlotCo:
		if f.CoPilotID != nil {
			return ErrSlotTaken
		}
		f.CoPilotID = &pilotID
	default:
		return ErrUnknownRole
	}
	return nil
}

// Decline clears every slot on the flight currently held by the pilot.
// Each slot is cleared independently; a pilot holding both gives up
// both.  ErrNotAssigned is returned when the pilot holds neither.
func Decline(f *model.Flight, pilotID uint64) error {
	cleared := false
	if f.MainPilotID != nil && *f.MainPilotID == pilotID {
		f.MainPilotID = nil
		cleared = true
	}
	if f.CoPilotID != nil && *f.CoPilotID == pilotID {
		f.CoPilotID = nil
		cleared = true
	}
	if !cleared {
		return ErrNotAssigned
	}
	return nil
}
