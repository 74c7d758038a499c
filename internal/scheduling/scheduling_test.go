package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamwrona/airport-ops/internal/model"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 12, 0, 0, 0, time.UTC)
}

func pilotWithVacation(missing float64, start, end time.Time) model.Pilot {
	return model.Pilot{ID: 1, MissingWorkHours: missing, VacationStart: start, VacationEnd: end}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"main", "MAIN", " Captain "} {
		slot, err := ParseRole(s)
		require.NoError(t, err, s)
		assert.Equal(t, SlotMain, slot, s)
	}
	for _, s := range []string{"co", "CoPilot", "co-pilot", "co_pilot"} {
		slot, err := ParseRole(s)
		require.NoError(t, err, s)
		assert.Equal(t, SlotCo, slot, s)
	}
	_, err := ParseRole("navigator")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestHasVacation(t *testing.T) {
	assert.False(t, HasVacation(model.Pilot{}), "zero sentinel means no vacation")
	assert.False(t, HasVacation(model.Pilot{VacationStart: day(10)}), "end unset")
	assert.False(t, HasVacation(pilotWithVacation(0, day(12), day(10))), "start after end")
	assert.True(t, HasVacation(pilotWithVacation(0, day(10), day(12))))
	assert.True(t, HasVacation(pilotWithVacation(0, day(10), day(10))), "single-day window")
}

func TestOnVacation(t *testing.T) {
	p := pilotWithVacation(0, day(10), day(12))
	assert.True(t, OnVacation(p, day(11)))
	assert.True(t, OnVacation(p, day(10)), "bounds inclusive")
	assert.False(t, OnVacation(p, day(13)))
	assert.False(t, OnVacation(model.Pilot{}, day(11)))
}

func TestRecommendVacationExclusion(t *testing.T) {
	p := pilotWithVacation(5, day(10), day(12))
	during := model.Flight{ID: 1, WorkingHours: 3, DepartureAt: day(11)}
	after := model.Flight{ID: 2, WorkingHours: 3, DepartureAt: day(15)}

	rec := Recommend(p, []model.Flight{during, after}, day(1))
	require.Len(t, rec.Flights, 1)
	assert.Equal(t, uint64(2), rec.Flights[0].ID)
	assert.True(t, rec.HasVacation)
	assert.False(t, rec.OnVacation)
	assert.Equal(t, 5.0, rec.MissingHours)
}

func TestRecommendHoursFilter(t *testing.T) {
	p := model.Pilot{ID: 1, MissingWorkHours: 5}
	flights := []model.Flight{
		{ID: 1, WorkingHours: 4.5, DepartureAt: day(3)},
		{ID: 2, WorkingHours: 5, DepartureAt: day(3)}, // equal hours do not qualify
		{ID: 3, WorkingHours: 7, DepartureAt: day(3)},
	}
	rec := Recommend(p, flights, day(1))
	require.Len(t, rec.Flights, 1)
	assert.Equal(t, uint64(1), rec.Flights[0].ID)
}

func TestRecommendSlotEligibility(t *testing.T) {
	other := uint64(9)
	p := model.Pilot{ID: 1, MissingWorkHours: 10}
	flights := []model.Flight{
		{ID: 1, WorkingHours: 2, DepartureAt: day(3)},                                  // both open
		{ID: 2, WorkingHours: 2, DepartureAt: day(3), MainPilotID: &other},             // one open
		{ID: 3, WorkingHours: 2, DepartureAt: day(3), MainPilotID: &other, CoPilotID: &other}, // full
	}
	rec := Recommend(p, flights, day(1))
	require.Len(t, rec.Flights, 2)
	assert.Equal(t, uint64(1), rec.Flights[0].ID)
	assert.Equal(t, uint64(2), rec.Flights[1].ID)
}

func TestAcceptConflictLeavesAssignment(t *testing.T) {
	existing := uint64(7)
	f := model.Flight{ID: 1, MainPilotID: &existing}

	err := Accept(&f, 2, SlotMain)
	assert.ErrorIs(t, err, ErrSlotTaken)
	require.NotNil(t, f.MainPilotID)
	assert.Equal(t, existing, *f.MainPilotID, "existing assignment must survive")
	assert.Nil(t, f.CoPilotID)
}

func TestAcceptFillsOnlyRequestedSlot(t *testing.T) {
	f := model.Flight{ID: 1}
	require.NoError(t, Accept(&f, 2, SlotCo))
	assert.Nil(t, f.MainPilotID)
	require.NotNil(t, f.CoPilotID)
	assert.Equal(t, uint64(2), *f.CoPilotID)

	// Main slot is still open and independently assignable.
	require.NoError(t, Accept(&f, 3, SlotMain))
	assert.Equal(t, uint64(3), *f.MainPilotID)
	assert.Equal(t, uint64(2), *f.CoPilotID)
}

func TestDeclineClearsOnlyCallerSlots(t *testing.T) {
	main, co := uint64(3), uint64(2)
	f := model.Flight{ID: 1, MainPilotID: &main, CoPilotID: &co}

	require.NoError(t, Decline(&f, co))
	require.NotNil(t, f.MainPilotID)
	assert.Equal(t, main, *f.MainPilotID, "main pilot untouched")
	assert.Nil(t, f.CoPilotID)
}

func TestDeclineBothSlots(t *testing.T) {
	id := uint64(4)
	f := model.Flight{ID: 1, MainPilotID: &id, CoPilotID: &id}
	require.NoError(t, Decline(&f, id))
	assert.Nil(t, f.MainPilotID)
	assert.Nil(t, f.CoPilotID)
}

func TestDeclineWhenNotAssigned(t *testing.T) {
	other := uint64(9)
	f := model.Flight{ID: 1, MainPilotID: &other}
	err := Decline(&f, 2)
	assert.ErrorIs(t, err, ErrNotAssigned)
	assert.Equal(t, other, *f.MainPilotID)
}
