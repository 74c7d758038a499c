package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adamwrona/airport-ops/internal/logger"
	"github.com/adamwrona/airport-ops/internal/metrics"
	"github.com/adamwrona/airport-ops/internal/model"
	"github.com/adamwrona/airport-ops/internal/queue"
	"github.com/adamwrona/airport-ops/internal/repository"
	"github.com/adamwrona/airport-ops/internal/scheduling"
	queue_publisher "github.com/adamwrona/airport-ops/internal/service"
)

// FlightHandler serves the flight board, the pilot recommendation feed
// and the accept/decline state machine.  Slot assignment is a
// conditional UPDATE in the repository, so two pilots racing for the
// same slot resolve inside the database.
type FlightHandler struct {
	Flights *repository.FlightRepo
	Pilots  *repository.PilotRepo
	Users   *repository.UserRepo
	Log     logger.Logger
	Metrics *metrics.Metrics
}

func NewFlightHandler(f *repository.FlightRepo, p *repository.PilotRepo, u *repository.UserRepo,
	log logger.Logger, m *metrics.Metrics) *FlightHandler {
	return &FlightHandler{Flights: f, Pilots: p, Users: u, Log: log, Metrics: m}
}

type flightResp struct {
	ID           uint64    `json:"id"`
	RouteID      uint64    `json:"route_id"`
	MainPilotID  *uint64   `json:"main_pilot_id"`
	CoPilotID    *uint64   `json:"co_pilot_id"`
	WorkingHours float64   `json:"working_hours"`
	DepartureAt  time.Time `json:"departure_at"`
	Aircraft     string    `json:"aircraft"`
	Status       string    `json:"status"`
	RepeatHours  *uint32   `json:"repeat_hours"`
}

type pilotProfileResp struct {
	ID               uint64  `json:"id"`
	UserID           uint64  `json:"user_id"`
	Email            string  `json:"email"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	LicenseNumber    string  `json:"license_number"`
	MissingWorkHours float64 `json:"missing_work_hours"`
	VacationStart    *string `json:"vacation_start"`
	VacationEnd      *string `json:"vacation_end"`
}

type recommendationResp struct {
	Flights      []flightResp `json:"flights"`
	MissingHours float64      `json:"missing_hours"`
	HasVacation  bool         `json:"has_vacation"`
	OnVacation   bool         `json:"on_vacation"`
}

type acceptReq struct {
	Role string `json:"role"` // main | captain | co | copilot | co-pilot
}

type flightUpdateReq struct {
	Aircraft       *string `json:"aircraft"`
	TakeoffAirport *string `json:"takeoff_airport"`
}

type pilotUpdateReq struct {
	MissingWorkHours *float64 `json:"missing_work_hours"`
	VacationStart    *string  `json:"vacation_start"` // YYYY-MM-DD, empty clears
	VacationEnd      *string  `json:"vacation_end"`
}

func toFlightResp(f model.Flight) flightResp {
	return flightResp{
		ID: f.ID, RouteID: f.RouteID,
		MainPilotID: f.MainPilotID, CoPilotID: f.CoPilotID,
		WorkingHours: f.WorkingHours, DepartureAt: f.DepartureAt,
		Aircraft: f.Aircraft, Status: f.Status, RepeatHours: f.RepeatHours,
	}
}

func toFlightResps(flights []model.Flight) []flightResp {
	out := make([]flightResp, 0, len(flights))
	for _, f := range flights {
		out = append(out, toFlightResp(f))
	}
	return out
}

// List returns the full flight board.
func (h *FlightHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	flights, err := h.Flights.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"flights": toFlightResps(flights)})
}

// PilotProfile resolves a pilot through its owning user account and
// returns the profile shown to back-office staff.
func (h *FlightHandler) PilotProfile(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid userId"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	p, err := h.Pilots.GetByUserID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pilot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, toPilotProfileResp(p, u))
}

func toPilotProfileResp(p model.Pilot, u model.User) pilotProfileResp {
	resp := pilotProfileResp{
		ID: p.ID, UserID: p.UserID,
		Email: u.Email, FirstName: u.FirstName, LastName: u.LastName,
		LicenseNumber: p.LicenseNumber, MissingWorkHours: p.MissingWorkHours,
	}
	if scheduling.HasVacation(p) {
		start := p.VacationStart.Format("2006-01-02")
		end := p.VacationEnd.Format("2006-01-02")
		resp.VacationStart, resp.VacationEnd = &start, &end
	}
	return resp
}

// UpdatePilot lets back-office staff set a pilot's outstanding hour
// deficit and vacation window.  Omitted fields stay untouched; sending
// both vacation bounds as empty strings clears the window.
func (h *FlightHandler) UpdatePilot(c echo.Context) error {
	pilotID, err := pathID(c, "pilotId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pilotId"})
	}
	var req pilotUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MissingWorkHours != nil && *req.MissingWorkHours < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing_work_hours must not be negative"})
	}
	if (req.VacationStart == nil) != (req.VacationEnd == nil) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vacation_start and vacation_end must be set together"})
	}

	var vacStart, vacEnd time.Time
	setVacation := req.VacationStart != nil
	if setVacation {
		if vacStart, err = parseVacationDate(*req.VacationStart); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "vacation_start must be YYYY-MM-DD"})
		}
		if vacEnd, err = parseVacationDate(*req.VacationEnd); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "vacation_end must be YYYY-MM-DD"})
		}
		if vacStart.IsZero() != vacEnd.IsZero() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "vacation window must be set or cleared as a whole"})
		}
		if vacEnd.Before(vacStart) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "vacation_end before vacation_start"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	if _, err := h.Pilots.GetByID(ctx, pilotID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pilot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if req.MissingWorkHours != nil {
		if err := h.Pilots.UpdateMissingHours(ctx, pilotID, *req.MissingWorkHours); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	if setVacation {
		if err := h.Pilots.UpdateVacation(ctx, pilotID, vacStart, vacEnd); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}

	p, err := h.Pilots.GetByID(ctx, pilotID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	u, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toPilotProfileResp(p, u))
}

// parseVacationDate parses a YYYY-MM-DD bound; the empty string maps to
// the zero-time sentinel meaning "no vacation".
func parseVacationDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

// ByPilot lists flights where the pilot occupies either slot.
func (h *FlightHandler) ByPilot(c echo.Context) error {
	pilotID, err := pathID(c, "pilotId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pilotId"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	flights, err := h.Flights.ListByPilot(ctx, pilotID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"flights": toFlightResps(flights)})
}

// Unassigned recommends open flights to a pilot closing a work-hour
// deficit: at least one free slot, fewer hours than the deficit, and a
// departure outside any scheduled vacation.
func (h *FlightHandler) Unassigned(c echo.Context) error {
	pilotID, err := pathID(c, "pilotId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pilotId"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	p, err := h.Pilots.GetByID(ctx, pilotID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pilot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	open, err := h.Flights.ListOpen(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	rec := scheduling.Recommend(p, open, time.Now())
	return c.JSON(http.StatusOK, recommendationResp{
		Flights:      toFlightResps(rec.Flights),
		MissingHours: rec.MissingHours,
		HasVacation:  rec.HasVacation,
		OnVacation:   rec.OnVacation,
	})
}

// Accept assigns the calling pilot to the requested slot.  The slot
// columns are independent: taking the co slot on a flight with a main
// pilot is fine, taking an occupied slot is a conflict.
func (h *FlightHandler) Accept(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	flightID, err := pathID(c, "flightId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flightId"})
	}
	var req acceptReq
	_ = c.Bind(&req)
	if req.Role == "" {
		req.Role = c.QueryParam("role")
	}
	slot, err := scheduling.ParseRole(req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be main or co"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	p, err := h.Pilots.GetByUserID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no pilot record for user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if _, err := h.Flights.GetByID(ctx, flightID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	slotName := "main"
	assign := h.Flights.AssignMain
	if slot == scheduling.SlotCo {
		slotName = "co"
		assign = h.Flights.AssignCo
	}
	if err := assign(ctx, flightID, p.ID); err != nil {
		if err == repository.ErrConflict {
			h.Metrics.FlightAssignments.WithLabelValues("accept", "conflict").Inc()
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot already assigned"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign failed"})
	}
	h.Metrics.FlightAssignments.WithLabelValues("accept", "ok").Inc()
	h.publishAssignment(ctx, flightID, p.ID, slotName, "accept")

	f, err := h.Flights.GetByID(ctx, flightID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toFlightResp(f))
}

// Decline clears every slot the calling pilot occupies on the flight.
func (h *FlightHandler) Decline(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	flightID, err := pathID(c, "flightId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flightId"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	p, err := h.Pilots.GetByUserID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no pilot record for user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if _, err := h.Flights.GetByID(ctx, flightID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if err := h.Flights.ClearPilot(ctx, flightID, p.ID); err != nil {
		if err == sql.ErrNoRows {
			h.Metrics.FlightAssignments.WithLabelValues("decline", "not_assigned").Inc()
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "pilot not assigned to flight"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "decline failed"})
	}
	h.Metrics.FlightAssignments.WithLabelValues("decline", "ok").Inc()
	h.publishAssignment(ctx, flightID, p.ID, "", "decline")

	f, err := h.Flights.GetByID(ctx, flightID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toFlightResp(f))
}

// Update lets back-office staff change the aircraft label and the
// route's takeoff airport.  Omitted fields stay untouched; an empty
// body is a no-op that returns the current record.
func (h *FlightHandler) Update(c echo.Context) error {
	flightID, err := pathID(c, "flightId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flightId"})
	}
	var req flightUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	if req.Aircraft != nil || req.TakeoffAirport != nil {
		if err := h.Flights.UpdateWorkerFields(ctx, flightID, req.Aircraft, req.TakeoffAirport); err != nil {
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	f, err := h.Flights.GetByID(ctx, flightID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toFlightResp(f))
}

// publishAssignment emits the accept/decline event to the broker.  The
// broker is not on the request path; a publish failure only logs.
func (h *FlightHandler) publishAssignment(ctx context.Context, flightID, pilotID uint64, slot, action string) {
	ev := queue.FlightAssignedEvent{
		FlightID: flightID,
		PilotID:  pilotID,
		Slot:     slot,
		Action:   action,
		ActedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue_publisher.PublishFlightAssigned(ctx, h.Log, ev); err != nil {
		h.Log.Warn("publish flight assignment failed", "flight_id", flightID, "error", err)
	}
}
