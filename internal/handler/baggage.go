package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adamwrona/airport-ops/internal/logger"
	"github.com/adamwrona/airport-ops/internal/model"
	"github.com/adamwrona/airport-ops/internal/repository"
	"github.com/adamwrona/airport-ops/internal/tracking"
)

// BaggageHandler serves baggage CRUD, scan history and the live
// aircraft position lookup.  Passengers only ever see their own bags;
// staff see everything.
type BaggageHandler struct {
	Baggage  *repository.BaggageRepo
	Clients  *repository.ClientRepo
	Flights  *repository.FlightRepo
	Tracking *tracking.Client
	Log      logger.Logger
}

func NewBaggageHandler(b *repository.BaggageRepo, cl *repository.ClientRepo,
	f *repository.FlightRepo, tc *tracking.Client, log logger.Logger) *BaggageHandler {
	return &BaggageHandler{Baggage: b, Clients: cl, Flights: f, Tracking: tc, Log: log}
}

type baggageReq struct {
	ClientID uint64  `json:"client_id"` // staff only; passengers create for themselves
	FlightID *uint64 `json:"flight_id"`
	WeightKG float64 `json:"weight_kg"`
	Status   string  `json:"status"`
}

type baggageResp struct {
	ID        uint64    `json:"id"`
	ClientID  uint64    `json:"client_id"`
	FlightID  *uint64   `json:"flight_id"`
	WeightKG  float64   `json:"weight_kg"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type trackingEventResp struct {
	Location   string    `json:"location"`
	RecordedAt time.Time `json:"recorded_at"`
}

func toBaggageResp(b model.Baggage) baggageResp {
	return baggageResp{
		ID: b.ID, ClientID: b.ClientID, FlightID: b.FlightID,
		WeightKG: b.WeightKG, Status: b.Status, CreatedAt: b.CreatedAt,
	}
}

// callerClientID resolves the client record of a CLIENT caller.  Staff
// roles return 0 meaning "no ownership filter".
func (h *BaggageHandler) callerClientID(ctx context.Context, c echo.Context) (uint64, error) {
	if role, _ := c.Get("role").(string); role != model.RoleClient {
		return 0, nil
	}
	uid, err := getUserID(c)
	if err != nil {
		return 0, err
	}
	cl, err := h.Clients.GetByUserID(ctx, uid)
	if err != nil {
		return 0, err
	}
	return cl.ID, nil
}

// List returns bags: all of them for staff, the caller's own for a
// passenger.
func (h *BaggageHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	clientID, err := h.callerClientID(ctx, c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no client record for user"})
	}
	bags, err := h.Baggage.List(ctx, clientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]baggageResp, 0, len(bags))
	for _, b := range bags {
		out = append(out, toBaggageResp(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"baggage": out})
}

// loadOwned fetches a bag and enforces passenger ownership.
func (h *BaggageHandler) loadOwned(ctx context.Context, c echo.Context, id uint64) (model.Baggage, error) {
	b, err := h.Baggage.GetByID(ctx, id)
	if err != nil {
		return model.Baggage{}, err
	}
	clientID, err := h.callerClientID(ctx, c)
	if err != nil {
		return model.Baggage{}, repository.ErrForbidden
	}
	if clientID != 0 && b.ClientID != clientID {
		return model.Baggage{}, repository.ErrForbidden
	}
	return b, nil
}

// Get returns one bag.
func (h *BaggageHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	b, err := h.loadOwned(ctx, c, id)
	if err != nil {
		return h.baggageError(c, err)
	}
	return c.JSON(http.StatusOK, toBaggageResp(b))
}

// Create checks in a bag.  Passengers create for themselves; staff may
// name any client.
func (h *BaggageHandler) Create(c echo.Context) error {
	var req baggageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.WeightKG <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "weight_kg must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	clientID, err := h.callerClientID(ctx, c)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no client record for user"})
	}
	if clientID == 0 {
		clientID = req.ClientID
	}
	if clientID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id required"})
	}

	status := req.Status
	if status == "" {
		status = "CHECKED_IN"
	}
	id, err := h.Baggage.Create(ctx, model.Baggage{
		ClientID: clientID, FlightID: req.FlightID, WeightKG: req.WeightKG, Status: status,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	b, err := h.Baggage.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, toBaggageResp(b))
}

// Update overwrites a bag's flight link, weight and status.
func (h *BaggageHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req baggageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.WeightKG <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "weight_kg must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	b, err := h.loadOwned(ctx, c, id)
	if err != nil {
		return h.baggageError(c, err)
	}
	b.FlightID = req.FlightID
	b.WeightKG = req.WeightKG
	if req.Status != "" {
		b.Status = req.Status
	}
	if err := h.Baggage.Update(ctx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toBaggageResp(b))
}

// Delete removes a bag and its scan events.
func (h *BaggageHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	if _, err := h.loadOwned(ctx, c, id); err != nil {
		return h.baggageError(c, err)
	}
	if err := h.Baggage.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// History returns a bag's scan events, newest first.
func (h *BaggageHandler) History(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	if _, err := h.loadOwned(ctx, c, id); err != nil {
		return h.baggageError(c, err)
	}
	events, err := h.Baggage.Tracking(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]trackingEventResp, 0, len(events))
	for _, e := range events {
		out = append(out, trackingEventResp{Location: e.Location, RecordedAt: e.RecordedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"tracking": out})
}

// Location proxies the live position of the aircraft carrying the bag.
// The three upstream failure modes keep distinct statuses so callers
// can tell an outage from a broken feed.
func (h *BaggageHandler) Location(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	b, err := h.loadOwned(ctx, c, id)
	if err != nil {
		return h.baggageError(c, err)
	}
	if b.FlightID == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "bag is not on a flight"})
	}
	f, err := h.Flights.GetByID(ctx, *b.FlightID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	pos, err := h.Tracking.Locate(c.Request().Context(), f.Aircraft)
	if err != nil {
		switch {
		case errors.Is(err, tracking.ErrUnreachable):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "tracking feed unreachable"})
		case errors.Is(err, tracking.ErrUpstreamStatus):
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "tracking feed returned an error"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tracking feed returned malformed data"})
		}
	}

	// Record the lookup as a scan event so it shows in the history.
	loc := fmt.Sprintf("in flight at %.4f,%.4f", pos.Latitude, pos.Longitude)
	if err := h.Baggage.AddTracking(ctx, b.ID, loc); err != nil {
		h.Log.Warn("tracking event insert failed", "baggage_id", b.ID, "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"baggage_id": b.ID,
		"flight_id":  *b.FlightID,
		"position":   pos,
	})
}

// baggageError maps load/ownership failures onto statuses.
func (h *BaggageHandler) baggageError(c echo.Context, err error) error {
	switch err {
	case sql.ErrNoRows:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "baggage not found"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
}
