package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adamwrona/airport-ops/internal/geo"
	"github.com/adamwrona/airport-ops/internal/logger"
	"github.com/adamwrona/airport-ops/internal/model"
	"github.com/adamwrona/airport-ops/internal/repository"
	"github.com/adamwrona/airport-ops/internal/weather"
)

// weatherFreshness is how long a stored forecast snapshot keeps serving
// requests before the upstream is queried again.
const weatherFreshness = time.Hour

// RouteHandler serves route CRUD and the per-route weather lookup.
type RouteHandler struct {
	Routes    *repository.RouteRepo
	Forecasts *repository.WeatherRepo
	Weather   *weather.Client
	Log       logger.Logger
}

func NewRouteHandler(r *repository.RouteRepo, w *repository.WeatherRepo,
	wc *weather.Client, log logger.Logger) *RouteHandler {
	return &RouteHandler{Routes: r, Forecasts: w, Weather: wc, Log: log}
}

type routeReq struct {
	TakeoffAirport string  `json:"takeoff_airport"`
	LandingAirport string  `json:"landing_airport"`
	DistanceKM     float64 `json:"distance_km"`
	DurationMin    uint32  `json:"duration_min"`
	AltitudeM      uint32  `json:"altitude_m"`
}

type routeResp struct {
	ID             uint64  `json:"id"`
	TakeoffAirport string  `json:"takeoff_airport"`
	LandingAirport string  `json:"landing_airport"`
	DistanceKM     float64 `json:"distance_km"`
	DurationMin    uint32  `json:"duration_min"`
	AltitudeM      uint32  `json:"altitude_m"`
}

type weatherResp struct {
	RouteID      uint64    `json:"route_id"`
	Airport      string    `json:"airport"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	TemperatureC float64   `json:"temperature_c"`
	WindSpeedKMH float64   `json:"wind_speed_kmh"`
	Condition    string    `json:"condition"`
	Degraded     bool      `json:"degraded"`
	FetchedAt    time.Time `json:"fetched_at"`
}

func toRouteResp(rt model.Route) routeResp {
	return routeResp{
		ID: rt.ID, TakeoffAirport: rt.TakeoffAirport, LandingAirport: rt.LandingAirport,
		DistanceKM: rt.DistanceKM, DurationMin: rt.DurationMin, AltitudeM: rt.AltitudeM,
	}
}

func (r routeReq) validate() string {
	if r.TakeoffAirport == "" || r.LandingAirport == "" {
		return "takeoff_airport and landing_airport required"
	}
	if r.DistanceKM <= 0 {
		return "distance_km must be positive"
	}
	return ""
}

// List returns every route.
func (h *RouteHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	routes, err := h.Routes.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]routeResp, 0, len(routes))
	for _, rt := range routes {
		out = append(out, toRouteResp(rt))
	}
	return c.JSON(http.StatusOK, echo.Map{"routes": out})
}

// Get returns one route.
func (h *RouteHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	rt, err := h.Routes.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toRouteResp(rt))
}

// Create inserts a route.  WORKER/ADMIN only.
func (h *RouteHandler) Create(c echo.Context) error {
	var req routeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	id, err := h.Routes.Create(ctx, model.Route{
		TakeoffAirport: req.TakeoffAirport, LandingAirport: req.LandingAirport,
		DistanceKM: req.DistanceKM, DurationMin: req.DurationMin, AltitudeM: req.AltitudeM,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	rt, err := h.Routes.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, toRouteResp(rt))
}

// Update overwrites a route.  WORKER/ADMIN only.
func (h *RouteHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req routeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	err = h.Routes.Update(ctx, model.Route{
		ID: id, TakeoffAirport: req.TakeoffAirport, LandingAirport: req.LandingAirport,
		DistanceKM: req.DistanceKM, DurationMin: req.DurationMin, AltitudeM: req.AltitudeM,
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	rt, err := h.Routes.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toRouteResp(rt))
}

// Delete removes a route without flights.  WORKER/ADMIN only.
func (h *RouteHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	if err := h.Routes.Delete(ctx, id); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "route has flights"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// WeatherHistory returns every stored snapshot for the route, newest
// first.  Degraded fallbacks are never stored, so only real readings
// appear.
func (h *RouteHandler) WeatherHistory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	rt, err := h.Routes.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	snaps, err := h.Forecasts.History(ctx, rt.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]weatherResp, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, weatherResp{
			RouteID: rt.ID, Airport: rt.TakeoffAirport,
			Latitude: s.Latitude, Longitude: s.Longitude,
			TemperatureC: s.TemperatureC, WindSpeedKMH: s.WindSpeedKMH,
			Condition: s.Condition, FetchedAt: s.FetchedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"history": out})
}

// RouteWeather returns current conditions at the route's takeoff
// airport.  Coordinates are synthesized deterministically from the
// airport code.  A snapshot newer than weatherFreshness is served from
// the database; otherwise the upstream is queried and the result
// stored.  Upstream failures degrade to fallback constants rather
// than failing the request.
func (h *RouteHandler) RouteWeather(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	rt, err := h.Routes.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if snap, err := h.Forecasts.LatestSince(ctx, rt.ID, time.Now().Add(-weatherFreshness)); err == nil {
		return c.JSON(http.StatusOK, weatherResp{
			RouteID: rt.ID, Airport: rt.TakeoffAirport,
			Latitude: snap.Latitude, Longitude: snap.Longitude,
			TemperatureC: snap.TemperatureC, WindSpeedKMH: snap.WindSpeedKMH,
			Condition: snap.Condition, FetchedAt: snap.FetchedAt,
		})
	}

	lat, lon := geo.SynthesizeCoords(rt.TakeoffAirport)
	report, err := h.Weather.Fetch(c.Request().Context(), lat, lon)
	if err != nil {
		h.Log.Warn("weather upstream failed, serving fallback", "route_id", rt.ID, "error", err)
	}

	fetchedAt := time.Now().UTC()
	if !report.Degraded {
		// Degraded reports are placeholders; only real readings persist.
		if _, err := h.Forecasts.Insert(ctx, model.WeatherForecast{
			RouteID:      rt.ID,
			Latitude:     report.Latitude,
			Longitude:    report.Longitude,
			TemperatureC: report.TemperatureC,
			WindSpeedKMH: report.WindSpeedKMH,
			Condition:    report.Condition,
			FetchedAt:    fetchedAt,
		}); err != nil {
			h.Log.Warn("weather snapshot insert failed", "route_id", rt.ID, "error", err)
		}
	}

	return c.JSON(http.StatusOK, weatherResp{
		RouteID: rt.ID, Airport: rt.TakeoffAirport,
		Latitude: report.Latitude, Longitude: report.Longitude,
		TemperatureC: report.TemperatureC, WindSpeedKMH: report.WindSpeedKMH,
		Condition: report.Condition, Degraded: report.Degraded, FetchedAt: fetchedAt,
	})
}
