package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adamwrona/airport-ops/internal/model"
	"github.com/adamwrona/airport-ops/internal/repository"
)

// ServiceHandler serves the extras shop: service CRUD for staff,
// ordering and purchase history for passengers.
type ServiceHandler struct {
	Services *repository.ServiceRepo
	Clients  *repository.ClientRepo
}

func NewServiceHandler(s *repository.ServiceRepo, cl *repository.ClientRepo) *ServiceHandler {
	return &ServiceHandler{Services: s, Clients: cl}
}

type serviceReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  uint32 `json:"price_cents"`
}

type serviceResp struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  uint32 `json:"price_cents"`
}

type orderReq struct {
	ServiceID uint64 `json:"service_id"`
	Quantity  uint32 `json:"quantity"`
}

type orderHistoryResp struct {
	OrderID         uint64    `json:"order_id"`
	ServiceID       uint64    `json:"service_id"`
	ServiceName     string    `json:"service_name"`
	Quantity        uint32    `json:"quantity"`
	TotalPriceCents uint32    `json:"total_price_cents"`
	OrderedAt       time.Time `json:"ordered_at"`
}

func toServiceResp(s model.Service) serviceResp {
	return serviceResp{ID: s.ID, Name: s.Name, Description: s.Description, PriceCents: s.PriceCents}
}

// List returns every purchasable service.
func (h *ServiceHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	services, err := h.Services.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]serviceResp, 0, len(services))
	for _, s := range services {
		out = append(out, toServiceResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"services": out})
}

// Get returns one service.
func (h *ServiceHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	s, err := h.Services.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toServiceResp(s))
}

// Create inserts a service.  WORKER/ADMIN only.
func (h *ServiceHandler) Create(c echo.Context) error {
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	id, err := h.Services.Create(ctx, model.Service{
		Name: req.Name, Description: req.Description, PriceCents: req.PriceCents,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	s, err := h.Services.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, toServiceResp(s))
}

// Update overwrites a service.  WORKER/ADMIN only.
func (h *ServiceHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	err = h.Services.Update(ctx, model.Service{
		ID: id, Name: req.Name, Description: req.Description, PriceCents: req.PriceCents,
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	s, err := h.Services.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toServiceResp(s))
}

// Delete removes a service that has never been ordered.  ADMIN only.
func (h *ServiceHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	if err := h.Services.Delete(ctx, id); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "service has orders"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Order purchases a service for the calling passenger.  Every order
// also weighs into the loyalty ranking.
func (h *ServiceHandler) Order(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req orderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ServiceID == 0 || req.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service_id and quantity required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	cl, err := h.Clients.GetByUserID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no client record for user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	orderID, err := h.Services.CreateOrder(ctx, cl.ID, req.ServiceID, req.Quantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "order failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"order_id": orderID})
}

// History returns the calling passenger's purchases, newest first.
func (h *ServiceHandler) History(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	cl, err := h.Clients.GetByUserID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no client record for user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	items, err := h.Services.OrdersByClient(ctx, cl.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]orderHistoryResp, 0, len(items))
	for _, it := range items {
		out = append(out, orderHistoryResp{
			OrderID:         it.Order.ID,
			ServiceID:       it.Order.ServiceID,
			ServiceName:     it.ServiceName,
			Quantity:        it.Order.Quantity,
			TotalPriceCents: it.Order.TotalPriceCents,
			OrderedAt:       it.Order.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out})
}
