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

// ClientHandler serves passenger profiles for back-office staff and the
// passengers themselves.
type ClientHandler struct {
	Clients *repository.ClientRepo
}

func NewClientHandler(cl *repository.ClientRepo) *ClientHandler {
	return &ClientHandler{Clients: cl}
}

type clientResp struct {
	ID           uint64    `json:"id"`
	UserID       uint64    `json:"user_id"`
	BirthDate    string    `json:"birth_date"`
	LoyaltyTier  string    `json:"loyalty_tier"`
	Points       int64     `json:"points"`
	RegisteredAt time.Time `json:"registered_at"`
}

type clientUpdateReq struct {
	BirthDate string `json:"birth_date"` // YYYY-MM-DD
}

func toClientResp(cl model.Client) clientResp {
	birth := ""
	if !cl.BirthDate.IsZero() {
		birth = cl.BirthDate.Format("2006-01-02")
	}
	return clientResp{
		ID: cl.ID, UserID: cl.UserID, BirthDate: birth,
		LoyaltyTier: cl.LoyaltyTier, Points: cl.Points, RegisteredAt: cl.RegisteredAt,
	}
}

// List returns every client.  ADMIN/WORKER only.
func (h *ClientHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	clients, err := h.Clients.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]clientResp, 0, len(clients))
	for _, cl := range clients {
		out = append(out, toClientResp(cl))
	}
	return c.JSON(http.StatusOK, echo.Map{"clients": out})
}

// ByUser resolves a client through its owning user account.
func (h *ClientHandler) ByUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid userId"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	cl, err := h.Clients.GetByUserID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toClientResp(cl))
}

// UpdateMe lets a passenger edit their own record.
func (h *ClientHandler) UpdateMe(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req clientUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	birth, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "birth_date must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	cl, err := h.Clients.GetByUserID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Clients.UpdateMe(ctx, cl.ID, birth); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	cl.BirthDate = birth
	return c.JSON(http.StatusOK, toClientResp(cl))
}

// Delete hard-deletes a client and its orders and baggage.  ADMIN only.
func (h *ClientHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	if err := h.Clients.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
