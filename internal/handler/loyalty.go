package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adamwrona/airport-ops/internal/loyalty"
	"github.com/adamwrona/airport-ops/internal/repository"
)

// LoyaltyHandler computes the caller's loyalty standing on demand.  The
// ranking is recomputed from the full standings on every request; the
// tier label stored on the client row is refreshed as a side effect.
type LoyaltyHandler struct {
	Clients *repository.ClientRepo
}

func NewLoyaltyHandler(cl *repository.ClientRepo) *LoyaltyHandler {
	return &LoyaltyHandler{Clients: cl}
}

type loyaltyResp struct {
	ClientID   uint64   `json:"client_id"`
	Score      int64    `json:"score"`
	Position   int      `json:"position"`
	Total      int      `json:"total"`
	Percentile float64  `json:"percentile"`
	Tier       string   `json:"tier"`
	Benefits   []string `json:"benefits"`
}

// Me ranks the authenticated passenger against every client.
func (h *LoyaltyHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
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

	standings, err := h.Clients.Standings(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	rank, err := loyalty.Compute(standings, cl.ID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not ranked"})
	}

	// Refresh the stored label; failure here does not affect the response.
	if rank.Tier != cl.LoyaltyTier {
		_ = h.Clients.UpdateTier(ctx, cl.ID, rank.Tier)
	}

	return c.JSON(http.StatusOK, loyaltyResp{
		ClientID:   rank.ClientID,
		Score:      rank.Score,
		Position:   rank.Position,
		Total:      rank.Total,
		Percentile: rank.Percentile,
		Tier:       rank.Tier,
		Benefits:   rank.Benefits,
	})
}
