package usage

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agents-backend/internal/shared/server/middleware"
	"agents-backend/internal/shared/server/respond"
)

// Handler exposes usage endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches usage routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.getUsage)
	rg.PUT("/usage/tier", h.setTier)
}

// RegisterDevRoutes attaches dev-only usage routes.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/usage/reset", h.resetUsage)
}

func (h *Handler) getUsage(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	u, err := h.Svc.EnsurePeriod(c.Request.Context(), userID)
	if err != nil {
		respondUsageError(c, err, "failed to fetch usage")
		return
	}
	respondUsage(c, u)
}

type setTierRequest struct {
	Tier string `json:"tier"`
}

func (h *Handler) setTier(c *gin.Context) {
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to manage subscription", nil)
			return
		}
	}

	var req setTierRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Tier == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "tier is required", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	u, err := h.Svc.SetTier(c.Request.Context(), userID, req.Tier)
	if err != nil {
		respondUsageError(c, err, "failed to update tier")
		return
	}
	respondUsage(c, u)
}

func (h *Handler) resetUsage(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	u, err := h.Svc.Reset(c.Request.Context(), userID)
	if err != nil {
		respondUsageError(c, err, "failed to reset usage")
		return
	}
	respondUsage(c, u)
}

func respondUsage(c *gin.Context, u Usage) {
	respond.JSON(c, http.StatusOK, gin.H{
		"tier":      u.Tier,
		"limit":     u.Limit,
		"used":      u.Used,
		"unlimited": u.Limit < 0,
		"resetsAt":  u.ResetsAt,
	})
}

func respondUsageError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
	}
}
