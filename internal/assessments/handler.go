package assessments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agents-backend/internal/engine"
	"agents-backend/internal/shared/server/middleware"
	"agents-backend/internal/shared/server/respond"
	"agents-backend/internal/usage"
)

// Handler wires HTTP handlers to the assessments service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches assessment routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/agents/:key/assessments", h.createAssessment)
	rg.GET("/assessments", h.listAssessments)
	rg.GET("/assessments/:id", h.getAssessment)
	rg.POST("/pipeline/run", h.runPipeline)
}

func (h *Handler) createAssessment(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	agentKey := c.Param("key")
	if agentKey == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "agent key is required", nil)
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	if req.Input == nil {
		req.Input = engine.Input{}
	}

	ctx := WithRequestID(c.Request.Context(), c.GetString("requestId"))
	assessment, err := h.Svc.Create(ctx, agentKey, userID, req.Input)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownAgent):
			respond.Error(c, http.StatusNotFound, "not_found", "agent not found", nil)
		case errors.Is(err, usage.ErrLimitReached):
			respond.Error(c, http.StatusTooManyRequests, "limit_reached", "You've reached your assessment limit. Upgrade your plan to continue.", []map[string]string{
				{"field": "usage", "issue": "limit_reached"},
			})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start assessment", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"assessmentId": assessment.ID,
		"agentKey":     assessment.AgentKey,
		"status":       assessment.Status,
	})
}

func (h *Handler) getAssessment(c *gin.Context) {
	assessmentID := c.Param("id")
	if assessmentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "assessment id is required", nil)
		return
	}

	assessment, err := h.Svc.Get(c.Request.Context(), assessmentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "assessment not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch assessment", nil)
		}
		return
	}
	if assessment.UserID != middleware.UserIDFromContext(c) {
		respond.Error(c, http.StatusNotFound, "not_found", "assessment not found", nil)
		return
	}

	resp := gin.H{
		"id":       assessment.ID,
		"agentKey": assessment.AgentKey,
		"company":  assessment.Company,
		"status":   assessment.Status,
	}
	if assessment.Status == StatusCompleted && assessment.Report != nil {
		resp["report"] = assessment.Report
	}
	if assessment.Status == StatusFailed && assessment.ErrorMessage != nil {
		resp["error"] = *assessment.ErrorMessage
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) listAssessments(c *gin.Context) {
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
			return
		}
	}

	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	assessments, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list assessments", nil)
		return
	}

	resp := make([]gin.H, 0, len(assessments))
	for _, a := range assessments {
		item := gin.H{
			"assessmentId": a.ID,
			"agentKey":     a.AgentKey,
			"company":      a.Company,
			"status":       a.Status,
			"createdAt":    a.CreatedAt,
		}
		if a.Status == StatusCompleted && a.Report != nil {
			item["recommendationCount"] = len(a.Report.Recommendations)
			item["nextReview"] = a.Report.NextReview
		}
		resp = append(resp, item)
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) runPipeline(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req pipelineRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	if len(req.Agents) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one agent is required", nil)
		return
	}
	if req.Input == nil {
		req.Input = engine.Input{}
	}

	ctx := WithRequestID(c.Request.Context(), c.GetString("requestId"))
	result, err := h.Svc.RunPipeline(ctx, userID, req.Agents, req.Input)
	if err != nil {
		switch {
		case errors.Is(err, usage.ErrLimitReached):
			respond.Error(c, http.StatusTooManyRequests, "limit_reached", "You've reached your assessment limit. Upgrade your plan to continue.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to run pipeline", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, result)
}
