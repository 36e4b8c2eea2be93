package marketplace

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agents-backend/internal/shared/server/respond"
)

// Handler exposes the marketplace catalog.
type Handler struct {
	Catalog *Catalog
}

// NewHandler constructs a Handler.
func NewHandler(catalog *Catalog) *Handler {
	return &Handler{Catalog: catalog}
}

// RegisterRoutes attaches marketplace routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/marketplace/agents", h.listAgents)
	rg.GET("/marketplace/agents/:key", h.getAgent)
}

func (h *Handler) listAgents(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{
		"agents": h.Catalog.Listings(),
	})
}

func (h *Handler) getAgent(c *gin.Context) {
	key := c.Param("key")
	listing, ok := h.Catalog.Get(key)
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "agent not found", nil)
		return
	}
	respond.JSON(c, http.StatusOK, listing)
}
