package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agents-backend/internal/assessments"
	"agents-backend/internal/extract"
	"agents-backend/internal/marketplace"
	"agents-backend/internal/shared/config"
	"agents-backend/internal/shared/metrics"
	"agents-backend/internal/shared/server/middleware"
	"agents-backend/internal/shared/server/respond"
	"agents-backend/internal/usage"
)

// Deps are the handlers the router mounts. Nil handlers are skipped so
// tests can wire only the slice they exercise.
type Deps struct {
	Config      config.Config
	Assessments *assessments.Handler
	Usage       *usage.Handler
	Marketplace *marketplace.Handler
	Extract     *extract.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(d.Config.CORSAllowOrigin),
		middleware.Auth(d.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 10, Burst: 30},
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	registerMeRoutes(api)

	if d.Marketplace != nil {
		d.Marketplace.RegisterRoutes(api)
	}
	if d.Assessments != nil {
		d.Assessments.RegisterRoutes(api)
	}
	if d.Usage != nil {
		d.Usage.RegisterRoutes(api)
		if d.Config.Env == "dev" {
			dev := api.Group("/dev")
			d.Usage.RegisterDevRoutes(dev)
		}
	}
	if d.Extract != nil {
		d.Extract.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
