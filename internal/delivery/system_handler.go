package delivery

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/config"
	"storefront/internal/delivery/response"
	"storefront/internal/logger"
)

// Pinger reports whether the database is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type SystemHandler struct {
	public  config.PublicConfig
	db      Pinger
	metrics http.Handler
	log     *logrus.Entry
}

func NewSystemHandler(public config.PublicConfig, db Pinger, metrics http.Handler, log *logrus.Logger) *SystemHandler {
	return &SystemHandler{public: public, db: db, metrics: metrics, log: logger.Named(log, "routes.system")}
}

func (h *SystemHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}
	router.GET("/api/config", h.Config)
}

func (h *SystemHandler) Root(c *gin.Context) {
	response.SuccessResponse(c, http.StatusOK, h.public.AppName+" API", gin.H{
		"version": h.public.APIVersion,
		"endpoints": gin.H{
			"products": "/api/products",
			"search":   "/api/products/search",
			"users":    "/api/users",
			"auth":     "/api/auth/login",
			"orders":   "/api/orders",
			"health":   "/health",
			"metrics":  "/metrics",
		},
	})
}

func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			h.log.Errorf("Health check failed: database unreachable: %v", err)
			c.JSON(http.StatusServiceUnavailable, response.Envelope{
				Status:  response.StatusFail,
				Message: "Service unhealthy",
				Data:    gin.H{"status": "unhealthy", "database": "unreachable"},
			})
			return
		}
	}
	response.SuccessResponse(c, http.StatusOK, "Service healthy", gin.H{"status": "healthy", "database": "ok"})
}

func (h *SystemHandler) Config(c *gin.Context) {
	response.SuccessResponse(c, http.StatusOK, "Configuration retrieved successfully", h.public)
}
