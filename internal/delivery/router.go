package delivery

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/config"
	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/middleware"
)

// Dependencies is everything the HTTP surface needs from the rest of the service.
type Dependencies struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Tokens   *auth.TokenManager
	DB       Pinger
	Metrics  *middleware.Metrics
	Products domain.ProductUseCase
	Users    domain.UserUseCase
	Orders   domain.OrderUseCase
	Posts    domain.PostUseCase
	Commerce domain.CommerceUseCase
}

// NewRouter builds the gin engine with the middleware chain and every route group.
func NewRouter(d Dependencies) *gin.Engine {
	cfg := d.Config

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(d.Logger),
		middleware.RequestLogger(d.Logger),
	)
	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware())
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.APIKeyHeader, middleware.TenantHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.NoRoute(func(c *gin.Context) {
		handleError(c, logger.Named(d.Logger, "routes"), NewHTTPError(http.StatusNotFound, "Route not found"), "")
	})

	mwLog := logger.Named(d.Logger, "middleware")
	authenticated := middleware.Authenticate(d.Tokens, d.Users, mwLog)
	adminOnly := middleware.RequireRoles(mwLog, domain.RoleAdmin)
	staffOnly := middleware.RequireRoles(mwLog, domain.RoleAdmin, domain.RoleModerator)
	searchLimiter := middleware.NewRateLimiter(cfg.SearchRateLimit, cfg.SearchRateBurst)

	var metricsHandler http.Handler
	if d.Metrics != nil {
		metricsHandler = d.Metrics.Handler()
	}
	NewSystemHandler(cfg.Public(), d.DB, metricsHandler, d.Logger).RegisterRoutes(router)

	api := router.Group("/api")

	products := api.Group("/products")
	NewProductHandler(d.Products, d.Logger).RegisterRoutes(products, authenticated, adminOnly)
	NewSearchHandler(d.Products, d.Logger).RegisterRoutes(products, searchLimiter.Middleware(mwLog))

	NewUserHandler(d.Users, d.Posts, d.Logger).RegisterRoutes(api.Group("/users"), authenticated, adminOnly)

	NewAuthHandler(d.Users, d.Tokens, SessionSettings{
		AccessTTL:     cfg.AccessTokenTTL,
		RememberMeTTL: cfg.RememberMeTTL,
		CookieSecure:  cfg.CookieSecure,
	}, d.Logger).RegisterRoutes(api.Group("/auth"), authenticated)

	NewOrderHandler(d.Orders, d.Logger).RegisterRoutes(api.Group("/orders", authenticated), staffOnly)
	NewPostHandler(d.Posts, d.Logger).RegisterRoutes(api.Group("/posts", authenticated), adminOnly, staffOnly)
	NewPreferenceHandler(cfg.CookieSecure, d.Logger).RegisterRoutes(api)
	NewClientHandler(d.Logger).RegisterRoutes(api.Group("/client"))
	NewPartnerHandler(d.Orders, d.Logger).RegisterRoutes(
		api.Group("/partner", middleware.APIKey(cfg.APIKeys, mwLog)),
		middleware.Tenant(mwLog), authenticated)
	NewReportHandler(d.Orders, d.Logger).RegisterRoutes(api.Group("/reports", authenticated, adminOnly))
	NewCommerceHandler(d.Commerce, d.Logger).RegisterRoutes(api, authenticated)
	NewUploadHandler(cfg.UploadDir, cfg.MaxUploadBytes, d.Logger).RegisterRoutes(api.Group("/uploads", authenticated))

	return router
}
