package delivery

import (
	"context"
	"net/http"

	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/Sarbjeetmaan/backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HealthChecker reports whether the service can reach its backing store.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

type RouterDeps struct {
	Orders   domain.OrderUseCase
	Users    domain.UserUseCase
	Products domain.ProductUseCase
	Carts    domain.CartUseCase
	Identity middleware.IdentityResolver
	Health   HealthChecker
}

func NewRouter(deps RouterDeps, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(logger))

	router.GET("/health", healthHandler(deps.Health, logger))

	authed := router.Group("/")
	authed.Use(middleware.RequireAuth(deps.Identity, logger))

	admin := router.Group("/admin")
	admin.Use(middleware.RequireAuth(deps.Identity, logger), middleware.RequireRole(domain.RoleAdmin, logger))

	NewUserHandler(deps.Users, logger).RegisterRoutes(router, authed)
	NewProductHandler(deps.Products, logger).RegisterRoutes(router, admin)
	NewCartHandler(deps.Carts, logger).RegisterRoutes(authed)
	NewOrderHandler(deps.Orders, deps.Carts, logger).RegisterRoutes(authed, admin)

	logger.Info("Routes registered.")
	return router
}

func healthHandler(checker HealthChecker, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker != nil {
			if err := checker.PingContext(c.Request.Context()); err != nil {
				logger.Errorf("Health check failed: %v", err)
				ErrorResponse(c, http.StatusServiceUnavailable, "Database unavailable")
				return
			}
		}
		SuccessResponse(c, http.StatusOK, "OK", nil)
	}
}
