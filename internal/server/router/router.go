package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Clients       *handlers.ResourceHandler[models.Client]
	Products      *handlers.ResourceHandler[models.Product]
	Brands        *handlers.ResourceHandler[models.Brand]
	Services      *handlers.ResourceHandler[models.Service]
	Prescriptions *handlers.ResourceHandler[models.Prescription]
	Sales         *handlers.SalesHandler
	Wizard        *handlers.WizardHandler
	Dashboard     *handlers.DashboardHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	h.Clients.Mount(api.Group("/clients"))
	h.Products.Mount(api.Group("/products"))
	h.Brands.Mount(api.Group("/brands"))
	h.Services.Mount(api.Group("/services"))
	h.Prescriptions.Mount(api.Group("/prescriptions"))
	h.Sales.Mount(api.Group("/sales"))
	h.Wizard.Mount(api.Group("/sale-drafts"))
	api.GET("/dashboard", h.Dashboard.Summary)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
