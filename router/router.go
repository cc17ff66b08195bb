package router

import (
	"github.com/banking/credit-scoring-engine/config"
	_ "github.com/banking/credit-scoring-engine/docs" // registers the swagger spec
	"github.com/banking/credit-scoring-engine/handlers"
	"github.com/banking/credit-scoring-engine/metrics"
	"github.com/banking/credit-scoring-engine/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config        *config.Config
	Metrics       *metrics.Registry
	HealthHandler *handlers.HealthHandler
	InfoHandler   *handlers.InfoHandler
}

// SetupRouter configures and returns the Gin engine serving the actuator surface.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	// Global Middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.ErrorHandler())

	actuator := r.Group("/actuator")
	{
		actuator.GET("/health", deps.HealthHandler.Health)
		actuator.GET("/health/:name", deps.HealthHandler.Indicator)
		actuator.GET("/info", deps.InfoHandler.Info)
		actuator.GET("/prometheus", gin.WrapH(deps.Metrics.Handler()))
	}

	// Short paths used by older deployment descriptors
	r.GET("/health", deps.HealthHandler.Health)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)

	if !deps.Config.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
