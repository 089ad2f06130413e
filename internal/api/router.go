package api

import (
	"github.com/gin-gonic/gin"

	"github.com/heliohq/mpc/internal/api/handler"
	"github.com/heliohq/mpc/internal/api/middleware"
	"github.com/heliohq/mpc/internal/config"
	"github.com/heliohq/mpc/internal/service"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(
	collector *service.CollectorService,
	extractor *service.ExtractorService,
	cfg *config.Config,
	models []string,
) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.Server.CORS))

	healthHandler := handler.NewHealthHandler(cfg.Scraper.ApifyToken != "", models)
	agent1Handler := handler.NewAgent1Handler(collector, extractor)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", healthHandler.Health)

		agent1 := apiGroup.Group("/agent1")
		{
			agent1.POST("/collect-jobs", agent1Handler.CollectJobs)
			agent1.POST("/collect-jobs-stream", agent1Handler.CollectJobsStream)
			agent1.GET("/collections", agent1Handler.Collections)
			agent1.GET("/collections/:id", agent1Handler.Collection)
			agent1.POST("/analyze-keywords", agent1Handler.AnalyzeKeywords)
			agent1.POST("/analyze-keywords-stream", agent1Handler.AnalyzeKeywordsStream)
			agent1.GET("/results", agent1Handler.Results)
			agent1.GET("/transparency/:id", agent1Handler.Transparency)
		}
	}

	return r
}
