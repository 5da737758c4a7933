package api

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func SetupRoutes(router *gin.Engine, handler *Handler, origins []string) {
	router.Use(cors.New(corsConfig(origins)))

	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.POST("/analyze", handler.AnalyzeProperty)
		api.POST("/negotiate", handler.Negotiate)
		api.POST("/batch", handler.SubmitBatch)
		api.POST("/batch/sync", handler.ProcessBatchSync)
		api.GET("/batch/:id", handler.GetBatch)
		api.GET("/analyses", handler.GetRecentAnalyses)
		api.GET("/analyses/stats", handler.GetAnalysisStats)
		api.GET("/analyses/:id", handler.GetAnalysis)
		api.GET("/analyses/:id/strategies.png", handler.GetStrategyChart)
		api.GET("/analyses/:id/comparables.geojson", handler.GetComparableMap)
	}
}
