// Package http wires the gin router for the engine's operator API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"averon/internal/interfaces/http/handlers"
	"averon/internal/interfaces/http/middleware"
	"averon/internal/shared/logger"
)

// NewRouter builds the gin engine with the trigger and inspection routes.
func NewRouter(
	mode string,
	fleetHandler *handlers.FleetHandler,
	serverHandler *handlers.ServerHandler,
	log logger.Interface,
) *gin.Engine {
	gin.SetMode(ginMode(mode))

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		fleetGroup := api.Group("/fleet")
		{
			fleetGroup.POST("/sync", fleetHandler.TriggerSyncAll)
			fleetGroup.POST("/sync/:id", fleetHandler.TriggerSyncServer)
			fleetGroup.POST("/health", fleetHandler.TriggerHealthPass)
			fleetGroup.POST("/rotate/:id", fleetHandler.TriggerRotation)
		}

		serverGroup := api.Group("/servers")
		{
			serverGroup.GET("", serverHandler.ListServers)
			serverGroup.GET("/:id", serverHandler.GetServer)
			serverGroup.GET("/:id/health", serverHandler.GetServerHealth)
		}

		api.GET("/subscriptions/:id/rotations", serverHandler.GetSubscriptionRotations)
	}

	return router
}

func ginMode(mode string) string {
	switch mode {
	case "release", "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
