package httpapi

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all dispatch API routes
func RegisterRoutes(router *gin.Engine, handlers *Handlers) {
	router.GET("/health", handlers.Health())

	api := router.Group("/api/v1")
	{
		api.POST("/orders", handlers.IngestOrder())

		planAPI := api.Group("/plan")
		{
			planAPI.POST("/assign", handlers.AssignPlan())
			planAPI.POST("/routes", handlers.GenerateRoutes())
			planAPI.POST("/dispatch", handlers.DispatchPlan())
		}

		api.GET("/purchase-lists", handlers.GetPurchaseLists())

		routeAPI := api.Group("/routes")
		{
			routeAPI.GET("/:route_id", handlers.GetRoute())
			routeAPI.POST("/:route_id/recalculate", handlers.RecalculateRoute())
			routeAPI.PATCH("/:route_id/stops/:stop_id", handlers.UpdateStop())
		}

		api.POST("/failures", handlers.RecordFailure())
		api.POST("/distance-matrix/recompute", handlers.RecomputeMatrix())
		api.GET("/stores/:store_id/nearest", handlers.GetNearestStores())
	}
}
