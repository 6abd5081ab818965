package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Mount registers every route on r. Requests no route claims go to Dispatch.
func (h *Handler) Mount(r *gin.Engine) {
	if h.assets != nil {
		r.StaticFS(h.cfg.AssetsPath, http.FS(h.assets))
	}

	// Cart endpoint
	r.GET(AjaxPath, h.Ajax)
	r.POST(AjaxPath, h.Ajax)
	r.GET(LegacyAjaxPath, h.Ajax)
	r.POST(LegacyAjaxPath, h.Ajax)

	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "PUT", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
	}))
	admin := RequireAdmin(h.cfg.AdminPasswordHash)
	{
		// Settings routes
		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", admin, h.UpdateSettings)
		api.DELETE("/settings", admin, h.ResetSettings)

		// Route table
		api.GET("/routes", h.GetRoutes)

		// Error log routes
		api.GET("/error-logs", admin, h.GetErrorLogs)
		api.DELETE("/error-logs", admin, h.ClearErrorLogs)

		// System shutdown routes
		api.POST("/shutdown/generate-code", admin, h.GenerateShutdownCode)
		api.POST("/shutdown/verify", admin, h.VerifyAndShutdown)

		api.GET("/health", h.HealthCheck)

		// Preflight requests are answered by the CORS middleware
		api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}

	r.NoRoute(h.Dispatch)
}
