package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/muh-hamada/german-telc-b1-sub000/config"
	"github.com/muh-hamada/german-telc-b1-sub000/handlers"
)

// RegisterRoutes defines all application routes
func RegisterRoutes(e *echo.Echo) {
	// Canonical unified health endpoint (public, no auth required)
	e.GET("/api/health", handlers.GetHealth)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Version endpoint to verify deployed commit
	e.GET("/version", func(c echo.Context) error {
		cfg := config.GetConfig()
		version := cfg.GitCommitSha
		if version == "" {
			version = "unknown"
		}
		return c.JSON(http.StatusOK, map[string]string{
			"version":    version,
			"deployedAt": cfg.DeployedAt,
		})
	})

	// Health check with database status (public but limited info)
	e.GET("/health/db", handlers.GetHealthWithDB)

	// Public content endpoints (apps render exam definitions from these)
	e.GET("/exams", handlers.GetAllExams)
	e.GET("/exams/:id", handlers.GetExam)

	// Admin routes (JWT-protected + admin role required)
	cfg := config.GetConfig()
	jwtMiddleware := JWTMiddleware(cfg.JwtSecret)

	adminGroup := e.Group("/admin")
	adminGroup.Use(jwtMiddleware)
	adminGroup.Use(RequireAdminRole())

	// Analytics reporting
	adminGroup.GET("/analytics", handlers.GetAllAppsAnalytics)             // All apps, cross-app dashboard
	adminGroup.GET("/analytics/trends", handlers.GetCombinedTrends)        // Cross-app merged series
	adminGroup.GET("/analytics/:appId", handlers.GetAppAnalytics)          // One app
	adminGroup.GET("/analytics/:appId/trends", handlers.GetAppTrends)      // Per-metric daily series
	adminGroup.POST("/analytics/cache/clear", handlers.ClearAnalyticsCache)

	// Exam content management
	adminGroup.GET("/exams", handlers.GetAllExams)
	adminGroup.POST("/exams", handlers.CreateExam)
	adminGroup.GET("/exams/:id", handlers.GetExam)
	adminGroup.PUT("/exams/:id", handlers.UpdateExam)
	adminGroup.DELETE("/exams/:id", handlers.DeleteExam)
}
