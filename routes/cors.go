package routes

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/muh-hamada/german-telc-b1-sub000/config"
)

// ConfigureCORS sets up CORS middleware with proper origins
func ConfigureCORS(e *echo.Echo) {
	cfg := config.GetConfig()

	allowedOrigins := []string{
		"http://localhost:3000", // Admin dashboard, local development
	}

	// Add deployment origins from config
	if cfg.AllowedOrigins != "" {
		origins := strings.Split(cfg.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			origin = strings.TrimRight(origin, "/")
			if origin == "" || origin == "*" {
				continue
			}
			allowedOrigins = append(allowedOrigins, origin)
		}
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{
			echo.GET,
			echo.HEAD,
			echo.PUT,
			echo.PATCH,
			echo.POST,
			echo.DELETE,
			echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			"Cache-Control",
		},
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}
