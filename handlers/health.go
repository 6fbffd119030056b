package handlers

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/muh-hamada/german-telc-b1-sub000/database"
)

// HealthResponse represents the unified health check response
type HealthResponse struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	Env        string `json:"env"`
	Version    string `json:"version"`
	BuildTime  string `json:"build_time"`
	ServerTime string `json:"server_time"`
}

// GetHealth handles GET /api/health
// Returns unified health status including version, environment, and timestamps
func GetHealth(c echo.Context) error {
	nodeEnv := strings.ToLower(strings.TrimSpace(os.Getenv("NODE_ENV")))
	env := mapNodeEnvToDeployEnv(nodeEnv)

	// Version and build time are injected at deploy time
	version := os.Getenv("GIT_COMMIT_SHA")
	if version == "" {
		version = "unknown"
	}
	buildTime := os.Getenv("DEPLOYED_AT")
	if buildTime == "" {
		buildTime = "unknown"
	}

	serverTime := time.Now().UTC().Format(time.RFC3339)

	response := HealthResponse{
		Status:     "ok",
		Service:    "telc-analytics-api",
		Env:        env,
		Version:    version,
		BuildTime:  buildTime,
		ServerTime: serverTime,
	}

	c.Logger().Infof(
		"[HEALTH_CHECK] env=%s version=%s path=%s timestamp=%s",
		env, version, c.Request().URL.Path, serverTime,
	)

	return c.JSON(http.StatusOK, response)
}

// GetHealthWithDB handles GET /health/db
// Includes database connectivity and per-collection document counts
func GetHealthWithDB(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	info, err := database.GetDBInfo(ctx)
	if err != nil {
		c.Logger().Errorf("Health DB check failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status": "degraded",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
		"db":     info,
	})
}

func mapNodeEnvToDeployEnv(nodeEnv string) string {
	switch nodeEnv {
	case "production":
		return "production"
	case "staging":
		return "staging"
	case "":
		return "development"
	default:
		return nodeEnv
	}
}
