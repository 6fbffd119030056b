package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/muh-hamada/german-telc-b1-sub000/analytics"
	"github.com/muh-hamada/german-telc-b1-sub000/shared"
)

// DefaultQueryTimeout bounds every analytics request against the store
const DefaultQueryTimeout = 30 * time.Second

const (
	defaultTrendDays = 30
	maxTrendDays     = 90
)

// analyticsService is wired from main at startup. Handlers stay thin; the
// service owns the cache and all aggregation policy.
var analyticsService *analytics.Service

// InitAnalytics injects the reporting service used by the admin handlers
func InitAnalytics(svc *analytics.Service) {
	analyticsService = svc
}

// GetAppAnalytics handles GET /admin/analytics/:appId
// Query params:
//   - force: "true" bypasses the cache and recomputes
func GetAppAnalytics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), DefaultQueryTimeout)
	defer cancel()

	appID := c.Param("appId")
	if !isKnownAppID(appID) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Unknown app id: " + appID})
	}

	forceRefresh := c.QueryParam("force") == "true"

	data, err := analyticsService.GetAnalytics(ctx, appID, forceRefresh)
	if err != nil {
		c.Logger().Errorf("Failed to compute analytics for %s: %v", appID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Failed to compute analytics",
			"details": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, data)
}

// AllAppsAnalyticsResponse carries per-app results plus per-app failures so
// one broken app never blanks the whole dashboard.
type AllAppsAnalyticsResponse struct {
	Apps   map[string]*shared.AnalyticsData `json:"apps"`
	Errors map[string]string                `json:"errors,omitempty"`
}

// GetAllAppsAnalytics handles GET /admin/analytics
func GetAllAppsAnalytics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), DefaultQueryTimeout)
	defer cancel()

	forceRefresh := c.QueryParam("force") == "true"

	results, failures := analyticsService.GetAllApps(ctx, forceRefresh)

	response := AllAppsAnalyticsResponse{Apps: results}
	if len(failures) > 0 {
		response.Errors = make(map[string]string, len(failures))
		for appID, err := range failures {
			c.Logger().Warnf("Analytics failed for app %s: %v", appID, err)
			response.Errors[appID] = err.Error()
		}
	}

	return c.JSON(http.StatusOK, response)
}

// GetAppTrends handles GET /admin/analytics/:appId/trends
// Query params:
//   - days: how far back to look (default 30, clamped to 1..90)
func GetAppTrends(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), DefaultQueryTimeout)
	defer cancel()

	appID := c.Param("appId")
	if !isKnownAppID(appID) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Unknown app id: " + appID})
	}

	daysBack := defaultTrendDays
	if daysParam := c.QueryParam("days"); daysParam != "" {
		if d, err := strconv.Atoi(daysParam); err == nil && d > 0 {
			daysBack = d
		}
	}
	if daysBack > maxTrendDays {
		daysBack = maxTrendDays
	}

	trends, err := analyticsService.GetTrends(ctx, appID, daysBack)
	if err != nil {
		c.Logger().Errorf("Failed to build trends for %s: %v", appID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Failed to build trends",
			"details": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"appId":    appID,
		"daysBack": daysBack,
		"trends":   trends,
	})
}

// GetCombinedTrends handles GET /admin/analytics/trends
// Same days param as the per-app endpoint; series are summed across all apps.
func GetCombinedTrends(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), DefaultQueryTimeout)
	defer cancel()

	daysBack := defaultTrendDays
	if daysParam := c.QueryParam("days"); daysParam != "" {
		if d, err := strconv.Atoi(daysParam); err == nil && d > 0 {
			daysBack = d
		}
	}
	if daysBack > maxTrendDays {
		daysBack = maxTrendDays
	}

	trends, err := analyticsService.GetCombinedTrends(ctx, daysBack)
	if err != nil {
		c.Logger().Errorf("Failed to build combined trends: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Failed to build trends",
			"details": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"daysBack": daysBack,
		"trends":   trends,
	})
}

// ClearAnalyticsCache handles POST /admin/analytics/cache/clear
// Query params:
//   - appId: clear one app's entry; omitted means clear everything
func ClearAnalyticsCache(c echo.Context) error {
	appID := c.QueryParam("appId")
	if appID != "" {
		if !isKnownAppID(appID) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Unknown app id: " + appID})
		}
		analyticsService.ClearCache(appID)
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "cleared": appID})
	}

	analyticsService.ClearAllCache()
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "cleared": "all"})
}

func isKnownAppID(appID string) bool {
	for _, known := range analyticsService.AppIDs() {
		if known == appID {
			return true
		}
	}
	return false
}
