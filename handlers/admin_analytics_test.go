package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muh-hamada/german-telc-b1-sub000/analytics"
	"github.com/muh-hamada/german-telc-b1-sub000/shared"
)

// stubStore is the minimal analytics.Store needed to drive the handlers.
type stubStore struct {
	users     map[string][]shared.UserDocument
	usersErr  error
	snapshots []shared.DailySnapshotDocument
}

func (s *stubStore) GetUsersByApp(_ context.Context, appID string) ([]shared.UserDocument, error) {
	if s.usersErr != nil {
		return nil, s.usersErr
	}
	return s.users[appID], nil
}

func (s *stubStore) GetUserStudyData(_ context.Context, _, _ string) (*shared.UserStudyData, error) {
	return &shared.UserStudyData{}, nil
}

func (s *stubStore) GetRecentSnapshots(_ context.Context, _ string, _ int) ([]shared.DailySnapshotDocument, error) {
	return s.snapshots, nil
}

func setupAnalytics(t *testing.T, store *stubStore) {
	t.Helper()
	prev := analyticsService
	InitAnalytics(analytics.NewService(store))
	t.Cleanup(func() { analyticsService = prev })
}

func request(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGetAppAnalytics(t *testing.T) {
	t.Run("returns aggregate for a known app", func(t *testing.T) {
		setupAnalytics(t, &stubStore{users: map[string][]shared.UserDocument{
			"german-b1": {{UID: "u1"}, {UID: "u2"}},
		}})

		c, rec := request(http.MethodGet, "/admin/analytics/german-b1")
		c.SetParamNames("appId")
		c.SetParamValues("german-b1")

		require.NoError(t, GetAppAnalytics(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var data shared.AnalyticsData
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
		assert.Equal(t, 2, data.TotalUsers)
	})

	t.Run("unknown app id is 404", func(t *testing.T) {
		setupAnalytics(t, &stubStore{})

		c, rec := request(http.MethodGet, "/admin/analytics/klingon-c2")
		c.SetParamNames("appId")
		c.SetParamValues("klingon-c2")

		require.NoError(t, GetAppAnalytics(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("store failure is 500 with details", func(t *testing.T) {
		setupAnalytics(t, &stubStore{usersErr: errors.New("connection reset")})

		c, rec := request(http.MethodGet, "/admin/analytics/german-b1")
		c.SetParamNames("appId")
		c.SetParamValues("german-b1")

		require.NoError(t, GetAppAnalytics(c))
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Failed to compute analytics", body["error"])
		assert.Contains(t, body["details"], "connection reset")
	})
}

func TestGetAllAppsAnalytics(t *testing.T) {
	t.Run("all apps succeed", func(t *testing.T) {
		users := make(map[string][]shared.UserDocument, len(shared.AppIDs))
		for _, appID := range shared.AppIDs {
			users[appID] = []shared.UserDocument{{UID: "u1"}}
		}
		setupAnalytics(t, &stubStore{users: users})

		c, rec := request(http.MethodGet, "/admin/analytics")

		require.NoError(t, GetAllAppsAnalytics(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp AllAppsAnalyticsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Apps, len(shared.AppIDs))
		assert.Empty(t, resp.Errors)
	})

	t.Run("per-app failures land in errors, not in the status code", func(t *testing.T) {
		setupAnalytics(t, &stubStore{usersErr: errors.New("replica down")})

		c, rec := request(http.MethodGet, "/admin/analytics")

		require.NoError(t, GetAllAppsAnalytics(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp AllAppsAnalyticsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.Apps)
		assert.Len(t, resp.Errors, len(shared.AppIDs))
	})
}

func TestGetAppTrends(t *testing.T) {
	snapshots := []shared.DailySnapshotDocument{
		{Date: "2026-03-13", AppID: "german-b1", Data: shared.AnalyticsData{TotalUsers: 100}},
		{Date: "2026-03-14", AppID: "german-b1", Data: shared.AnalyticsData{TotalUsers: 110}},
	}

	t.Run("returns one series per metric", func(t *testing.T) {
		setupAnalytics(t, &stubStore{snapshots: snapshots})

		c, rec := request(http.MethodGet, "/admin/analytics/german-b1/trends")
		c.SetParamNames("appId")
		c.SetParamValues("german-b1")

		require.NoError(t, GetAppTrends(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			AppID    string                                    `json:"appId"`
			DaysBack int                                       `json:"daysBack"`
			Trends   map[shared.MetricKey][]shared.TrendPoint `json:"trends"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "german-b1", resp.AppID)
		assert.Equal(t, 30, resp.DaysBack)
		assert.Len(t, resp.Trends, len(shared.MetricKeys))
		assert.Equal(t, []shared.TrendPoint{
			{Date: "2026-03-13", Value: 100},
			{Date: "2026-03-14", Value: 110},
		}, resp.Trends[shared.MetricTotalUsers])
	})

	t.Run("days param is clamped", func(t *testing.T) {
		setupAnalytics(t, &stubStore{snapshots: snapshots})

		c, rec := request(http.MethodGet, "/admin/analytics/german-b1/trends?days=365")
		c.SetParamNames("appId")
		c.SetParamValues("german-b1")

		require.NoError(t, GetAppTrends(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			DaysBack int `json:"daysBack"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 90, resp.DaysBack)
	})

	t.Run("invalid days param falls back to default", func(t *testing.T) {
		setupAnalytics(t, &stubStore{snapshots: snapshots})

		c, rec := request(http.MethodGet, "/admin/analytics/german-b1/trends?days=banana")
		c.SetParamNames("appId")
		c.SetParamValues("german-b1")

		require.NoError(t, GetAppTrends(c))

		var resp struct {
			DaysBack int `json:"daysBack"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 30, resp.DaysBack)
	})
}

func TestClearAnalyticsCache(t *testing.T) {
	t.Run("clears a single app", func(t *testing.T) {
		setupAnalytics(t, &stubStore{})

		c, rec := request(http.MethodPost, "/admin/analytics/cache/clear?appId=german-b1")

		require.NoError(t, ClearAnalyticsCache(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "german-b1", body["cleared"])
	})

	t.Run("clears everything when appId omitted", func(t *testing.T) {
		setupAnalytics(t, &stubStore{})

		c, rec := request(http.MethodPost, "/admin/analytics/cache/clear")

		require.NoError(t, ClearAnalyticsCache(c))

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "all", body["cleared"])
	})

	t.Run("unknown appId is 404", func(t *testing.T) {
		setupAnalytics(t, &stubStore{})

		c, rec := request(http.MethodPost, "/admin/analytics/cache/clear?appId=klingon-c2")

		require.NoError(t, ClearAnalyticsCache(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
