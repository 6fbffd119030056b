package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muh-hamada/german-telc-b1-sub000/shared"
)

// fakeStore is an in-memory Store with call counters, standing in for
// database.MongoStore.
type fakeStore struct {
	mu sync.Mutex

	users     map[string][]shared.UserDocument
	studyData map[string]*shared.UserStudyData // keyed by uid
	snapshots map[string][]shared.DailySnapshotDocument

	usersErr     map[string]error
	studyDataErr map[string]error

	userCalls      map[string]int
	studyCalls     []string
	snapshotsCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[string][]shared.UserDocument),
		studyData:    make(map[string]*shared.UserStudyData),
		snapshots:    make(map[string][]shared.DailySnapshotDocument),
		usersErr:     make(map[string]error),
		studyDataErr: make(map[string]error),
		userCalls:    make(map[string]int),
	}
}

func (f *fakeStore) GetUsersByApp(_ context.Context, appID string) ([]shared.UserDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls[appID]++
	if err := f.usersErr[appID]; err != nil {
		return nil, err
	}
	return f.users[appID], nil
}

func (f *fakeStore) GetUserStudyData(_ context.Context, _, uid string) (*shared.UserStudyData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.studyCalls = append(f.studyCalls, uid)
	if err := f.studyDataErr[uid]; err != nil {
		return nil, err
	}
	if data, ok := f.studyData[uid]; ok {
		return data, nil
	}
	return &shared.UserStudyData{}, nil
}

func (f *fakeStore) GetRecentSnapshots(_ context.Context, appID string, _ int) ([]shared.DailySnapshotDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshotsCalls++
	return f.snapshots[appID], nil
}

func (f *fakeStore) studyCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.studyCalls)
}

func newTestService(store *fakeStore) (*Service, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)}
	svc := NewService(store)
	svc.now = clock.Now
	svc.cache.now = clock.Now
	return svc, clock
}

func makeUsers(n int) []shared.UserDocument {
	users := make([]shared.UserDocument, n)
	for i := range users {
		users[i] = shared.UserDocument{UID: fmt.Sprintf("u%03d", i)}
	}
	return users
}

func TestGetAnalyticsCaching(t *testing.T) {
	t.Run("second call within ttl hits cache", func(t *testing.T) {
		store := newFakeStore()
		store.users["german-b1"] = makeUsers(3)
		svc, _ := newTestService(store)

		first, err := svc.GetAnalytics(context.Background(), "german-b1", false)
		require.NoError(t, err)
		second, err := svc.GetAnalytics(context.Background(), "german-b1", false)
		require.NoError(t, err)

		assert.Equal(t, 1, store.userCalls["german-b1"])
		assert.Equal(t, *first, *second)
	})

	t.Run("recomputes after ttl expiry", func(t *testing.T) {
		store := newFakeStore()
		store.users["german-b1"] = makeUsers(3)
		svc, clock := newTestService(store)

		_, err := svc.GetAnalytics(context.Background(), "german-b1", false)
		require.NoError(t, err)

		clock.Advance(CacheTTL)
		_, err = svc.GetAnalytics(context.Background(), "german-b1", false)
		require.NoError(t, err)

		assert.Equal(t, 2, store.userCalls["german-b1"])
	})

	t.Run("force refresh bypasses and overwrites cache", func(t *testing.T) {
		store := newFakeStore()
		store.users["german-b1"] = makeUsers(3)
		svc, _ := newTestService(store)

		_, err := svc.GetAnalytics(context.Background(), "german-b1", false)
		require.NoError(t, err)

		store.mu.Lock()
		store.users["german-b1"] = makeUsers(5)
		store.mu.Unlock()

		forced, err := svc.GetAnalytics(context.Background(), "german-b1", true)
		require.NoError(t, err)
		assert.Equal(t, 5, forced.TotalUsers)

		// the forced result replaced the cached entry
		cached, err := svc.GetAnalytics(context.Background(), "german-b1", false)
		require.NoError(t, err)
		assert.Equal(t, 5, cached.TotalUsers)
		assert.Equal(t, 2, store.userCalls["german-b1"])
	})

	t.Run("clear cache forces recompute", func(t *testing.T) {
		store := newFakeStore()
		store.users["german-b1"] = makeUsers(3)
		svc, _ := newTestService(store)

		_, err := svc.GetAnalytics(context.Background(), "german-b1", false)
		require.NoError(t, err)

		svc.ClearCache("german-b1")

		_, err = svc.GetAnalytics(context.Background(), "german-b1", false)
		require.NoError(t, err)
		assert.Equal(t, 2, store.userCalls["german-b1"])
	})

	t.Run("hard fetch failure keeps previous cache entry", func(t *testing.T) {
		store := newFakeStore()
		store.users["german-b1"] = makeUsers(3)
		svc, _ := newTestService(store)

		_, err := svc.GetAnalytics(context.Background(), "german-b1", false)
		require.NoError(t, err)

		store.mu.Lock()
		store.usersErr["german-b1"] = errors.New("connection reset")
		store.mu.Unlock()

		_, err = svc.GetAnalytics(context.Background(), "german-b1", true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "german-b1")

		// the stale entry still serves non-forced reads
		cached, err := svc.GetAnalytics(context.Background(), "german-b1", false)
		require.NoError(t, err)
		assert.Equal(t, 3, cached.TotalUsers)
	})
}

func TestGetAnalyticsSampling(t *testing.T) {
	t.Run("sample is capped at the prefix", func(t *testing.T) {
		store := newFakeStore()
		store.users["german-b1"] = makeUsers(250)
		svc, _ := newTestService(store)

		data, err := svc.GetAnalytics(context.Background(), "german-b1", false)
		require.NoError(t, err)

		assert.Equal(t, 250, data.TotalUsers)
		assert.Equal(t, SampleSize, store.studyCallCount())

		sampled := make(map[string]bool, SampleSize)
		store.mu.Lock()
		for _, uid := range store.studyCalls {
			sampled[uid] = true
		}
		store.mu.Unlock()
		for i := 0; i < SampleSize; i++ {
			assert.True(t, sampled[fmt.Sprintf("u%03d", i)])
		}
	})

	t.Run("fewer users than the cap samples everyone", func(t *testing.T) {
		store := newFakeStore()
		store.users["german-b1"] = makeUsers(7)
		svc, _ := newTestService(store)

		_, err := svc.GetAnalytics(context.Background(), "german-b1", false)
		require.NoError(t, err)
		assert.Equal(t, 7, store.studyCallCount())
	})

	t.Run("one failed detail fetch does not abort the batch", func(t *testing.T) {
		store := newFakeStore()
		store.users["german-b1"] = makeUsers(3)
		store.studyDataErr["u001"] = errors.New("timeout")
		store.studyData["u000"] = &shared.UserStudyData{
			Streak: &shared.StreakDocument{CurrentStreak: 4, LongestStreak: 4},
		}
		store.studyData["u002"] = &shared.UserStudyData{
			Streak: &shared.StreakDocument{CurrentStreak: 2, LongestStreak: 9},
		}
		svc, _ := newTestService(store)

		data, err := svc.GetAnalytics(context.Background(), "german-b1", false)
		require.NoError(t, err)

		// flat metrics still cover all three users
		assert.Equal(t, 3, data.TotalUsers)
		// detail-dependent metrics only cover the two successful fetches
		assert.Equal(t, 2, data.Streaks.ActiveStreaks)
	})
}

func TestGetAllApps(t *testing.T) {
	t.Run("covers every known app", func(t *testing.T) {
		store := newFakeStore()
		for _, appID := range shared.AppIDs {
			store.users[appID] = makeUsers(1)
		}
		svc, _ := newTestService(store)

		results, failures := svc.GetAllApps(context.Background(), false)

		assert.Len(t, results, len(shared.AppIDs))
		assert.Empty(t, failures)
	})

	t.Run("one failing app does not blank the rest", func(t *testing.T) {
		store := newFakeStore()
		for _, appID := range shared.AppIDs {
			store.users[appID] = makeUsers(2)
		}
		store.usersErr["english-b2"] = errors.New("replica down")
		svc, _ := newTestService(store)

		results, failures := svc.GetAllApps(context.Background(), false)

		assert.Len(t, results, len(shared.AppIDs)-1)
		require.Len(t, failures, 1)
		assert.Error(t, failures["english-b2"])
		assert.NotContains(t, results, "english-b2")
	})
}

func TestGetTrends(t *testing.T) {
	store := newFakeStore()
	store.snapshots["german-b1"] = []shared.DailySnapshotDocument{
		snapshot("2026-03-13", 100, 5),
		snapshot("2026-03-14", 110, 6),
	}
	svc, _ := newTestService(store)

	trends, err := svc.GetTrends(context.Background(), "german-b1", 30)
	require.NoError(t, err)

	// one series per known metric, even when the metric is all zeros
	assert.Len(t, trends, len(shared.MetricKeys))
	assert.Equal(t, []shared.TrendPoint{
		{Date: "2026-03-13", Value: 100},
		{Date: "2026-03-14", Value: 110},
	}, trends[shared.MetricTotalUsers])
	assert.Equal(t, []shared.TrendPoint{
		{Date: "2026-03-13", Value: 0},
		{Date: "2026-03-14", Value: 0},
	}, trends[shared.MetricPremiumUsers])
}

func TestGetCombinedTrends(t *testing.T) {
	store := newFakeStore()
	store.snapshots["german-b1"] = []shared.DailySnapshotDocument{
		snapshot("2026-03-13", 100, 5),
		snapshot("2026-03-14", 110, 6),
	}
	store.snapshots["german-b2"] = []shared.DailySnapshotDocument{
		snapshot("2026-03-14", 40, 2),
		snapshot("2026-03-15", 45, 3),
	}
	svc, _ := newTestService(store)

	combined, err := svc.GetCombinedTrends(context.Background(), 30)
	require.NoError(t, err)

	assert.Len(t, combined, len(shared.MetricKeys))
	assert.Equal(t, []shared.TrendPoint{
		{Date: "2026-03-13", Value: 100},
		{Date: "2026-03-14", Value: 150},
		{Date: "2026-03-15", Value: 45},
	}, combined[shared.MetricTotalUsers])
	assert.Equal(t, []shared.TrendPoint{
		{Date: "2026-03-13", Value: 5},
		{Date: "2026-03-14", Value: 8},
		{Date: "2026-03-15", Value: 3},
	}, combined[shared.MetricActiveStreaks])
}
