package analytics

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/muh-hamada/german-telc-b1-sub000/shared"
)

// SampleSize caps how many users get their nested study records fetched per
// aggregation. The sample is a stable prefix of the fetch order so repeated
// runs over unchanged data are reproducible.
const SampleSize = 100

// Store is the read-only document store surface the engine depends on.
// database.MongoStore implements it in production; tests use a fake.
type Store interface {
	// GetUsersByApp returns the flat user list for one app. An error here is
	// a hard failure for the whole aggregation.
	GetUsersByApp(ctx context.Context, appID string) ([]shared.UserDocument, error)
	// GetUserStudyData returns one user's nested progress/completion/streak
	// records. An error here is soft: the user is excluded from
	// detail-dependent aggregates and the batch continues.
	GetUserStudyData(ctx context.Context, appID, uid string) (*shared.UserStudyData, error)
	// GetRecentSnapshots returns up to daysBack daily snapshots for one app,
	// ordered ascending by date.
	GetRecentSnapshots(ctx context.Context, appID string, daysBack int) ([]shared.DailySnapshotDocument, error)
}

// Service is the reporting facade. It owns the cache and composes the record
// fetcher, aggregator and trend assembler. Construct one per process (or per
// test); there is no package-level instance.
type Service struct {
	store      Store
	cache      *Cache
	appIDs     []string
	sampleSize int
	now        func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store:      store,
		cache:      NewCache(CacheTTL),
		appIDs:     shared.AppIDs,
		sampleSize: SampleSize,
		now:        time.Now,
	}
}

// GetAnalytics returns the current analytics for one app, computing a fresh
// aggregate on cache miss or when forceRefresh is set. The cache entry is
// replaced all-or-nothing: a hard fetch failure leaves the previous entry
// intact and is returned as an error.
func (s *Service) GetAnalytics(ctx context.Context, appID string, forceRefresh bool) (*shared.AnalyticsData, error) {
	if !forceRefresh {
		if cached, ok := s.cache.Get(appID); ok {
			return &cached, nil
		}
	}

	users, err := s.store.GetUsersByApp(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users for %s: %w", appID, err)
	}

	details := s.fetchSampleDetails(ctx, appID, users)
	data := Aggregate(users, details, s.now())

	s.cache.Set(appID, data)
	return &data, nil
}

// fetchSampleDetails fetches nested study records for a stable prefix sample
// of the user list. All fetches are issued concurrently and gathered; a
// failed fetch is logged and leaves a nil Data slot rather than aborting.
func (s *Service) fetchSampleDetails(ctx context.Context, appID string, users []shared.UserDocument) []SampleDetail {
	sampleSize := len(users)
	if sampleSize > s.sampleSize {
		sampleSize = s.sampleSize
	}

	details := make([]SampleDetail, sampleSize)
	var wg sync.WaitGroup
	for i := 0; i < sampleSize; i++ {
		details[i].User = users[i]
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := s.store.GetUserStudyData(ctx, appID, users[i].UID)
			if err != nil {
				log.Printf("analytics: skipping study data for user %s (%s): %v", users[i].UID, appID, err)
				return
			}
			details[i].Data = data
		}(i)
	}
	wg.Wait()

	return details
}

// GetAllApps fans GetAnalytics out over every known app. One app's hard
// failure never blanks the rest: successes land in the first map, failures
// in the second.
func (s *Service) GetAllApps(ctx context.Context, forceRefresh bool) (map[string]*shared.AnalyticsData, map[string]error) {
	results := make(map[string]*shared.AnalyticsData)
	failures := make(map[string]error)

	for _, appID := range s.appIDs {
		data, err := s.GetAnalytics(ctx, appID, forceRefresh)
		if err != nil {
			failures[appID] = err
			continue
		}
		results[appID] = data
	}

	return results, failures
}

// GetTrends fetches the most recent daysBack daily snapshots for one app and
// assembles one series per known metric.
func (s *Service) GetTrends(ctx context.Context, appID string, daysBack int) (map[shared.MetricKey][]shared.TrendPoint, error) {
	snapshots, err := s.store.GetRecentSnapshots(ctx, appID, daysBack)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshots for %s: %w", appID, err)
	}

	trends := make(map[shared.MetricKey][]shared.TrendPoint, len(shared.MetricKeys))
	for _, metric := range shared.MetricKeys {
		trends[metric] = BuildSeries(snapshots, metric)
	}
	return trends, nil
}

// GetCombinedTrends merges every app's series per metric into one cross-app
// series, for the combined reports view. Any app's snapshot fetch failing
// fails the whole call; partial merges would silently understate totals.
func (s *Service) GetCombinedTrends(ctx context.Context, daysBack int) (map[shared.MetricKey][]shared.TrendPoint, error) {
	perApp := make(map[shared.MetricKey][][]shared.TrendPoint, len(shared.MetricKeys))
	for _, appID := range s.appIDs {
		snapshots, err := s.store.GetRecentSnapshots(ctx, appID, daysBack)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch snapshots for %s: %w", appID, err)
		}
		for _, metric := range shared.MetricKeys {
			perApp[metric] = append(perApp[metric], BuildSeries(snapshots, metric))
		}
	}

	combined := make(map[shared.MetricKey][]shared.TrendPoint, len(shared.MetricKeys))
	for _, metric := range shared.MetricKeys {
		combined[metric] = MergeSeries(perApp[metric])
	}
	return combined, nil
}

// ClearCache drops the cached aggregate for one app.
func (s *Service) ClearCache(appID string) {
	s.cache.Invalidate(appID)
}

// ClearAllCache drops every cached aggregate.
func (s *Service) ClearAllCache() {
	s.cache.InvalidateAll()
}

// AppIDs returns the known app IDs.
func (s *Service) AppIDs() []string {
	return s.appIDs
}
