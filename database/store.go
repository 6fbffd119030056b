package database

import (
	"context"
	"fmt"

	"github.com/muh-hamada/german-telc-b1-sub000/shared"
)

// MongoStore is the document-store surface the analytics engine consumes.
// It satisfies analytics.Store.
type MongoStore struct{}

// NewMongoStore returns a store backed by the global collection registry.
// ConnectMongoDB must have been called first.
func NewMongoStore() *MongoStore {
	return &MongoStore{}
}

func (m *MongoStore) GetUsersByApp(ctx context.Context, appID string) ([]shared.UserDocument, error) {
	return AppCollections.Users.GetUsersByApp(ctx, appID)
}

// GetUserStudyData fetches one user's nested study records. Any single
// failing sub-fetch fails the whole call; the analytics layer treats that as
// a soft failure for this user only.
func (m *MongoStore) GetUserStudyData(ctx context.Context, appID, uid string) (*shared.UserStudyData, error) {
	progress, err := AppCollections.Progress.GetProgressByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch progress for %s: %w", uid, err)
	}

	completions, err := AppCollections.Completions.GetCompletionsByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completions for %s: %w", uid, err)
	}

	streak, err := AppCollections.Streaks.GetStreakByUserAndApp(ctx, uid, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch streak for %s: %w", uid, err)
	}

	return &shared.UserStudyData{
		Progress:    progress,
		Completions: completions,
		Streak:      streak,
	}, nil
}

func (m *MongoStore) GetRecentSnapshots(ctx context.Context, appID string, daysBack int) ([]shared.DailySnapshotDocument, error) {
	return AppCollections.Snapshots.GetRecentSnapshots(ctx, appID, daysBack)
}
