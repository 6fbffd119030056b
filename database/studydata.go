package database

import (
	"context"

	"github.com/muh-hamada/german-telc-b1-sub000/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProgressCollection wraps MongoDB operations for per-user exam progress
type ProgressCollection struct {
	collection *mongo.Collection
}

// CompletionsCollection wraps MongoDB operations for per-user exam completion stats
type CompletionsCollection struct {
	collection *mongo.Collection
}

// StreaksCollection wraps MongoDB operations for per-user study streaks
type StreaksCollection struct {
	collection *mongo.Collection
}

// GetProgressByUser returns a user's progress records, at most one per level
func (pc *ProgressCollection) GetProgressByUser(ctx context.Context, uid string) ([]shared.ProgressDocument, error) {
	cursor, err := pc.collection.Find(ctx, bson.M{"uid": uid})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var progress []shared.ProgressDocument
	if err := cursor.All(ctx, &progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// GetCompletionsByUser returns a user's completion stats across all exams
func (cc *CompletionsCollection) GetCompletionsByUser(ctx context.Context, uid string) ([]shared.CompletionStatDocument, error) {
	cursor, err := cc.collection.Find(ctx, bson.M{"uid": uid})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var completions []shared.CompletionStatDocument
	if err := cursor.All(ctx, &completions); err != nil {
		return nil, err
	}
	return completions, nil
}

// GetStreakByUserAndApp returns a user's streak for one app, or nil if the
// user has never started one
func (sc *StreaksCollection) GetStreakByUserAndApp(ctx context.Context, uid, appID string) (*shared.StreakDocument, error) {
	var streak shared.StreakDocument
	err := sc.collection.FindOne(ctx, bson.M{"uid": uid, "appId": appID}).Decode(&streak)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &streak, nil
}
