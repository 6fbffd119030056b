package database

import (
	"context"
	"sort"

	"github.com/muh-hamada/german-telc-b1-sub000/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SnapshotsCollection wraps MongoDB operations for daily analytics snapshots.
// The analytics engine only reads snapshots; cmd/snapshotd is the sole writer.
type SnapshotsCollection struct {
	collection *mongo.Collection
}

// GetRecentSnapshots returns the most recent daysBack snapshots for one app,
// reordered ascending by date for chart building. Dates are YYYY-MM-DD, so
// lexical sort order is chronological order.
func (sc *SnapshotsCollection) GetRecentSnapshots(ctx context.Context, appID string, daysBack int) ([]shared.DailySnapshotDocument, error) {
	filter := bson.M{"appId": appID}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(daysBack))

	cursor, err := sc.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snapshots []shared.DailySnapshotDocument
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Date < snapshots[j].Date
	})
	return snapshots, nil
}

// UpsertSnapshot writes one app's snapshot for one date, overwriting any
// earlier write for the same day. Used only by cmd/snapshotd.
func (sc *SnapshotsCollection) UpsertSnapshot(ctx context.Context, appID, date string, data shared.AnalyticsData) error {
	filter := bson.M{"appId": appID, "date": date}
	update := bson.M{"$set": bson.M{
		"appId": appID,
		"date":  date,
		"data":  data,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := sc.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// EnsureIndexes creates the compound index backing the per-app recency query
// and the once-per-day upsert
func (sc *SnapshotsCollection) EnsureIndexes(ctx context.Context) error {
	_, err := sc.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "appId", Value: 1}, {Key: "date", Value: -1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
