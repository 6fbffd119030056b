package database

import (
	"context"

	"github.com/muh-hamada/german-telc-b1-sub000/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCollection wraps MongoDB operations for the users collection
type UsersCollection struct {
	collection *mongo.Collection
}

// GetUsersByApp returns every user registered for one app, in stable _id
// order. Analytics relies on the stable order for reproducible sampling.
func (uc *UsersCollection) GetUsersByApp(ctx context.Context, appID string) ([]shared.UserDocument, error) {
	filter := bson.M{"appId": appID}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := uc.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []shared.UserDocument
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// EnsureIndexes creates the appId index used by every analytics query
func (uc *UsersCollection) EnsureIndexes(ctx context.Context) error {
	_, err := uc.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "appId", Value: 1}},
	})
	return err
}
