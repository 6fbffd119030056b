package database

import (
	"context"
	"time"

	"github.com/muh-hamada/german-telc-b1-sub000/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ExamsCollection wraps MongoDB operations for content-managed exam definitions
type ExamsCollection struct {
	collection *mongo.Collection
}

func (ec *ExamsCollection) CreateExam(ctx context.Context, data shared.ExamPayload) (string, error) {
	now := time.Now()
	examDoc := shared.ExamDocument{
		ID:          primitive.NewObjectID(),
		Title:       data.Title,
		Level:       data.Level,
		ExamType:    data.ExamType,
		Description: data.Description,
		Sections:    data.Sections,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	result, err := ec.collection.InsertOne(ctx, examDoc)
	if err != nil {
		return "", err
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (ec *ExamsCollection) GetAllExams(ctx context.Context) ([]shared.ExamDocument, error) {
	cursor, err := ec.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exams []shared.ExamDocument
	if err := cursor.All(ctx, &exams); err != nil {
		return nil, err
	}
	return exams, nil
}

func (ec *ExamsCollection) GetExamByID(ctx context.Context, id string) (*shared.ExamDocument, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var exam shared.ExamDocument
	if err := ec.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&exam); err != nil {
		return nil, err
	}
	return &exam, nil
}

func (ec *ExamsCollection) UpdateExam(ctx context.Context, id string, data shared.UpdateExamPayload) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	set := bson.M{"updatedAt": time.Now()}
	if data.Title != nil {
		set["title"] = *data.Title
	}
	if data.Level != nil {
		set["level"] = *data.Level
	}
	if data.ExamType != nil {
		set["examType"] = *data.ExamType
	}
	if data.Description != nil {
		set["description"] = *data.Description
	}
	if data.Sections != nil {
		set["sections"] = *data.Sections
	}

	result, err := ec.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (ec *ExamsCollection) DeleteExam(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	result, err := ec.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
