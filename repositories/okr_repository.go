package repository

import (
	"context"
	"fmt"
	"time"

	"okrproject/errs"
	"okrproject/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const ObjectivesCollection = "okrs"

type ObjectiveRepository interface {
	Create(ctx context.Context, o *models.Objective) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Objective, error)
	GetAll(ctx context.Context) ([]models.Objective, error)
	Update(ctx context.Context, id primitive.ObjectID, o *models.Objective) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// TitleExists looks up a normalized title, ignoring the objective exclude.
	TitleExists(ctx context.Context, titleKey string, exclude primitive.ObjectID) (bool, error)
	// Cascade steps for user removal
	DeleteIndividualByCreator(ctx context.Context, userID primitive.ObjectID) (int64, error)
	RemoveTeamOwner(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type objectiveRepository struct {
	collection *mongo.Collection
}

func NewObjectiveRepository(db *mongo.Database) ObjectiveRepository {
	return &objectiveRepository{
		collection: db.Collection(ObjectivesCollection),
	}
}

func (r *objectiveRepository) Create(ctx context.Context, o *models.Objective) error {
	o.ID = primitive.NewObjectID()
	for i := range o.KeyResults {
		if o.KeyResults[i].ID.IsZero() {
			o.KeyResults[i].ID = primitive.NewObjectID()
		}
	}

	_, err := r.collection.InsertOne(ctx, o)
	if err != nil {
		o.ID = primitive.NilObjectID
		return translate(err, "failed to insert OKR")
	}
	return nil
}

func (r *objectiveRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Objective, error) {
	var o models.Objective
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("OKR %s", id.Hex()))
	}
	return &o, nil
}

func (r *objectiveRepository) GetAll(ctx context.Context) ([]models.Objective, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	objectives := []models.Objective{}
	if err = cursor.All(ctx, &objectives); err != nil {
		return nil, err
	}
	return objectives, nil
}

func (r *objectiveRepository) Update(ctx context.Context, id primitive.ObjectID, o *models.Objective) error {
	for i := range o.KeyResults {
		if o.KeyResults[i].ID.IsZero() {
			o.KeyResults[i].ID = primitive.NewObjectID()
		}
	}

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id}, o)
	if err != nil {
		return translate(err, fmt.Sprintf("failed to update OKR %s", id.Hex()))
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("no OKR found with id %s: %w", id.Hex(), errs.ErrNotFound)
	}
	return nil
}

func (r *objectiveRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("no OKR found with id %s: %w", id.Hex(), errs.ErrNotFound)
	}
	return nil
}

func (r *objectiveRepository) TitleExists(ctx context.Context, titleKey string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{"title_key": titleKey}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *objectiveRepository) DeleteIndividualByCreator(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{
		"created_by": userID,
		"category":   models.CategoryIndividual,
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// RemoveTeamOwner pulls userID out of the owner list of every Team OKR that
// lists it. Owners are matched by identifier.
func (r *objectiveRepository) RemoveTeamOwner(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	filter := bson.M{"owners": userID, "category": models.CategoryTeam}
	update := bson.M{
		"$pull": bson.M{"owners": userID},
		"$set":  bson.M{"metadata.updated_at": time.Now()},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}
