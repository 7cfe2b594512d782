package database

import (
	"context"
	"fmt"
	"time"

	repository "okrproject/repositories"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CreateIndexes creates the indexes of every collection. It is safe to run
// repeatedly.
func CreateIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := createUserIndexes(ctx, db); err != nil {
		return err
	}
	log.Info("user indexes created")

	if err := createObjectiveIndexes(ctx, db); err != nil {
		return err
	}
	log.Info("objective indexes created")
	return nil
}

func createUserIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		// emails are stored lowercased, so this is case-insensitive
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email_unique").SetUnique(true),
		},
		// Used by: directory department filter
		{
			Keys:    bson.D{{Key: "department", Value: 1}},
			Options: options.Index().SetName("idx_department"),
		},
	}

	_, err := db.Collection(repository.UsersCollection).Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func createObjectiveIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		// UNIQUENESS: lowercased title
		{
			Keys:    bson.D{{Key: "title_key", Value: 1}},
			Options: options.Index().SetName("idx_title_key_unique").SetUnique(true),
		},

		// CASCADE: Individual objectives created by a deleted user
		{
			Keys: bson.D{
				{Key: "created_by", Value: 1},
				{Key: "category", Value: 1},
			},
			Options: options.Index().SetName("idx_created_by_category"),
		},

		// CASCADE: Team objectives owned by a deleted user
		{
			Keys: bson.D{
				{Key: "owners", Value: 1},
				{Key: "category", Value: 1},
			},
			Options: options.Index().SetName("idx_owners_category"),
		},

		// DASHBOARD: department and date filters
		{
			Keys: bson.D{
				{Key: "department", Value: 1},
				{Key: "start_date", Value: 1},
			},
			Options: options.Index().SetName("idx_department_start_date"),
		},
	}

	_, err := db.Collection(repository.ObjectivesCollection).Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create objective indexes: %w", err)
	}
	return nil
}
