package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"okrproject/errs"
	"okrproject/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const UsersCollection = "users"

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error
	SetAvatar(ctx context.Context, id primitive.ObjectID, fileID primitive.ObjectID) error
	TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// CountExisting returns how many of ids belong to stored users.
	CountExisting(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{
		collection: db.Collection(UsersCollection),
	}
}

// NormalizeEmail is the stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	u.ID = primitive.NewObjectID()
	u.Email = NormalizeEmail(u.Email)

	_, err := r.collection.InsertOne(ctx, u)
	if err != nil {
		u.ID = primitive.NilObjectID
		return translate(err, "failed to insert user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err, fmt.Sprintf("user %s", id.Hex()))
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.collection.FindOne(ctx, bson.M{"email": NormalizeEmail(email)}).Decode(&u); err != nil {
		return nil, translate(err, "user by email")
	}
	return &u, nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return translate(err, fmt.Sprintf("failed to update user %s", u.ID.Hex()))
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("no user found with id %s: %w", u.ID.Hex(), errs.ErrNotFound)
	}
	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error {
	return r.setFields(ctx, id, bson.M{"role": role})
}

func (r *userRepository) SetAvatar(ctx context.Context, id primitive.ObjectID, fileID primitive.ObjectID) error {
	return r.setFields(ctx, id, bson.M{"avatar_id": fileID})
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.setFields(ctx, id, bson.M{"last_login_at": at})
}

func (r *userRepository) setFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("no user found with id %s: %w", id.Hex(), errs.ErrNotFound)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("no user found with id %s: %w", id.Hex(), errs.ErrNotFound)
	}
	return nil
}

func (r *userRepository) CountExisting(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.collection.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}})
}
