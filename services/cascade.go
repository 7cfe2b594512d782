package services

import (
	"context"
	"fmt"

	"okrproject/metrics"
	repository "okrproject/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CascadeResult reports what a user deletion did to objectives.
type CascadeResult struct {
	UserID             primitive.ObjectID `json:"user_id"`
	DeletedObjectives  int64              `json:"deleted_objectives"`
	DetachedObjectives int64              `json:"detached_objectives"`
}

// CascadeDeleter removes a user together with the objectives that depend on
// them. Each step is a separate write with no rollback. A failed run leaves
// the user in place, so retrying the whole deletion converges.
type CascadeDeleter struct {
	objectives repository.ObjectiveRepository
	users      repository.UserRepository
	avatars    repository.AvatarStore
	metrics    metrics.Recorder
	log        *zap.Logger
}

func NewCascadeDeleter(objectives repository.ObjectiveRepository, users repository.UserRepository, avatars repository.AvatarStore, rec metrics.Recorder, log *zap.Logger) *CascadeDeleter {
	return &CascadeDeleter{
		objectives: objectives,
		users:      users,
		avatars:    avatars,
		metrics:    rec,
		log:        log,
	}
}

func (c *CascadeDeleter) Delete(ctx context.Context, userID primitive.ObjectID) (*CascadeResult, error) {
	log := c.log.With(zap.String("user_id", userID.Hex()))

	// Step 1: the user must exist
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		c.metrics.ObserveCascade("not_found", 0, 0)
		return nil, err
	}

	result := &CascadeResult{UserID: userID}

	// Step 2: Individual objectives have no meaning without their creator
	result.DeletedObjectives, err = c.objectives.DeleteIndividualByCreator(ctx, userID)
	if err != nil {
		c.metrics.ObserveCascade("error", 0, 0)
		log.Error("cascade: failed to delete individual objectives", zap.Error(err))
		return nil, fmt.Errorf("failed to delete individual objectives: %w", err)
	}
	log.Debug("cascade: individual objectives deleted", zap.Int64("count", result.DeletedObjectives))

	// Step 3: Team objectives survive without the user, even below two owners
	result.DetachedObjectives, err = c.objectives.RemoveTeamOwner(ctx, userID)
	if err != nil {
		c.metrics.ObserveCascade("error", result.DeletedObjectives, 0)
		log.Error("cascade: failed to detach user from team objectives",
			zap.Int64("already_deleted", result.DeletedObjectives),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to remove user from team objectives: %w", err)
	}
	log.Debug("cascade: team objectives detached", zap.Int64("count", result.DetachedObjectives))

	// Step 4: the user itself
	if err := c.users.Delete(ctx, userID); err != nil {
		c.metrics.ObserveCascade("error", result.DeletedObjectives, result.DetachedObjectives)
		log.Error("cascade: failed to delete user", zap.Error(err))
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	if user.AvatarID != nil && c.avatars != nil {
		if err := c.avatars.Delete(ctx, *user.AvatarID); err != nil {
			log.Warn("cascade: failed to delete avatar", zap.String("file_id", user.AvatarID.Hex()), zap.Error(err))
		}
	}

	c.metrics.ObserveCascade("ok", result.DeletedObjectives, result.DetachedObjectives)
	log.Info("user deleted",
		zap.String("email", user.Email),
		zap.Int64("deleted_objectives", result.DeletedObjectives),
		zap.Int64("detached_objectives", result.DetachedObjectives),
	)
	return result, nil
}
