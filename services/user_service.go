package services

import (
	"context"

	"okrproject/errs"
	"okrproject/metrics"
	"okrproject/models"
	"okrproject/okr"
	repository "okrproject/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type UserService interface {
	List(ctx context.Context, p *models.Principal) ([]models.User, error)
	UpdateRole(ctx context.Context, p *models.Principal, id primitive.ObjectID, role string) (*models.User, error)
	Delete(ctx context.Context, p *models.Principal, id primitive.ObjectID) (*CascadeResult, error)
	BulkUpdateRoles(ctx context.Context, p *models.Principal, updates []models.RoleUpdate) (*models.BatchResult, error)
	BulkDelete(ctx context.Context, p *models.Principal, ids []string) (*models.BatchResult, error)
}

type userService struct {
	users       repository.UserRepository
	cascade     *CascadeDeleter
	metrics     metrics.Recorder
	log         *zap.Logger
	concurrency int
}

func NewUserService(users repository.UserRepository, cascade *CascadeDeleter, rec metrics.Recorder, log *zap.Logger, concurrency int) UserService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &userService{
		users:       users,
		cascade:     cascade,
		metrics:     rec,
		log:         log,
		concurrency: concurrency,
	}
}

// List is open to every authenticated user; the directory is built from it.
func (s *userService) List(ctx context.Context, p *models.Principal) ([]models.User, error) {
	if p == nil {
		return nil, errs.ErrUnauthorized
	}
	return s.users.GetAll(ctx)
}

func (s *userService) UpdateRole(ctx context.Context, p *models.Principal, id primitive.ObjectID, role string) (*models.User, error) {
	if err := okr.RequireAdmin(p); err != nil {
		return nil, err
	}
	if err := okr.RequireNotSelf(p, id); err != nil {
		return nil, err
	}
	return s.updateRole(ctx, p, id, role)
}

func (s *userService) updateRole(ctx context.Context, p *models.Principal, id primitive.ObjectID, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, errs.Validation("role", "unknown role %q", role)
	}
	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("user role updated",
		zap.String("user_id", id.Hex()),
		zap.String("role", role),
		zap.String("updated_by", p.ID.Hex()),
	)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, p *models.Principal, id primitive.ObjectID) (*CascadeResult, error) {
	if err := okr.RequireAdmin(p); err != nil {
		return nil, err
	}
	if err := okr.RequireNotSelf(p, id); err != nil {
		return nil, err
	}
	return s.cascade.Delete(ctx, id)
}

func (s *userService) BulkUpdateRoles(ctx context.Context, p *models.Principal, updates []models.RoleUpdate) (*models.BatchResult, error) {
	if err := okr.RequireAdmin(p); err != nil {
		return nil, err
	}

	ids := make([]string, len(updates))
	for i, u := range updates {
		ids[i] = u.UserID
	}
	return s.runBatch(ctx, "update_role", ids, func(ctx context.Context, i int, id primitive.ObjectID) error {
		if err := okr.RequireNotSelf(p, id); err != nil {
			return err
		}
		_, err := s.updateRole(ctx, p, id, updates[i].Role)
		return err
	}), nil
}

func (s *userService) BulkDelete(ctx context.Context, p *models.Principal, ids []string) (*models.BatchResult, error) {
	if err := okr.RequireAdmin(p); err != nil {
		return nil, err
	}
	return s.runBatch(ctx, "delete", ids, func(ctx context.Context, _ int, id primitive.ObjectID) error {
		if err := okr.RequireNotSelf(p, id); err != nil {
			return err
		}
		_, err := s.cascade.Delete(ctx, id)
		return err
	}), nil
}

// runBatch applies fn to every id with bounded concurrency. Items never
// cancel each other: a failure is recorded against its id and the rest run
// to completion. Results keep the input order.
func (s *userService) runBatch(ctx context.Context, operation string, ids []string, fn func(ctx context.Context, i int, id primitive.ObjectID) error) *models.BatchResult {
	outcomes := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, raw := range ids {
		g.Go(func() error {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				outcomes[i] = errs.Validation("id", "invalid id %q", raw)
				return nil
			}
			outcomes[i] = fn(ctx, i, id)
			return nil
		})
	}
	_ = g.Wait()

	result := &models.BatchResult{
		Succeeded: []string{},
		Failed:    []models.BatchFailure{},
	}
	for i, err := range outcomes {
		if err != nil {
			result.Failed = append(result.Failed, models.BatchFailure{ID: ids[i], Reason: err.Error()})
			s.metrics.ObserveBatchItem(operation, "failed")
			continue
		}
		result.Succeeded = append(result.Succeeded, ids[i])
		s.metrics.ObserveBatchItem(operation, "ok")
	}

	s.log.Info("batch completed",
		zap.String("operation", operation),
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)),
	)
	return result
}
