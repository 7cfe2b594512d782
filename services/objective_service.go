package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"okrproject/errs"
	"okrproject/metrics"
	"okrproject/models"
	"okrproject/okr"
	repository "okrproject/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ObjectiveService interface {
	Create(ctx context.Context, p *models.Principal, req *models.CreateObjectiveRequest) (*models.Objective, error)
	Get(ctx context.Context, p *models.Principal, id primitive.ObjectID) (*models.ObjectiveDetail, error)
	List(ctx context.Context, p *models.Principal, f okr.Filter) ([]models.Objective, error)
	Update(ctx context.Context, p *models.Principal, id primitive.ObjectID, req *models.UpdateObjectiveRequest) (*models.UpdateObjectiveResult, error)
	Delete(ctx context.Context, p *models.Principal, id primitive.ObjectID) error
}

type objectiveService struct {
	objectives repository.ObjectiveRepository
	users      repository.UserRepository
	metrics    metrics.Recorder
	log        *zap.Logger
}

func NewObjectiveService(objectives repository.ObjectiveRepository, users repository.UserRepository, rec metrics.Recorder, log *zap.Logger) ObjectiveService {
	return &objectiveService{
		objectives: objectives,
		users:      users,
		metrics:    rec,
		log:        log,
	}
}

// TitleKey is the normalized form titles are compared and indexed by.
func TitleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

func (s *objectiveService) Create(ctx context.Context, p *models.Principal, req *models.CreateObjectiveRequest) (*models.Objective, error) {
	if p == nil {
		return nil, errs.ErrUnauthorized
	}

	owners, err := parseObjectIDs("owners", req.Owners)
	if err != nil {
		return nil, err
	}
	// the creator is the implicit owner when none are named
	if len(owners) == 0 {
		owners = []primitive.ObjectID{p.ID}
	}
	keyResults, err := keyResultsFromInput(req.KeyResults, nil)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	o := &models.Objective{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartDate:   req.StartDate.Time,
		EndDate:     req.EndDate.Time,
		Department:  req.Department,
		Category:    req.Category,
		Owners:      owners,
		CreatedBy:   p.ID,
		KeyResults:  keyResults,
		Metadata: models.Metadata{
			UpdatedBy: p.ID,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if err := s.validate(ctx, o); err != nil {
		s.metrics.ObserveObjectiveMutation("create", "rejected")
		return nil, err
	}
	if err := okr.Recalculate(o); err != nil {
		s.metrics.ObserveObjectiveMutation("create", "rejected")
		return nil, err
	}

	if err := s.objectives.Create(ctx, o); err != nil {
		s.metrics.ObserveObjectiveMutation("create", "error")
		return nil, s.titleConflict(err, o.Title)
	}

	s.metrics.ObserveObjectiveMutation("create", "ok")
	s.log.Info("objective created",
		zap.String("objective_id", o.ID.Hex()),
		zap.String("created_by", p.ID.Hex()),
		zap.String("category", o.Category),
		zap.Int("progress", o.Progress),
	)
	return o, nil
}

func (s *objectiveService) Get(ctx context.Context, p *models.Principal, id primitive.ObjectID) (*models.ObjectiveDetail, error) {
	if p == nil {
		return nil, errs.ErrUnauthorized
	}
	o, err := s.objectives.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ObjectiveDetail{
		Objective: o,
		Quarters:  okr.QuarterLabels(o.StartDate, o.EndDate),
	}, nil
}

func (s *objectiveService) List(ctx context.Context, p *models.Principal, f okr.Filter) ([]models.Objective, error) {
	if p == nil {
		return nil, errs.ErrUnauthorized
	}
	all, err := s.objectives.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return okr.FilterObjectives(all, f), nil
}

func (s *objectiveService) Update(ctx context.Context, p *models.Principal, id primitive.ObjectID, req *models.UpdateObjectiveRequest) (*models.UpdateObjectiveResult, error) {
	if p == nil {
		return nil, errs.ErrUnauthorized
	}

	existing, err := s.objectives.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := okr.AuthorizeEdit(p, existing); err != nil {
		s.metrics.ObserveObjectiveMutation("update", "forbidden")
		return nil, err
	}

	result := &models.UpdateObjectiveResult{}

	if req.Title != nil {
		existing.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.StartDate != nil {
		existing.StartDate = req.StartDate.Time
	}
	if req.EndDate != nil {
		existing.EndDate = req.EndDate.Time
	}
	if req.Department != nil {
		existing.Department = *req.Department
	}
	if req.Category != nil {
		existing.Category = *req.Category
	}

	if req.Owners != nil {
		owners, err := parseObjectIDs("owners", req.Owners)
		if err != nil {
			return nil, err
		}
		existing.Owners = owners
	} else if req.Category != nil {
		// only an implicit owner list is truncated; an explicit one is validated as sent
		owners, notice := okr.TruncateOwners(existing.Category, existing.Owners)
		existing.Owners = owners
		if notice != "" {
			result.Notices = append(result.Notices, notice)
		}
	}

	if req.KeyResults != nil {
		keyResults, err := keyResultsFromInput(req.KeyResults, existing.KeyResults)
		if err != nil {
			return nil, err
		}
		existing.KeyResults = keyResults
	}

	if err := s.validate(ctx, existing); err != nil {
		s.metrics.ObserveObjectiveMutation("update", "rejected")
		return nil, err
	}
	if err := okr.Recalculate(existing); err != nil {
		s.metrics.ObserveObjectiveMutation("update", "rejected")
		return nil, err
	}

	existing.Metadata.UpdatedBy = p.ID
	existing.Metadata.UpdatedAt = time.Now()

	if err := s.objectives.Update(ctx, id, existing); err != nil {
		s.metrics.ObserveObjectiveMutation("update", "error")
		return nil, s.titleConflict(err, existing.Title)
	}

	s.metrics.ObserveObjectiveMutation("update", "ok")
	s.log.Info("objective updated",
		zap.String("objective_id", id.Hex()),
		zap.String("updated_by", p.ID.Hex()),
		zap.Int("progress", existing.Progress),
		zap.Strings("notices", result.Notices),
	)

	result.Objective = existing
	return result, nil
}

func (s *objectiveService) Delete(ctx context.Context, p *models.Principal, id primitive.ObjectID) error {
	if p == nil {
		return errs.ErrUnauthorized
	}

	existing, err := s.objectives.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := okr.AuthorizeEdit(p, existing); err != nil {
		s.metrics.ObserveObjectiveMutation("delete", "forbidden")
		return err
	}

	if err := s.objectives.Delete(ctx, id); err != nil {
		s.metrics.ObserveObjectiveMutation("delete", "error")
		return err
	}

	s.metrics.ObserveObjectiveMutation("delete", "ok")
	s.log.Info("objective deleted",
		zap.String("objective_id", id.Hex()),
		zap.String("deleted_by", p.ID.Hex()),
	)
	return nil
}

// validate checks everything about o that is not derived: dates, enums,
// ownership cardinality, owner existence and title uniqueness.
func (s *objectiveService) validate(ctx context.Context, o *models.Objective) error {
	if o.Title == "" {
		return errs.Validation("title", "title is required")
	}
	if o.StartDate.IsZero() {
		return errs.Validation("start_date", "start date is required")
	}
	if o.EndDate.IsZero() {
		return errs.Validation("end_date", "end date is required")
	}
	if !o.EndDate.After(o.StartDate) {
		return errs.Validation("end_date", "end date must be after start date")
	}
	if !models.ValidDepartment(o.Department) {
		return errs.Validation("department", "unknown department %q", o.Department)
	}
	if err := okr.ValidateOwnerSet(o.Category, o.Owners); err != nil {
		return err
	}

	found, err := s.users.CountExisting(ctx, o.Owners)
	if err != nil {
		return fmt.Errorf("failed to check owners: %w", err)
	}
	if found != int64(len(o.Owners)) {
		return errs.Validation("owners", "every owner must be an existing user")
	}

	o.TitleKey = TitleKey(o.Title)
	exists, err := s.objectives.TitleExists(ctx, o.TitleKey, o.ID)
	if err != nil {
		return fmt.Errorf("failed to check title: %w", err)
	}
	if exists {
		return fmt.Errorf("an OKR titled %q already exists: %w", o.Title, errs.ErrConflict)
	}
	return nil
}

// titleConflict rewords a storage-level duplicate so it reads like the
// pre-check. Two concurrent creates can both pass the pre-check.
func (s *objectiveService) titleConflict(err error, title string) error {
	if errors.Is(err, errs.ErrConflict) {
		return fmt.Errorf("an OKR titled %q already exists: %w", title, errs.ErrConflict)
	}
	return err
}

// keyResultsFromInput converts request key results. Entries that carry the
// id of a previous key result keep that id; new entries get one on persist.
func keyResultsFromInput(in []models.KeyResultInput, previous []models.KeyResult) ([]models.KeyResult, error) {
	known := make(map[primitive.ObjectID]bool, len(previous))
	for _, kr := range previous {
		known[kr.ID] = true
	}

	out := make([]models.KeyResult, 0, len(in))
	for i, input := range in {
		kr := models.KeyResult{
			Title:        strings.TrimSpace(input.Title),
			CurrentValue: input.CurrentValue,
			TargetValue:  input.TargetValue,
		}
		if input.ID != "" {
			id, err := primitive.ObjectIDFromHex(input.ID)
			if err != nil {
				return nil, errs.Validation(fmt.Sprintf("key_results[%d].id", i), "invalid id")
			}
			if known[id] {
				kr.ID = id
			}
		}
		out = append(out, kr)
	}
	return out, nil
}

func parseObjectIDs(field string, raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, hex := range raw {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, errs.Validation(field, "invalid id %q", hex)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
