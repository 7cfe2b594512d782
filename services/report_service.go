package services

import (
	"context"

	"okrproject/errs"
	"okrproject/models"
	"okrproject/okr"
	repository "okrproject/repositories"

	"golang.org/x/sync/errgroup"
)

// ReportService builds the read-side views. Every call works on a fresh
// snapshot of both collections.
type ReportService interface {
	Dashboard(ctx context.Context, p *models.Principal, f okr.Filter) (*okr.Dashboard, error)
	Report(ctx context.Context, p *models.Principal, f okr.Filter) (*okr.Report, error)
	Directory(ctx context.Context, p *models.Principal, f okr.Filter, df okr.DirectoryFilter) ([]okr.UserSummary, error)
}

type reportService struct {
	objectives repository.ObjectiveRepository
	users      repository.UserRepository
}

func NewReportService(objectives repository.ObjectiveRepository, users repository.UserRepository) ReportService {
	return &reportService{
		objectives: objectives,
		users:      users,
	}
}

func (s *reportService) snapshot(ctx context.Context) ([]models.Objective, []models.User, error) {
	var (
		objectives []models.Objective
		users      []models.User
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		objectives, err = s.objectives.GetAll(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.users.GetAll(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return objectives, users, nil
}

func (s *reportService) Dashboard(ctx context.Context, p *models.Principal, f okr.Filter) (*okr.Dashboard, error) {
	if p == nil {
		return nil, errs.ErrUnauthorized
	}
	objectives, users, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	dashboard := okr.BuildDashboard(objectives, users, f)
	return &dashboard, nil
}

func (s *reportService) Report(ctx context.Context, p *models.Principal, f okr.Filter) (*okr.Report, error) {
	if p == nil {
		return nil, errs.ErrUnauthorized
	}
	objectives, err := s.objectives.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	report := okr.BuildReport(objectives, f)
	return &report, nil
}

func (s *reportService) Directory(ctx context.Context, p *models.Principal, f okr.Filter, df okr.DirectoryFilter) ([]okr.UserSummary, error) {
	if p == nil {
		return nil, errs.ErrUnauthorized
	}
	objectives, users, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return okr.BuildDirectory(users, okr.FilterObjectives(objectives, f), df), nil
}
