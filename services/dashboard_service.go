package services

import (
	"context"
	"fmt"
	"time"

	"hrpulse/apperrors"
	"hrpulse/dashboard"
	"hrpulse/database"
	"hrpulse/filters"
	"hrpulse/models"
	repository "hrpulse/repositories"

	"go.uber.org/zap"
)

type DashboardService interface {
	ListPages() []models.PageSummary
	CreateView(ctx context.Context, page, employeeID string) (*models.ViewSnapshot, error)
	ListViews(ctx context.Context) []models.ViewSnapshot
	GetView(ctx context.Context, id string, wait bool) (*models.ViewSnapshot, error)
	CloseView(ctx context.Context, id string) error
	SelectEmployee(ctx context.Context, viewID, employeeID string) (*models.ViewSnapshot, error)
	// Section operations
	GetSection(ctx context.Context, viewID, section string, wait bool) (*models.SectionSnapshot, error)
	UpdateFilters(ctx context.Context, viewID, section string, updates filters.Values) (*models.SectionSnapshot, error)
	ResetFilters(ctx context.Context, viewID, section string) (*models.SectionSnapshot, bool, error)
	RetrySection(ctx context.Context, viewID, section string) (*models.SectionSnapshot, error)
	// Raw mock data sources
	ListCollection(ctx context.Context, name string) (interface{}, error)
	// Housekeeping
	SweepIdle(now time.Time) []string
	Shutdown()
}

type dashboardService struct {
	repo     repository.DashboardRepository
	registry *dashboard.Registry
	logger   *zap.Logger
}

func NewDashboardService(repo repository.DashboardRepository, registry *dashboard.Registry, logger *zap.Logger) DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &dashboardService{
		repo:     repo,
		registry: registry,
		logger:   logger,
	}
}

func (s *dashboardService) ListPages() []models.PageSummary {
	names := dashboard.Pages()
	out := make([]models.PageSummary, 0, len(names))
	for _, name := range names {
		sections, _ := dashboard.PageSections(name)
		out = append(out, models.PageSummary{Name: name, Sections: sections})
	}
	return out
}

func (s *dashboardService) CreateView(ctx context.Context, page, employeeID string) (*models.ViewSnapshot, error) {
	if employeeID != "" {
		if err := s.ensureEmployee(ctx, employeeID); err != nil {
			return nil, err
		}
	}
	v, err := s.registry.Open(page, employeeID)
	if err != nil {
		return nil, err
	}
	snap := v.Snapshot()
	return &snap, nil
}

func (s *dashboardService) ListViews(ctx context.Context) []models.ViewSnapshot {
	views := s.registry.List()
	out := make([]models.ViewSnapshot, 0, len(views))
	for _, v := range views {
		out = append(out, v.Snapshot())
	}
	return out
}

func (s *dashboardService) GetView(ctx context.Context, id string, wait bool) (*models.ViewSnapshot, error) {
	v, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	// An expired wait still answers with the current, possibly loading, snapshot.
	if wait {
		if err := v.Wait(ctx); err != nil {
			s.logger.Debug("view wait ended early", zap.String("view_id", id), zap.Error(err))
		}
	}
	snap := v.Snapshot()
	return &snap, nil
}

func (s *dashboardService) CloseView(ctx context.Context, id string) error {
	return s.registry.Close(id)
}

func (s *dashboardService) SelectEmployee(ctx context.Context, viewID, employeeID string) (*models.ViewSnapshot, error) {
	v, err := s.registry.Get(viewID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	if _, err := v.SelectEmployee(employeeID); err != nil {
		return nil, err
	}
	snap := v.Snapshot()
	return &snap, nil
}

func (s *dashboardService) ensureEmployee(ctx context.Context, employeeID string) error {
	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return apperrors.Wrap(err, "failed to list employees")
	}
	for _, e := range employees {
		if e.ID == employeeID {
			return nil
		}
	}
	return apperrors.NotFound(fmt.Sprintf("employee %q", employeeID))
}

func (s *dashboardService) section(viewID, name string) (dashboard.Section, error) {
	v, err := s.registry.Get(viewID)
	if err != nil {
		return nil, err
	}
	return v.Section(name)
}

func (s *dashboardService) snapshot(ctx context.Context, sec dashboard.Section, wait bool) *models.SectionSnapshot {
	if wait {
		if err := sec.Wait(ctx); err != nil {
			s.logger.Debug("section wait ended early", zap.String("section", sec.Name()), zap.Error(err))
		}
	}
	snap := sec.Snapshot()
	return &snap
}

func (s *dashboardService) GetSection(ctx context.Context, viewID, name string, wait bool) (*models.SectionSnapshot, error) {
	sec, err := s.section(viewID, name)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, sec, wait), nil
}

func (s *dashboardService) UpdateFilters(ctx context.Context, viewID, name string, updates filters.Values) (*models.SectionSnapshot, error) {
	sec, err := s.section(viewID, name)
	if err != nil {
		return nil, err
	}
	if err := sec.UpdateFilters(updates); err != nil {
		return nil, err
	}
	return s.snapshot(ctx, sec, false), nil
}

func (s *dashboardService) ResetFilters(ctx context.Context, viewID, name string) (*models.SectionSnapshot, bool, error) {
	sec, err := s.section(viewID, name)
	if err != nil {
		return nil, false, err
	}
	reset := sec.ResetFilters()
	return s.snapshot(ctx, sec, false), reset, nil
}

func (s *dashboardService) RetrySection(ctx context.Context, viewID, name string) (*models.SectionSnapshot, error) {
	sec, err := s.section(viewID, name)
	if err != nil {
		return nil, err
	}
	sec.Retry()
	return s.snapshot(ctx, sec, false), nil
}

func (s *dashboardService) ListCollection(ctx context.Context, name string) (interface{}, error) {
	switch name {
	case database.CollectionEmployees:
		return s.repo.ListEmployees(ctx)
	case database.CollectionMetrics:
		return s.repo.ListMetrics(ctx)
	case database.CollectionTrends:
		return s.repo.ListTrend(ctx)
	case database.CollectionHeatmap:
		return s.repo.ListHeatmap(ctx)
	case database.CollectionAlerts:
		return s.repo.ListAlerts(ctx)
	case database.CollectionJourneyEvents:
		return s.repo.ListJourneyEvents(ctx, "")
	case database.CollectionFrictions:
		return s.repo.ListFrictions(ctx, "")
	case database.CollectionMilestones:
		return s.repo.ListMilestones(ctx, "")
	case database.CollectionReports:
		return s.repo.ListReports(ctx)
	case database.CollectionActionTemplates:
		return s.repo.ListActionTemplates(ctx)
	case database.CollectionCases:
		return s.repo.ListCases(ctx)
	}
	return nil, apperrors.NotFound(fmt.Sprintf("collection %q", name))
}

func (s *dashboardService) SweepIdle(now time.Time) []string {
	return s.registry.SweepIdle(now)
}

func (s *dashboardService) Shutdown() {
	s.registry.CloseAll()
}
