package repository

import (
	"context"
	"sync"
	"time"

	"hrpulse/apperrors"
	"hrpulse/database"
	"hrpulse/fixtures"
	"hrpulse/models"

	"go.uber.org/zap"
)

// FixtureRepository serves the embedded fixture set after an artificial delay, and fails
// on demand for the collections marked as failing.
type FixtureRepository struct {
	latency time.Duration
	logger  *zap.Logger

	mu      sync.RWMutex
	failing map[string]bool
}

func NewFixtureRepository(latency time.Duration, failing []string, logger *zap.Logger) *FixtureRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &FixtureRepository{latency: latency, logger: logger, failing: make(map[string]bool)}
	for _, name := range failing {
		r.failing[name] = true
	}
	return r
}

// SetFailing toggles fault injection for one collection.
func (r *FixtureRepository) SetFailing(collection string, fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fail {
		r.failing[collection] = true
	} else {
		delete(r.failing, collection)
	}
}

func (r *FixtureRepository) isFailing(collection string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.failing[collection]
}

// serve waits out the latency, honouring ctx, then returns a fresh fixture set.
func (r *FixtureRepository) serve(ctx context.Context, collection string) (*fixtures.Set, error) {
	if r.latency > 0 {
		timer := time.NewTimer(r.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.isFailing(collection) {
		r.logger.Debug("injecting backend failure", zap.String("collection", collection))
		return nil, apperrors.BackendFailure(collection)
	}
	return fixtures.Load()
}

func forEmployee[T any](items []T, employeeID string, owner func(T) string) []T {
	if employeeID == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if owner(item) == employeeID {
			out = append(out, item)
		}
	}
	return out
}

func (r *FixtureRepository) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	set, err := r.serve(ctx, database.CollectionEmployees)
	if err != nil {
		return nil, err
	}
	return set.Employees, nil
}

func (r *FixtureRepository) ListMetrics(ctx context.Context) ([]models.MetricSnapshot, error) {
	set, err := r.serve(ctx, database.CollectionMetrics)
	if err != nil {
		return nil, err
	}
	return set.Metrics, nil
}

func (r *FixtureRepository) ListTrend(ctx context.Context) ([]models.TrendPoint, error) {
	set, err := r.serve(ctx, database.CollectionTrends)
	if err != nil {
		return nil, err
	}
	return set.Trends, nil
}

func (r *FixtureRepository) ListHeatmap(ctx context.Context) ([]models.DepartmentHeatmapRow, error) {
	set, err := r.serve(ctx, database.CollectionHeatmap)
	if err != nil {
		return nil, err
	}
	return set.Heatmap, nil
}

func (r *FixtureRepository) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	set, err := r.serve(ctx, database.CollectionAlerts)
	if err != nil {
		return nil, err
	}
	return set.Alerts, nil
}

func (r *FixtureRepository) ListJourneyEvents(ctx context.Context, employeeID string) ([]models.JourneyEvent, error) {
	set, err := r.serve(ctx, database.CollectionJourneyEvents)
	if err != nil {
		return nil, err
	}
	return forEmployee(set.JourneyEvents, employeeID, func(e models.JourneyEvent) string { return e.EmployeeID }), nil
}

func (r *FixtureRepository) ListFrictions(ctx context.Context, employeeID string) ([]models.Friction, error) {
	set, err := r.serve(ctx, database.CollectionFrictions)
	if err != nil {
		return nil, err
	}
	return forEmployee(set.Frictions, employeeID, func(f models.Friction) string { return f.EmployeeID }), nil
}

func (r *FixtureRepository) ListMilestones(ctx context.Context, employeeID string) ([]models.Milestone, error) {
	set, err := r.serve(ctx, database.CollectionMilestones)
	if err != nil {
		return nil, err
	}
	return forEmployee(set.Milestones, employeeID, func(m models.Milestone) string { return m.EmployeeID }), nil
}

func (r *FixtureRepository) ListReports(ctx context.Context) ([]models.ReportSummary, error) {
	set, err := r.serve(ctx, database.CollectionReports)
	if err != nil {
		return nil, err
	}
	return set.Reports, nil
}

func (r *FixtureRepository) ListActionTemplates(ctx context.Context) ([]models.ActionTemplate, error) {
	set, err := r.serve(ctx, database.CollectionActionTemplates)
	if err != nil {
		return nil, err
	}
	return set.ActionTemplates, nil
}

func (r *FixtureRepository) ListCases(ctx context.Context) ([]models.RetentionCase, error) {
	set, err := r.serve(ctx, database.CollectionCases)
	if err != nil {
		return nil, err
	}
	return set.Cases, nil
}
