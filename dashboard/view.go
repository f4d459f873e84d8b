package dashboard

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"hrpulse/apperrors"
	"hrpulse/filters"
	"hrpulse/models"
	"hrpulse/notify"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Page names and the sections each one shows, in display order.
const (
	PageEngagement = "engagement"
	PageJourney    = "journey"
	PageRetention  = "retention"
	PageReports    = "reports"
)

var pages = map[string][]string{
	PageEngagement: {SectionMetrics, SectionTrends, SectionHeatmap, SectionAlerts},
	PageJourney:    {SectionTimeline, SectionFrictions, SectionMilestones},
	PageRetention:  {SectionLibrary, SectionCases},
	PageReports:    {SectionReports},
}

// Pages returns the page names in a stable order.
func Pages() []string {
	names := make([]string, 0, len(pages))
	for name := range pages {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// PageSections returns the sections shown on page.
func PageSections(page string) ([]string, bool) {
	sections, ok := pages[page]
	return slices.Clone(sections), ok
}

// View is one open dashboard page. It owns its sections and the selected employee, which
// sections read but never change.
type View struct {
	id        string
	page      string
	createdAt time.Time
	logger    *zap.Logger

	mu         sync.RWMutex
	employeeID string
	lastSeen   time.Time
	disposed   bool

	order    []string
	sections map[string]Section
}

// NewView builds the sections of page and starts loading all of them.
func NewView(deps Deps, page, employeeID string) (*View, error) {
	names, ok := pages[page]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("page %q", page))
	}
	deps = deps.withDefaults()

	now := time.Now()
	v := &View{
		id:         uuid.NewString(),
		page:       page,
		createdAt:  now,
		lastSeen:   now,
		employeeID: employeeID,
		order:      slices.Clone(names),
		sections:   make(map[string]Section, len(names)),
	}
	v.logger = deps.Logger.With(zap.String("view_id", v.id), zap.String("page", page))

	for _, name := range names {
		v.sections[name] = catalog[name](deps, v.id, v.Employee)
	}
	if h, ok := deps.Publisher.(notify.Holder); ok {
		h.Hold(v.id)
	}
	for _, name := range v.order {
		v.sections[name].Load()
	}
	v.logger.Info("view opened", zap.String("employee_id", employeeID))
	return v, nil
}

func (v *View) ID() string {
	return v.id
}

func (v *View) Page() string {
	return v.page
}

// Employee returns the currently selected employee id.
func (v *View) Employee() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.employeeID
}

// Section looks a section up by name.
func (v *View) Section(name string) (Section, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.disposed {
		return nil, apperrors.Disposed("view " + v.id)
	}
	if !Known(name) {
		return nil, apperrors.NotFound(fmt.Sprintf("section %q", name))
	}
	s, ok := v.sections[name]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("section %q on page %q", name, v.page))
	}
	return s, nil
}

// SelectEmployee changes the selected employee and reloads every employee-scoped section.
// It returns the names of the reloaded sections; selecting the current employee reloads nothing.
func (v *View) SelectEmployee(employeeID string) ([]string, error) {
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		return nil, apperrors.Disposed("view " + v.id)
	}
	if v.employeeID == employeeID {
		v.mu.Unlock()
		return nil, nil
	}
	v.employeeID = employeeID
	v.mu.Unlock()

	var reloaded []string
	for _, name := range v.order {
		if s := v.sections[name]; s.EmployeeScoped() {
			s.Load()
			reloaded = append(reloaded, name)
		}
	}
	v.logger.Info("employee selected", zap.String("employee_id", employeeID), zap.Strings("reloaded", reloaded))
	return reloaded, nil
}

// UpdateFilters applies filter updates to one section.
func (v *View) UpdateFilters(section string, updates filters.Values) error {
	s, err := v.Section(section)
	if err != nil {
		return err
	}
	return s.UpdateFilters(updates)
}

// Wait blocks until every section's current request has settled.
func (v *View) Wait(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range v.order {
		s := v.sections[name]
		g.Go(func() error { return s.Wait(ctx) })
	}
	return g.Wait()
}

// Touch records activity so the idle sweep keeps the view.
func (v *View) Touch(now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if now.After(v.lastSeen) {
		v.lastSeen = now
	}
}

func (v *View) idleSince(now time.Time) time.Duration {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return now.Sub(v.lastSeen)
}

func (v *View) Snapshot() models.ViewSnapshot {
	out := models.ViewSnapshot{
		ID:         v.id,
		Page:       v.page,
		EmployeeID: v.Employee(),
		CreatedAt:  v.createdAt,
		Sections:   make([]models.SectionSnapshot, 0, len(v.order)),
	}
	for _, name := range v.order {
		out.Sections = append(out.Sections, v.sections[name].Snapshot())
	}
	return out
}

// Dispose tears down every section. Results arriving afterwards are ignored.
func (v *View) Dispose() {
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		return
	}
	v.disposed = true
	v.mu.Unlock()

	for _, s := range v.sections {
		s.Dispose()
	}
	v.logger.Info("view closed")
}

func (v *View) Disposed() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.disposed
}
