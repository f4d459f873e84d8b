// Package dashboard assembles loaders, filter sets and toasts into the sections of each
// dashboard page, and keeps the live views a browser is looking at.
package dashboard

import (
	"context"
	"slices"
	"sync"
	"time"

	"hrpulse/apperrors"
	"hrpulse/filters"
	"hrpulse/loader"
	"hrpulse/models"
	"hrpulse/notify"
	repository "hrpulse/repositories"

	"go.uber.org/zap"
)

// Query is what a section fetch is parameterized by.
type Query struct {
	Filters    filters.Values
	EmployeeID string
}

// Section is the type-erased handle a View keeps for each of its sections.
type Section interface {
	Name() string
	// EmployeeScoped sections reload when the view's selected employee changes.
	EmployeeScoped() bool
	Load() uint64
	UpdateFilters(updates filters.Values) error
	ResetFilters() bool
	Retry() uint64
	Wait(ctx context.Context) error
	Snapshot() models.SectionSnapshot
	Dispose()
}

// Deps are the collaborators shared by every section of every view.
type Deps struct {
	Repo      repository.DashboardRepository
	Publisher notify.Publisher
	// Now is the reference time for period filters.
	Now      func() time.Time
	Logger   *zap.Logger
	Debounce time.Duration
	// Timeouts overrides the catalog timeout per section name.
	Timeouts map[string]time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Publisher == nil {
		d.Publisher = discard{}
	}
	return d
}

type discard struct{}

func (discard) Publish(notify.Notification) {}

// Definition describes one kind of section.
type Definition[T any] struct {
	Name    string
	Fields  []filters.Field
	Scoped  bool
	Timeout time.Duration
	// FailureMessage and TimeoutMessage are the static texts shown with the retry control.
	FailureMessage string
	TimeoutMessage string

	Fetch      func(ctx context.Context, repo repository.DashboardRepository, employeeID string) ([]T, error)
	Predicates func(v filters.Values, ref time.Time) []filters.Predicate[T]
	// Less orders the filtered items; nil keeps fetch order.
	Less      func(a, b T) bool
	Summarize func(items []T) interface{}
	// Toast returns a notification for a freshly loaded collection, or nil.
	Toast func(items []T) *notify.Notification
}

type section[T any] struct {
	def      Definition[T]
	viewID   string
	employee func() string
	loader   *loader.Loader[Query, []T]
	logger   *zap.Logger

	mu      sync.Mutex
	filters *filters.Set
}

func newSection[T any](def Definition[T], deps Deps, viewID string, employee func() string) *section[T] {
	timeout := def.Timeout
	if d, ok := deps.Timeouts[def.Name]; ok {
		timeout = d
	}
	s := &section[T]{
		def:      def,
		viewID:   viewID,
		employee: employee,
		logger:   deps.Logger.With(zap.String("view_id", viewID), zap.String("section", def.Name)),
		filters:  filters.NewSet(def.Fields...),
	}

	fetch := func(ctx context.Context, q Query) ([]T, error) {
		items, err := def.Fetch(ctx, deps.Repo, q.EmployeeID)
		if err != nil {
			return nil, err
		}
		if def.Predicates != nil {
			items = filters.Apply(items, def.Predicates(q.Filters, deps.Now())...)
		}
		if def.Less != nil {
			slices.SortStableFunc(items, func(a, b T) int {
				switch {
				case def.Less(a, b):
					return -1
				case def.Less(b, a):
					return 1
				}
				return 0
			})
		}
		return items, nil
	}

	s.loader = loader.New(def.Name, fetch, loader.Options{
		Timeout:        timeout,
		Debounce:       deps.Debounce,
		FailureMessage: def.FailureMessage,
		TimeoutMessage: def.TimeoutMessage,
		Logger:         deps.Logger.With(zap.String("view_id", viewID)),
	})
	s.loader.Observe(s.toast(deps.Publisher))
	return s
}

// toast turns loader transitions into notifications. It runs under the loader's lock and
// only hands off to the non-blocking publisher.
func (s *section[T]) toast(pub notify.Publisher) loader.Observer[[]T] {
	return func(prev, next loader.Snapshot[[]T]) {
		if next.State != loader.Success {
			return
		}
		if prev.Errored() {
			pub.Publish(notify.Notification{
				ViewID:  s.viewID,
				Section: s.def.Name,
				Level:   notify.LevelSuccess,
				Title:   "Data loaded",
				Message: "The section loaded successfully after a retry.",
			})
		}
		if s.def.Toast == nil {
			return
		}
		if n := s.def.Toast(next.Data); n != nil {
			n.ViewID = s.viewID
			n.Section = s.def.Name
			pub.Publish(*n)
		}
	}
}

func (s *section[T]) Name() string {
	return s.def.Name
}

func (s *section[T]) EmployeeScoped() bool {
	return s.def.Scoped
}

func (s *section[T]) query() Query {
	s.mu.Lock()
	values := s.filters.Values()
	s.mu.Unlock()

	q := Query{Filters: values}
	if s.def.Scoped {
		q.EmployeeID = s.employee()
	}
	return q
}

// Load fetches with the current filters and selection.
func (s *section[T]) Load() uint64 {
	return s.loader.Load(s.query())
}

// UpdateFilters applies updates atomically. A change to an enumerated field reloads at
// once; a change touching only free-text fields reloads after the debounce window.
func (s *section[T]) UpdateFilters(updates filters.Values) error {
	if s.loader.Disposed() {
		return apperrors.Disposed("section " + s.def.Name)
	}

	s.mu.Lock()
	changed, err := s.filters.Apply(updates)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		return nil
	}

	debounced := true
	for _, f := range changed {
		if !f.FreeText {
			debounced = false
			break
		}
	}
	if debounced {
		s.loader.LoadDebounced(s.query())
	} else {
		s.loader.Load(s.query())
	}
	s.logger.Debug("filters updated", zap.Int("changed", len(changed)), zap.Bool("debounced", debounced))
	return nil
}

// ResetFilters restores the defaults and reloads. It is a no-op returning false when the
// filters are already at their defaults.
func (s *section[T]) ResetFilters() bool {
	s.mu.Lock()
	reset := s.filters.Reset()
	s.mu.Unlock()
	if reset {
		s.loader.Load(s.query())
	}
	return reset
}

func (s *section[T]) Retry() uint64 {
	return s.loader.Retry()
}

func (s *section[T]) Wait(ctx context.Context) error {
	_, err := s.loader.Wait(ctx)
	return err
}

func (s *section[T]) Dispose() {
	s.loader.Dispose()
}

func (s *section[T]) Snapshot() models.SectionSnapshot {
	snap := s.loader.Snapshot()

	s.mu.Lock()
	values := s.filters.Values()
	atDefault := s.filters.IsDefault()
	active := s.filters.ActiveFields()
	s.mu.Unlock()

	out := models.SectionSnapshot{
		Name:             s.def.Name,
		State:            string(snap.State),
		Loading:          snap.Loading(),
		Error:            snap.Message,
		CanRetry:         snap.Errored(),
		Filters:          values,
		FiltersAtDefault: atDefault,
		ActiveFilters:    active,
		RequestSeq:       snap.Seq,
	}
	if snap.HasData {
		out.Data = snap.Data
		if s.def.Summarize != nil {
			out.Summary = s.def.Summarize(snap.Data)
		}
	}
	if !snap.UpdatedAt.IsZero() {
		updated := snap.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}
