package dashboard

import (
	"slices"
	"sync"
	"time"

	"hrpulse/apperrors"

	"go.uber.org/zap"
)

// Registry holds the open views by id.
type Registry struct {
	deps Deps
	ttl  time.Duration

	// onClose runs after a view is disposed; the service uses it to close the toast topic.
	onClose func(id string)

	mu    sync.RWMutex
	views map[string]*View
}

func NewRegistry(deps Deps, idleTTL time.Duration, onClose func(id string)) *Registry {
	if onClose == nil {
		onClose = func(string) {}
	}
	return &Registry{deps: deps.withDefaults(), ttl: idleTTL, onClose: onClose, views: make(map[string]*View)}
}

// Open creates a view for page and starts loading its sections.
func (r *Registry) Open(page, employeeID string) (*View, error) {
	v, err := NewView(r.deps, page, employeeID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.views[v.ID()] = v
	r.mu.Unlock()
	return v, nil
}

// Get returns the view and marks it as recently used.
func (r *Registry) Get(id string) (*View, error) {
	r.mu.RLock()
	v, ok := r.views[id]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("view " + id)
	}
	v.Touch(time.Now())
	return v, nil
}

// List returns the open views ordered by creation time.
func (r *Registry) List() []*View {
	r.mu.RLock()
	out := make([]*View, 0, len(r.views))
	for _, v := range r.views {
		out = append(out, v)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *View) int { return a.createdAt.Compare(b.createdAt) })
	return out
}

// Close disposes and forgets the view.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	v, ok := r.views[id]
	delete(r.views, id)
	r.mu.Unlock()
	if !ok {
		return apperrors.NotFound("view " + id)
	}
	v.Dispose()
	r.onClose(id)
	return nil
}

// SweepIdle closes views that have not been used for longer than the idle TTL and
// returns their ids.
func (r *Registry) SweepIdle(now time.Time) []string {
	r.mu.Lock()
	var idle []*View
	for id, v := range r.views {
		if v.idleSince(now) > r.ttl {
			idle = append(idle, v)
			delete(r.views, id)
		}
	}
	r.mu.Unlock()

	ids := make([]string, 0, len(idle))
	for _, v := range idle {
		v.Dispose()
		r.onClose(v.ID())
		ids = append(ids, v.ID())
	}
	if len(ids) > 0 {
		r.deps.Logger.Info("idle views closed", zap.Strings("view_ids", ids))
	}
	return ids
}

// CloseAll disposes every view, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*View)
	r.mu.Unlock()

	for id, v := range views {
		v.Dispose()
		r.onClose(id)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}
