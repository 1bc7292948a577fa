// Package health tracks whether the components started by fx are ready to
// serve traffic.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ComponentStatus describes one registered component.
type ComponentStatus struct {
	Name      string    `json:"name"`
	Ready     bool      `json:"ready"`
	StartedAt time.Time `json:"startedAt"`
	ReadyAt   time.Time `json:"readyAt,omitzero"`
}

// ReadinessStatus is a snapshot of all components.
type ReadinessStatus struct {
	Ready      bool              `json:"ready"`
	Components []ComponentStatus `json:"components"`
}

// ComponentManager registers components that must report ready.
type ComponentManager interface {
	// AddComponent registers name and returns the function that marks it ready.
	AddComponent(name string) func()
}

// ReadinessChecker reports readiness.
type ReadinessChecker interface {
	IsReady() bool
	Status() ReadinessStatus
	// Pending lists components that are not ready yet, sorted by name.
	Pending() []string
}

// ReadinessWaiter blocks until every registered component is ready.
type ReadinessWaiter interface {
	WaitReady(ctx context.Context) error
}

type component struct {
	ready     bool
	startedAt time.Time
	readyAt   time.Time
}

type readiness struct {
	mu         sync.RWMutex
	components map[string]*component
	readyCh    chan struct{}
	readyOnce  sync.Once
	log        *zap.Logger
}

func newReadiness(log *zap.Logger) *readiness {
	return &readiness{
		components: make(map[string]*component),
		readyCh:    make(chan struct{}),
		log:        log,
	}
}

func (r *readiness) AddComponent(name string) func() {
	if name == "" {
		panic("readiness: component name must not be empty")
	}

	r.mu.Lock()
	if _, exists := r.components[name]; exists {
		r.log.Warn("component already registered", zap.String("component", name))
	} else {
		r.components[name] = &component{startedAt: time.Now()}
	}
	r.mu.Unlock()

	return func() { r.markReady(name) }
}

func (r *readiness) markReady(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.components[name]
	if c == nil || c.ready {
		return
	}
	c.ready = true
	c.readyAt = time.Now()
	r.log.Info("component ready", zap.String("component", name), zap.Duration("startup", c.readyAt.Sub(c.startedAt)))

	for _, other := range r.components {
		if !other.ready {
			return
		}
	}
	r.readyOnce.Do(func() {
		close(r.readyCh)
		r.log.Info("all components are ready", zap.Int("components", len(r.components)))
	})
}

func (r *readiness) IsReady() bool {
	select {
	case <-r.readyCh:
		return true
	default:
		return false
	}
}

func (r *readiness) Status() ReadinessStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := ReadinessStatus{
		Ready:      r.IsReady(),
		Components: make([]ComponentStatus, 0, len(r.components)),
	}
	for name, c := range r.components {
		status.Components = append(status.Components, ComponentStatus{
			Name:      name,
			Ready:     c.ready,
			StartedAt: c.startedAt,
			ReadyAt:   c.readyAt,
		})
	}
	sort.Slice(status.Components, func(i, j int) bool {
		return status.Components[i].Name < status.Components[j].Name
	})
	return status
}

func (r *readiness) Pending() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pending []string
	for name, c := range r.components {
		if !c.ready {
			pending = append(pending, name)
		}
	}
	sort.Strings(pending)
	return pending
}

func (r *readiness) WaitReady(ctx context.Context) error {
	select {
	case <-r.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
