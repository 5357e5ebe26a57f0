package stage

import (
	"errors"
	"fmt"
	"sync"
)

// Registry owns all registered stages and their per-frame submission state.
//
// Registration happens at setup time; Begin/End, enable flags and queries
// may be called from any goroutine concurrently, so every access goes
// through one mutex.
type Registry struct {
	mu     sync.Mutex
	stages []stage
}

// NewRegistry creates an empty stage registry.
func NewRegistry() *Registry {
	return &Registry{stages: make([]stage, 0, 64)}
}

// Register creates a new stage as a child of parent, or as a root when
// parent is the zero Handle. The stage starts enabled.
//
// Register panics if the stage or depth limits are exceeded, or if parent
// is not a registered handle. These are setup-time programmer errors.
func (r *Registry) Register(name string, parent Handle) Handle {
	if name == "" {
		panic("stage: Register with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.stages) >= MaxStages {
		panic("stage: maximum stage count exceeded")
	}

	var depth uint16
	if parent.IsValid() {
		if parent.index() >= len(r.stages) {
			panic(fmt.Sprintf("stage: Register with unknown parent handle %d", parent))
		}
		depth = r.stages[parent.index()].depth() + 1
		if depth >= MaxDepth {
			panic("stage: maximum stage dependency depth exceeded")
		}
	}

	idx := len(r.stages)
	h := handleFromIndex(idx)
	r.stages = append(r.stages, stage{
		name:          name,
		nameHash:      hashName(name),
		order:         packOrder(depth, idx),
		parent:        parent,
		enabled:       true,
		singleEnabled: true,
	})

	if parent.IsValid() {
		p := &r.stages[parent.index()]
		if p.child.IsValid() {
			first := &r.stages[p.child.index()]
			first.prev = h
			r.stages[idx].next = p.child
		}
		p.child = h
	}

	return h
}

// Enable turns a stage back on. Descendants recover their own last
// explicitly requested state: a child that was itself disabled stays
// disabled, a child that was only off because of this ancestor comes back.
func (r *Registry) Enable(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(h)
	s.enabled = true
	s.singleEnabled = true
	r.propagate(h)
}

// Disable turns a stage and all of its descendants off. Begin on a
// disabled stage reports false and records nothing.
func (r *Registry) Disable(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(h)
	s.enabled = false
	s.singleEnabled = false
	r.propagate(h)
}

// propagate recomputes the effective enabled flag of every descendant of h
// from its own singleEnabled flag and its parent's effective flag.
// Caller holds the mutex.
func (r *Registry) propagate(h Handle) {
	s := &r.stages[h.index()]
	for c := s.child; c.IsValid(); c = r.stages[c.index()].next {
		cs := &r.stages[c.index()]
		cs.enabled = s.enabled && cs.singleEnabled
		r.propagate(c)
	}
}

// Enabled reports the effective enabled flag of a stage.
func (r *Registry) Enabled(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(h).enabled
}

// Find looks a stage up by name hash. Hash collisions are broken by
// registration order: the first stage whose name matches wins.
func (r *Registry) Find(name string) (Handle, bool) {
	hash := hashName(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.stages {
		if r.stages[i].nameHash == hash && r.stages[i].name == name {
			return handleFromIndex(i), true
		}
	}
	return 0, false
}

// Name returns the display name of a stage.
func (r *Registry) Name(h Handle) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(h).name
}

// Order returns the dependency order key of a stage.
func (r *Registry) Order(h Handle) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(h).order
}

// State returns the current submission state of a stage.
func (r *Registry) State(h Handle) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(h).state
}

// Count returns the number of registered stages.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stages)
}

// BeginSubmit transitions a stage from None to Submitting and hands back
// the name and order key the recording thread needs. It reports false,
// leaving the state untouched, when the stage is disabled.
//
// BeginSubmit panics if Begin was already called on the stage this frame.
func (r *Registry) BeginSubmit(h Handle) (name string, order uint16, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(h)
	if s.state != StateNone {
		panic(fmt.Sprintf("stage: begin already called on stage %q this frame", s.name))
	}
	if !s.enabled {
		return "", 0, false
	}
	s.state = StateSubmitting
	return s.name, s.order, true
}

// EndSubmit transitions a stage from Submitting to Done.
// It panics when BeginSubmit did not run first.
func (r *Registry) EndSubmit(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(h)
	if s.state != StateSubmitting {
		panic(fmt.Sprintf("stage: end without begin on stage %q", s.name))
	}
	s.state = StateDone
}

// ResetStates returns every stage to None. Runs once per frame after the
// recorded commands have been executed.
func (r *Registry) ResetStates() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.stages {
		r.stages[i].state = StateNone
	}
}

// ValidationError reports a stage that reached Done while its parent did
// not: the parent was never submitted or was disabled while the child still
// rendered.
type ValidationError struct {
	Stage  string
	Parent string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("stage: %q depends on %q, but %q was not rendered", e.Stage, e.Parent, e.Parent)
}

// Validate checks the dependency contract before a frame's commands are
// executed: every stage in Done state must have a Done parent. All
// violations are joined into the returned error; nil means the frame is
// consistent.
func (r *Registry) Validate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := range r.stages {
		s := &r.stages[i]
		if s.state != StateDone || !s.parent.IsValid() {
			continue
		}
		p := &r.stages[s.parent.index()]
		if p.state != StateDone {
			errs = append(errs, &ValidationError{Stage: s.name, Parent: p.name})
		}
	}
	return errors.Join(errs...)
}

// get retrieves the arena record for a handle. Caller holds the mutex.
func (r *Registry) get(h Handle) *stage {
	if !h.IsValid() || h.index() >= len(r.stages) {
		panic(fmt.Sprintf("stage: invalid stage handle %d", h))
	}
	return &r.stages[h.index()]
}
