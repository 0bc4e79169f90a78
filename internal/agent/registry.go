package agent

import "sync"

// DefaultRegistrySize bounds how many sessions a Registry keeps.
const DefaultRegistrySize = 64

// Registry keeps recent sessions by ID so a later request can act on a page
// scanned earlier (the add-to-board affordance). The oldest session is
// dropped once the registry is full.
type Registry struct {
	mu    sync.Mutex
	max   int
	byID  map[string]*Session
	order []string
}

func NewRegistry(max int) *Registry {
	if max <= 0 {
		max = DefaultRegistrySize
	}
	return &Registry{max: max, byID: make(map[string]*Session)}
}

func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID]; ok {
		return
	}
	r.byID[s.ID] = s
	r.order = append(r.order, s.ID)
	for len(r.order) > r.max {
		delete(r.byID, r.order[0])
		r.order = r.order[1:]
	}
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
