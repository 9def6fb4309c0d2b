package fabric

import (
	"sync"
	"time"
)

// Registry holds every live participant, keyed by id, plus connection
// order (needed for deterministic BFS tie-breaking and for "registration
// order" re-placement passes) and the current broadcaster, if any.
//
// Registry does not lock around its own methods: the dispatcher holds
// Registry.Lock for the full duration of each command it handles (the
// "coarse mutex held for the duration of each handler" realization of
// single-writer model), so mutation methods assume the caller
// already holds the lock. Snapshot is the one method called from outside
// the dispatcher (the admin HTTP handler) and takes its own read lock.
type Registry struct {
	mu            sync.RWMutex
	participants  map[string]*Participant
	order         []string
	broadcasterID string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{participants: make(map[string]*Participant)}
}

// Lock and Unlock bracket a single dispatcher step.
func (r *Registry) Lock()   { r.mu.Lock() }
func (r *Registry) Unlock() { r.mu.Unlock() }

// Add registers a newly-connected participant. Caller holds Lock.
func (r *Registry) Add(p *Participant) {
	r.participants[p.ID] = p
	r.order = append(r.order, p.ID)
}

// Remove deletes a participant from the registry. Caller holds Lock.
func (r *Registry) Remove(id string) {
	delete(r.participants, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.broadcasterID == id {
		r.broadcasterID = ""
	}
}

// Get looks up a participant by id. Caller holds Lock or RLock.
func (r *Registry) Get(id string) (*Participant, bool) {
	p, ok := r.participants[id]
	return p, ok
}

// All returns every participant in connection order. Caller holds Lock.
func (r *Registry) All() []*Participant {
	out := make([]*Participant, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.participants[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Broadcaster returns the current broadcaster, if any. Caller holds Lock.
func (r *Registry) Broadcaster() (*Participant, bool) {
	if r.broadcasterID == "" {
		return nil, false
	}
	p, ok := r.participants[r.broadcasterID]
	return p, ok
}

// SetBroadcaster installs id as the broadcaster. Caller holds Lock.
func (r *Registry) SetBroadcaster(id string) {
	r.broadcasterID = id
}

// ClearBroadcasterIfMatches removes id as the broadcaster only if it is
// still the current one. Caller holds Lock.
func (r *Registry) ClearBroadcasterIfMatches(id string) {
	if r.broadcasterID == id {
		r.broadcasterID = ""
	}
}

// Snapshot is an admin-view entry: a point-in-time, internally consistent
// copy of one participant's visible state.
type Snapshot struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Role     string    `json:"role"`
	Parent   string    `json:"parent,omitempty"`
	Children []string  `json:"children"`
	LastSeen time.Time `json:"last_seen"`
}

// Snapshot returns a consistent, copied view of the whole registry for
// the admin endpoint. Safe to call concurrently with the dispatcher: it
// takes its own read lock, which blocks until any in-flight dispatcher
// step (holding the write lock) completes.
func (r *Registry) Snapshot() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Snapshot, 0, len(r.order))
	for _, id := range r.order {
		p, ok := r.participants[id]
		if !ok {
			continue
		}
		out = append(out, Snapshot{
			ID:       p.ID,
			Label:    p.Label,
			Role:     p.Role.String(),
			Parent:   p.Parent,
			Children: append([]string(nil), p.Children...),
			LastSeen: p.LastSeen,
		})
	}
	return out
}
