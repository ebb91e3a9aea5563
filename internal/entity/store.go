package entity

import (
	"context"
	"fmt"
	"sync"
)

// Reader is the read-only view of the entity store consumed by scope
// resolution and rule execution. Implementations must return entities in a
// stable order so resolution stays deterministic over one snapshot.
type Reader interface {
	Get(id ID) (*Entity, bool)
	// IDs lists every entity in insertion order.
	IDs() []ID
	// AtLocation lists entities whose position component places them at the
	// given location, in insertion order.
	AtLocation(locationID ID) []ID
	// WithComponent lists entities carrying the component type, in insertion
	// order.
	WithComponent(componentType string) []ID
}

// MemoryStore is an in-memory snapshot of the entity graph. Reads are pure;
// the only mutation path after loading is ApplyComponent, the explicit apply
// boundary used by rule operation handlers.
type MemoryStore struct {
	mu       sync.RWMutex
	order    []ID
	entities map[ID]*Entity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entities: make(map[ID]*Entity)}
}

// Put adds or replaces an entity. The store takes ownership of the entity's
// component maps.
func (s *MemoryStore) Put(e *Entity) error {
	if e == nil {
		return fmt.Errorf("nil entity")
	}
	if !Valid(string(e.ID)) {
		return fmt.Errorf("invalid entity id: %q", e.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entities[e.ID]; !exists {
		s.order = append(s.order, e.ID)
	}
	s.entities[e.ID] = e
	return nil
}

func (s *MemoryStore) Get(id ID) (*Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	return e, ok
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *MemoryStore) IDs() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ID(nil), s.order...)
}

func (s *MemoryStore) AtLocation(locationID ID) []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []ID
	for _, id := range s.order {
		if loc, ok := s.entities[id].LocationID(); ok && loc == locationID {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *MemoryStore) WithComponent(componentType string) []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []ID
	for _, id := range s.order {
		if s.entities[id].HasComponent(componentType) {
			ids = append(ids, id)
		}
	}
	return ids
}

// ApplyComponent replaces one component on an existing entity. This is the
// sole write path exposed to rule operation handlers.
func (s *MemoryStore) ApplyComponent(ctx context.Context, id ID, componentType string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if componentType == "" {
		return fmt.Errorf("component type is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("unknown entity: %s", id)
	}
	if e.Components == nil {
		e.Components = make(map[string]map[string]any)
	}
	e.Components[componentType] = data
	return nil
}
