package ecs

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEntity is returned when an operation names an entity that was never created.
	ErrNoEntity = errors.New("ecs: no such entity")
	// ErrNoComponent is returned by Update when the entity lacks the component.
	ErrNoComponent = errors.New("ecs: component not present")
	// ErrInvalidKind is returned for components reporting an unknown kind.
	ErrInvalidKind = errors.New("ecs: invalid component kind")
)

// World is the central entity registry and component store.
// Entities are never destroyed; iteration follows creation order.
type World struct {
	nextID    EntityID
	order     []EntityID
	exists    map[EntityID]struct{}
	tables    [kindLimit]map[EntityID]Component
	listeners []Listener
}

// NewWorld creates an empty World.
func NewWorld() *World {
	w := &World{
		nextID: 1,
		exists: make(map[EntityID]struct{}),
	}
	for _, k := range Kinds {
		w.tables[k] = make(map[EntityID]Component)
	}
	return w
}

// Subscribe registers a listener for structural notices.
func (w *World) Subscribe(l Listener) {
	w.listeners = append(w.listeners, l)
}

func (w *World) publish(n Notice) {
	for _, l := range w.listeners {
		l(n)
	}
}

// CreateEntity mints a new entity ID.
func (w *World) CreateEntity() EntityID {
	id := w.nextID
	w.nextID++
	w.exists[id] = struct{}{}
	w.order = append(w.order, id)
	w.publish(Notice{Type: EntityCreated, Entity: id})
	return id
}

// Exists reports whether id was created by this world.
func (w *World) Exists(id EntityID) bool {
	_, ok := w.exists[id]
	return ok
}

// Len returns the number of entities ever created.
func (w *World) Len() int {
	return len(w.order)
}

// Entities returns every entity in creation order.
func (w *World) Entities() []EntityID {
	out := make([]EntityID, len(w.order))
	copy(out, w.order)
	return out
}

// Add attaches a component to an entity, replacing any existing one of the same kind.
func (w *World) Add(id EntityID, c Component) error {
	if !w.Exists(id) {
		return fmt.Errorf("add %s to %d: %w", c.Kind(), id, ErrNoEntity)
	}
	k := c.Kind()
	if !k.Valid() {
		return fmt.Errorf("add to %d: %w", id, ErrInvalidKind)
	}
	w.tables[k][id] = c
	w.publish(Notice{Type: ComponentAdded, Entity: id, Kind: k})
	return nil
}

// Get returns the component of the given kind for entity id.
func (w *World) Get(id EntityID, k Kind) (Component, bool) {
	if !k.Valid() {
		return nil, false
	}
	c, ok := w.tables[k][id]
	return c, ok
}

// Has reports whether entity id has a component of the given kind.
func (w *World) Has(id EntityID, k Kind) bool {
	_, ok := w.Get(id, k)
	return ok
}

// Update replaces an existing component. It fails without touching state if the
// entity does not exist or does not carry a component of that kind.
func (w *World) Update(id EntityID, c Component) error {
	if !w.Exists(id) {
		return fmt.Errorf("update %s on %d: %w", c.Kind(), id, ErrNoEntity)
	}
	k := c.Kind()
	if !k.Valid() {
		return fmt.Errorf("update on %d: %w", id, ErrInvalidKind)
	}
	if _, ok := w.tables[k][id]; !ok {
		return fmt.Errorf("update %s on %d: %w", k, id, ErrNoComponent)
	}
	w.tables[k][id] = c
	w.publish(Notice{Type: ComponentUpdated, Entity: id, Kind: k})
	return nil
}

// Remove detaches a component from an entity. Removing an absent component is a no-op.
func (w *World) Remove(id EntityID, k Kind) {
	if !k.Valid() {
		return
	}
	if _, ok := w.tables[k][id]; !ok {
		return
	}
	delete(w.tables[k], id)
	w.publish(Notice{Type: ComponentRemoved, Entity: id, Kind: k})
}

// Lookup returns the component of kind k on id asserted to T.
func Lookup[T Component](w *World, id EntityID, k Kind) (T, bool) {
	var zero T
	c, ok := w.Get(id, k)
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}

// Patch modifies the stored component of kind k in place through fn and publishes
// one ComponentUpdated notice. It is the partial form of Update: fn changes only
// the fields it touches. Nothing changes and fn is not called when the entity,
// the component or its type T is missing.
func Patch[T Component](w *World, id EntityID, k Kind, fn func(T)) error {
	if !w.Exists(id) {
		return fmt.Errorf("patch %s on %d: %w", k, id, ErrNoEntity)
	}
	if !k.Valid() {
		return fmt.Errorf("patch on %d: %w", id, ErrInvalidKind)
	}
	c, ok := w.tables[k][id]
	if !ok {
		return fmt.Errorf("patch %s on %d: %w", k, id, ErrNoComponent)
	}
	t, ok := c.(T)
	if !ok {
		return fmt.Errorf("patch %s on %d: stored %T: %w", k, id, c, ErrNoComponent)
	}
	fn(t)
	w.publish(Notice{Type: ComponentUpdated, Entity: id, Kind: k})
	return nil
}
