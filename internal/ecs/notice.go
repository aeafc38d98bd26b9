package ecs

// NoticeType classifies a structural change to the world.
type NoticeType uint8

const (
	EntityCreated NoticeType = iota
	ComponentAdded
	ComponentUpdated
	ComponentRemoved
)

func (t NoticeType) String() string {
	switch t {
	case EntityCreated:
		return "entity_created"
	case ComponentAdded:
		return "component_added"
	case ComponentUpdated:
		return "component_updated"
	case ComponentRemoved:
		return "component_removed"
	default:
		return "unknown"
	}
}

// Notice describes one structural change. Kind is zero for EntityCreated.
type Notice struct {
	Type   NoticeType
	Entity EntityID
	Kind   Kind
}

// Listener receives notices synchronously, inside the mutating call.
type Listener func(Notice)
