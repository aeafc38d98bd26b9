// Package ecs provides the entity/component substrate the simulation systems run on.
// Entities are opaque ids; components live in one table per kind.
package ecs

import "fmt"

// EntityID uniquely identifies an entity in the world.
type EntityID uint64

// NilEntity is the zero value; no valid entity has this ID.
const NilEntity EntityID = 0

// Kind identifies a component table. The set of kinds is closed.
type Kind uint8

const (
	KindIdentity Kind = iota + 1
	KindBiological
	KindCognitive
	KindRelationship
	KindOccupation

	kindLimit
)

// Kinds lists every component kind in table order.
var Kinds = []Kind{KindIdentity, KindBiological, KindCognitive, KindRelationship, KindOccupation}

// Valid reports whether k names a known component table.
func (k Kind) Valid() bool {
	return k > 0 && k < kindLimit
}

func (k Kind) String() string {
	switch k {
	case KindIdentity:
		return "identity"
	case KindBiological:
		return "biological"
	case KindCognitive:
		return "cognitive"
	case KindRelationship:
		return "relationship"
	case KindOccupation:
		return "occupation"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Component is implemented by every data struct stored in the world.
type Component interface {
	Kind() Kind
}
