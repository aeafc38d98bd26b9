// Package agents provides the person data model: the component structs stored in the
// ecs world, the age-derived biology curves, and the population spawner.
package agents

import (
	"github.com/talgya/populace/internal/ecs"
)

// Bounds and calendar.
const (
	TicksPerYear = 12 // one tick is one simulated month
	MaxHealth    = 100.0
	MaxEducation = 10.0
	MaxChildren  = 5
)

// Gender drives fertility and marriage matching.
type Gender uint8

const (
	GenderMale   Gender = 0
	GenderFemale Gender = 1
)

func (g Gender) String() string {
	if g == GenderFemale {
		return "female"
	}
	return "male"
}

// Job is an occupation. It only feeds production formulas.
type Job uint8

const (
	JobUnemployed Job = iota
	JobFarmer
	JobWorker
	JobScientist
)

func (j Job) String() string {
	switch j {
	case JobFarmer:
		return "farmer"
	case JobWorker:
		return "worker"
	case JobScientist:
		return "scientist"
	default:
		return "unemployed"
	}
}

// Identity holds who a person is. Age is always derived from BirthTick.
type Identity struct {
	Name      string `json:"name"`
	Gender    Gender `json:"gender"`
	BirthTick int64  `json:"birth_tick"` // negative for people seeded as adults
}

func (*Identity) Kind() ecs.Kind { return ecs.KindIdentity }

// Age returns fractional years lived at the given tick.
func (i *Identity) Age(tick int64) float64 {
	return AgeAt(i.BirthTick, tick)
}

// Biological is health and fertility state.
type Biological struct {
	Health    float64 `json:"health"`    // 0–100
	Fertility float64 `json:"fertility"` // 0–1
	Alive     bool    `json:"alive"`
	DeathTick int64   `json:"death_tick,omitempty"`
}

func (*Biological) Kind() ecs.Kind { return ecs.KindBiological }

// AdjustHealth adds delta and clamps.
func (b *Biological) AdjustHealth(delta float64) {
	b.Health = ClampHealth(b.Health + delta)
}

// Die marks the person dead at tick. The death tick is only ever set once;
// Die reports false if the person was already dead.
func (b *Biological) Die(tick int64) bool {
	if !b.Alive {
		return false
	}
	b.Alive = false
	b.DeathTick = tick
	b.Fertility = 0
	return true
}

// Cognitive tracks schooling.
type Cognitive struct {
	Education float64 `json:"education"` // 0–10, never decreases
}

func (*Cognitive) Kind() ecs.Kind { return ecs.KindCognitive }

// Learn raises education by delta, capped at MaxEducation. Negative deltas are ignored.
func (c *Cognitive) Learn(delta float64) {
	if delta <= 0 {
		return
	}
	c.Education = Clamp(c.Education+delta, 0, MaxEducation)
}

// Relationship is family structure. Partner links are symmetric; parents are set
// once; children only grow.
type Relationship struct {
	Partner  ecs.EntityID    `json:"partner,omitempty"`
	Parents  [2]ecs.EntityID `json:"parents,omitempty"`
	Children []ecs.EntityID  `json:"children,omitempty"`
}

func (*Relationship) Kind() ecs.Kind { return ecs.KindRelationship }

// HasPartner reports whether a partner is set.
func (r *Relationship) HasPartner() bool {
	return r.Partner != ecs.NilEntity
}

// HasParents reports whether the parent pair has been set.
func (r *Relationship) HasParents() bool {
	return r.Parents[0] != ecs.NilEntity || r.Parents[1] != ecs.NilEntity
}

// SetParents records the parent pair. It refuses to overwrite an existing pair.
func (r *Relationship) SetParents(a, b ecs.EntityID) bool {
	if r.HasParents() {
		return false
	}
	r.Parents = [2]ecs.EntityID{a, b}
	return true
}

// AddChild appends a child reference.
func (r *Relationship) AddChild(id ecs.EntityID) {
	r.Children = append(r.Children, id)
}

// IsParentOf reports whether id is listed among the children.
func (r *Relationship) IsParentOf(id ecs.EntityID) bool {
	for _, c := range r.Children {
		if c == id {
			return true
		}
	}
	return false
}

// SharesParentWith reports whether r and o have a parent in common.
func (r *Relationship) SharesParentWith(o *Relationship) bool {
	for _, p := range r.Parents {
		if p == ecs.NilEntity {
			continue
		}
		if p == o.Parents[0] || p == o.Parents[1] {
			return true
		}
	}
	return false
}

// Occupation is a person's job.
type Occupation struct {
	Job Job `json:"job"`
}

func (*Occupation) Kind() ecs.Kind { return ecs.KindOccupation }

// Typed accessors. Each returns nil when the component is absent.

func IdentityOf(w *ecs.World, id ecs.EntityID) *Identity {
	c, _ := ecs.Lookup[*Identity](w, id, ecs.KindIdentity)
	return c
}

func BiologicalOf(w *ecs.World, id ecs.EntityID) *Biological {
	c, _ := ecs.Lookup[*Biological](w, id, ecs.KindBiological)
	return c
}

func CognitiveOf(w *ecs.World, id ecs.EntityID) *Cognitive {
	c, _ := ecs.Lookup[*Cognitive](w, id, ecs.KindCognitive)
	return c
}

func RelationshipOf(w *ecs.World, id ecs.EntityID) *Relationship {
	c, _ := ecs.Lookup[*Relationship](w, id, ecs.KindRelationship)
	return c
}

func OccupationOf(w *ecs.World, id ecs.EntityID) *Occupation {
	c, _ := ecs.Lookup[*Occupation](w, id, ecs.KindOccupation)
	return c
}

// PersonKinds are the components every simulated person carries.
var PersonKinds = []ecs.Kind{ecs.KindIdentity, ecs.KindBiological, ecs.KindCognitive, ecs.KindRelationship, ecs.KindOccupation}

// Person is a read-only bundle of one person's components.
type Person struct {
	ID  ecs.EntityID
	Idn *Identity
	Bio *Biological
	Cog *Cognitive
	Rel *Relationship
	Occ *Occupation
}

// Load gathers all person components for id. ok is false if any is missing.
func Load(w *ecs.World, id ecs.EntityID) (p Person, ok bool) {
	p = Person{
		ID:  id,
		Idn: IdentityOf(w, id),
		Bio: BiologicalOf(w, id),
		Cog: CognitiveOf(w, id),
		Rel: RelationshipOf(w, id),
		Occ: OccupationOf(w, id),
	}
	ok = p.Idn != nil && p.Bio != nil && p.Cog != nil && p.Rel != nil && p.Occ != nil
	return p, ok
}

// Living returns every person currently alive, in creation order.
func Living(w *ecs.World) []Person {
	var out []Person
	for _, id := range w.Query(PersonKinds, nil) {
		p, ok := Load(w, id)
		if ok && p.Bio.Alive {
			out = append(out, p)
		}
	}
	return out
}
