// Package policy holds the player-selectable policies, tracks which are active
// and publishes the summed effect vector the simulation systems read.
package policy

import (
	"errors"
	"fmt"
	"log/slog"
)

// Activation errors. A failed activation changes nothing.
var (
	ErrUnknownPolicy     = errors.New("unknown policy")
	ErrAlreadyActive     = errors.New("policy already active")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Effect is an additive modifier vector.
type Effect struct {
	FertilityRate       float64 `json:"fertility_rate" yaml:"fertility_rate"`
	DeathRate           float64 `json:"death_rate" yaml:"death_rate"`
	FoodProduction      float64 `json:"food_production" yaml:"food_production"`
	Economy             float64 `json:"economy" yaml:"economy"`
	MedicineConsumption float64 `json:"medicine_consumption" yaml:"medicine_consumption"`
}

// Plus returns the component-wise sum.
func (e Effect) Plus(o Effect) Effect {
	return Effect{
		FertilityRate:       e.FertilityRate + o.FertilityRate,
		DeathRate:           e.DeathRate + o.DeathRate,
		FoodProduction:      e.FoodProduction + o.FoodProduction,
		Economy:             e.Economy + o.Economy,
		MedicineConsumption: e.MedicineConsumption + o.MedicineConsumption,
	}
}

// Policy is one catalog entry plus its activation state.
type Policy struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description"`
	Cost        float64 `json:"cost" yaml:"cost"`
	Effect      Effect  `json:"effect" yaml:"effect"`
	Duration    int     `json:"duration,omitempty" yaml:"duration"` // ticks; 0 means until deactivated
	Active      bool    `json:"active"`
	Elapsed     int     `json:"elapsed"`
}

// Bounded reports whether the policy expires on its own.
func (p *Policy) Bounded() bool { return p.Duration > 0 }

// Remaining returns ticks left for a bounded active policy, or -1.
func (p *Policy) Remaining() int {
	if !p.Active || !p.Bounded() {
		return -1
	}
	return p.Duration - p.Elapsed
}

// Expired describes a policy that ran out during Tick.
type Expired struct {
	ID   string
	Name string
}

// Registry owns the catalog and the published aggregate.
type Registry struct {
	policies  []*Policy // catalog order
	index     map[string]*Policy
	aggregate Effect
}

// NewRegistry builds a registry over a copy of catalog. Duplicate ids keep the
// first entry.
func NewRegistry(catalog []Policy) *Registry {
	r := &Registry{index: make(map[string]*Policy, len(catalog))}
	for _, p := range catalog {
		if _, dup := r.index[p.ID]; dup {
			slog.Warn("duplicate policy id ignored", "id", p.ID)
			continue
		}
		cp := p
		cp.Active = false
		cp.Elapsed = 0
		r.policies = append(r.policies, &cp)
		r.index[cp.ID] = &cp
	}
	return r
}

// Treasury pays for policies. Spend reports false, and changes nothing, when
// the balance does not cover amount.
type Treasury interface {
	Spend(amount float64) bool
}

// Activate turns a policy on and pays its cost from funds. funds may be nil
// only for free policies.
func (r *Registry) Activate(id string, funds Treasury) error {
	p, ok := r.index[id]
	if !ok {
		return fmt.Errorf("activate %q: %w", id, ErrUnknownPolicy)
	}
	if p.Active {
		return fmt.Errorf("activate %q: %w", id, ErrAlreadyActive)
	}
	if p.Cost > 0 {
		if funds == nil || !funds.Spend(p.Cost) {
			return fmt.Errorf("activate %q (cost %.0f): %w", id, p.Cost, ErrInsufficientFunds)
		}
	}
	p.Active = true
	p.Elapsed = 0
	r.publish()
	return nil
}

// Deactivate turns a policy off. It reports whether anything changed.
func (r *Registry) Deactivate(id string) bool {
	p, ok := r.index[id]
	if !ok || !p.Active {
		return false
	}
	p.Active = false
	p.Elapsed = 0
	r.publish()
	return true
}

// Tick advances every bounded active policy by one tick, deactivates those that
// have run their full duration and republishes the aggregate.
func (r *Registry) Tick() []Expired {
	var expired []Expired
	for _, p := range r.policies {
		if !p.Active || !p.Bounded() {
			continue
		}
		p.Elapsed++
		if p.Elapsed >= p.Duration {
			p.Active = false
			p.Elapsed = 0
			expired = append(expired, Expired{ID: p.ID, Name: p.Name})
		}
	}
	r.publish()
	return expired
}

// Aggregate returns the last published sum of active effects.
func (r *Registry) Aggregate() Effect { return r.aggregate }

// ActiveIDs lists active policies in catalog order.
func (r *Registry) ActiveIDs() []string {
	var ids []string
	for _, p := range r.policies {
		if p.Active {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Get returns a copy of one policy.
func (r *Registry) Get(id string) (Policy, bool) {
	p, ok := r.index[id]
	if !ok {
		return Policy{}, false
	}
	return *p, true
}

// Policies returns copies of the whole catalog.
func (r *Registry) Policies() []Policy {
	out := make([]Policy, len(r.policies))
	for i, p := range r.policies {
		out[i] = *p
	}
	return out
}

func (r *Registry) publish() {
	var sum Effect
	for _, p := range r.policies {
		if p.Active {
			sum = sum.Plus(p.Effect)
		}
	}
	r.aggregate = sum
}
