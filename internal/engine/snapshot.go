package engine

import (
	"github.com/talgya/populace/internal/agents"
	"github.com/talgya/populace/internal/economy"
	"github.com/talgya/populace/internal/ecs"
	"github.com/talgya/populace/internal/ending"
	"github.com/talgya/populace/internal/policy"
	"github.com/talgya/populace/internal/stats"
)

// PersonView is the read-only projection of one person.
type PersonView struct {
	ID        ecs.EntityID `json:"id"`
	Name      string       `json:"name"`
	Gender    string       `json:"gender"`
	Age       float64      `json:"age"`
	Health    float64      `json:"health"`
	Education float64      `json:"education"`
	Job       string       `json:"job"`
	Partner   ecs.EntityID `json:"partner,omitempty"`
	Children  int          `json:"children"`
	Alive     bool         `json:"alive"`
	DeathTick int64        `json:"death_tick,omitempty"`
}

// ResourceView is the pool with its last-tick rates.
type ResourceView struct {
	Stock         economy.Stocks `json:"stock"`
	Production    economy.Stocks `json:"production"`
	Consumption   economy.Stocks `json:"consumption"`
	Net           economy.Stocks `json:"net"`
	HousingDemand float64        `json:"housing_demand"`
}

// PolicyView is a catalog entry with its countdown.
type PolicyView struct {
	policy.Policy
	Remaining int `json:"remaining"`
}

// Snapshot is everything a presentation layer may read.
type Snapshot struct {
	Tick    int64  `json:"tick"`
	Time    string `json:"time"`
	Speed   Speed  `json:"speed"`
	Running bool   `json:"running"`

	Living []PersonView `json:"living"`
	Dead   []PersonView `json:"dead"`

	Averages    stats.Averages `json:"averages"`
	TotalBirths int            `json:"total_births"`
	TotalDeaths int            `json:"total_deaths"`

	Resources      ResourceView  `json:"resources"`
	Policies       []PolicyView  `json:"policies"`
	ActivePolicies []string      `json:"active_policies"`
	Effect         policy.Effect `json:"effect"`

	History      []stats.YearRecord  `json:"history"`
	Achievements []stats.Achievement `json:"achievements"`

	Selected    *PersonView     `json:"selected,omitempty"`
	Ending      *ending.Outcome `json:"ending,omitempty"`
	Provisional *ending.Outcome `json:"provisional,omitempty"`
}

// View projects one person at the current tick.
func (s *Simulation) View(id ecs.EntityID) (PersonView, bool) {
	p, ok := agents.Load(s.World, id)
	if !ok {
		return PersonView{}, false
	}
	return viewOf(p, s.tick), true
}

func viewOf(p agents.Person, tick int64) PersonView {
	age := p.Idn.Age(tick)
	if !p.Bio.Alive {
		age = p.Idn.Age(p.Bio.DeathTick)
	}
	return PersonView{
		ID:        p.ID,
		Name:      p.Idn.Name,
		Gender:    p.Idn.Gender.String(),
		Age:       age,
		Health:    p.Bio.Health,
		Education: p.Cog.Education,
		Job:       p.Occ.Job.String(),
		Partner:   p.Rel.Partner,
		Children:  len(p.Rel.Children),
		Alive:     p.Bio.Alive,
		DeathTick: p.Bio.DeathTick,
	}
}

// Snapshot copies the observable state. Clock fields are left zero; Game fills
// them in.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:        s.tick,
		Time:        SimTime(s.tick),
		Averages:    s.Stats.Current,
		TotalBirths: s.Stats.TotalBirths,
		TotalDeaths: s.Stats.TotalDeaths,
		Resources: ResourceView{
			Stock:         s.Pool.Stock,
			Production:    s.Pool.Production,
			Consumption:   s.Pool.Consumption,
			Net:           s.Pool.Net,
			HousingDemand: s.ledger.HousingDemand,
		},
		ActivePolicies: s.Policies.ActiveIDs(),
		Effect:         s.Policies.Aggregate(),
		History:        append([]stats.YearRecord(nil), s.Stats.History...),
		Achievements:   s.Achievements.Unlocked(),
	}

	for _, id := range s.World.Query(agents.PersonKinds, nil) {
		p, ok := agents.Load(s.World, id)
		if !ok {
			continue
		}
		if p.Bio.Alive {
			snap.Living = append(snap.Living, viewOf(p, s.tick))
		} else {
			snap.Dead = append(snap.Dead, viewOf(p, s.tick))
		}
	}

	for _, p := range s.Policies.Policies() {
		snap.Policies = append(snap.Policies, PolicyView{Policy: p, Remaining: p.Remaining()})
	}

	if out, ok := s.Ending.Result(); ok {
		snap.Ending = &out
	}
	if out, ok := s.Ending.Provisional(); ok {
		snap.Provisional = &out
	}
	return snap
}
