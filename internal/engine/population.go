// Population dynamics: aging, the labor market, natural death and births.
package engine

import (
	"fmt"

	"github.com/talgya/populace/internal/agents"
	"github.com/talgya/populace/internal/economy"
	"github.com/talgya/populace/internal/ecs"
	"github.com/talgya/populace/internal/entropy"
)

// Demographic rates.
const (
	BaseMortality   = 0.001
	OldAgeThreshold = 60.0
	OldAgeMortality = 0.1 // per year past the threshold
	BaseBirthRate   = 0.05
	MinMotherAge    = 18.0
	MaxMotherAge    = 45.0
	JobSearchChance = 0.05
	MarriageChance  = 0.02
	MinMarriageAge  = 18.0
	MaxMarriageAge  = 50.0
)

// DeathProbability is the monthly chance that someone dies.
func DeathProbability(age, health, policyDeath float64) float64 {
	mult := 1.0
	switch {
	case health < 30:
		mult = 2.0
	case health < 50:
		mult = 1.3
	}
	old := age - OldAgeThreshold
	if old < 0 {
		old = 0
	}
	return agents.ClampProbability(BaseMortality*(1+old*OldAgeMortality)*mult + policyDeath)
}

// BirthProbability is the monthly chance that an eligible woman gives birth.
func BirthProbability(age, policyFertility float64) float64 {
	return agents.ClampProbability((BaseBirthRate + policyFertility) * agents.FertilityCurve(agents.GenderFemale, age))
}

// processAging applies age-driven health drift, refreshes fertility and lets
// unemployed adults look for work.
func (s *Simulation) processAging(tick int64) {
	for _, p := range agents.Living(s.World) {
		age := p.Idn.Age(tick)
		p.Bio.AdjustHealth(agents.Recovery(age) - agents.Decay(age))
		p.Bio.Fertility = agents.Fertility(p.Idn.Gender, age)
		s.touch(p.ID, p.Bio)

		if p.Occ.Job == agents.JobUnemployed && age >= economy.WorkingAgeMin && age < economy.WorkingAgeLimit {
			if entropy.Chance(s.rng, JobSearchChance) {
				p.Occ.Job = s.Spawner.ChooseJob(p.Cog.Education)
				s.touch(p.ID, p.Occ)
			}
		}
	}
}

// processDeaths rolls mortality for everyone alive.
func (s *Simulation) processDeaths(tick int64) {
	for _, p := range agents.Living(s.World) {
		age := p.Idn.Age(tick)
		prob := DeathProbability(age, p.Bio.Health, s.effect.DeathRate)
		if s.rng.Float64() >= prob {
			continue
		}
		s.kill(p, tick, age)
	}
}

// kill marks p dead and widows the partner.
func (s *Simulation) kill(p agents.Person, tick int64, age float64) {
	if !p.Bio.Die(tick) {
		return
	}
	s.touch(p.ID, p.Bio)
	partner := agents.Widow(s.World, p.ID)
	s.touch(p.ID, p.Rel)
	if partner != ecs.NilEntity {
		if pr := agents.RelationshipOf(s.World, partner); pr != nil {
			s.touch(partner, pr)
		}
	}
	s.emit(Event{
		Kind:        EventDied,
		Description: fmt.Sprintf("%s has died at %d", p.Idn.Name, int(age)),
		Entity:      p.ID,
		Other:       partner,
		Meta:        map[string]any{"age": age, "health": p.Bio.Health},
	})
}

// eligibleMother reports whether p can give birth this tick.
func (s *Simulation) eligibleMother(p agents.Person, age float64) bool {
	if p.Idn.Gender != agents.GenderFemale || !p.Rel.HasPartner() {
		return false
	}
	if age < MinMotherAge || age > MaxMotherAge {
		return false
	}
	if len(p.Rel.Children) >= agents.MaxChildren {
		return false
	}
	bio := agents.BiologicalOf(s.World, p.Rel.Partner)
	return ecs.Invariant(bio != nil && bio.Alive, "partnered to the dead", "entity", p.ID, "partner", p.Rel.Partner)
}

// processBirths rolls births for every eligible woman.
func (s *Simulation) processBirths(tick int64) {
	for _, p := range agents.Living(s.World) {
		age := p.Idn.Age(tick)
		if !s.eligibleMother(p, age) {
			continue
		}
		if s.rng.Float64() >= BirthProbability(age, s.effect.FertilityRate) {
			continue
		}
		father := p.Rel.Partner
		child, err := s.Spawner.SpawnChild(s.World, p.ID, father, tick)
		if err != nil {
			ecs.Invariant(false, "spawn child failed", "mother", p.ID, "err", err)
			continue
		}
		s.touch(p.ID, p.Rel)
		if fr := agents.RelationshipOf(s.World, father); fr != nil {
			s.touch(father, fr)
		}
		name := ""
		if idn := agents.IdentityOf(s.World, child); idn != nil {
			name = idn.Name
		}
		s.emit(Event{
			Kind:        EventBorn,
			Description: fmt.Sprintf("%s was born to %s", name, p.Idn.Name),
			Entity:      child,
			Other:       p.ID,
			Meta:        map[string]any{"father": father},
		})
	}
}
