// Resource phase: production, consumption, stock update and the health and
// schooling feedback that follows from the new stock levels.
package engine

import (
	"fmt"

	"github.com/talgya/populace/internal/agents"
	"github.com/talgya/populace/internal/economy"
	"github.com/talgya/populace/internal/ecs"
)

// processResources runs the economic system for one tick.
func (s *Simulation) processResources(tick int64) {
	living := agents.Living(s.World)
	citizens := citizensOf(living, tick)

	mods := economy.Modifiers{
		FoodProduction:      s.effect.FoodProduction,
		Economy:             s.effect.Economy,
		MedicineConsumption: s.effect.MedicineConsumption,
	}
	led := economy.Tally(citizens, MonthOf(tick), mods)
	s.ledger = led
	s.Pool.Apply(led.Production, led.Consumption)

	s.applyFeedback(living, citizens, led)
}

func citizensOf(living []agents.Person, tick int64) []economy.Citizen {
	citizens := make([]economy.Citizen, len(living))
	for i, p := range living {
		citizens[i] = economy.Citizen{Age: p.Idn.Age(tick), Health: p.Bio.Health, Job: p.Occ.Job}
	}
	return citizens
}

// applyFeedback adjusts health and education from the updated pool. Each
// person's deltas are summed and clamped once.
func (s *Simulation) applyFeedback(living []agents.Person, citizens []economy.Citizen, led economy.Ledger) {
	pool := s.Pool
	short := map[economy.Resource]string{}

	everyone := economy.FoodEffect(pool.Net.Food)
	if everyone < 0 {
		short[economy.Food] = "consumption outpaced the harvest"
	}
	if led.HousingDemand > pool.Stock.Housing {
		everyone += economy.CrowdingPenalty
		short[economy.Housing] = fmt.Sprintf("%.0f people for %.0f homes", led.HousingDemand, pool.Stock.Housing)
	}

	untreated := pool.Stock.Medicine <= 0 && pool.Consumption.Medicine > pool.Production.Medicine
	if untreated {
		short[economy.Medicine] = "the sick and elderly went untreated"
	}
	plentiful := pool.Stock.Medicine > economy.MedicineReserve
	schooling := pool.Stock.Education > 0 && led.Scientists > 0

	for i, p := range living {
		c := citizens[i]
		delta := everyone
		if c.NeedsCare() {
			switch {
			case untreated:
				delta += economy.UntreatedPenalty
			case plentiful:
				delta += economy.CareRecovery(c.Age)
			}
		}
		if delta != 0 {
			err := ecs.Patch(s.World, p.ID, ecs.KindBiological, func(b *agents.Biological) { b.AdjustHealth(delta) })
			ecs.Invariant(err == nil, "health feedback failed", "entity", p.ID, "err", err)
		}
		if schooling && c.IsStudent() && p.Cog.Education < agents.MaxEducation {
			err := ecs.Patch(s.World, p.ID, ecs.KindCognitive, func(cog *agents.Cognitive) { cog.Learn(economy.SchoolingGain) })
			ecs.Invariant(err == nil, "schooling failed", "entity", p.ID, "err", err)
		}
	}

	for _, r := range economy.Resources {
		if _, ok := short[r]; !ok && r != economy.Housing && pool.Stock.Get(r) <= 0 {
			short[r] = "stores are empty"
		}
	}
	for _, r := range economy.Resources {
		reason, ok := short[r]
		if !ok {
			continue
		}
		s.emit(Event{
			Kind:        EventShortage,
			Description: fmt.Sprintf("%s shortage: %s", r, reason),
			Meta:        map[string]any{"resource": r.String(), "stock": pool.Stock.Get(r)},
		})
	}
}
