package stats

import (
	"github.com/talgya/populace/internal/economy"
)

// Achievement is a milestone. UnlockedTick is set once, on first satisfaction.
type Achievement struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	UnlockedTick int64  `json:"unlocked_tick"`
}

// State is what achievement predicates may look at.
type State struct {
	Tick      int64
	Current   Averages
	Resources economy.Stocks
	History   []YearRecord
}

type rule struct {
	id, name, desc string
	met            func(State) bool
}

var catalog = []rule{
	{"first_steps", "First Steps", "Survive the first year.",
		func(s State) bool { return len(s.History) >= 1 }},
	{"growing_village", "Growing Village", "Reach a population of 100.",
		func(s State) bool { return s.Current.Population >= 100 }},
	{"thriving_city", "Thriving City", "Reach a population of 250.",
		func(s State) bool { return s.Current.Population >= 250 }},
	{"baby_boom", "Baby Boom", "Twenty births in a single year.",
		func(s State) bool { return len(s.History) > 0 && s.History[len(s.History)-1].Births >= 20 }},
	{"scholars", "Scholars", "Average education of 5.",
		func(s State) bool { return s.Current.Population > 0 && s.Current.Education >= 5 }},
	{"healthy_society", "Healthy Society", "Average health of 80.",
		func(s State) bool { return s.Current.Population > 0 && s.Current.Health >= 80 }},
	{"treasury", "Full Treasury", "Hold 5,000 money.",
		func(s State) bool { return s.Resources.Money >= 5000 }},
	{"granary", "Overflowing Granary", "Store 5,000 food.",
		func(s State) bool { return s.Resources.Food >= 5000 }},
	{"long_lived", "Long Lived", "Average age of 40.",
		func(s State) bool { return s.Current.Population > 0 && s.Current.Age >= 40 }},
	{"steady_growth", "Steady Growth", "Population rose five years in a row.",
		func(s State) bool { return risingYears(s.History) >= 5 }},
	{"half_century", "Half Century", "Fifty years recorded.",
		func(s State) bool { return len(s.History) >= 50 }},
}

// risingYears counts consecutive year-over-year population increases at the end
// of the series.
func risingYears(h []YearRecord) int {
	n := 0
	for i := len(h) - 1; i > 0; i-- {
		if h[i].Population <= h[i-1].Population {
			break
		}
		n++
	}
	return n
}

// Achievements tracks which milestones have unlocked. Unlocks are permanent.
type Achievements struct {
	unlocked []Achievement
	has      map[string]bool
}

// NewAchievements returns a tracker with nothing unlocked.
func NewAchievements() *Achievements {
	return &Achievements{has: make(map[string]bool)}
}

// Evaluate tests every locked milestone against s and returns those that unlock
// now, in catalog order.
func (a *Achievements) Evaluate(s State) []Achievement {
	var fresh []Achievement
	for _, r := range catalog {
		if a.has[r.id] || !r.met(s) {
			continue
		}
		ach := Achievement{ID: r.id, Name: r.name, Description: r.desc, UnlockedTick: s.Tick}
		a.has[r.id] = true
		a.unlocked = append(a.unlocked, ach)
		fresh = append(fresh, ach)
	}
	return fresh
}

// Has reports whether id is unlocked.
func (a *Achievements) Has(id string) bool { return a.has[id] }

// Unlocked returns every unlocked milestone in unlock order.
func (a *Achievements) Unlocked() []Achievement {
	out := make([]Achievement, len(a.unlocked))
	copy(out, a.unlocked)
	return out
}

// Catalog returns the ids of every known milestone.
func Catalog() []string {
	ids := make([]string, len(catalog))
	for i, r := range catalog {
		ids[i] = r.id
	}
	return ids
}
