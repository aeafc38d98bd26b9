// Marriage: pairing unpartnered adults.
package engine

import (
	"fmt"

	"github.com/talgya/populace/internal/agents"
)

// processMarriages pairs the i-th eligible man with the i-th eligible woman, in
// creation order, and rolls once per pair.
func (s *Simulation) processMarriages(tick int64) {
	var men, women []agents.Person
	for _, p := range agents.Living(s.World) {
		if p.Rel.HasPartner() {
			continue
		}
		age := p.Idn.Age(tick)
		if age < MinMarriageAge || age > MaxMarriageAge {
			continue
		}
		if p.Idn.Gender == agents.GenderFemale {
			women = append(women, p)
		} else {
			men = append(men, p)
		}
	}

	n := min(len(men), len(women))
	for i := 0; i < n; i++ {
		m, f := men[i], women[i]
		if closeKin(m, f) {
			continue
		}
		if s.rng.Float64() >= MarriageChance {
			continue
		}
		if !agents.Marry(s.World, m.ID, f.ID) {
			continue
		}
		s.touch(m.ID, m.Rel)
		s.touch(f.ID, f.Rel)
		s.emit(Event{
			Kind:        EventMarried,
			Description: fmt.Sprintf("%s and %s have married", m.Idn.Name, f.Idn.Name),
			Entity:      m.ID,
			Other:       f.ID,
		})
	}
}

// closeKin reports parent/child or sibling relations.
func closeKin(a, b agents.Person) bool {
	return a.Rel.IsParentOf(b.ID) || b.Rel.IsParentOf(a.ID) || a.Rel.SharesParentWith(b.Rel)
}
