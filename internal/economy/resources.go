// Package economy provides the shared resource pool and the per-person production
// and consumption formulas that feed it.
package economy

import "fmt"

// Resource names one of the five shared stocks.
type Resource uint8

const (
	Food Resource = iota
	Housing
	Medicine
	Education
	Money
)

// Resources lists every stock in display order.
var Resources = []Resource{Food, Housing, Medicine, Education, Money}

func (r Resource) String() string {
	switch r {
	case Food:
		return "food"
	case Housing:
		return "housing"
	case Medicine:
		return "medicine"
	case Education:
		return "education"
	case Money:
		return "money"
	default:
		return fmt.Sprintf("resource(%d)", uint8(r))
	}
}

// Stocks holds one value per resource.
type Stocks struct {
	Food      float64 `json:"food" yaml:"food" db:"food"`
	Housing   float64 `json:"housing" yaml:"housing" db:"housing"`
	Medicine  float64 `json:"medicine" yaml:"medicine" db:"medicine"`
	Education float64 `json:"education" yaml:"education" db:"education"`
	Money     float64 `json:"money" yaml:"money" db:"money"`
}

// Get returns the value for r.
func (s Stocks) Get(r Resource) float64 {
	switch r {
	case Food:
		return s.Food
	case Housing:
		return s.Housing
	case Medicine:
		return s.Medicine
	case Education:
		return s.Education
	case Money:
		return s.Money
	}
	return 0
}

// Plus returns s + o.
func (s Stocks) Plus(o Stocks) Stocks {
	return Stocks{
		Food:      s.Food + o.Food,
		Housing:   s.Housing + o.Housing,
		Medicine:  s.Medicine + o.Medicine,
		Education: s.Education + o.Education,
		Money:     s.Money + o.Money,
	}
}

// Minus returns s - o.
func (s Stocks) Minus(o Stocks) Stocks {
	return Stocks{
		Food:      s.Food - o.Food,
		Housing:   s.Housing - o.Housing,
		Medicine:  s.Medicine - o.Medicine,
		Education: s.Education - o.Education,
		Money:     s.Money - o.Money,
	}
}

// Pool is the singleton resource state. It is owned by the economic system and
// only mutated during its tick phase (and by policy costs on activation).
type Pool struct {
	Stock       Stocks `json:"stock"`
	Production  Stocks `json:"production"`  // last tick
	Consumption Stocks `json:"consumption"` // last tick
	Net         Stocks `json:"net"`         // last tick, production - consumption
}

// NewPool creates a pool with the given opening stocks.
func NewPool(initial Stocks) *Pool {
	return &Pool{Stock: initial}
}

// Apply adds production and subtracts consumption from every stock, retaining the
// rates for display. Housing is capacity: demand is checked against it but never
// drained, so its consumption is recorded as zero.
func (p *Pool) Apply(production, consumption Stocks) {
	consumption.Housing = 0
	p.Production = production
	p.Consumption = consumption
	p.Net = production.Minus(consumption)
	p.Stock = p.Stock.Plus(p.Net)
}

// Spend deducts amount from money if the balance covers it.
func (p *Pool) Spend(amount float64) bool {
	if amount < 0 || p.Stock.Money < amount {
		return false
	}
	p.Stock.Money -= amount
	return true
}

// Adjust adds delta to one stock outside the regular tick (world events).
func (p *Pool) Adjust(r Resource, delta float64) {
	switch r {
	case Food:
		p.Stock.Food += delta
	case Housing:
		p.Stock.Housing += delta
	case Medicine:
		p.Stock.Medicine += delta
	case Education:
		p.Stock.Education += delta
	case Money:
		p.Stock.Money += delta
	}
}
