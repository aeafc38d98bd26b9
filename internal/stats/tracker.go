// Package stats aggregates population statistics each tick, keeps the per-year
// history series and evaluates achievements.
package stats

import (
	"github.com/talgya/populace/internal/agents"
	"github.com/talgya/populace/internal/economy"
)

// Sample is one living person as the tracker sees them.
type Sample struct {
	Age       float64
	Health    float64
	Education float64
}

// Averages are rolling means over the living population.
type Averages struct {
	Population int     `json:"population"`
	Age        float64 `json:"avg_age"`
	Health     float64 `json:"avg_health"`
	Education  float64 `json:"avg_education"`
	Elderly    float64 `json:"elderly_fraction"` // share aged 60+
}

// Happiness mirrors average health. There is no separate mood model.
func (a Averages) Happiness() float64 { return a.Health }

// YearRecord is one entry of the history series, appended at each year boundary.
type YearRecord struct {
	Year         int            `json:"year" db:"year"`
	Population   int            `json:"population" db:"population"`
	Births       int            `json:"births" db:"births"`
	Deaths       int            `json:"deaths" db:"deaths"`
	Resources    economy.Stocks `json:"resources" db:"resources"`
	AvgAge       float64        `json:"avg_age" db:"avg_age"`
	AvgHealth    float64        `json:"avg_health" db:"avg_health"`
	AvgEducation float64        `json:"avg_education" db:"avg_education"`
}

// Tracker is the statistics singleton.
type Tracker struct {
	TotalBirths int
	TotalDeaths int
	Current     Averages
	History     []YearRecord

	yearBirths int
	yearDeaths int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker { return &Tracker{} }

// RecordBirth counts one birth.
func (t *Tracker) RecordBirth() {
	t.TotalBirths++
	t.yearBirths++
}

// RecordDeath counts one death.
func (t *Tracker) RecordDeath() {
	t.TotalDeaths++
	t.yearDeaths++
}

// YearBirths returns births so far in the current year.
func (t *Tracker) YearBirths() int { return t.yearBirths }

// YearDeaths returns deaths so far in the current year.
func (t *Tracker) YearDeaths() int { return t.yearDeaths }

// Observe recomputes averages from the living population. On a year boundary it
// appends a YearRecord, resets the per-year counters and returns the record.
func (t *Tracker) Observe(tick int64, living []Sample, res economy.Stocks) (YearRecord, bool) {
	t.Current = Average(living)

	if tick <= 0 || tick%agents.TicksPerYear != 0 {
		return YearRecord{}, false
	}
	rec := YearRecord{
		Year:         int(tick / agents.TicksPerYear),
		Population:   t.Current.Population,
		Births:       t.yearBirths,
		Deaths:       t.yearDeaths,
		Resources:    res,
		AvgAge:       t.Current.Age,
		AvgHealth:    t.Current.Health,
		AvgEducation: t.Current.Education,
	}
	t.History = append(t.History, rec)
	t.yearBirths = 0
	t.yearDeaths = 0
	return rec, true
}

// Years returns the number of completed years recorded.
func (t *Tracker) Years() int { return len(t.History) }

// Average computes means over samples. An empty slice yields zeros.
func Average(samples []Sample) Averages {
	a := Averages{Population: len(samples)}
	if len(samples) == 0 {
		return a
	}
	var elderly int
	for _, s := range samples {
		a.Age += s.Age
		a.Health += s.Health
		a.Education += s.Education
		if s.Age >= economy.ElderAge {
			elderly++
		}
	}
	n := float64(len(samples))
	a.Age /= n
	a.Health /= n
	a.Education /= n
	a.Elderly = float64(elderly) / n
	return a
}
