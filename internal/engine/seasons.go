package engine

import (
	"fmt"

	"github.com/talgya/populace/internal/agents"
	"github.com/talgya/populace/internal/economy"
)

// MonthOf returns the calendar month index (0 = January) a tick falls in.
// Tick 1 is the first January.
func MonthOf(tick int64) int {
	if tick <= 0 {
		return 0
	}
	return int((tick - 1) % agents.TicksPerYear)
}

// YearOf returns the 1-based calendar year a tick falls in.
func YearOf(tick int64) int {
	if tick <= 0 {
		return 1
	}
	return int((tick-1)/agents.TicksPerYear) + 1
}

// IsYearEnd reports whether tick closes a year.
func IsYearEnd(tick int64) bool {
	return tick > 0 && tick%agents.TicksPerYear == 0
}

// SimTime returns a human-readable simulation date for a tick.
func SimTime(tick int64) string {
	m := MonthOf(tick)
	return fmt.Sprintf("%s (%s) Year %d",
		economy.MonthName(m), economy.SeasonName(economy.SeasonOf(m)), YearOf(tick))
}
