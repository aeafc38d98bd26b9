package economy

// seasonalFood scales total food production by calendar month.
// Lean late winter, peak at harvest.
var seasonalFood = [12]float64{
	0.6, // January
	0.7, // February
	0.9, // March
	1.1, // April
	1.2, // May
	1.3, // June
	1.4, // July
	1.5, // August
	1.3, // September
	1.0, // October
	0.8, // November
	0.6, // December
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Season constants.
const (
	SeasonWinter = 0
	SeasonSpring = 1
	SeasonSummer = 2
	SeasonAutumn = 3
)

// SeasonalMultiplier returns the food production factor for a month index 0–11.
func SeasonalMultiplier(month int) float64 {
	return seasonalFood[normMonth(month)]
}

// MonthName returns a human-readable month name.
func MonthName(month int) string {
	return monthNames[normMonth(month)]
}

// SeasonOf maps a month index to its season.
func SeasonOf(month int) int {
	switch m := normMonth(month); {
	case m == 11 || m < 2:
		return SeasonWinter
	case m < 5:
		return SeasonSpring
	case m < 8:
		return SeasonSummer
	default:
		return SeasonAutumn
	}
}

// SeasonName returns a human-readable season name.
func SeasonName(season int) string {
	switch season {
	case SeasonWinter:
		return "Winter"
	case SeasonSpring:
		return "Spring"
	case SeasonSummer:
		return "Summer"
	case SeasonAutumn:
		return "Autumn"
	default:
		return "Unknown"
	}
}

func normMonth(m int) int {
	m %= 12
	if m < 0 {
		m += 12
	}
	return m
}
