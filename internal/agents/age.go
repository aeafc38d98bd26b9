package agents

// AgeAt derives fractional years from a birth tick. Age is never stored.
func AgeAt(birthTick, tick int64) float64 {
	return float64(tick-birthTick) / TicksPerYear
}

// Recovery is the monthly natural health regain at a given age.
func Recovery(age float64) float64 {
	switch {
	case age < 30:
		return 0.5
	case age < 50:
		return 0.3
	case age < 70:
		return 0.1
	default:
		return 0
	}
}

// Decay is the monthly health loss from old age.
func Decay(age float64) float64 {
	switch {
	case age >= 80:
		return 0.3
	case age >= 60:
		return 0.1
	default:
		return 0
	}
}

// Fertility is the stored fertility value: rising linearly from 18 to 28 for women,
// zero outside [18,45] and for men.
func Fertility(g Gender, age float64) float64 {
	if g != GenderFemale || age < 18 || age > 45 {
		return 0
	}
	return Clamp((age-18)/10, 0, 1)
}

// FertilityCurve weights the monthly birth chance by the mother's age.
func FertilityCurve(g Gender, age float64) float64 {
	if g != GenderFemale {
		return 0
	}
	switch {
	case age < 18:
		return 0
	case age < 20:
		return 0.5
	case age < 25:
		return 0.8
	case age <= 30:
		return 1.0
	case age <= 35:
		return 0.7
	case age <= 40:
		return 0.4
	case age <= 45:
		return 0.1
	default:
		return 0
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampHealth bounds v to [0, MaxHealth].
func ClampHealth(v float64) float64 {
	return Clamp(v, 0, MaxHealth)
}

// ClampProbability bounds v to [0, 1].
func ClampProbability(v float64) float64 {
	return Clamp(v, 0, 1)
}
