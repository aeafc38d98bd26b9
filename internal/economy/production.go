package economy

import "github.com/talgya/populace/internal/agents"

// Production and upkeep constants.
const (
	FarmerFood     = 8.0
	FarmerMoney    = 2.0
	WorkerFood     = 1.0
	WorkerMoney    = 10.0
	WorkerHousing  = 0.1
	ScientistMoney = 5.0
	ScientistEdu   = 2.0
	ScientistMed   = 1.5

	FoodCapPerHead = 15.0

	StudentEducationNeed = 0.5
	MedicineNeed         = 0.3

	InfrastructureCost = 50.0
	UnemployedCost     = 2.0
	ElderCost          = 3.0
	StudentCost        = 1.0

	ElderAge        = 60.0
	UnhealthyBelow  = 40.0
	StudentMinAge   = 6.0
	StudentMaxAge   = 18.0
	WorkingAgeMin   = 18.0
	WorkingAgeLimit = 60.0 // exclusive
)

// Modifiers is the slice of the policy aggregate the economy reads.
type Modifiers struct {
	FoodProduction      float64
	Economy             float64
	MedicineConsumption float64
}

// Citizen is the economic view of one living person.
type Citizen struct {
	Age    float64
	Health float64
	Job    agents.Job
}

// IsStudent reports whether c attends school.
func (c Citizen) IsStudent() bool { return c.Age >= StudentMinAge && c.Age <= StudentMaxAge }

// IsElder reports whether c is 60 or older.
func (c Citizen) IsElder() bool { return c.Age >= ElderAge }

// IsUnhealthy reports whether c needs medicine regardless of age.
func (c Citizen) IsUnhealthy() bool { return c.Health < UnhealthyBelow }

// NeedsCare reports whether c draws on the medicine stock.
func (c Citizen) NeedsCare() bool { return c.IsElder() || c.IsUnhealthy() }

// IsIdleAdult reports whether c is a working-age adult without a job.
func (c Citizen) IsIdleAdult() bool {
	return c.Job == agents.JobUnemployed && c.Age >= WorkingAgeMin && c.Age < WorkingAgeLimit
}

// AgeEfficiency scales farm output by age. Only the young-adult and late-career
// brackets are distinguished; every other age works at half rate.
func AgeEfficiency(age float64) float64 {
	switch {
	case age >= 18 && age <= 30:
		return 1.2
	case age >= 51 && age <= 60:
		return 0.8
	default:
		return 0.5
	}
}

// HealthEfficiency scales farm output by health.
func HealthEfficiency(health float64) float64 {
	switch {
	case health > 80:
		return 1.2
	case health >= 60:
		return 1.0
	case health >= 30:
		return 0.7
	default:
		return 0.4
	}
}

// Output returns what one citizen produces in a tick, before global modifiers.
func Output(c Citizen) Stocks {
	switch c.Job {
	case agents.JobFarmer:
		return Stocks{
			Food:  FarmerFood * AgeEfficiency(c.Age) * HealthEfficiency(c.Health),
			Money: FarmerMoney,
		}
	case agents.JobWorker:
		return Stocks{Food: WorkerFood, Money: WorkerMoney, Housing: WorkerHousing}
	case agents.JobScientist:
		return Stocks{Money: ScientistMoney, Education: ScientistEdu, Medicine: ScientistMed}
	}
	return Stocks{}
}

// FoodNeed returns how much food one citizen eats in a tick.
func FoodNeed(c Citizen) float64 {
	var need float64
	switch {
	case c.Age < 7:
		need = 0.5
	case c.Age < 13:
		need = 0.7
	case c.Age < 19:
		need = 0.9
	case c.Age >= 60:
		need = 0.8
	default:
		need = 1.0
	}
	if c.Health < 30 {
		need += 0.2
	}
	return need
}

// Ledger is one tick's economic accounting.
type Ledger struct {
	Production  Stocks
	Consumption Stocks

	Population    int
	Students      int
	Elders        int
	NeedCare      int
	IdleAdults    int
	Scientists    int
	HousingDemand float64
}

// Tally computes production and consumption for the living population in the
// given month. An empty population produces nothing and still pays infrastructure.
func Tally(citizens []Citizen, month int, mods Modifiers) Ledger {
	var l Ledger
	l.Population = len(citizens)

	for _, c := range citizens {
		l.Production = l.Production.Plus(Output(c))

		l.Consumption.Food += FoodNeed(c)
		if c.IsStudent() {
			l.Students++
			l.Consumption.Education += StudentEducationNeed
		}
		if c.IsElder() {
			l.Elders++
		}
		if c.NeedsCare() {
			l.NeedCare++
			l.Consumption.Medicine += MedicineNeed
		}
		if c.IsIdleAdult() {
			l.IdleAdults++
		}
		if c.Job == agents.JobScientist {
			l.Scientists++
		}
	}

	l.Production.Food *= SeasonalMultiplier(month) * (1 + mods.FoodProduction)
	if limit := float64(l.Population) * FoodCapPerHead; l.Production.Food > limit {
		l.Production.Food = limit
	}
	l.Production.Money *= 1 + mods.Economy

	l.Consumption.Medicine *= 1 + mods.MedicineConsumption
	l.HousingDemand = float64(l.Population)
	l.Consumption.Housing = l.HousingDemand
	l.Consumption.Money = Expense(l.IdleAdults, l.Elders, l.Students)
	return l
}

// Expense is the monthly money upkeep.
func Expense(idleAdults, elders, students int) float64 {
	return InfrastructureCost +
		UnemployedCost*float64(idleAdults) +
		ElderCost*float64(elders) +
		StudentCost*float64(students)
}

// Feedback health deltas.
const (
	StarvationPenalty = -2.0
	AbundanceBonus    = 0.3
	AbundanceSurplus  = 10.0
	UntreatedPenalty  = -1.0
	MedicineReserve   = 20.0
	CrowdingPenalty   = -0.5
	SchoolingGain     = 0.1
)

// FoodEffect returns the health change applied to everyone for a net food rate.
func FoodEffect(netFood float64) float64 {
	switch {
	case netFood < 0:
		return StarvationPenalty
	case netFood > AbundanceSurplus:
		return AbundanceBonus
	}
	return 0
}

// CareRecovery returns the health recovered by someone in care when medicine is
// plentiful.
func CareRecovery(age float64) float64 {
	switch {
	case age < 60:
		return 0.5
	case age < 75:
		return 0.3
	default:
		return 0.2
	}
}
