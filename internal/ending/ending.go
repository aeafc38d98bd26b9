// Package ending decides when a run is over. It tracks failure streaks each tick,
// scores the population and produces the terminal (or provisional) outcome.
package ending

import (
	"fmt"
	"math"

	"github.com/talgya/populace/internal/agents"
	"github.com/talgya/populace/internal/economy"
)

// Kind identifies how a run ended.
type Kind string

const (
	None              Kind = ""
	Extinction        Kind = "extinction"
	EconomicCollapse  Kind = "economic_collapse"
	SocialCollapse    Kind = "social_collapse"
	AgingCrisis       Kind = "aging_crisis"
	ResourceDepletion Kind = "resource_depletion"
	Victory           Kind = "victory"
)

// Tier grades a victory.
type Tier string

const (
	TierPerfect    Tier = "perfect"
	TierExcellent  Tier = "excellent"
	TierGood       Tier = "good"
	TierAcceptable Tier = "acceptable"
)

// Grade returns the letter for a tier.
func (t Tier) Grade() string {
	switch t {
	case TierPerfect:
		return "S"
	case TierExcellent:
		return "A"
	case TierGood:
		return "B"
	case TierAcceptable:
		return "C"
	}
	return ""
}

// Thresholds.
const (
	GraceTicks         = 12
	StreakLimit        = 6
	ExtinctionBelow    = 5
	DebtLimit          = -500.0
	AgingMinPopulation = 20
	AgingElderlyShare  = 0.8
	ProvisionalYears   = 50
	VictoryYears       = 100
)

// Inputs is the per-tick view the evaluator needs.
type Inputs struct {
	Tick            int64
	Population      int
	ElderlyFraction float64
	AvgHealth       float64
	AvgEducation    float64
	Resources       economy.Stocks
}

// Years returns completed years at the input tick.
func (in Inputs) Years() int { return int(in.Tick / agents.TicksPerYear) }

// Outcome describes an ending.
type Outcome struct {
	Kind      Kind   `json:"kind"`
	Victory   bool   `json:"victory"`
	Terminal  bool   `json:"terminal"`
	Tier      Tier   `json:"tier,omitempty"`
	Grade     string `json:"grade,omitempty"`
	Title     string `json:"title"`
	Narrative string `json:"narrative"`
	Score     Score  `json:"score"`
	Tick      int64  `json:"tick"`
	Year      int    `json:"year"`
}

// Evaluator holds failure streaks and the latched result.
type Evaluator struct {
	debtStreak     int // money < DebtLimit
	scarcityStreak int // any of food<=0, money<0, medicine<=0
	famineStreak   int // food <= 0

	result      *Outcome
	provisional *Outcome
}

// New returns an evaluator with no history.
func New() *Evaluator { return &Evaluator{} }

// Evaluate updates streaks from in and checks end conditions. Once a terminal
// outcome is produced it is returned unchanged on every later call.
func (e *Evaluator) Evaluate(in Inputs) (Outcome, bool) {
	if e.result != nil {
		return *e.result, true
	}
	e.updateStreaks(in.Resources)

	if in.Tick <= GraceTicks {
		return Outcome{}, false
	}

	if kind := e.failure(in); kind != None {
		out := failureOutcome(kind, in)
		e.result = &out
		return out, true
	}

	years := in.Years()
	switch {
	case years >= VictoryYears:
		out := victoryOutcome(in, true)
		e.result = &out
		return out, true
	case years >= ProvisionalYears:
		out := victoryOutcome(in, false)
		e.provisional = &out
	}
	return Outcome{}, false
}

func (e *Evaluator) updateStreaks(r economy.Stocks) {
	e.debtStreak = bump(e.debtStreak, r.Money < DebtLimit)
	e.scarcityStreak = bump(e.scarcityStreak, r.Food <= 0 || r.Money < 0 || r.Medicine <= 0)
	e.famineStreak = bump(e.famineStreak, r.Food <= 0)
}

func bump(n int, cond bool) int {
	if cond {
		return n + 1
	}
	return 0
}

// failure checks failure conditions in priority order.
func (e *Evaluator) failure(in Inputs) Kind {
	switch {
	case in.Population < ExtinctionBelow:
		return Extinction
	case e.debtStreak >= StreakLimit:
		return EconomicCollapse
	case e.scarcityStreak >= StreakLimit:
		return SocialCollapse
	case in.Population > AgingMinPopulation && in.ElderlyFraction > AgingElderlyShare:
		return AgingCrisis
	case e.famineStreak >= StreakLimit:
		return ResourceDepletion
	}
	return None
}

// Ended reports whether a terminal outcome has been reached.
func (e *Evaluator) Ended() bool { return e.result != nil }

// Result returns the terminal outcome, if any.
func (e *Evaluator) Result() (Outcome, bool) {
	if e.result == nil {
		return Outcome{}, false
	}
	return *e.result, true
}

// Provisional returns the latest non-terminal victory assessment, if any.
func (e *Evaluator) Provisional() (Outcome, bool) {
	if e.provisional == nil {
		return Outcome{}, false
	}
	return *e.provisional, true
}

// Streaks returns the current debt, scarcity and famine streak lengths.
func (e *Evaluator) Streaks() (debt, scarcity, famine int) {
	return e.debtStreak, e.scarcityStreak, e.famineStreak
}

func failureOutcome(kind Kind, in Inputs) Outcome {
	title, text := failureText(kind, in)
	return Outcome{
		Kind:      kind,
		Terminal:  true,
		Title:     title,
		Narrative: text,
		Score:     ComputeScore(in),
		Tick:      in.Tick,
		Year:      in.Years(),
	}
}

func victoryOutcome(in Inputs, terminal bool) Outcome {
	score := ComputeScore(in)
	tier := TierAcceptable
	if terminal {
		tier = TierFor(score.Total)
	}
	title, text := victoryText(tier, in)
	return Outcome{
		Kind:      Victory,
		Victory:   true,
		Terminal:  terminal,
		Tier:      tier,
		Grade:     tier.Grade(),
		Title:     title,
		Narrative: text,
		Score:     score,
		Tick:      in.Tick,
		Year:      in.Years(),
	}
}

// TierFor maps a total score to a tier.
func TierFor(total float64) Tier {
	switch {
	case total >= 90:
		return TierPerfect
	case total >= 75:
		return TierExcellent
	case total >= 60:
		return TierGood
	default:
		return TierAcceptable
	}
}

func failureText(kind Kind, in Inputs) (string, string) {
	y := in.Years()
	switch kind {
	case Extinction:
		return "Extinction", fmt.Sprintf("After %d years the last households fell silent. Only %d people remained.", y, in.Population)
	case EconomicCollapse:
		return "Economic Collapse", fmt.Sprintf("Debts of %.0f went unpaid for half a year and the treasury was dissolved in year %d.", -in.Resources.Money, y)
	case SocialCollapse:
		return "Social Collapse", fmt.Sprintf("Months of empty stores and unpaid wages broke the community apart in year %d.", y)
	case AgingCrisis:
		return "Aging Crisis", fmt.Sprintf("With %.0f%% of the people past sixty there was no one left to work the fields.", in.ElderlyFraction*100)
	case ResourceDepletion:
		return "Resource Depletion", fmt.Sprintf("The granaries stood empty for six months. The survivors scattered in year %d.", y)
	}
	return "Ended", ""
}

func victoryText(tier Tier, in Inputs) (string, string) {
	switch tier {
	case TierPerfect:
		return "Golden Age", fmt.Sprintf("A century on, %d healthy and learned people remember you as the founder of a golden age.", in.Population)
	case TierExcellent:
		return "Prosperous Century", fmt.Sprintf("%d people live in comfort after %d years of careful stewardship.", in.Population, in.Years())
	case TierGood:
		return "Enduring Community", fmt.Sprintf("The community endured %d years and %d people carry it forward.", in.Years(), in.Population)
	}
	return "Survival", fmt.Sprintf("The people have survived %d years. It has not always been easy.", in.Years())
}

// Score is the five-part breakdown, each part capped at 20.
type Score struct {
	Population float64 `json:"population"`
	Economy    float64 `json:"economy"`
	Happiness  float64 `json:"happiness"`
	Health     float64 `json:"health"`
	Education  float64 `json:"education"`
	Total      float64 `json:"total"`
}

// ComputeScore scores in. Happiness is derived from average health.
func ComputeScore(in Inputs) Score {
	s := Score{
		Population: math.Min(20, float64(in.Population)/200*20),
		Economy:    math.Min(20, math.Max(0, in.Resources.Money/10000*20)),
		Happiness:  math.Min(20, in.AvgHealth/100*20),
		Health:     math.Min(20, in.AvgHealth/100*20),
		Education:  math.Min(20, in.AvgEducation/10*20),
	}
	s.Total = s.Population + s.Economy + s.Happiness + s.Health + s.Education
	return s
}
