// World events: droughts, epidemics and windfalls driven by coherent noise over
// time, so good and bad years cluster instead of arriving independently.
package engine

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/populace/internal/agents"
	"github.com/talgya/populace/internal/economy"
)

// WorldEventCooldown is the minimum gap between two events of the same kind.
const WorldEventCooldown = 24

const (
	hazardFrequency   = 0.09
	hazardOctaves     = 2
	hazardPersistence = 0.5
)

type hazard struct {
	name      string
	threshold float64 // normalized noise level that triggers the event
	apply     func(s *Simulation, tick int64, intensity float64) string
}

func defaultHazards() []hazard {
	return []hazard{
		{name: "drought", threshold: 0.78, apply: applyDrought},
		{name: "blight", threshold: 0.80, apply: applyBlight},
		{name: "epidemic", threshold: 0.80, apply: applyEpidemic},
		{name: "bumper_harvest", threshold: 0.77, apply: applyBumperHarvest},
		{name: "trade_boom", threshold: 0.79, apply: applyTradeBoom},
	}
}

// WorldEvents samples one noise lane per hazard along the time axis.
type WorldEvents struct {
	noise     opensimplex.Noise
	hazards   []hazard
	lastFired []int64
}

// NewWorldEvents creates a generator for the given noise seed.
func NewWorldEvents(seed int64) *WorldEvents {
	hz := defaultHazards()
	last := make([]int64, len(hz))
	for i := range last {
		last[i] = -WorldEventCooldown
	}
	return &WorldEvents{
		noise:     opensimplex.NewNormalized(seed),
		hazards:   hz,
		lastFired: last,
	}
}

// Intensity returns the normalized noise level [0,1] of hazard i at tick.
func (w *WorldEvents) Intensity(i int, tick int64) float64 {
	return octaveNoise(w.noise, float64(tick), float64(i)*37.1, hazardOctaves, hazardFrequency, hazardPersistence)
}

// due returns the indexes of hazards that fire at tick and marks them fired.
func (w *WorldEvents) due(tick int64) []int {
	var out []int
	for i, h := range w.hazards {
		if tick-w.lastFired[i] < WorldEventCooldown {
			continue
		}
		if w.Intensity(i, tick) < h.threshold {
			continue
		}
		w.lastFired[i] = tick
		out = append(out, i)
	}
	return out
}

// processWorldEvents fires every due hazard against the simulation.
func (s *Simulation) processWorldEvents(tick int64) {
	if s.Hazards == nil {
		return
	}
	for _, i := range s.Hazards.due(tick) {
		h := s.Hazards.hazards[i]
		intensity := s.Hazards.Intensity(i, tick)
		desc := h.apply(s, tick, intensity)
		s.emit(Event{
			Kind:        EventWorldEvent,
			Description: desc,
			Meta:        map[string]any{"event": h.name, "intensity": intensity},
		})
	}
}

func applyDrought(s *Simulation, _ int64, intensity float64) string {
	loss := lossOf(s.Pool.Stock.Food, 0.1+0.2*intensity)
	s.Pool.Adjust(economy.Food, -loss)
	return fmt.Sprintf("A drought withered the fields, spoiling %.0f food", loss)
}

func applyBlight(s *Simulation, _ int64, intensity float64) string {
	loss := lossOf(s.Pool.Stock.Food, 0.05+0.15*intensity)
	s.Pool.Adjust(economy.Food, -loss)
	s.Pool.Adjust(economy.Medicine, -lossOf(s.Pool.Stock.Medicine, 0.1))
	return fmt.Sprintf("Blight struck the granaries, rotting %.0f food", loss)
}

func applyEpidemic(s *Simulation, _ int64, intensity float64) string {
	hit := -(4 + 6*intensity)
	n := 0
	for _, p := range agents.Living(s.World) {
		p.Bio.AdjustHealth(hit)
		s.touch(p.ID, p.Bio)
		n++
	}
	s.Pool.Adjust(economy.Medicine, -lossOf(s.Pool.Stock.Medicine, 0.25))
	return fmt.Sprintf("An epidemic swept through %d people", n)
}

func applyBumperHarvest(s *Simulation, _ int64, intensity float64) string {
	gain := float64(len(agents.Living(s.World))) * (5 + 10*intensity)
	s.Pool.Adjust(economy.Food, gain)
	return fmt.Sprintf("A bumper harvest brought in %.0f extra food", gain)
}

func applyTradeBoom(s *Simulation, _ int64, intensity float64) string {
	gain := float64(len(agents.Living(s.World))) * (10 + 20*intensity)
	s.Pool.Adjust(economy.Money, gain)
	return fmt.Sprintf("Passing traders paid %.0f for local goods", gain)
}

// lossOf returns frac of a positive stock, or zero.
func lossOf(stock, frac float64) float64 {
	if stock <= 0 {
		return 0
	}
	return stock * frac
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
