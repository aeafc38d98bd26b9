package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/populace/internal/ecs"
)

// Game is the command surface. It serializes commands and ticks so a tick never
// overlaps another tick or a command.
type Game struct {
	mu       sync.Mutex
	opts     Options
	sim      *Simulation
	clock    *Clock
	sink     Sink
	runID    uuid.UUID
	selected ecs.EntityID
}

// NewGame creates a paused game. sink may be nil.
func NewGame(opts Options, interval time.Duration, sink Sink) *Game {
	g := &Game{
		opts:  opts,
		clock: NewClock(interval),
		sink:  sink,
	}
	g.sim = NewSimulation(opts)
	g.runID = uuid.New()
	return g
}

// RunID identifies the current run. It changes on Reset.
func (g *Game) RunID() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.runID
}

// Options returns the options the game was created with.
func (g *Game) Options() Options { return g.opts }

// Start resumes wall-clock ticking.
func (g *Game) Start() {
	g.clock.Start()
	slog.Info("game started", "speed", g.clock.Speed())
}

// Pause stops wall-clock ticking.
func (g *Game) Pause() {
	g.clock.Pause()
	slog.Info("game paused")
}

// SetSpeed changes the tick multiplier.
func (g *Game) SetSpeed(s Speed) error {
	return g.clock.SetSpeed(s)
}

// Reset discards the run and seeds a new one from the same options.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clock.Reset()
	g.sim = NewSimulation(g.opts)
	g.runID = uuid.New()
	g.selected = ecs.NilEntity
	slog.Info("game reset", "run", g.runID)
}

// ActivatePolicy turns on a policy, paying its cost from the treasury.
func (g *Game) ActivatePolicy(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	ev, err := g.sim.ActivatePolicy(id)
	if err != nil {
		return err
	}
	g.publish(ev)
	return nil
}

// DeactivatePolicy turns off a policy. It reports whether anything changed.
func (g *Game) DeactivatePolicy(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	ev, ok := g.sim.DeactivatePolicy(id)
	if ok {
		g.publish(ev)
	}
	return ok
}

// SelectEntity marks an entity for detailed display. NilEntity clears the
// selection.
func (g *Game) SelectEntity(id ecs.EntityID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id != ecs.NilEntity && !g.sim.World.Exists(id) {
		return fmt.Errorf("select %d: %w", id, ecs.ErrNoEntity)
	}
	g.selected = id
	return nil
}

// Step runs one tick immediately, regardless of the clock. It returns false
// once the run has ended.
func (g *Game) Step() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sim.Ended() {
		return false
	}
	for _, ev := range g.sim.Tick() {
		g.publish(ev)
	}
	return !g.sim.Ended()
}

// Run drives the game from wall time until ctx is done.
func (g *Game) Run(ctx context.Context) {
	g.clock.Run(ctx, 0, g.Step)
}

// Snapshot returns a copy of the observable state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	snap := g.sim.Snapshot()
	snap.Speed = g.clock.Speed()
	snap.Running = g.clock.Running()
	if g.selected != ecs.NilEntity {
		if v, ok := g.sim.View(g.selected); ok {
			snap.Selected = &v
		}
	}
	return snap
}

// Digest returns the state hash of the current run.
func (g *Game) Digest() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sim.Digest()
}

func (g *Game) publish(ev Event) {
	if g.sink != nil {
		g.sink.Publish(ev)
	}
}

// CurrentTick returns the last processed tick.
func (g *Game) CurrentTick() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sim.CurrentTick()
}

// View projects one person, living or dead.
func (g *Game) View(id ecs.EntityID) (PersonView, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sim.View(id)
}
