// Package engine runs the population simulation: the fixed-order monthly tick,
// the wall-clock driver, the command surface and the read-only snapshot.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Speed is a wall-clock multiplier. Paused stops ticks without stopping the loop.
type Speed float64

const (
	SpeedPaused Speed = 0
	Speed1x     Speed = 1
	Speed2x     Speed = 2
	Speed5x     Speed = 5
	Speed10x    Speed = 10
)

// ErrInvalidSpeed is returned for multipliers outside the supported set.
var ErrInvalidSpeed = errors.New("invalid speed")

// Valid reports whether s is one of the supported multipliers.
func (s Speed) Valid() bool {
	switch s {
	case SpeedPaused, Speed1x, Speed2x, Speed5x, Speed10x:
		return true
	}
	return false
}

func (s Speed) String() string {
	if s == SpeedPaused {
		return "paused"
	}
	return fmt.Sprintf("%gx", float64(s))
}

// ParseSpeed parses "paused", "0", "1", "2x" and similar.
func ParseSpeed(v string) (Speed, error) {
	if v == "paused" {
		return SpeedPaused, nil
	}
	var f float64
	if _, err := fmt.Sscanf(v, "%g", &f); err != nil {
		return 0, fmt.Errorf("parse speed %q: %w", v, ErrInvalidSpeed)
	}
	s := Speed(f)
	if !s.Valid() {
		return 0, fmt.Errorf("parse speed %q: %w", v, ErrInvalidSpeed)
	}
	return s, nil
}

// DefaultInterval is the wall time of one simulated month at 1x.
const DefaultInterval = time.Second

// maxCatchUp bounds how many ticks one frame may run after a stall.
const maxCatchUp = 120

// Clock converts elapsed wall time into ticks. Time accumulates only while the
// clock is running at a non-zero speed.
type Clock struct {
	mu       sync.Mutex
	speed    Speed
	interval time.Duration
	running  bool
	acc      time.Duration
}

// NewClock creates a stopped clock at 1x.
func NewClock(interval time.Duration) *Clock {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Clock{speed: Speed1x, interval: interval}
}

// Start resumes ticking.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
}

// Pause stops ticking. Accumulated time is kept.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

// Running reports whether the clock is started.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetSpeed changes the multiplier.
func (c *Clock) SetSpeed(s Speed) error {
	if !s.Valid() {
		return fmt.Errorf("set speed %v: %w", float64(s), ErrInvalidSpeed)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = s
	return nil
}

// Speed returns the current multiplier.
func (c *Clock) Speed() Speed {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Reset stops the clock and drops accumulated time.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.acc = 0
}

// Advance adds elapsed wall time and returns how many ticks are now due.
func (c *Clock) Advance(elapsed time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || c.speed == SpeedPaused || elapsed <= 0 {
		return 0
	}
	c.acc += time.Duration(float64(elapsed) * float64(c.speed))
	n := int(c.acc / c.interval)
	c.acc -= time.Duration(n) * c.interval
	if n > maxCatchUp {
		n = maxCatchUp
		c.acc = 0
	}
	return n
}

// Run drives step from wall time until ctx is done. step returns false when
// no further ticks should run, which pauses the clock.
func (c *Clock) Run(ctx context.Context, frame time.Duration, step func() bool) {
	if frame <= 0 {
		frame = 50 * time.Millisecond
	}
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	slog.Info("simulation clock started", "speed", c.Speed(), "interval", c.interval)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation clock stopped")
			return
		case now := <-ticker.C:
			n := c.Advance(now.Sub(last))
			last = now
			for i := 0; i < n; i++ {
				if !step() {
					c.Pause()
					break
				}
			}
		}
	}
}
