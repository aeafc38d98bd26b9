// Package entropy provides the random streams that drive stochastic events.
// Simulations draw every random number from one Source, in a fixed order, so a
// seeded run replays exactly. Unseeded runs fall back to crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	mrand "math/rand"
	"sync"
)

// Source is a stream of random numbers.
type Source interface {
	Float64() float64     // [0, 1)
	Intn(n int) int       // [0, n)
	NormFloat64() float64 // standard normal
}

// Seeded is a deterministic Source.
type Seeded struct {
	rng *mrand.Rand
}

// NewSeeded creates a deterministic source for the given seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewSource(seed))}
}

func (s *Seeded) Float64() float64     { return s.rng.Float64() }
func (s *Seeded) Intn(n int) int       { return s.rng.Intn(n) }
func (s *Seeded) NormFloat64() float64 { return s.rng.NormFloat64() }

// Crypto returns a non-deterministic Source backed by crypto/rand.
func Crypto() Source {
	return &cryptoSource{}
}

type cryptoSource struct {
	mu      sync.Mutex
	spare   float64
	hasNorm bool
}

func (c *cryptoSource) Float64() float64 {
	return cryptoRandFloat()
}

func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("entropy: Intn with non-positive n")
	}
	v := int(cryptoRandFloat() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// NormFloat64 uses the Box-Muller transform, caching the second value.
func (c *cryptoSource) NormFloat64() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasNorm {
		c.hasNorm = false
		return c.spare
	}
	u1 := cryptoRandFloat()
	for u1 == 0 {
		u1 = cryptoRandFloat()
	}
	u2 := cryptoRandFloat()
	r := math.Sqrt(-2 * math.Log(u1))
	c.spare = r * math.Sin(2*math.Pi*u2)
	c.hasNorm = true
	return r * math.Cos(2*math.Pi*u2)
}

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// Chance reports whether a uniform draw falls below p.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Uniform returns a value uniformly distributed in [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// New returns a seeded source, or a crypto source when seed is zero.
func New(seed int64) Source {
	if seed == 0 {
		return Crypto()
	}
	return NewSeeded(seed)
}
