package dataset

import (
	"math"
	"math/rand/v2"
)

// Rand is the single pseudo-random source threaded through a pipeline run.
// It is seeded once; every stage that needs randomness draws from it in a
// fixed order, so output is a pure function of (domain, seed).
type Rand struct {
	r *rand.Rand
}

// NewRand returns a PCG-backed generator for seed.
func NewRand(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Normal draws from N(mean, sd).
func (g *Rand) Normal(mean, sd float64) float64 {
	return mean + sd*g.r.NormFloat64()
}

// Uniform draws from [lo, hi).
func (g *Rand) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.r.Float64()
}

// IntN draws from [0, n). n must be > 0.
func (g *Rand) IntN(n int) int {
	return g.r.IntN(n)
}

func round2(x float64) float64 { return roundTo(x, 2) }

func roundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	r := math.Round(x*p) / p
	if r == 0 {
		// avoid "-0.00" in exports
		return 0
	}
	return r
}
