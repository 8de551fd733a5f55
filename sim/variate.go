package sim

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Variates wraps the distributional draws the epidemic loop needs, all fed
// from one explicit source so that seeding fully determines the trajectory.
// Binomial and Poisson/Gamma machinery comes from gonum's distuv.
type Variates struct {
	src rand.Source
}

// NewVariates creates a Variates drawing from src.
func NewVariates(src rand.Source) *Variates {
	return &Variates{src: src}
}

// Binomial draws the number of successes in n trials with per-trial
// probability p. Degenerate inputs short-circuit without consuming
// randomness: n=0 or p=0 yields 0, p=1 yields n.
//
// p must already be validated to lie in [0,1]; the engine checks dt*gamma
// at configuration time, before any draw happens.
func (v *Variates) Binomial(n int, p float64) int {
	if n <= 0 || p <= 0 {
		return 0
	}
	if p >= 1 {
		return n
	}
	b := distuv.Binomial{N: float64(n), P: p, Src: v.src}
	return int(b.Rand())
}

// NegBinomial draws from a negative binomial with the given mean and
// dispersion k, parameterized so that the variance is mean*(1+mean/k).
// Implemented as the standard gamma-Poisson mixture:
//
//	lambda ~ Gamma(shape=k, rate=k/mean)
//	count  ~ Poisson(lambda)
//
// A mean or dispersion of 0 is the degenerate "no events" distribution,
// not an error.
func (v *Variates) NegBinomial(mean, dispersion float64) int {
	if mean <= 0 || dispersion <= 0 {
		return 0
	}
	g := distuv.Gamma{Alpha: dispersion, Beta: dispersion / mean, Src: v.src}
	lambda := g.Rand()
	if lambda <= 0 {
		return 0
	}
	p := distuv.Poisson{Lambda: lambda, Src: v.src}
	return int(p.Rand())
}
