// Package montecarlo simulates sample price paths under a lognormal
// diffusion or a Merton jump-diffusion.
//
// Paths are statistically independent, so generation fans out across a
// worker pool and only the final reduction is shared. Every path draws from
// its own generator seeded by (Seed, path index): results are identical for
// any worker count, and repricing with the same Seed reuses the exact same
// randomness (common random numbers).
package montecarlo

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
)

// ErrInvalidConfig is returned for out-of-domain simulator parameters.
var ErrInvalidConfig = errors.New("invalid simulator configuration")

// Process selects the stochastic process driving the spot price.
type Process int

const (
	// Lognormal is geometric Brownian motion.
	Lognormal Process = iota
	// JumpDiffusion adds Merton-style Poisson jumps with lognormal sizes.
	JumpDiffusion
)

// Config holds the market and discretization parameters for a Simulator.
type Config struct {
	Spot       float64
	Volatility float64
	Rate       float64
	Yield      float64
	Maturity   float64

	Steps int
	Paths int
	Seed  int64

	Process Process

	// Jump parameters, used only with JumpDiffusion.
	JumpIntensity float64 // expected jumps per year
	JumpMean      float64 // mean log jump size
	JumpVol       float64 // stddev of a single log jump
}

// Simulator generates independent sample paths for a Config.
type Simulator struct {
	cfg Config
}

// New validates the configuration and returns a simulator.
func New(cfg Config) (*Simulator, error) {
	if cfg.Spot <= 0 {
		return nil, fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidConfig, cfg.Spot)
	}
	if cfg.Volatility <= 0 {
		return nil, fmt.Errorf("%w: volatility must be positive, got %v", ErrInvalidConfig, cfg.Volatility)
	}
	if cfg.Maturity <= 0 {
		return nil, fmt.Errorf("%w: maturity must be positive, got %v", ErrInvalidConfig, cfg.Maturity)
	}
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if cfg.Paths <= 0 {
		return nil, fmt.Errorf("%w: paths must be positive, got %d", ErrInvalidConfig, cfg.Paths)
	}
	if cfg.Process == JumpDiffusion {
		if cfg.JumpIntensity < 0 {
			return nil, fmt.Errorf("%w: jump intensity must not be negative, got %v", ErrInvalidConfig, cfg.JumpIntensity)
		}
		if cfg.JumpVol < 0 {
			return nil, fmt.Errorf("%w: jump volatility must not be negative, got %v", ErrInvalidConfig, cfg.JumpVol)
		}
	}
	return &Simulator{cfg: cfg}, nil
}

// PathStatistics evaluates stat over every simulated path and returns one
// value per path, in path order. Paths are never retained whole; each worker
// reuses a single buffer.
func (s *Simulator) PathStatistics(stat func(path []float64) float64) ([]float64, error) {
	// Defensive re-check: New rejects these, so this is unreachable unless a
	// zero-value Simulator slipped in.
	if s.cfg.Paths <= 0 || s.cfg.Steps <= 0 {
		return nil, fmt.Errorf("%w: paths=%d steps=%d", ErrInvalidConfig, s.cfg.Paths, s.cfg.Steps)
	}

	out := make([]float64, s.cfg.Paths)

	workers := runtime.GOMAXPROCS(0)
	if workers > s.cfg.Paths {
		workers = s.cfg.Paths
	}
	chunk := (s.cfg.Paths + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > s.cfg.Paths {
			hi = s.cfg.Paths
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			path := make([]float64, s.cfg.Steps+1)
			for i := lo; i < hi; i++ {
				s.fillPath(path, i)
				out[i] = stat(path)
			}
		}(lo, hi)
	}
	wg.Wait()
	return out, nil
}

// PriceEuropean returns the discounted mean terminal payoff across all paths
// and its standard error (sample std / sqrt(paths)).
//
// It is both a building block for path-dependent payoffs and an independent
// cross-check against the closed-form European price.
func (s *Simulator) PriceEuropean(payoff func(terminal float64) float64) (price, stderr float64, err error) {
	disc := math.Exp(-s.cfg.Rate * s.cfg.Maturity)
	payoffs, err := s.PathStatistics(func(path []float64) float64 {
		return disc * payoff(path[len(path)-1])
	})
	if err != nil {
		return 0, 0, err
	}
	mean, std := MeanStd(payoffs)
	return mean, std / math.Sqrt(float64(len(payoffs))), nil
}

// fillPath writes path idx into buf. buf has length Steps+1.
func (s *Simulator) fillPath(buf []float64, idx int) {
	// Distinct, reproducible stream per path index.
	rng := rand.New(rand.NewSource(s.cfg.Seed + int64(idx)*-0x61C8864680B583EB)) // 0x9E3779B97F4A7C15 as int64

	dt := s.cfg.Maturity / float64(s.cfg.Steps)
	drift := (s.cfg.Rate - s.cfg.Yield - 0.5*s.cfg.Volatility*s.cfg.Volatility) * dt
	sigmaDt := s.cfg.Volatility * math.Sqrt(dt)
	jumps := s.cfg.Process == JumpDiffusion && s.cfg.JumpIntensity > 0

	buf[0] = s.cfg.Spot
	for j := 1; j < len(buf); j++ {
		x := drift + sigmaDt*rng.NormFloat64()
		if jumps {
			if n := poisson(rng, s.cfg.JumpIntensity*dt); n > 0 {
				x += s.cfg.JumpMean*float64(n) + s.cfg.JumpVol*math.Sqrt(float64(n))*rng.NormFloat64()
			}
		}
		buf[j] = buf[j-1] * math.Exp(x)
	}
}

// poisson draws a Poisson count by Knuth inversion; lambda is small here
// (jump intensity times one step), so the loop terminates quickly.
func poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k, p := 0, 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

// MeanStd returns the sample mean and (n-1 normalized) standard deviation.
func MeanStd(xs []float64) (mean, std float64) {
	n := float64(len(xs))
	if n == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= n
	if n < 2 {
		return mean, 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / (n - 1))
}
