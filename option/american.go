package option

import (
	"fmt"
	"math"
)

// American is an option with early exercise, priced on a Cox-Ross-Rubinstein
// binomial lattice.
type American struct {
	p     Params
	steps int
}

// NewAmerican validates the parameters and lattice depth and returns the
// option. Larger steps trades runtime for convergence: with zero yield the
// call price approaches the European closed form.
func NewAmerican(p Params, steps int) (*American, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if steps <= 0 {
		return nil, fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidParams, steps)
	}
	return &American{p: p, steps: steps}, nil
}

// Price runs the backward induction. It never fails after construction.
func (o *American) Price() (float64, error) {
	return crrPrice(o.p, o.steps), nil
}

// crrPrice values p on a CRR lattice of the given depth.
//
// Terminal payoffs are computed across all steps+1 nodes in a single pass;
// interior nodes take max(exercise, discounted expectation), which is what
// captures early exercise.
func crrPrice(p Params, steps int) float64 {
	dt := p.Maturity / float64(steps)
	up := math.Exp(p.Volatility * math.Sqrt(dt))
	down := 1.0 / up
	growth := math.Exp((p.Rate - p.Yield) * dt)
	prob := (growth - down) / (up - down)
	disc := math.Exp(-p.Rate * dt)

	// Terminal layer, highest node first.
	values := make([]float64, steps+1)
	spot := p.Spot * math.Pow(up, float64(steps))
	for i := range values {
		values[i] = p.intrinsic(spot)
		spot *= down * down
	}

	for step := steps - 1; step >= 0; step-- {
		spot := p.Spot * math.Pow(up, float64(step))
		for i := 0; i <= step; i++ {
			continuation := disc * (prob*values[i] + (1-prob)*values[i+1])
			if exercise := p.intrinsic(spot); exercise > continuation {
				values[i] = exercise
			} else {
				values[i] = continuation
			}
			spot *= down * down
		}
	}
	return values[0]
}

// Greeks estimates delta, gamma, vega, theta and rho by finite differences:
// spot is bumped 0.01 both ways (central), volatility and rate 1e-4 up
// (forward), maturity shortened one calendar day (half the remaining life
// for options expiring within a day). Vega and rho are scaled to one
// percentage point, theta to one day.
func (o *American) Greeks() (map[string]float64, error) {
	base := crrPrice(o.p, o.steps)
	reprice := func(mod func(*Params)) float64 {
		p := o.p
		mod(&p)
		return crrPrice(p, o.steps)
	}

	upSpot := reprice(func(p *Params) { p.Spot += bumpSpot })
	dnSpot := reprice(func(p *Params) { p.Spot -= bumpSpot })
	upVol := reprice(func(p *Params) { p.Volatility += bumpVol })
	upRate := reprice(func(p *Params) { p.Rate += bumpRate })

	// Options expiring within a day cannot be shortened by a full day; clamp
	// the time bump so the shortened lattice keeps a positive maturity.
	dt := bumpTime
	if o.p.Maturity <= bumpTime {
		dt = o.p.Maturity / 2
	}
	short := reprice(func(p *Params) { p.Maturity -= dt })

	return map[string]float64{
		"delta": (upSpot - dnSpot) / (2 * bumpSpot),
		"gamma": (upSpot - 2*base + dnSpot) / (bumpSpot * bumpSpot),
		"vega":  (upVol - base) / bumpVol / 100,
		"rho":   (upRate - base) / bumpRate / 100,
		"theta": (short - base) / (dt * 365),
	}, nil
}
