package option

import (
	"fmt"
	"math"
)

// BarrierDirection is the side from which the barrier is hit.
type BarrierDirection int

const (
	// Up knocks when the underlying rises to or above the barrier.
	Up BarrierDirection = iota
	// Down knocks when the underlying falls to or below the barrier.
	Down
)

// BarrierStyle distinguishes knock-out from knock-in.
type BarrierStyle int

const (
	// KnockOut options extinguish once the barrier is crossed.
	KnockOut BarrierStyle = iota
	// KnockIn options only come alive once the barrier is crossed.
	KnockIn
)

// Barrier is a single-barrier option priced on a trinomial lattice with the
// grid spacing aligned to the barrier level.
type Barrier struct {
	p         Params
	level     float64
	direction BarrierDirection
	style     BarrierStyle
	steps     int
}

// NewBarrier validates the parameters and returns the option.
func NewBarrier(p Params, level float64, direction BarrierDirection, style BarrierStyle, steps int) (*Barrier, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if !(level > 0) {
		return nil, fmt.Errorf("%w: barrier must be positive, got %v", ErrInvalidParams, level)
	}
	if direction != Up && direction != Down {
		return nil, fmt.Errorf("%w: unknown barrier direction %d", ErrInvalidParams, int(direction))
	}
	if style != KnockOut && style != KnockIn {
		return nil, fmt.Errorf("%w: unknown barrier style %d", ErrInvalidParams, int(style))
	}
	if steps <= 0 {
		return nil, fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidParams, steps)
	}
	return &Barrier{p: p, level: level, direction: direction, style: style, steps: steps}, nil
}

// crossed is the extinction predicate. Swapping it is all that separates
// up-and-out from down-and-out; knock-in variants follow from
// in = vanilla - out on the same lattice.
func (o *Barrier) crossed(s float64) bool {
	if o.direction == Up {
		return s >= o.level
	}
	return s <= o.level
}

// Price values the option. Knock-out runs the lattice with the extinction
// predicate; knock-in is the vanilla value on the identical lattice minus
// the knock-out value.
func (o *Barrier) Price() (float64, error) {
	out := trinomialPrice(o.p, o.steps, o.level, o.crossed)
	if o.style == KnockOut {
		return out, nil
	}
	vanilla := trinomialPrice(o.p, o.steps, o.level, nil)
	return vanilla - out, nil
}

// Greeks estimates delta and gamma by central differences on spot
// (bump 0.01). Lattice prices are discontinuous in volatility near the
// barrier, so no vega/theta/rho estimate is reported.
func (o *Barrier) Greeks() (map[string]float64, error) {
	base, err := o.Price()
	if err != nil {
		return nil, err
	}
	reprice := func(spot float64) (float64, error) {
		bumped := *o
		bumped.p.Spot = spot
		return bumped.Price()
	}
	up, err := reprice(o.p.Spot + bumpSpot)
	if err != nil {
		return nil, err
	}
	dn, err := reprice(o.p.Spot - bumpSpot)
	if err != nil {
		return nil, err
	}
	return map[string]float64{
		"delta": (up - dn) / (2 * bumpSpot),
		"gamma": (up - 2*base + dn) / (bumpSpot * bumpSpot),
	}, nil
}

// trinomialPrice runs backward induction on a log-space trinomial lattice.
//
// The node spacing starts at sigma*sqrt(3*dt) and is widened so that the
// barrier falls exactly on a lattice level; widening (never narrowing) keeps
// the middle-branch probability non-negative. knocked nil prices the vanilla
// payoff on the same grid, which keeps in/out parity exact.
func trinomialPrice(p Params, steps int, barrier float64, knocked func(float64) bool) float64 {
	dt := p.Maturity / float64(steps)
	sqrtDt := math.Sqrt(dt)
	dx := p.Volatility * math.Sqrt(3*dt)
	if gap := math.Abs(math.Log(barrier / p.Spot)); gap > 0 {
		if m := math.Floor(gap / dx); m >= 1 {
			dx = gap / m
		}
	}

	lambda := dx / (p.Volatility * sqrtDt)
	nu := p.Rate - p.Yield - 0.5*p.Volatility*p.Volatility
	pu := 0.5/(lambda*lambda) + nu*sqrtDt/(2*lambda*p.Volatility)
	pd := 0.5/(lambda*lambda) - nu*sqrtDt/(2*lambda*p.Volatility)
	pm := 1 - 1/(lambda*lambda)
	disc := math.Exp(-p.Rate * dt)

	// Price grid, ascending: spots[i] = Spot * exp((i-steps)*dx).
	spots := make([]float64, 2*steps+1)
	spots[0] = p.Spot * math.Exp(-float64(steps)*dx)
	expDx := math.Exp(dx)
	for i := 1; i < len(spots); i++ {
		spots[i] = spots[i-1] * expDx
	}

	values := make([]float64, len(spots))
	next := make([]float64, len(spots))
	for i, s := range spots {
		if knocked != nil && knocked(s) {
			values[i] = 0
		} else {
			values[i] = p.intrinsic(s)
		}
	}

	for step := steps - 1; step >= 0; step-- {
		values, next = next, values
		for i := steps - step; i <= steps+step; i++ {
			if knocked != nil && knocked(spots[i]) {
				values[i] = 0
				continue
			}
			values[i] = disc * (pd*next[i-1] + pm*next[i] + pu*next[i+1])
		}
	}
	return values[steps]
}
