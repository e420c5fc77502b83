// Package option prices European, American, Asian and barrier options over
// a shared, validated parameter record.
//
// Each variant is constructed by its own validating constructor and provides
// the Instrument capability (Price, Greeks). Instruments are immutable after
// construction and never fail validation at pricing time.
package option

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is returned when construction inputs are out of domain.
var ErrInvalidParams = errors.New("invalid option parameters")

// Kind distinguishes calls from puts.
type Kind int

const (
	Call Kind = iota
	Put
)

func (k Kind) String() string {
	switch k {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Params are the market parameters shared by every option variant.
//
// Yield is a continuous yield: a dividend yield for equity underlyings, the
// foreign rate for FX, or the domestic rate for futures (zero cost of carry).
// The drift term everywhere is (Rate - Yield).
type Params struct {
	Spot       float64
	Strike     float64
	Maturity   float64 // years
	Volatility float64
	Rate       float64
	Yield      float64
	Kind       Kind
}

func (p Params) validate() error {
	if !(p.Spot > 0) {
		return fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidParams, p.Spot)
	}
	if !(p.Strike > 0) {
		return fmt.Errorf("%w: strike must be positive, got %v", ErrInvalidParams, p.Strike)
	}
	if !(p.Maturity > 0) {
		return fmt.Errorf("%w: maturity must be positive, got %v", ErrInvalidParams, p.Maturity)
	}
	if !(p.Volatility > 0) {
		return fmt.Errorf("%w: volatility must be positive, got %v", ErrInvalidParams, p.Volatility)
	}
	if math.IsNaN(p.Rate) || math.IsNaN(p.Yield) {
		return fmt.Errorf("%w: rate and yield must be numbers", ErrInvalidParams)
	}
	if p.Kind != Call && p.Kind != Put {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidParams, int(p.Kind))
	}
	return nil
}

// intrinsic is the exercise value at underlying price s.
func (p Params) intrinsic(s float64) float64 {
	if p.Kind == Call {
		return math.Max(s-p.Strike, 0)
	}
	return math.Max(p.Strike-s, 0)
}

// Instrument is the pricing capability every option variant provides.
//
// Greeks returns a map keyed by greek name; variants without a usable
// estimator for a greek omit the key. Vega and rho are quoted per one
// percentage point move, theta per calendar day.
type Instrument interface {
	Price() (float64, error)
	Greeks() (map[string]float64, error)
}

// Finite-difference bump sizes used by the lattice and simulation variants.
// They balance truncation error against floating-point noise and are part of
// the greeks contract.
const (
	bumpSpot = 1e-2      // central difference on spot
	bumpVol  = 1e-4      // forward difference on volatility
	bumpRate = 1e-4      // forward difference on rate
	bumpTime = 1.0 / 365 // one calendar day
)

func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
