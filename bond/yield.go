package bond

import (
	"fmt"
	"math"

	"github.com/meenmo/pricer/utils"
)

const (
	yieldTolerance = 1e-12
	yieldMaxIter   = 100
	yieldFloor     = -0.05
	yieldCeiling   = 1.00
)

// YieldToMaturity solves for the flat continuously-compounded yield y such
// that discounting every future cash flow at y reproduces the given dirty
// price. The result is in percent.
//
// The solver is Newton-Raphson with an analytic derivative, clamped to
// [-5%, 100%]; it returns ErrNoConvergence after 100 iterations.
func (b *FixedRateBond) YieldToMaturity(price float64) (float64, error) {
	if !(price > 0) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("YieldToMaturity: %w: price must be positive, got %v", ErrInvalidBond, price)
	}

	// Initial guess: the running yield.
	y := clamp(b.cfg.CouponRate/100.0, yieldFloor, yieldCeiling)

	for iter := 0; iter < yieldMaxIter; iter++ {
		pv, dPdy := b.priceAndDeriv(y)
		f := pv - price

		if math.Abs(f) < yieldTolerance {
			return y * 100.0, nil
		}
		if math.Abs(dPdy) < 1e-15 {
			return 0, fmt.Errorf("YieldToMaturity: %w: derivative vanished at iter %d", ErrNoConvergence, iter)
		}

		y = clamp(y-f/dPdy, yieldFloor, yieldCeiling)
	}

	return 0, fmt.Errorf("YieldToMaturity: %w after %d iterations", ErrNoConvergence, yieldMaxIter)
}

// PriceFromYield discounts every future cash flow at the given flat yield
// (percent, continuous compounding) and returns the dirty price.
func (b *FixedRateBond) PriceFromYield(yieldPct float64) float64 {
	pv, _ := b.priceAndDeriv(yieldPct / 100.0)
	return pv
}

// priceAndDeriv returns (price, dPrice/dy) at the decimal yield y:
//
//	price = sum CF_i * exp(-y*t_i)
//	dP/dy = sum -t_i * CF_i * exp(-y*t_i)
func (b *FixedRateBond) priceAndDeriv(y float64) (float64, float64) {
	asof := b.cfg.Curve.Start()
	var price, deriv float64
	for _, cf := range b.schedule {
		if !cf.Date.After(asof) {
			continue
		}
		t := utils.YearFraction(asof, cf.Date, b.cfg.Curve.DayCount())
		disc := math.Exp(-y * t)
		price += cf.Amount() * disc
		deriv += -t * cf.Amount() * disc
	}
	return price, deriv
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
