// Package curve provides the zero-coupon rate curve used by every
// discounting instrument in the library.
//
// A Curve is an immutable value: Bump returns a shifted copy and never
// mutates the receiver, so base and bumped pricing can run concurrently.
package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/pricer/utils"
)

var (
	// ErrInvalidPoints is returned when construction inputs are out of domain.
	ErrInvalidPoints = errors.New("invalid curve points")
	// ErrExtrapolation is returned for out-of-range queries under ExtrapolateError.
	ErrExtrapolation = errors.New("date outside curve range")
)

// ExtrapolationPolicy controls queries outside the curve's date range.
type ExtrapolationPolicy int

const (
	// ExtrapolateClamp uses the boundary rate beyond the first/last point (flat).
	ExtrapolateClamp ExtrapolationPolicy = iota
	// ExtrapolateError rejects out-of-range queries with ErrExtrapolation.
	ExtrapolateError
)

// Point is a single (date, rate) observation. The rate unit is set at
// construction time: percent by default, decimals via Decimals.
type Point struct {
	Date time.Time
	Rate float64
}

// Curve is a discrete zero-rate term structure with linear interpolation.
type Curve struct {
	dates        []time.Time
	rates        []float64 // decimals
	dayCount     string
	policy       ExtrapolationPolicy
	decimalInput bool
}

// Option customizes curve construction.
type Option func(*Curve)

// Decimals marks the input rates as decimals (0.03) rather than percent (3.0).
func Decimals() Option {
	return func(c *Curve) { c.decimalInput = true }
}

// WithDayCount sets the convention used for the curve's time axis.
// The default is ACT/365F.
func WithDayCount(convention string) Option {
	return func(c *Curve) { c.dayCount = convention }
}

// WithExtrapolation sets the out-of-range query policy. The default clamps
// to the boundary rate.
func WithExtrapolation(policy ExtrapolationPolicy) Option {
	return func(c *Curve) { c.policy = policy }
}

// New builds a curve from an ordered quote table.
//
// Requirements: at least two points, dates strictly increasing, finite rates.
// Rates are read as percent unless the Decimals option is given; either way
// they are normalized to decimals at construction.
func New(points []Point, opts ...Option) (*Curve, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidPoints, len(points))
	}

	c := &Curve{
		dayCount: utils.Act365F,
		policy:   ExtrapolateClamp,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.dates = make([]time.Time, len(points))
	c.rates = make([]float64, len(points))
	for i, p := range points {
		if math.IsNaN(p.Rate) || math.IsInf(p.Rate, 0) {
			return nil, fmt.Errorf("%w: rate at %s is not finite", ErrInvalidPoints, p.Date.Format("2006-01-02"))
		}
		if i > 0 && !points[i-1].Date.Before(p.Date) {
			return nil, fmt.Errorf("%w: dates must be strictly increasing at %s",
				ErrInvalidPoints, p.Date.Format("2006-01-02"))
		}
		c.dates[i] = p.Date
		if c.decimalInput {
			c.rates[i] = p.Rate
		} else {
			c.rates[i] = p.Rate / 100.0
		}
	}
	return c, nil
}

// Start returns the curve's first (anchor) date. Year fractions for discount
// factors are measured from this date.
func (c *Curve) Start() time.Time {
	return c.dates[0]
}

// End returns the curve's last quoted date.
func (c *Curve) End() time.Time {
	return c.dates[len(c.dates)-1]
}

// DayCount returns the curve's time-axis convention.
func (c *Curve) DayCount() string {
	return c.dayCount
}

// ForwardRate returns the interpolated zero rate at t as a decimal.
//
// Between quoted points the rate is linear in curve time. Outside the quoted
// range the behavior follows the curve's extrapolation policy.
func (c *Curve) ForwardRate(t time.Time) (float64, error) {
	if t.Before(c.dates[0]) || t.After(c.dates[len(c.dates)-1]) {
		if c.policy == ExtrapolateError {
			return 0, fmt.Errorf("%w: %s not in [%s, %s]", ErrExtrapolation,
				t.Format("2006-01-02"),
				c.dates[0].Format("2006-01-02"),
				c.dates[len(c.dates)-1].Format("2006-01-02"))
		}
		if t.Before(c.dates[0]) {
			return c.rates[0], nil
		}
		return c.rates[len(c.rates)-1], nil
	}

	// Exact hit.
	i := sort.Search(len(c.dates), func(i int) bool {
		return !c.dates[i].Before(t)
	})
	if c.dates[i].Equal(t) {
		return c.rates[i], nil
	}

	d1, d2 := utils.AdjacentDates(t, c.dates)
	r1 := c.rates[c.index(d1)]
	r2 := c.rates[c.index(d2)]
	t1 := utils.YearFraction(c.dates[0], d1, c.dayCount)
	t2 := utils.YearFraction(c.dates[0], d2, c.dayCount)
	tt := utils.YearFraction(c.dates[0], t, c.dayCount)
	if t2 == t1 {
		return r1, nil
	}
	return r1 + (r2-r1)*(tt-t1)/(t2-t1), nil
}

// DiscountFactor returns exp(-r*t) where r is the interpolated zero rate at
// t and the year fraction runs from the curve's first date. Dates before the
// anchor clamp to a factor of 1 under ExtrapolateClamp.
func (c *Curve) DiscountFactor(t time.Time) (float64, error) {
	r, err := c.ForwardRate(t)
	if err != nil {
		return 0, err
	}
	tau := utils.YearFraction(c.dates[0], t, c.dayCount)
	if tau < 0 {
		tau = 0
	}
	return math.Exp(-r * tau), nil
}

// Bump returns a new curve with every rate shifted by bp basis points.
// The receiver is left untouched; DV01-style computations rely on holding
// the base and bumped curve at the same time.
func (c *Curve) Bump(bp float64) *Curve {
	shifted := &Curve{
		dates:        c.dates, // dates are never mutated, safe to share
		rates:        make([]float64, len(c.rates)),
		dayCount:     c.dayCount,
		policy:       c.policy,
		decimalInput: c.decimalInput,
	}
	for i, r := range c.rates {
		shifted.rates[i] = r + bp/10000.0
	}
	return shifted
}

func (c *Curve) index(t time.Time) int {
	i := sort.Search(len(c.dates), func(i int) bool {
		return !c.dates[i].Before(t)
	})
	return i
}
