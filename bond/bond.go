// Package bond prices fixed-rate bullet bonds off a zero-coupon curve.
package bond

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/meenmo/pricer/calendar"
	"github.com/meenmo/pricer/curve"
	"github.com/meenmo/pricer/utils"
)

var (
	// ErrInvalidBond is returned when construction inputs are out of domain.
	ErrInvalidBond = errors.New("invalid bond")
	// ErrNoConvergence is returned when the yield solver exhausts its iterations.
	ErrNoConvergence = errors.New("yield solver did not converge")
)

// Cashflow is a single dated cash payment for a bond.
//
// Amounts are in currency units, not price-per-100.
type Cashflow struct {
	Date      time.Time
	Coupon    float64
	Principal float64
}

func (c Cashflow) Amount() float64 {
	return c.Coupon + c.Principal
}

// Config describes a fixed-rate bullet bond.
type Config struct {
	// Face is the redemption amount in currency units.
	Face float64
	// CouponRate is the annual coupon in percent (e.g. 2.5 for 2.5%).
	CouponRate float64
	// Frequency is coupons per year: 1, 2, 4 or 12.
	Frequency int
	// IssueDate anchors the backward-rolled schedule.
	IssueDate time.Time
	// MaturityDate is the redemption date.
	MaturityDate time.Time
	// DayCount is the accrual convention. Default 30E/360.
	DayCount string
	// Calendar and Convention roll payment dates off non-business days.
	// Defaults: Weekend calendar, ModifiedFollowing.
	Calendar   calendar.ID
	Convention calendar.Convention
	// Curve discounts the cash flows. Its first date is the valuation date.
	Curve *curve.Curve
}

// FixedRateBond is an immutable bond with its schedule generated at
// construction.
type FixedRateBond struct {
	cfg      Config
	schedule []Cashflow
}

// New validates the configuration and generates the coupon schedule.
func New(cfg Config) (*FixedRateBond, error) {
	if !(cfg.Face > 0) || math.IsInf(cfg.Face, 0) {
		return nil, fmt.Errorf("%w: face must be positive, got %v", ErrInvalidBond, cfg.Face)
	}
	if cfg.CouponRate < 0 || math.IsNaN(cfg.CouponRate) || math.IsInf(cfg.CouponRate, 0) {
		return nil, fmt.Errorf("%w: coupon rate must be non-negative, got %v", ErrInvalidBond, cfg.CouponRate)
	}
	switch cfg.Frequency {
	case 1, 2, 4, 12:
	default:
		return nil, fmt.Errorf("%w: frequency must be 1, 2, 4 or 12, got %d", ErrInvalidBond, cfg.Frequency)
	}
	if !cfg.MaturityDate.After(cfg.IssueDate) {
		return nil, fmt.Errorf("%w: maturity %s not after issue %s", ErrInvalidBond,
			cfg.MaturityDate.Format("2006-01-02"), cfg.IssueDate.Format("2006-01-02"))
	}
	if cfg.Curve == nil {
		return nil, fmt.Errorf("%w: curve is required", ErrInvalidBond)
	}
	if cfg.DayCount == "" {
		cfg.DayCount = utils.ThirtyE360
	}
	if cfg.Calendar == "" {
		cfg.Calendar = calendar.Weekend
	}

	b := &FixedRateBond{cfg: cfg}
	b.schedule = b.buildSchedule()
	return b, nil
}

// buildSchedule rolls coupon dates backward from maturity in whole coupon
// periods, so the maturity date is always a scheduled payment and any stub
// sits at the front. Payment dates are business-day adjusted; the final flow
// carries the principal.
func (b *FixedRateBond) buildSchedule() []Cashflow {
	months := 12 / b.cfg.Frequency
	coupon := b.cfg.Face * b.cfg.CouponRate / 100.0 / float64(b.cfg.Frequency)

	// Each date is rolled from the maturity anchor, not from the previous
	// date: chained rolls drift off month-end (May 31 -> Nov 30 -> May 30).
	var dates []time.Time
	for i := 0; ; i++ {
		d := utils.AddMonth(b.cfg.MaturityDate, -i*months)
		if !d.After(b.cfg.IssueDate) {
			break
		}
		dates = append(dates, d)
	}
	// Reverse into ascending order.
	for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
		dates[i], dates[j] = dates[j], dates[i]
	}

	flows := make([]Cashflow, len(dates))
	for i, d := range dates {
		flows[i] = Cashflow{
			Date:   calendar.Apply(b.cfg.Convention, b.cfg.Calendar, d),
			Coupon: coupon,
		}
	}
	flows[len(flows)-1].Principal = b.cfg.Face
	return flows
}

// Schedule returns a copy of the dated cash flows in ascending order.
func (b *FixedRateBond) Schedule() []Cashflow {
	out := make([]Cashflow, len(b.schedule))
	copy(out, b.schedule)
	return out
}

// Price discounts every outstanding cash flow on the configured curve and
// returns the dirty present value in currency units.
func (b *FixedRateBond) Price() (float64, error) {
	return b.priceOn(b.cfg.Curve)
}

func (b *FixedRateBond) priceOn(c *curve.Curve) (float64, error) {
	asof := c.Start()
	var pv float64
	for _, cf := range b.schedule {
		if !cf.Date.After(asof) {
			continue
		}
		df, err := c.DiscountFactor(cf.Date)
		if err != nil {
			return 0, fmt.Errorf("Price: %s: %w", cf.Date.Format("2006-01-02"), err)
		}
		pv += df * cf.Amount()
	}
	return pv, nil
}

// ParRate returns the coupon rate in percent at which the bond prices
// exactly to face on the configured curve:
//
//	c = 100 * f * (1 - DF_N) / sum(DF_i)
func (b *FixedRateBond) ParRate() (float64, error) {
	asof := b.cfg.Curve.Start()
	var sum, last float64
	for _, cf := range b.schedule {
		if !cf.Date.After(asof) {
			continue
		}
		df, err := b.cfg.Curve.DiscountFactor(cf.Date)
		if err != nil {
			return 0, fmt.Errorf("ParRate: %s: %w", cf.Date.Format("2006-01-02"), err)
		}
		sum += df
		last = df
	}
	if sum == 0 {
		return 0, fmt.Errorf("%w: no future cash flows", ErrInvalidBond)
	}
	return 100.0 * float64(b.cfg.Frequency) * (1 - last) / sum, nil
}

// DV01 is the price drop for a one basis point parallel shift of the curve.
// Positive for any bond with future cash flows.
func (b *FixedRateBond) DV01() (float64, error) {
	base, err := b.priceOn(b.cfg.Curve)
	if err != nil {
		return 0, err
	}
	bumped, err := b.priceOn(b.cfg.Curve.Bump(1))
	if err != nil {
		return 0, err
	}
	return base - bumped, nil
}

// Duration returns the Macaulay duration in years, the PV-weighted average
// time to the cash flows. Under continuous discounting it doubles as the
// modified duration.
func (b *FixedRateBond) Duration() (float64, error) {
	asof := b.cfg.Curve.Start()
	var pv, weighted float64
	for _, cf := range b.schedule {
		if !cf.Date.After(asof) {
			continue
		}
		df, err := b.cfg.Curve.DiscountFactor(cf.Date)
		if err != nil {
			return 0, fmt.Errorf("Duration: %s: %w", cf.Date.Format("2006-01-02"), err)
		}
		t := utils.YearFraction(asof, cf.Date, b.cfg.Curve.DayCount())
		pv += df * cf.Amount()
		weighted += t * df * cf.Amount()
	}
	if pv == 0 {
		return 0, fmt.Errorf("%w: no future cash flows", ErrInvalidBond)
	}
	return weighted / pv, nil
}

// Convexity returns the PV-weighted average squared time to the cash flows,
// the second-order price sensitivity under continuous discounting.
func (b *FixedRateBond) Convexity() (float64, error) {
	asof := b.cfg.Curve.Start()
	var pv, weighted float64
	for _, cf := range b.schedule {
		if !cf.Date.After(asof) {
			continue
		}
		df, err := b.cfg.Curve.DiscountFactor(cf.Date)
		if err != nil {
			return 0, fmt.Errorf("Convexity: %s: %w", cf.Date.Format("2006-01-02"), err)
		}
		t := utils.YearFraction(asof, cf.Date, b.cfg.Curve.DayCount())
		pv += df * cf.Amount()
		weighted += t * t * df * cf.Amount()
	}
	if pv == 0 {
		return 0, fmt.Errorf("%w: no future cash flows", ErrInvalidBond)
	}
	return weighted / pv, nil
}

// AccruedInterest returns the coupon accrued from the last scheduled payment
// to asof, pro rata over the current period. Zero outside the bond's life.
func (b *FixedRateBond) AccruedInterest(asof time.Time) float64 {
	if !asof.After(b.cfg.IssueDate) || !asof.Before(b.cfg.MaturityDate) {
		return 0
	}
	prev := b.cfg.IssueDate
	for _, cf := range b.schedule {
		if cf.Date.After(asof) {
			accrued := utils.Days(prev, asof)
			period := utils.Days(prev, cf.Date)
			if period <= 0 {
				return 0
			}
			return cf.Coupon * accrued / period
		}
		prev = cf.Date
	}
	return 0
}
