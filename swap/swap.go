// Package swap prices vanilla fixed-for-floating interest rate swaps off a
// zero-coupon curve. The floating leg is projected and discounted on the
// same curve.
package swap

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/meenmo/pricer/calendar"
	"github.com/meenmo/pricer/curve"
	"github.com/meenmo/pricer/utils"
)

// ErrInvalidSwap is returned when construction inputs are out of domain.
var ErrInvalidSwap = errors.New("invalid swap")

// Position is the side taken on the fixed leg.
type Position string

const (
	// PositionReceive receives fixed and pays floating.
	PositionReceive Position = "REC"
	// PositionPay pays fixed and receives floating.
	PositionPay Position = "PAY"
)

// Period is one accrual period of a leg. Rate is in decimals: the fixed
// coupon on the fixed leg, the projected forward (plus spread) on the
// floating leg.
type Period struct {
	StartDate  time.Time
	EndDate    time.Time
	PayDate    time.Time
	FixingDate time.Time
	YearFrac   float64
	Rate       float64
}

// Config describes a vanilla interest rate swap.
type Config struct {
	// Notional in currency units.
	Notional float64
	// FixedRate is the fixed coupon in percent (e.g. 2.5 for 2.5%).
	FixedRate float64
	// FixedFrequency and FloatFrequency are payments per year: 1, 2, 4 or 12.
	FixedFrequency int
	FloatFrequency int
	// EffectiveDate starts accrual; MaturityDate ends it.
	EffectiveDate time.Time
	MaturityDate  time.Time
	// Direction is the fixed-leg side. NPV is signed from this position.
	Direction Position
	// FloatSpreadBP is added to the projected forward, in basis points.
	FloatSpreadBP float64
	// FixedDayCount and FloatDayCount default to 30E/360 and ACT/360.
	FixedDayCount string
	FloatDayCount string
	// Calendar rolls period dates with Modified Following. Default Weekend.
	Calendar calendar.ID
	// FixingLagDays is the business-day gap between fixing and period start.
	// Zero means the standard two days.
	FixingLagDays int
	// Curve projects forwards and discounts both legs.
	Curve *curve.Curve
}

// InterestRateSwap is an immutable swap with both leg schedules generated at
// construction.
type InterestRateSwap struct {
	cfg      Config
	fixedLeg []Period
	floatLeg []Period
}

// New validates the configuration and generates both leg schedules. Floating
// rates are projected lazily at pricing time so curve bumps reprice.
func New(cfg Config) (*InterestRateSwap, error) {
	if !(cfg.Notional > 0) || math.IsInf(cfg.Notional, 0) {
		return nil, fmt.Errorf("%w: notional must be positive, got %v", ErrInvalidSwap, cfg.Notional)
	}
	if math.IsNaN(cfg.FixedRate) || math.IsInf(cfg.FixedRate, 0) {
		return nil, fmt.Errorf("%w: fixed rate is not finite", ErrInvalidSwap)
	}
	for _, f := range []int{cfg.FixedFrequency, cfg.FloatFrequency} {
		switch f {
		case 1, 2, 4, 12:
		default:
			return nil, fmt.Errorf("%w: frequency must be 1, 2, 4 or 12, got %d", ErrInvalidSwap, f)
		}
	}
	if !cfg.MaturityDate.After(cfg.EffectiveDate) {
		return nil, fmt.Errorf("%w: maturity %s not after effective %s", ErrInvalidSwap,
			cfg.MaturityDate.Format("2006-01-02"), cfg.EffectiveDate.Format("2006-01-02"))
	}
	if cfg.Direction != PositionReceive && cfg.Direction != PositionPay {
		return nil, fmt.Errorf("%w: direction must be REC or PAY, got %q", ErrInvalidSwap, cfg.Direction)
	}
	if cfg.Curve == nil {
		return nil, fmt.Errorf("%w: curve is required", ErrInvalidSwap)
	}
	if cfg.FixedDayCount == "" {
		cfg.FixedDayCount = utils.ThirtyE360
	}
	if cfg.FloatDayCount == "" {
		cfg.FloatDayCount = utils.Act360
	}
	if cfg.Calendar == "" {
		cfg.Calendar = calendar.Weekend
	}
	if cfg.FixingLagDays == 0 {
		cfg.FixingLagDays = 2
	}

	s := &InterestRateSwap{cfg: cfg}
	s.fixedLeg = s.buildLeg(cfg.FixedFrequency, cfg.FixedDayCount)
	s.floatLeg = s.buildLeg(cfg.FloatFrequency, cfg.FloatDayCount)
	return s, nil
}

// buildLeg rolls period dates forward from the effective date in whole
// periods, Modified Following. The pay date is the adjusted period end; the
// fixing precedes the period start by the fixing lag.
func (s *InterestRateSwap) buildLeg(frequency int, dayCount string) []Period {
	months := 12 / frequency
	var periods []Period

	start := calendar.Adjust(s.cfg.Calendar, s.cfg.EffectiveDate)
	for i := 1; ; i++ {
		end := utils.AddMonth(s.cfg.EffectiveDate, i*months)
		if end.After(s.cfg.MaturityDate) {
			end = s.cfg.MaturityDate
		}
		end = calendar.Adjust(s.cfg.Calendar, end)

		periods = append(periods, Period{
			StartDate:  start,
			EndDate:    end,
			PayDate:    end,
			FixingDate: calendar.AddBusinessDays(s.cfg.Calendar, start, -s.cfg.FixingLagDays),
			YearFrac:   utils.YearFraction(start, end, dayCount),
		})
		if !end.Before(calendar.Adjust(s.cfg.Calendar, s.cfg.MaturityDate)) {
			break
		}
		start = end
	}
	return periods
}

// FixedLeg returns the fixed periods with the coupon filled in.
func (s *InterestRateSwap) FixedLeg() []Period {
	out := make([]Period, len(s.fixedLeg))
	copy(out, s.fixedLeg)
	for i := range out {
		out[i].Rate = s.cfg.FixedRate / 100.0
	}
	return out
}

// FloatLeg returns the floating periods with forwards projected off the
// configured curve. Projection can fail under a strict extrapolation policy.
func (s *InterestRateSwap) FloatLeg() ([]Period, error) {
	out := make([]Period, len(s.floatLeg))
	copy(out, s.floatLeg)
	for i := range out {
		fwd, err := s.forwardRate(s.cfg.Curve, out[i])
		if err != nil {
			return nil, err
		}
		out[i].Rate = fwd
	}
	return out, nil
}

// forwardRate projects the period's floating rate: the curve rate observable
// at the fixing date (not today's short rate), plus the configured spread.
func (s *InterestRateSwap) forwardRate(c *curve.Curve, p Period) (float64, error) {
	fwd, err := c.ForwardRate(p.FixingDate)
	if err != nil {
		return 0, fmt.Errorf("FloatLeg: fixing %s: %w", p.FixingDate.Format("2006-01-02"), err)
	}
	return fwd + s.cfg.FloatSpreadBP/10000.0, nil
}

// PVByLeg returns the discounted value of each leg in currency units,
// unsigned by direction. Periods paying on or before the curve anchor are
// skipped.
func (s *InterestRateSwap) PVByLeg() (fixed, float float64, err error) {
	return s.pvOn(s.cfg.Curve)
}

func (s *InterestRateSwap) pvOn(c *curve.Curve) (fixed, float float64, err error) {
	asof := c.Start()
	for _, p := range s.fixedLeg {
		if !p.PayDate.After(asof) {
			continue
		}
		df, err := c.DiscountFactor(p.PayDate)
		if err != nil {
			return 0, 0, fmt.Errorf("PVByLeg: %s: %w", p.PayDate.Format("2006-01-02"), err)
		}
		fixed += s.cfg.Notional * (s.cfg.FixedRate / 100.0) * p.YearFrac * df
	}
	for _, p := range s.floatLeg {
		if !p.PayDate.After(asof) {
			continue
		}
		fwd, err := s.forwardRate(c, p)
		if err != nil {
			return 0, 0, err
		}
		df, err := c.DiscountFactor(p.PayDate)
		if err != nil {
			return 0, 0, fmt.Errorf("PVByLeg: %s: %w", p.PayDate.Format("2006-01-02"), err)
		}
		float += s.cfg.Notional * fwd * p.YearFrac * df
	}
	return fixed, float, nil
}

// NPV returns the signed net present value: fixed minus floating for a
// receiver, floating minus fixed for a payer.
func (s *InterestRateSwap) NPV() (float64, error) {
	return s.npvOn(s.cfg.Curve)
}

func (s *InterestRateSwap) npvOn(c *curve.Curve) (float64, error) {
	fixed, float, err := s.pvOn(c)
	if err != nil {
		return 0, err
	}
	if s.cfg.Direction == PositionReceive {
		return fixed - float, nil
	}
	return float - fixed, nil
}

// ParRate returns the fixed rate in percent that sets the NPV to zero on the
// configured curve: the floating leg PV divided by the fixed annuity.
func (s *InterestRateSwap) ParRate() (float64, error) {
	asof := s.cfg.Curve.Start()
	var annuity float64
	for _, p := range s.fixedLeg {
		if !p.PayDate.After(asof) {
			continue
		}
		df, err := s.cfg.Curve.DiscountFactor(p.PayDate)
		if err != nil {
			return 0, fmt.Errorf("ParRate: %s: %w", p.PayDate.Format("2006-01-02"), err)
		}
		annuity += p.YearFrac * df
	}
	if annuity == 0 {
		return 0, fmt.Errorf("%w: no future fixed periods", ErrInvalidSwap)
	}

	_, float, err := s.pvOn(s.cfg.Curve)
	if err != nil {
		return 0, err
	}
	return 100.0 * float / (s.cfg.Notional * annuity), nil
}

// DV01 is the NPV change for a one basis point parallel shift of the curve.
// Negative for a receiver, positive for a payer.
func (s *InterestRateSwap) DV01() (float64, error) {
	base, err := s.npvOn(s.cfg.Curve)
	if err != nil {
		return 0, err
	}
	bumped, err := s.npvOn(s.cfg.Curve.Bump(1))
	if err != nil {
		return 0, err
	}
	return bumped - base, nil
}
