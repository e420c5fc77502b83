package swap_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/meenmo/pricer/curve"
	"github.com/meenmo/pricer/swap"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func flatCurve(t *testing.T, ratePct float64) *curve.Curve {
	t.Helper()
	c, err := curve.New([]curve.Point{
		{Date: date(2025, time.January, 2), Rate: ratePct},
		{Date: date(2045, time.January, 2), Rate: ratePct},
	})
	if err != nil {
		t.Fatalf("curve.New: %v", err)
	}
	return c
}

func baseConfig(t *testing.T) swap.Config {
	t.Helper()
	return swap.Config{
		Notional:       1e6,
		FixedRate:      2.5,
		FixedFrequency: 2,
		FloatFrequency: 4,
		EffectiveDate:  date(2025, time.January, 2),
		MaturityDate:   date(2030, time.January, 2),
		Direction:      swap.PositionReceive,
		Curve:          flatCurve(t, 2.5),
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		mod  func(*swap.Config)
	}{
		{"zero notional", func(c *swap.Config) { c.Notional = 0 }},
		{"bad fixed frequency", func(c *swap.Config) { c.FixedFrequency = 3 }},
		{"bad float frequency", func(c *swap.Config) { c.FloatFrequency = 0 }},
		{"maturity before effective", func(c *swap.Config) { c.MaturityDate = date(2020, time.January, 1) }},
		{"bad direction", func(c *swap.Config) { c.Direction = "LONG" }},
		{"nil curve", func(c *swap.Config) { c.Curve = nil }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := baseConfig(t)
			tc.mod(&cfg)
			if _, err := swap.New(cfg); !errors.Is(err, swap.ErrInvalidSwap) {
				t.Fatalf("got %v want ErrInvalidSwap", err)
			}
		})
	}
}

func TestSchedules(t *testing.T) {
	t.Parallel()

	s, err := swap.New(baseConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	fixed := s.FixedLeg()
	if got, want := len(fixed), 10; got != want {
		t.Fatalf("fixed periods: got %d want %d", got, want)
	}
	float, err := s.FloatLeg()
	if err != nil {
		t.Fatalf("FloatLeg: %v", err)
	}
	if got, want := len(float), 20; got != want {
		t.Fatalf("float periods: got %d want %d", got, want)
	}

	for i, p := range float {
		if !p.StartDate.Before(p.EndDate) {
			t.Fatalf("period %d: start %s not before end %s", i,
				p.StartDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02"))
		}
		if !p.FixingDate.Before(p.StartDate) {
			t.Fatalf("period %d: fixing %s not before start %s", i,
				p.FixingDate.Format("2006-01-02"), p.StartDate.Format("2006-01-02"))
		}
		if p.YearFrac <= 0 {
			t.Fatalf("period %d: non-positive year fraction %v", i, p.YearFrac)
		}
		if p.Rate <= 0 {
			t.Fatalf("period %d: non-positive projected forward %v", i, p.Rate)
		}
	}
}

// A swap struck at its own par rate has zero NPV by construction.
func TestParRate_ZeroesNPV(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	probe, err := swap.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	par, err := probe.ParRate()
	if err != nil {
		t.Fatalf("ParRate: %v", err)
	}

	cfg.FixedRate = par
	atPar, err := swap.New(cfg)
	if err != nil {
		t.Fatalf("New at par: %v", err)
	}
	npv, err := atPar.NPV()
	if err != nil {
		t.Fatalf("NPV: %v", err)
	}
	// Tolerance is scaled to the notional.
	if math.Abs(npv) > cfg.Notional*1e-10 {
		t.Fatalf("par swap NPV: got %v want ~0", npv)
	}
}

// Receiver and payer of the same trade are exact mirrors.
func TestNPV_SignConvention(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.FixedRate = 4.0 // comfortably above the ~2.5% par rate

	rec, err := swap.New(cfg)
	if err != nil {
		t.Fatalf("New rec: %v", err)
	}
	cfg.Direction = swap.PositionPay
	pay, err := swap.New(cfg)
	if err != nil {
		t.Fatalf("New pay: %v", err)
	}

	recNPV, err := rec.NPV()
	if err != nil {
		t.Fatalf("NPV rec: %v", err)
	}
	payNPV, err := pay.NPV()
	if err != nil {
		t.Fatalf("NPV pay: %v", err)
	}

	if recNPV <= 0 {
		t.Fatalf("receiving 4%% against ~2.5%% par must be positive, got %v", recNPV)
	}
	if math.Abs(recNPV+payNPV) > 1e-9 {
		t.Fatalf("rec %.6f and pay %.6f are not mirrors", recNPV, payNPV)
	}
}

func TestDV01_Sign(t *testing.T) {
	t.Parallel()

	rec, err := swap.New(baseConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dv01, err := rec.DV01()
	if err != nil {
		t.Fatalf("DV01: %v", err)
	}
	if dv01 >= 0 {
		t.Fatalf("receiver DV01 must be negative, got %v", dv01)
	}

	cfg := baseConfig(t)
	cfg.Direction = swap.PositionPay
	pay, err := swap.New(cfg)
	if err != nil {
		t.Fatalf("New pay: %v", err)
	}
	payDV01, err := pay.DV01()
	if err != nil {
		t.Fatalf("DV01 pay: %v", err)
	}
	if payDV01 <= 0 {
		t.Fatalf("payer DV01 must be positive, got %v", payDV01)
	}
	if math.Abs(dv01+payDV01) > 1e-9 {
		t.Fatalf("rec %.6f and pay %.6f DV01 are not mirrors", dv01, payDV01)
	}
}

// The floating spread raises the floating leg PV by spread * annuity, so a
// positive spread lowers a receiver's NPV.
func TestFloatSpread(t *testing.T) {
	t.Parallel()

	flat, err := swap.New(baseConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg := baseConfig(t)
	cfg.FloatSpreadBP = 25
	spread, err := swap.New(cfg)
	if err != nil {
		t.Fatalf("New with spread: %v", err)
	}

	base, err := flat.NPV()
	if err != nil {
		t.Fatalf("NPV: %v", err)
	}
	withSpread, err := spread.NPV()
	if err != nil {
		t.Fatalf("NPV with spread: %v", err)
	}
	if withSpread >= base {
		t.Fatalf("spread must lower receiver NPV: base %.2f with spread %.2f", base, withSpread)
	}
}
