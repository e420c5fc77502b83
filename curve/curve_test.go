package curve_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/meenmo/pricer/curve"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testPoints() []curve.Point {
	return []curve.Point{
		{Date: date(2025, 1, 15), Rate: 2.00},
		{Date: date(2026, 1, 15), Rate: 2.50},
		{Date: date(2027, 1, 15), Rate: 3.00},
		{Date: date(2030, 1, 15), Rate: 3.40},
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	if _, err := curve.New(testPoints()[:1]); !errors.Is(err, curve.ErrInvalidPoints) {
		t.Fatalf("single point: got %v want ErrInvalidPoints", err)
	}

	dup := testPoints()
	dup[1].Date = dup[0].Date
	if _, err := curve.New(dup); !errors.Is(err, curve.ErrInvalidPoints) {
		t.Fatalf("duplicate date: got %v want ErrInvalidPoints", err)
	}

	bad := testPoints()
	bad[2].Rate = math.NaN()
	if _, err := curve.New(bad); !errors.Is(err, curve.ErrInvalidPoints) {
		t.Fatalf("NaN rate: got %v want ErrInvalidPoints", err)
	}
}

func TestForwardRate_InterpolationAndUnits(t *testing.T) {
	t.Parallel()

	pct, err := curve.New(testPoints())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Percent input is normalized to decimals.
	r, err := pct.ForwardRate(date(2026, 1, 15))
	if err != nil {
		t.Fatalf("ForwardRate: %v", err)
	}
	if math.Abs(r-0.025) > 1e-12 {
		t.Fatalf("quoted point rate: got %.12f want 0.025", r)
	}

	// Midpoint of a one-year segment interpolates halfway.
	mid, err := pct.ForwardRate(date(2026, 7, 16))
	if err != nil {
		t.Fatalf("ForwardRate: %v", err)
	}
	want := 0.025 + 0.005*182.0/365.0
	if math.Abs(mid-want) > 1e-12 {
		t.Fatalf("interpolated rate: got %.12f want %.12f", mid, want)
	}

	// A curve built from decimals must match one built from percent.
	decPoints := testPoints()
	for i := range decPoints {
		decPoints[i].Rate /= 100.0
	}
	dec, err := curve.New(decPoints, curve.Decimals())
	if err != nil {
		t.Fatalf("New decimals: %v", err)
	}
	rd, err := dec.ForwardRate(date(2026, 7, 16))
	if err != nil {
		t.Fatalf("ForwardRate: %v", err)
	}
	if math.Abs(rd-mid) > 1e-15 {
		t.Fatalf("decimal/percent mismatch: %.15f vs %.15f", rd, mid)
	}
}

func TestDiscountFactor(t *testing.T) {
	t.Parallel()

	c, err := curve.New(testPoints())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// DF at the anchor date is exactly 1.
	df0, err := c.DiscountFactor(c.Start())
	if err != nil {
		t.Fatalf("DiscountFactor: %v", err)
	}
	if math.Abs(df0-1.0) > 1e-15 {
		t.Fatalf("DF(anchor): got %.15f want 1", df0)
	}

	// One year out at the quoted 2.50%: exp(-0.025 * 365/365).
	df1, err := c.DiscountFactor(date(2026, 1, 15))
	if err != nil {
		t.Fatalf("DiscountFactor: %v", err)
	}
	if want := math.Exp(-0.025); math.Abs(df1-want) > 1e-12 {
		t.Fatalf("DF(1Y): got %.12f want %.12f", df1, want)
	}
}

func TestForwardRate_ExtrapolationPolicy(t *testing.T) {
	t.Parallel()

	clamped, err := curve.New(testPoints())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	beyond := date(2040, 1, 15)
	r, err := clamped.ForwardRate(beyond)
	if err != nil {
		t.Fatalf("clamped ForwardRate: %v", err)
	}
	if math.Abs(r-0.034) > 1e-12 {
		t.Fatalf("clamped rate: got %.12f want 0.034", r)
	}

	strict, err := curve.New(testPoints(), curve.WithExtrapolation(curve.ExtrapolateError))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := strict.ForwardRate(beyond); !errors.Is(err, curve.ErrExtrapolation) {
		t.Fatalf("strict ForwardRate: got %v want ErrExtrapolation", err)
	}
	if _, err := strict.DiscountFactor(beyond); !errors.Is(err, curve.ErrExtrapolation) {
		t.Fatalf("strict DiscountFactor: got %v want ErrExtrapolation", err)
	}
}

func TestBump_ZeroIsIdentity(t *testing.T) {
	t.Parallel()

	base, err := curve.New(testPoints())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	same := base.Bump(0)

	probes := []time.Time{
		date(2025, 1, 15), date(2025, 8, 1), date(2026, 1, 15),
		date(2027, 6, 30), date(2029, 12, 31), date(2030, 1, 15),
	}
	for _, d := range probes {
		r0, _ := base.ForwardRate(d)
		r1, _ := same.ForwardRate(d)
		if r0 != r1 {
			t.Fatalf("bump(0) rate mismatch at %s: %.15f vs %.15f", d.Format("2006-01-02"), r0, r1)
		}
		df0, _ := base.DiscountFactor(d)
		df1, _ := same.DiscountFactor(d)
		if df0 != df1 {
			t.Fatalf("bump(0) DF mismatch at %s: %.15f vs %.15f", d.Format("2006-01-02"), df0, df1)
		}
	}
}

func TestBump_IsPure(t *testing.T) {
	t.Parallel()

	base, err := curve.New(testPoints())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	probe := date(2026, 1, 15)
	before, _ := base.ForwardRate(probe)

	bumped := base.Bump(1)
	after, _ := base.ForwardRate(probe)
	if before != after {
		t.Fatalf("Bump mutated the base curve: %.15f -> %.15f", before, after)
	}

	rb, _ := bumped.ForwardRate(probe)
	if math.Abs(rb-(before+0.0001)) > 1e-15 {
		t.Fatalf("bumped rate: got %.15f want %.15f", rb, before+0.0001)
	}
}
