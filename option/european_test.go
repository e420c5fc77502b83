package option_test

import (
	"errors"
	"math"
	"testing"

	"github.com/meenmo/pricer/option"
)

func refParams(kind option.Kind) option.Params {
	return option.Params{
		Spot:       100,
		Strike:     105,
		Maturity:   0.5,
		Volatility: 0.25,
		Rate:       0.03,
		Yield:      0,
		Kind:       kind,
	}
}

func TestNewEuropean_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		mod  func(*option.Params)
	}{
		{"zero spot", func(p *option.Params) { p.Spot = 0 }},
		{"negative strike", func(p *option.Params) { p.Strike = -1 }},
		{"zero maturity", func(p *option.Params) { p.Maturity = 0 }},
		{"zero volatility", func(p *option.Params) { p.Volatility = 0 }},
		{"NaN spot", func(p *option.Params) { p.Spot = math.NaN() }},
		{"unknown kind", func(p *option.Params) { p.Kind = option.Kind(7) }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := refParams(option.Call)
			tc.mod(&p)
			if _, err := option.NewEuropean(p); !errors.Is(err, option.ErrInvalidParams) {
				t.Fatalf("got %v want ErrInvalidParams", err)
			}
		})
	}
}

// Reference oracle: spot 100, strike 105, T 0.5, vol 0.25, r 3%, q 0.
// Values are the closed-form Black-Scholes results to 12 decimals.
func TestEuropean_ReferenceValues(t *testing.T) {
	t.Parallel()

	call, err := option.NewEuropean(refParams(option.Call))
	if err != nil {
		t.Fatalf("NewEuropean: %v", err)
	}

	price, err := call.Price()
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if want := 5.575976644070; math.Abs(price-want) > 1e-6 {
		t.Fatalf("call price: got %.12f want %.12f", price, want)
	}

	greeks, err := call.Greeks()
	if err != nil {
		t.Fatalf("Greeks: %v", err)
	}
	if want := 0.459077644502; math.Abs(greeks["delta"]-want) > 1e-6 {
		t.Fatalf("call delta: got %.12f want %.12f", greeks["delta"], want)
	}
	for _, key := range []string{"delta", "gamma", "vega", "theta", "rho"} {
		if _, ok := greeks[key]; !ok {
			t.Fatalf("missing greek %q", key)
		}
	}
	if greeks["gamma"] <= 0 || greeks["vega"] <= 0 {
		t.Fatalf("gamma/vega must be positive: gamma=%v vega=%v", greeks["gamma"], greeks["vega"])
	}
	if greeks["theta"] >= 0 {
		t.Fatalf("call theta must be negative with q=0: %v", greeks["theta"])
	}
}

func TestEuropean_PutCallParity(t *testing.T) {
	t.Parallel()

	cases := []option.Params{
		refParams(option.Call),
		{Spot: 50, Strike: 60, Maturity: 2, Volatility: 0.4, Rate: 0.05, Yield: 0.02, Kind: option.Call},
		{Spot: 120, Strike: 100, Maturity: 0.25, Volatility: 0.15, Rate: 0.01, Yield: 0.03, Kind: option.Call},
	}
	for _, p := range cases {
		call, err := option.NewEuropean(p)
		if err != nil {
			t.Fatalf("NewEuropean call: %v", err)
		}
		pp := p
		pp.Kind = option.Put
		put, err := option.NewEuropean(pp)
		if err != nil {
			t.Fatalf("NewEuropean put: %v", err)
		}

		c, _ := call.Price()
		pv, _ := put.Price()
		want := p.Spot*math.Exp(-p.Yield*p.Maturity) - p.Strike*math.Exp(-p.Rate*p.Maturity)
		if got := c - pv; math.Abs(got-want) > 1e-9 {
			t.Fatalf("parity violated: C-P=%.12f want %.12f (spot=%v)", got, want, p.Spot)
		}
	}
}

func TestEuropean_PutDelta(t *testing.T) {
	t.Parallel()

	put, err := option.NewEuropean(refParams(option.Put))
	if err != nil {
		t.Fatalf("NewEuropean: %v", err)
	}
	greeks, err := put.Greeks()
	if err != nil {
		t.Fatalf("Greeks: %v", err)
	}
	if want := -0.540922355498; math.Abs(greeks["delta"]-want) > 1e-6 {
		t.Fatalf("put delta: got %.12f want %.12f", greeks["delta"], want)
	}
	if greeks["rho"] >= 0 {
		t.Fatalf("put rho must be negative: %v", greeks["rho"])
	}
}
