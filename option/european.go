package option

import "math"

// European is a vanilla option priced by the Black-Scholes closed form with
// a continuous yield.
type European struct {
	p Params
}

// NewEuropean validates the parameters and returns the option.
func NewEuropean(p Params) (*European, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &European{p: p}, nil
}

func (o *European) d1d2() (float64, float64) {
	p := o.p
	sqrtT := math.Sqrt(p.Maturity)
	d1 := (math.Log(p.Spot/p.Strike) + (p.Rate-p.Yield+0.5*p.Volatility*p.Volatility)*p.Maturity) /
		(p.Volatility * sqrtT)
	return d1, d1 - p.Volatility*sqrtT
}

// Price returns the Black-Scholes value. It never fails after construction.
func (o *European) Price() (float64, error) {
	return o.price(), nil
}

func (o *European) price() float64 {
	p := o.p
	d1, d2 := o.d1d2()
	discR := math.Exp(-p.Rate * p.Maturity)
	discQ := math.Exp(-p.Yield * p.Maturity)
	if p.Kind == Call {
		return discQ*p.Spot*normCDF(d1) - discR*p.Strike*normCDF(d2)
	}
	return discR*p.Strike*normCDF(-d2) - discQ*p.Spot*normCDF(-d1)
}

// Greeks returns the five analytic sensitivities: delta, gamma, vega (per
// 1 vol point), theta (per calendar day) and rho (per 1 rate point).
func (o *European) Greeks() (map[string]float64, error) {
	p := o.p
	d1, d2 := o.d1d2()
	sqrtT := math.Sqrt(p.Maturity)
	discR := math.Exp(-p.Rate * p.Maturity)
	discQ := math.Exp(-p.Yield * p.Maturity)
	pdf1 := normPDF(d1)

	var delta float64
	if p.Kind == Call {
		delta = discQ * normCDF(d1)
	} else {
		delta = discQ * (normCDF(d1) - 1)
	}

	gamma := discQ * pdf1 / (p.Spot * p.Volatility * sqrtT)
	vega := p.Spot * discQ * pdf1 * sqrtT / 100

	decay := -p.Spot * discQ * pdf1 * p.Volatility / (2 * sqrtT)
	var theta, rho float64
	if p.Kind == Call {
		theta = (decay + p.Yield*p.Spot*discQ*normCDF(d1) - p.Rate*p.Strike*discR*normCDF(d2)) / 365
		rho = p.Strike * p.Maturity * discR * normCDF(d2) / 100
	} else {
		theta = (decay - p.Yield*p.Spot*discQ*normCDF(-d1) + p.Rate*p.Strike*discR*normCDF(-d2)) / 365
		rho = -p.Strike * p.Maturity * discR * normCDF(-d2) / 100
	}

	return map[string]float64{
		"delta": delta,
		"gamma": gamma,
		"vega":  vega,
		"theta": theta,
		"rho":   rho,
	}, nil
}
