// Command pricer values a YAML scenario of options, bonds and swaps on a
// shared zero curve and prints the results as tables.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/pricer/bond"
	"github.com/meenmo/pricer/calendar"
	"github.com/meenmo/pricer/curve"
	"github.com/meenmo/pricer/marketdata"
	"github.com/meenmo/pricer/option"
	"github.com/meenmo/pricer/swap"
)

// Scenario is the YAML input. The curve comes either from inline points or
// from a Postgres feed; rates are percent throughout.
type Scenario struct {
	Curve struct {
		DayCount string `yaml:"day_count"`
		Points   []struct {
			Date string  `yaml:"date"`
			Rate float64 `yaml:"rate"`
		} `yaml:"points"`
	} `yaml:"curve"`

	Database struct {
		DSN       string `yaml:"dsn"`
		CurveName string `yaml:"curve_name"`
	} `yaml:"database"`

	Options []OptionSpec `yaml:"options"`
	Bonds   []BondSpec   `yaml:"bonds"`
	Swaps   []SwapSpec   `yaml:"swaps"`
}

type OptionSpec struct {
	Name       string  `yaml:"name"`
	Style      string  `yaml:"style"` // european, american, asian, barrier
	Kind       string  `yaml:"kind"`  // call, put
	Spot       float64 `yaml:"spot"`
	Strike     float64 `yaml:"strike"`
	Maturity   float64 `yaml:"maturity"`
	Volatility float64 `yaml:"volatility"`
	Rate       float64 `yaml:"rate"`
	Yield      float64 `yaml:"yield"`

	Steps int   `yaml:"steps"`
	Paths int   `yaml:"paths"`
	Seed  int64 `yaml:"seed"`

	Barrier          float64 `yaml:"barrier"`
	BarrierDirection string  `yaml:"barrier_direction"` // up, down
	BarrierStyle     string  `yaml:"barrier_style"`     // out, in
}

type BondSpec struct {
	Name         string  `yaml:"name"`
	Face         float64 `yaml:"face"`
	CouponRate   float64 `yaml:"coupon_rate"`
	Frequency    int     `yaml:"frequency"`
	IssueDate    string  `yaml:"issue_date"`
	MaturityDate string  `yaml:"maturity_date"`
}

type SwapSpec struct {
	Name           string  `yaml:"name"`
	Notional       float64 `yaml:"notional"`
	FixedRate      float64 `yaml:"fixed_rate"`
	FixedFrequency int     `yaml:"fixed_frequency"`
	FloatFrequency int     `yaml:"float_frequency"`
	EffectiveDate  string  `yaml:"effective_date"`
	MaturityDate   string  `yaml:"maturity_date"`
	Direction      string  `yaml:"direction"` // REC, PAY
	FloatSpreadBP  float64 `yaml:"float_spread_bp"`
}

func main() {
	input := flag.String("input", "scenario.yaml", "path to the scenario YAML")
	flag.Parse()

	scenario, err := loadScenario(*input)
	if err != nil {
		log.Fatal(err)
	}
	if err := run(scenario); err != nil {
		log.Fatal(err)
	}
}

func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loadScenario: read %q: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("loadScenario: parse YAML: %w", err)
	}
	return &s, nil
}

func run(s *Scenario) error {
	c, err := buildCurve(s)
	if err != nil {
		return err
	}

	if len(s.Options) > 0 {
		if err := priceOptions(s.Options); err != nil {
			return err
		}
	}
	if len(s.Bonds) > 0 {
		if err := priceBonds(s.Bonds, c); err != nil {
			return err
		}
	}
	if len(s.Swaps) > 0 {
		if err := priceSwaps(s.Swaps, c); err != nil {
			return err
		}
	}
	return nil
}

func buildCurve(s *Scenario) (*curve.Curve, error) {
	var opts []curve.Option
	if s.Curve.DayCount != "" {
		opts = append(opts, curve.WithDayCount(s.Curve.DayCount))
	}

	if s.Database.DSN != "" {
		feed, err := marketdata.NewPostgresFeed(s.Database.DSN)
		if err != nil {
			return nil, err
		}
		defer feed.Close()
		return marketdata.LoadCurve(feed, s.Database.CurveName, opts...)
	}

	if len(s.Curve.Points) == 0 {
		return nil, nil // scenarios with options only need no curve
	}
	points := make([]curve.Point, len(s.Curve.Points))
	for i, p := range s.Curve.Points {
		d, err := parseDate(p.Date)
		if err != nil {
			return nil, fmt.Errorf("buildCurve: %w", err)
		}
		points[i] = curve.Point{Date: d, Rate: p.Rate}
	}
	c, err := curve.New(points, opts...)
	if err != nil {
		return nil, fmt.Errorf("buildCurve: %w", err)
	}
	return c, nil
}

func priceOptions(specs []OptionSpec) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Style", "Kind", "Price", "Delta")

	for _, spec := range specs {
		inst, err := buildOption(spec)
		if err != nil {
			return err
		}
		price, err := inst.Price()
		if err != nil {
			return fmt.Errorf("option %q: %w", spec.Name, err)
		}
		greeks, err := inst.Greeks()
		if err != nil {
			return fmt.Errorf("option %q: %w", spec.Name, err)
		}
		table.Append(spec.Name, spec.Style, spec.Kind,
			fmt.Sprintf("%.4f", price),
			fmt.Sprintf("%.4f", greeks["delta"]))
	}
	table.Render()
	return nil
}

func buildOption(spec OptionSpec) (option.Instrument, error) {
	kind := option.Call
	if strings.EqualFold(spec.Kind, "put") {
		kind = option.Put
	}
	p := option.Params{
		Spot:       spec.Spot,
		Strike:     spec.Strike,
		Maturity:   spec.Maturity,
		Volatility: spec.Volatility,
		Rate:       spec.Rate,
		Yield:      spec.Yield,
		Kind:       kind,
	}

	steps := spec.Steps
	if steps == 0 {
		steps = 500
	}
	paths := spec.Paths
	if paths == 0 {
		paths = 100000
	}

	switch strings.ToLower(spec.Style) {
	case "european":
		return option.NewEuropean(p)
	case "american":
		return option.NewAmerican(p, steps)
	case "asian":
		return option.NewAsian(p, steps, paths, spec.Seed)
	case "barrier":
		direction := option.Up
		if strings.EqualFold(spec.BarrierDirection, "down") {
			direction = option.Down
		}
		style := option.KnockOut
		if strings.EqualFold(spec.BarrierStyle, "in") {
			style = option.KnockIn
		}
		return option.NewBarrier(p, spec.Barrier, direction, style, steps)
	default:
		return nil, fmt.Errorf("option %q: unknown style %q", spec.Name, spec.Style)
	}
}

func priceBonds(specs []BondSpec, c *curve.Curve) error {
	if c == nil {
		return fmt.Errorf("bonds require a curve in the scenario")
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Price", "YTM %", "Duration", "DV01")

	for _, spec := range specs {
		issue, err := parseDate(spec.IssueDate)
		if err != nil {
			return fmt.Errorf("bond %q: %w", spec.Name, err)
		}
		maturity, err := parseDate(spec.MaturityDate)
		if err != nil {
			return fmt.Errorf("bond %q: %w", spec.Name, err)
		}
		b, err := bond.New(bond.Config{
			Face:         spec.Face,
			CouponRate:   spec.CouponRate,
			Frequency:    spec.Frequency,
			IssueDate:    issue,
			MaturityDate: maturity,
			Calendar:     calendar.Weekend,
			Convention:   calendar.ModifiedFollowing,
			Curve:        c,
		})
		if err != nil {
			return fmt.Errorf("bond %q: %w", spec.Name, err)
		}

		price, err := b.Price()
		if err != nil {
			return fmt.Errorf("bond %q: %w", spec.Name, err)
		}
		ytm, err := b.YieldToMaturity(price)
		if err != nil {
			return fmt.Errorf("bond %q: %w", spec.Name, err)
		}
		dur, err := b.Duration()
		if err != nil {
			return fmt.Errorf("bond %q: %w", spec.Name, err)
		}
		dv01, err := b.DV01()
		if err != nil {
			return fmt.Errorf("bond %q: %w", spec.Name, err)
		}
		table.Append(spec.Name,
			fmt.Sprintf("%.4f", price),
			fmt.Sprintf("%.4f", ytm),
			fmt.Sprintf("%.4f", dur),
			fmt.Sprintf("%.4f", dv01))
	}
	table.Render()
	return nil
}

func priceSwaps(specs []SwapSpec, c *curve.Curve) error {
	if c == nil {
		return fmt.Errorf("swaps require a curve in the scenario")
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "NPV", "Par %", "DV01")

	for _, spec := range specs {
		effective, err := parseDate(spec.EffectiveDate)
		if err != nil {
			return fmt.Errorf("swap %q: %w", spec.Name, err)
		}
		maturity, err := parseDate(spec.MaturityDate)
		if err != nil {
			return fmt.Errorf("swap %q: %w", spec.Name, err)
		}
		s, err := swap.New(swap.Config{
			Notional:       spec.Notional,
			FixedRate:      spec.FixedRate,
			FixedFrequency: spec.FixedFrequency,
			FloatFrequency: spec.FloatFrequency,
			EffectiveDate:  effective,
			MaturityDate:   maturity,
			Direction:      swap.Position(strings.ToUpper(spec.Direction)),
			FloatSpreadBP:  spec.FloatSpreadBP,
			Calendar:       calendar.Weekend,
			Curve:          c,
		})
		if err != nil {
			return fmt.Errorf("swap %q: %w", spec.Name, err)
		}

		npv, err := s.NPV()
		if err != nil {
			return fmt.Errorf("swap %q: %w", spec.Name, err)
		}
		par, err := s.ParRate()
		if err != nil {
			return fmt.Errorf("swap %q: %w", spec.Name, err)
		}
		dv01, err := s.DV01()
		if err != nil {
			return fmt.Errorf("swap %q: %w", spec.Name, err)
		}
		table.Append(spec.Name,
			fmt.Sprintf("%.2f", npv),
			fmt.Sprintf("%.4f", par),
			fmt.Sprintf("%.2f", dv01))
	}
	table.Render()
	return nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}
