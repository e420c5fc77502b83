// Package marketdata supplies curve quotes from static maps or a database.
package marketdata

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/meenmo/pricer/curve"
)

// ErrCurveNotFound is returned when a feed has no quotes for the name.
var ErrCurveNotFound = errors.New("curve not found")

// CurveFeed supplies dated zero-rate quotes (percent) for a named curve.
type CurveFeed interface {
	CurveQuotes(name string) ([]curve.Point, error)
}

// MapFeed is a static map-backed implementation for development/testing.
// Keys of the inner map are dates formatted as 2006-01-02.
type MapFeed struct {
	curves map[string]map[string]float64
}

func NewMapFeed(curves map[string]map[string]float64) *MapFeed {
	return &MapFeed{curves: curves}
}

// CurveQuotes returns the named curve's quotes in ascending date order.
func (m *MapFeed) CurveQuotes(name string) ([]curve.Point, error) {
	quotes, ok := m.curves[name]
	if !ok {
		return nil, fmt.Errorf("CurveQuotes: %w: %q", ErrCurveNotFound, name)
	}

	points := make([]curve.Point, 0, len(quotes))
	for day, rate := range quotes {
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("CurveQuotes: %q: bad date %q: %w", name, day, err)
		}
		points = append(points, curve.Point{Date: d, Rate: rate})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points, nil
}

// LoadCurve fetches the named quotes from the feed and builds a curve.
func LoadCurve(feed CurveFeed, name string, opts ...curve.Option) (*curve.Curve, error) {
	points, err := feed.CurveQuotes(name)
	if err != nil {
		return nil, fmt.Errorf("LoadCurve: %w", err)
	}
	c, err := curve.New(points, opts...)
	if err != nil {
		return nil, fmt.Errorf("LoadCurve: %q: %w", name, err)
	}
	return c, nil
}
