package marketdata

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver
	"github.com/meenmo/pricer/curve"
)

// PostgresFeed reads zero-curve quotes from a Postgres table:
//
//	CREATE TABLE zero_curve_quotes (
//	    curve_name text    NOT NULL,
//	    quote_date date    NOT NULL,
//	    rate_pct   numeric NOT NULL,
//	    PRIMARY KEY (curve_name, quote_date)
//	);
type PostgresFeed struct {
	db *sql.DB
}

// NewPostgresFeed opens a connection pool for the given DSN and verifies it
// with a ping.
func NewPostgresFeed(dsn string) (*PostgresFeed, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresFeed: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("NewPostgresFeed: ping: %w", err)
	}
	return &PostgresFeed{db: db}, nil
}

// CurveQuotes returns the named curve's quotes in ascending date order.
func (f *PostgresFeed) CurveQuotes(name string) ([]curve.Point, error) {
	rows, err := f.db.Query(
		`SELECT quote_date, rate_pct
		   FROM zero_curve_quotes
		  WHERE curve_name = $1
		  ORDER BY quote_date`, name)
	if err != nil {
		return nil, fmt.Errorf("CurveQuotes: %q: %w", name, err)
	}
	defer rows.Close()

	var points []curve.Point
	for rows.Next() {
		var p curve.Point
		if err := rows.Scan(&p.Date, &p.Rate); err != nil {
			return nil, fmt.Errorf("CurveQuotes: %q: scan: %w", name, err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("CurveQuotes: %q: %w", name, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("CurveQuotes: %w: %q", ErrCurveNotFound, name)
	}
	return points, nil
}

// Close releases the connection pool.
func (f *PostgresFeed) Close() error {
	return f.db.Close()
}
