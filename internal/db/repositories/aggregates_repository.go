package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"flightdeck/logbook/internal/constants"
)

// AggregateFilter narrows aggregation queries. Military is tri-state:
// nil means no filter, true means military rows only, false civilian only.
type AggregateFilter struct {
	Military *bool
	Since    *time.Time
}

// AggregatesRepository runs the hand-written summation SQL behind the
// scorecard. All queries are read-only and scoped to one user; column names
// are validated against the canonical catalog before interpolation.
type AggregatesRepository struct {
	db *sqlx.DB
}

func NewAggregatesRepo(db *sqlx.DB) *AggregatesRepository {
	return &AggregatesRepository{db}
}

func dbColumn(col string) (string, error) {
	dbCol, ok := constants.DBColumn[col]
	if !ok {
		return "", fmt.Errorf("unknown aggregate column %q", col)
	}
	return dbCol, nil
}

func (f AggregateFilter) clauses() (string, []interface{}) {
	clause := ""
	args := []interface{}{}
	if f.Military != nil {
		if *f.Military {
			clause += " AND military > 0"
		} else {
			clause += " AND military = 0"
		}
	}
	if f.Since != nil {
		clause += " AND flight_date >= ?"
		args = append(args, *f.Since)
	}
	return clause, args
}

// SumColumn computes SUM(column) for one user under the given filter.
// Null sums (no rows) come back as 0.
func (r *AggregatesRepository) SumColumn(ctx context.Context, userID, col string, filter AggregateFilter) (float64, error) {
	dbCol, err := dbColumn(col)
	if err != nil {
		return 0, err
	}

	clause, extra := filter.clauses()
	query := fmt.Sprintf(
		`SELECT COALESCE(SUM(%s), 0) FROM flight_log_rows WHERE user_id = ?%s`,
		dbCol, clause,
	)
	args := append([]interface{}{userID}, extra...)

	var sum float64
	if err := r.db.GetContext(ctx, &sum, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to sum %s: %w", dbCol, err)
	}
	if math.IsNaN(sum) {
		sum = 0
	}
	return sum, nil
}

// SumColumnByAircraft computes SUM(column) grouped by aircraft type,
// returned as a map keyed by canonical aircraft type.
func (r *AggregatesRepository) SumColumnByAircraft(ctx context.Context, userID, col string, filter AggregateFilter) (map[string]float64, error) {
	dbCol, err := dbColumn(col)
	if err != nil {
		return nil, err
	}

	clause, extra := filter.clauses()
	query := fmt.Sprintf(
		`SELECT aircraft_type, COALESCE(SUM(%s), 0) AS total
		 FROM flight_log_rows WHERE user_id = ?%s GROUP BY aircraft_type`,
		dbCol, clause,
	)
	args := append([]interface{}{userID}, extra...)

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sum %s by aircraft: %w", dbCol, err)
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var aircraft string
		var total float64
		if err := rows.Scan(&aircraft, &total); err != nil {
			return nil, fmt.Errorf("failed to scan grouped sum: %w", err)
		}
		if math.IsNaN(total) {
			total = 0
		}
		result[aircraft] = total
	}
	return result, rows.Err()
}

// FlightDateRange returns the earliest and latest flight dates for the user,
// or nils when the logbook is empty.
func (r *AggregatesRepository) FlightDateRange(ctx context.Context, userID string, filter AggregateFilter) (*time.Time, *time.Time, error) {
	clause, extra := filter.clauses()
	query := `SELECT MIN(flight_date), MAX(flight_date) FROM flight_log_rows WHERE user_id = ?` + clause
	args := append([]interface{}{userID}, extra...)

	var earliest, latest sql.NullTime
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query), args...).Scan(&earliest, &latest)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch flight date range: %w", err)
	}

	var e, l *time.Time
	if earliest.Valid {
		t := earliest.Time.UTC()
		e = &t
	}
	if latest.Valid {
		t := latest.Time.UTC()
		l = &t
	}
	return e, l, nil
}
