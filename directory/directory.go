// Package directory resolves free-text medication names against the
// medication reference database (Postgres). Lookups are fuzzy (substring
// match on name or active ingredient) and run through a circuit breaker so a
// failing database degrades controlled-substance checks instead of taking
// down evaluations.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mindhub/medsafety-api/interfaces"
	"github.com/mindhub/medsafety-api/knowledge"
	"github.com/mindhub/medsafety-api/logging"
	"github.com/mindhub/medsafety-api/metrics"
	"github.com/sony/gobreaker"
)

// Compile-time check to ensure Directory implements MedicationDirectory
var _ interfaces.MedicationDirectory = (*Directory)(nil)

const lookupQuery = `
SELECT id, name, COALESCE(active_ingredient, ''), is_controlled, COALESCE(controlled_category, '')
FROM medication_reference
WHERE name ILIKE '%' || $1 || '%' OR active_ingredient ILIKE '%' || $1 || '%'
ORDER BY length(name) ASC
LIMIT 1`

const searchQuery = `
SELECT id, name, COALESCE(active_ingredient, ''), is_controlled, COALESCE(controlled_category, '')
FROM medication_reference
WHERE name ILIKE '%' || $1 || '%' OR active_ingredient ILIKE '%' || $1 || '%'
ORDER BY length(name) ASC
LIMIT $2`

// querier is the subset of pgxpool.Pool the directory needs; it exists so
// tests can substitute a failing or canned implementation.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// Directory is the pgx-backed medication reference lookup.
type Directory struct {
	db      querier
	pool    *pgxpool.Pool
	breaker *gobreaker.CircuitBreaker
}

// New connects to the medication reference database. The connection is
// verified with a ping before the directory is handed out.
func New(ctx context.Context, databaseURL string) (*Directory, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("medication reference database unreachable: %w", err)
	}

	return &Directory{
		db:      pool,
		pool:    pool,
		breaker: newBreaker(),
	}, nil
}

// NewDisabled returns a directory with no backing database. Lookups report
// unavailable and the evaluator skips controlled-substance checks.
func NewDisabled() *Directory {
	return &Directory{}
}

func newBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "medication-directory",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("Circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Available reports whether a backing database is configured.
func (d *Directory) Available() bool {
	return d != nil && d.db != nil
}

// Lookup resolves a medication name to its closest reference entry. A nil
// result with a nil error means no match.
func (d *Directory) Lookup(ctx context.Context, name string) (*knowledge.MedicationReference, error) {
	if !d.Available() {
		return nil, fmt.Errorf("medication directory is not configured")
	}

	term := strings.TrimSpace(name)
	if term == "" {
		return nil, nil
	}

	result, err := d.breaker.Execute(func() (any, error) {
		var ref knowledge.MedicationReference
		row := d.db.QueryRow(ctx, lookupQuery, term)
		err := row.Scan(&ref.ID, &ref.Name, &ref.ActiveIngredient, &ref.IsControlled, &ref.ControlledCategory)
		if errors.Is(err, pgx.ErrNoRows) {
			return (*knowledge.MedicationReference)(nil), nil
		}
		if err != nil {
			return nil, fmt.Errorf("lookup query failed: %w", err)
		}
		return &ref, nil
	})
	if err != nil {
		metrics.DirectoryLookupFailures.Inc()
		return nil, err
	}

	return result.(*knowledge.MedicationReference), nil
}

// Search returns up to limit reference entries matching the name.
func (d *Directory) Search(ctx context.Context, name string, limit int) ([]knowledge.MedicationReference, error) {
	if !d.Available() {
		return nil, fmt.Errorf("medication directory is not configured")
	}

	term := strings.TrimSpace(name)
	if term == "" {
		return nil, fmt.Errorf("search term cannot be empty")
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	result, err := d.breaker.Execute(func() (any, error) {
		rows, err := d.db.Query(ctx, searchQuery, term, limit)
		if err != nil {
			return nil, fmt.Errorf("search query failed: %w", err)
		}
		defer rows.Close()

		var refs []knowledge.MedicationReference
		for rows.Next() {
			var ref knowledge.MedicationReference
			if err := rows.Scan(&ref.ID, &ref.Name, &ref.ActiveIngredient, &ref.IsControlled, &ref.ControlledCategory); err != nil {
				return nil, fmt.Errorf("failed to scan reference row: %w", err)
			}
			refs = append(refs, ref)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("search rows failed: %w", err)
		}
		return refs, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]knowledge.MedicationReference), nil
}

// Ping checks database reachability, used by the health endpoint.
func (d *Directory) Ping(ctx context.Context) error {
	if !d.Available() {
		return fmt.Errorf("medication directory is not configured")
	}
	return d.db.Ping(ctx)
}

// Close releases the connection pool.
func (d *Directory) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}
