package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const runColumns = `id, seq, input, input_canonical, input_hash, normal_form, normal_form_hash, error, stuck, step_count, rule_set, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		r         Run
		stuck     sql.NullBool
		createdAt string
	)
	err := row.Scan(
		&r.ID,
		&r.Seq,
		&r.Input,
		&r.InputCanonical,
		&r.InputHash,
		&r.NormalForm,
		&r.NormalFormHash,
		&r.Error,
		&stuck,
		&r.StepCount,
		&r.RuleSet,
		&createdAt,
	)
	if err != nil {
		return Run{}, err
	}
	r.Stuck = stuck.Valid && stuck.Bool
	r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	return r, nil
}

// ReadRun retrieves a single run by ID.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns runs ordered by seq ASC. limit <= 0 returns every run;
// otherwise the most recent limit runs are returned, still in seq order.
//
// Returns an empty slice (not nil) if the store holds no runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY seq ASC`
	var args []any
	if limit > 0 {
		query = `SELECT * FROM (SELECT ` + runColumns + ` FROM runs ORDER BY seq DESC LIMIT ?) ORDER BY seq ASC`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadSteps returns the steps of a run ordered by seq ASC.
//
// Returns an empty slice (not nil) if the run has no steps.
func (s *Store) ReadSteps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, rule_id, before_term, after_term
		FROM steps
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []Step{}
	for rows.Next() {
		var st Step
		if err := rows.Scan(&st.RunID, &st.Seq, &st.RuleID, &st.Before, &st.After); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// LookupNormalForm returns the most recent successful run over the input
// with the given hash under ruleSet. found is false if there is none.
// Runs whose stuck flag was never recorded are not candidates.
func (s *Store) LookupNormalForm(ctx context.Context, inputHash, ruleSet string) (run Run, found bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE input_hash = ? AND rule_set = ? AND error = '' AND stuck IS NOT NULL
		ORDER BY seq DESC
		LIMIT 1
	`, inputHash, ruleSet)

	run, err = scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("lookup normal form: %w", err)
	}
	return run, true, nil
}

// RuleCount is how often a rule fired across all stored runs.
type RuleCount struct {
	RuleID string `json:"rule_id"`
	Count  int    `json:"count"`
}

// RuleCounts aggregates step counts per rule, most frequent first, ties
// broken by rule ID.
func (s *Store) RuleCounts(ctx context.Context) ([]RuleCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_id, COUNT(*) AS n
		FROM steps
		GROUP BY rule_id
		ORDER BY n DESC, rule_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query rule counts: %w", err)
	}
	defer rows.Close()

	counts := []RuleCount{}
	for rows.Next() {
		var c RuleCount
		if err := rows.Scan(&c.RuleID, &c.Count); err != nil {
			return nil, fmt.Errorf("scan rule count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rule counts: %w", err)
	}
	return counts, nil
}
