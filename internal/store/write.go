package store

import (
	"context"
	"fmt"
	"time"
)

// WriteRun inserts a run and its steps in one transaction and returns the
// run as stored, with its logical seq assigned.
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing a run whose ID
// already exists leaves the stored run untouched and returns it.
func (s *Store) WriteRun(ctx context.Context, run Run, steps []Step) (Run, error) {
	if run.ID == "" {
		return Run{}, fmt.Errorf("write run: id is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, input, input_canonical, input_hash, normal_form, normal_form_hash, error, stuck, step_count, rule_set, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Input,
		run.InputCanonical,
		run.InputHash,
		run.NormalForm,
		run.NormalFormHash,
		run.Error,
		run.Stuck,
		run.StepCount,
		run.RuleSet,
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: insert: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return Run{}, fmt.Errorf("write run: rows affected: %w", err)
	}

	if inserted > 0 {
		for _, step := range steps {
			if step.RunID != run.ID {
				return Run{}, fmt.Errorf("write run: step %d belongs to run %q", step.Seq, step.RunID)
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO steps (run_id, seq, rule_id, before_term, after_term)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(run_id, seq) DO NOTHING
			`, step.RunID, step.Seq, step.RuleID, step.Before, step.After)
			if err != nil {
				return Run{}, fmt.Errorf("write run: insert step %d: %w", step.Seq, err)
			}
		}
	}

	stored, err := scanRun(tx.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, run.ID))
	if err != nil {
		return Run{}, fmt.Errorf("write run: select stored: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return stored, nil
}
