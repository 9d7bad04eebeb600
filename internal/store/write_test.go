package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkMatter00/unumpy/internal/moa"
	"github.com/darkMatter00/unumpy/internal/term"
)

func TestWriteRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	run, steps := normalizeRun(t, "run-1", moa.Shape(moa.Vector(3, 4)))
	run.CreatedAt = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	stored, err := s.WriteRun(ctx, run, steps)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Seq)
	assert.Equal(t, "ρ(Sequence(2, <3 4>))", stored.Input)
	assert.Equal(t, "Sequence(1, <2>)", stored.NormalForm)
	assert.Equal(t, term.MustHash(moa.Shape(moa.Vector(3, 4))), stored.InputHash)
	assert.Equal(t, term.MustHash(moa.Vector(2)), stored.NormalFormHash)
	assert.Empty(t, stored.Error)
	assert.False(t, stored.Stuck)
	assert.Equal(t, "moa", stored.RuleSet)
	assert.True(t, run.CreatedAt.Equal(stored.CreatedAt))

	read, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, stored, read)

	gotSteps, err := s.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, gotSteps, stored.StepCount)
	assert.Equal(t, steps, gotSteps)
	assert.Equal(t, moa.RuleShapeSequence, gotSteps[0].RuleID)
}

func TestWriteRun_RecordsError(t *testing.T) {
	s := createTestStore(t)

	run, steps := normalizeRun(t, "run-err", moa.Index(moa.Vector(5), moa.Vector(3, 4)))
	stored, err := s.WriteRun(t.Context(), run, steps)
	require.NoError(t, err)

	assert.Contains(t, stored.Error, "out of range")
	assert.Empty(t, stored.NormalForm)
	assert.Empty(t, stored.NormalFormHash)
}

func TestWriteRun_RecordsStuck(t *testing.T) {
	s := createTestStore(t)

	run, steps := normalizeRun(t, "run-stuck", moa.Unify(term.Int(1), term.Int(2)))
	stored, err := s.WriteRun(t.Context(), run, steps)
	require.NoError(t, err)

	assert.True(t, stored.Stuck)
	assert.Equal(t, "Unify(1, 2)", stored.NormalForm)

	read, err := s.ReadRun(t.Context(), "run-stuck")
	require.NoError(t, err)
	assert.True(t, read.Stuck)
}

func TestNewRun_NilStuckFunc(t *testing.T) {
	input := moa.Unify(term.Int(1), term.Int(2))
	run, _, err := NewRun("run-x", "moa", input, input, nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, run.Stuck)
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	run, steps := normalizeRun(t, "run-1", moa.Shape(moa.Vector(3, 4)))
	first, err := s.WriteRun(ctx, run, steps)
	require.NoError(t, err)

	run.Input = "changed"
	second, err := s.WriteRun(ctx, run, steps)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	gotSteps, err := s.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, gotSteps, len(steps))
}

func TestWriteRun_AssignsIncreasingSeq(t *testing.T) {
	s := createTestStore(t)
	gen := NewFixedGenerator("c", "a", "b")

	for i := 1; i <= 3; i++ {
		run, steps := normalizeRun(t, gen.Generate(), moa.Vector(int64(i)))
		stored, err := s.WriteRun(t.Context(), run, steps)
		require.NoError(t, err)
		assert.Equal(t, int64(i), stored.Seq)
	}
}

func TestWriteRun_Validation(t *testing.T) {
	s := createTestStore(t)

	_, err := s.WriteRun(t.Context(), Run{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id is required")

	run, _ := normalizeRun(t, "run-1", moa.Vector(1))
	_, err = s.WriteRun(t.Context(), run, []Step{{RunID: "other", Seq: 0, RuleID: "r"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `belongs to run "other"`)

	// The failed transaction left nothing behind.
	_, err = s.ReadRun(t.Context(), "run-1")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}
