package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/darkMatter00/unumpy/internal/moa"
	"github.com/darkMatter00/unumpy/internal/rewrite"
	"github.com/darkMatter00/unumpy/internal/term"
	"github.com/darkMatter00/unumpy/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// normalizeRun normalizes input with the array rules and builds its records.
func normalizeRun(t *testing.T, id string, input term.Term) (Run, []Step) {
	t.Helper()
	rec := &rewrite.Recorder{}
	e, err := moa.NewEngine(moa.Options{}, rewrite.WithTracer(rec), rewrite.WithLogger(testutil.QuietLogger()))
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	nf, normErr := e.Normalize(context.Background(), input)
	run, steps, err := NewRun(id, "moa", input, nf, normErr, rec.Steps(), moa.Stuck)
	if err != nil {
		t.Fatalf("NewRun() failed: %v", err)
	}
	return run, steps
}
