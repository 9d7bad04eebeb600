package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkMatter00/unumpy/internal/moa"
	"github.com/darkMatter00/unumpy/internal/store"
)

// seedDatabase stores two runs with known IDs and returns the path.
func seedDatabase(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "runs.db")
	opts := &NormalizeOptions{
		RootOptions: &RootOptions{Format: "json"},
		Database:    db,
		IDs:         store.NewFixedGenerator("run-a", "run-b"),
	}
	_, err := runNormalizeWithIDs(t, opts, "Shape(vector(3, 4))")
	require.NoError(t, err)
	_, err = runNormalizeWithIDs(t, opts, "Index([5], [3, 4])")
	require.Error(t, err)
	return db
}

func TestRuns(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, "runs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "run-a")
	assert.Contains(t, out, "Sequence(1, <2>)")
	assert.Contains(t, out, "error: ")

	out, err = execute(t, "runs", "--db", db, "--limit", "1", "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data []store.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "run-b", resp.Data[0].ID)
}

func TestRuns_EmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, "runs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs found.")
}

func TestTrace(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, "trace", "run-a", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Run: run-a (seq 1)")
	assert.Contains(t, out, "moa/shape-sequence")
	assert.Contains(t, out, "=> ")

	out, err = execute(t, "trace", "run-a", "--db", db, "--rule", "moa/shape-scalar", "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Data.Steps)
	for _, s := range resp.Data.Steps {
		assert.Equal(t, "moa/shape-scalar", s.RuleID)
	}
	assert.Equal(t, 1, resp.Data.Rules["moa/shape-sequence"])
}

func TestTrace_Errors(t *testing.T) {
	db := seedDatabase(t)

	_, err := execute(t, "trace", "missing", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "run not found: missing")

	_, err = execute(t, "trace", "run-a", "--db", filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database not found")
}

func TestStats(t *testing.T) {
	db := seedDatabase(t)

	out, err := execute(t, "stats", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data []store.RuleCount `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	want, err := st.RuleCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, resp.Data)
}

func TestRules(t *testing.T) {
	out, err := execute(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "core/apply")
	assert.Contains(t, out, "moa/shape-sequence")
	assert.Contains(t, out, "moa/inner-scalar-multiply")

	out, err = execute(t, "rules", "--no-laws", "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data []RuleView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	ids := make(map[string]string)
	for _, r := range resp.Data {
		ids[r.ID] = r.Root
	}
	assert.NotContains(t, ids, "moa/inner-scalar-multiply")
	assert.Equal(t, "Shape", ids["moa/shape-sequence"])
	assert.Equal(t, "*", ids["moa/dim-unbound"])
}

func TestRules_Kinds(t *testing.T) {
	out, err := execute(t, "rules", "--kinds", "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data []KindView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	byName := make(map[string]KindView)
	for _, k := range resp.Data {
		byName[k.Name] = k
	}
	assert.Equal(t, KindView{Name: "Shape", Symbol: "ρ", Arity: "1", Rules: 2}, byName["Shape"])
	assert.Equal(t, "0+", byName["VectorCallable"].Arity)
	assert.Equal(t, "1+", byName["VectorIndexed"].Arity)
	assert.Zero(t, byName["Scalar"].Rules, "constructors have no rules of their own")
	assert.Len(t, resp.Data, len(moa.Kinds()))

	text, err := execute(t, "rules", "--kinds")
	require.NoError(t, err)
	assert.Contains(t, text, "KIND")
	assert.Contains(t, text, "InnerProduct")
}
