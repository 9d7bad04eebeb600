package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_YAML(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/shape-vector.yaml")
	require.NoError(t, err)

	assert.Equal(t, "shape-vector", s.Name)
	assert.Equal(t, "Shape(vector(3, 4))", s.Term)
	assert.Zero(t, s.MaxSteps)
	require.Len(t, s.Assertions, 4)
	assert.Equal(t, Assertion{Type: AssertNormalForm, Expect: "vector(2)"}, s.Assertions[0])
	assert.Equal(t, Assertion{Type: AssertRuleFired, Rule: "moa/shape-sequence"}, s.Assertions[2])
}

func TestLoadScenario_CUE(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/dim-unbound.cue")
	require.NoError(t, err)

	assert.Equal(t, "dim-unbound", s.Name)
	assert.Equal(t, `Dim(array(2, "A"))`, s.Term)
	assert.Equal(t, 500, s.MaxSteps)
	require.Len(t, s.Assertions, 3)
	assert.Equal(t, Assertion{Type: AssertNormalForm, Expect: "scalar(2)"}, s.Assertions[0])
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		contains string
	}{
		{
			name:     "unknown yaml field",
			file:     "s.yaml",
			content:  "name: x\ndescription: d\nterm: vector(1)\nexpect: vector(1)\nassertions:\n  - type: reduced\n",
			contains: "failed to parse YAML",
		},
		{
			name:     "unknown cue field",
			file:     "s.cue",
			content:  "name: \"x\"\ndescription: \"d\"\nterm: \"vector(1)\"\nsteps: 3\nassertions: [{type: \"reduced\"}]\n",
			contains: `unknown field "steps"`,
		},
		{
			name:     "cue constraint violated",
			file:     "s.cue",
			content:  "name: \"x\"\ndescription: \"d\"\nterm: \"vector(1)\"\nmax_steps: <10 & 20\nassertions: [{type: \"reduced\"}]\n",
			contains: "CUE",
		},
		{
			name:     "cue not concrete",
			file:     "s.cue",
			content:  "name: string\ndescription: \"d\"\nterm: \"vector(1)\"\nassertions: [{type: \"reduced\"}]\n",
			contains: "not concrete",
		},
		{
			name:     "unsupported extension",
			file:     "s.json",
			content:  "{}",
			contains: "unsupported scenario format",
		},
		{
			name:     "missing name",
			file:     "s.yaml",
			content:  "description: d\nterm: vector(1)\nassertions:\n  - type: reduced\n",
			contains: "name is required",
		},
		{
			name:     "missing term",
			file:     "s.yaml",
			content:  "name: x\ndescription: d\nassertions:\n  - type: reduced\n",
			contains: "term is required",
		},
		{
			name:     "no assertions",
			file:     "s.yaml",
			content:  "name: x\ndescription: d\nterm: vector(1)\n",
			contains: "assertions list is required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeFile(t, tc.file, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestValidateAssertion(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"normal form expect", Assertion{Type: AssertNormalForm, Expect: "vector(1)"}, ""},
		{"normal form render", Assertion{Type: AssertNormalForm, Render: "Scalar(1)"}, ""},
		{"normal form neither", Assertion{Type: AssertNormalForm}, "exactly one of expect or render"},
		{"normal form both", Assertion{Type: AssertNormalForm, Expect: "x", Render: "x"}, "exactly one of expect or render"},
		{"materializes without expect", Assertion{Type: AssertMaterializesTo}, "expect is required"},
		{"rule fired without rule", Assertion{Type: AssertRuleFired}, "rule is required for rule_fired"},
		{"no rule fired without rule", Assertion{Type: AssertNoRuleFired}, "rule is required for no_rule_fired"},
		{"error without contains", Assertion{Type: AssertError}, "contains is required"},
		{"stuck", Assertion{Type: AssertStuck}, ""},
		{"reduced", Assertion{Type: AssertReduced}, ""},
		{"missing type", Assertion{}, "type is required"},
		{"unknown type", Assertion{Type: "converges"}, `unknown assertion type "converges"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateAssertion(2, &tc.assertion)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "assertions[2]")
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateScenario_NegativeMaxSteps(t *testing.T) {
	s := &Scenario{
		Name:        "x",
		Description: "d",
		Term:        "vector(1)",
		MaxSteps:    -1,
		Assertions:  []Assertion{{Type: AssertReduced}},
	}
	err := validateScenario(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_steps must be non-negative")
}

func TestLoadDir(t *testing.T) {
	scenarios, err := LoadDir("testdata/scenarios")
	require.NoError(t, err)

	var names []string
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	// Sorted by file name, mixing formats.
	assert.Equal(t, []string{
		"broadcast-scalar",
		"dim-unbound",
		"index-out-of-range",
		"index-vector",
		"mismatched-lengths",
		"shape-vector",
		"total-symbolic",
	}, names)
}

func TestLoadDir_SkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"),
		[]byte("name: a\ndescription: d\nterm: vector(1)\nassertions:\n  - type: reduced\n"), 0o644))

	scenarios, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "a", scenarios[0].Name)
}

func TestIsScenarioFile(t *testing.T) {
	assert.True(t, IsScenarioFile("a.yaml"))
	assert.True(t, IsScenarioFile("a.YML"))
	assert.True(t, IsScenarioFile("a.cue"))
	assert.False(t, IsScenarioFile("a.golden"))
	assert.False(t, IsScenarioFile("yaml"))
}
