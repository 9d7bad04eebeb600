package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Scenario defines one normalization test.
type Scenario struct {
	// Name uniquely identifies this scenario. Also the golden file name.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description"`

	// Term is the input term in reader syntax.
	Term string `yaml:"term" json:"term"`

	// MaxSteps overrides the engine's step quota. Zero keeps the default.
	MaxSteps int `yaml:"max_steps,omitempty" json:"max_steps,omitempty"`

	// Assertions validate the normal form and the rewrite trace.
	Assertions []Assertion `yaml:"assertions" json:"assertions"`
}

// Assertion validates one property of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "normal_form": normal form equals Expect, or renders as Render
	// - "materializes_to": materialized normal form equals Expect
	// - "stuck": normal form still holds an unreduced operation
	// - "reduced": normal form holds no unreduced operation
	// - "rule_fired": Rule fired at least once
	// - "no_rule_fired": Rule never fired
	// - "error": normalization failed with an error containing Contains
	Type string `yaml:"type" json:"type"`

	// Expect is a term in reader syntax (normal_form, materializes_to).
	Expect string `yaml:"expect,omitempty" json:"expect,omitempty"`

	// Render is the exact rendered normal form (normal_form).
	Render string `yaml:"render,omitempty" json:"render,omitempty"`

	// Rule is a rule ID (rule_fired, no_rule_fired).
	Rule string `yaml:"rule,omitempty" json:"rule,omitempty"`

	// Contains is an error message fragment (error).
	Contains string `yaml:"contains,omitempty" json:"contains,omitempty"`
}

// Assertion type constants.
const (
	AssertNormalForm     = "normal_form"
	AssertMaterializesTo = "materializes_to"
	AssertStuck          = "stuck"
	AssertReduced        = "reduced"
	AssertRuleFired      = "rule_fired"
	AssertNoRuleFired    = "no_rule_fired"
	AssertError          = "error"
)

// LoadScenario reads and parses a scenario file. The format follows the
// extension: .yaml/.yml or .cue.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true) // Reject unknown fields
		if err := decoder.Decode(&scenario); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".cue":
		if err := decodeCUE(path, data, &scenario); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", filepath.Ext(path))
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// decodeCUE evaluates a CUE scenario file. The file may constrain its own
// fields (e.g. max_steps: <1000) and must evaluate to a concrete value.
func decodeCUE(path string, data []byte, out *Scenario) error {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return fmt.Errorf("failed to compile CUE: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("CUE scenario is not concrete: %w", err)
	}

	// Reject unknown top-level fields, as the YAML decoder does.
	iter, err := v.Fields()
	if err != nil {
		return fmt.Errorf("failed to read CUE fields: %w", err)
	}
	for iter.Next() {
		if !knownScenarioFields[iter.Selector().String()] {
			return fmt.Errorf("unknown field %q in CUE scenario", iter.Selector().String())
		}
	}

	if err := v.Decode(out); err != nil {
		return fmt.Errorf("failed to decode CUE: %w", err)
	}
	return nil
}

var knownScenarioFields = map[string]bool{
	"name":        true,
	"description": true,
	"term":        true,
	"max_steps":   true,
	"assertions":  true,
}

// LoadDir loads every scenario file in dir (not recursive), sorted by file
// name.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsScenarioFile(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// IsScenarioFile reports whether name has a scenario file extension.
func IsScenarioFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".cue":
		return true
	}
	return false
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if strings.TrimSpace(s.Term) == "" {
		return fmt.Errorf("term is required")
	}
	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertNormalForm:
		if (a.Expect == "") == (a.Render == "") {
			return fmt.Errorf("assertions[%d]: exactly one of expect or render is required for normal_form", index)
		}
	case AssertMaterializesTo:
		if a.Expect == "" {
			return fmt.Errorf("assertions[%d]: expect is required for materializes_to", index)
		}
	case AssertRuleFired, AssertNoRuleFired:
		if a.Rule == "" {
			return fmt.Errorf("assertions[%d]: rule is required for %s", index, a.Type)
		}
	case AssertError:
		if a.Contains == "" {
			return fmt.Errorf("assertions[%d]: contains is required for error", index)
		}
	case AssertStuck, AssertReduced:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
