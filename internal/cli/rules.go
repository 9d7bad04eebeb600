package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/darkMatter00/unumpy/internal/moa"
	"github.com/darkMatter00/unumpy/internal/pattern"
)

// RulesOptions holds flags for the rules command.
type RulesOptions struct {
	*RootOptions
	NoLaws bool
	Kinds  bool
}

// RuleView describes one registered rule.
type RuleView struct {
	ID   string `json:"id"`
	Root string `json:"root"`
}

// KindView describes one node kind and how many rules are rooted at it.
type KindView struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol,omitempty"`
	Arity  string `json:"arity"`
	Rules  int    `json:"rules"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RulesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the registered rewrite rules",
		Long: `List the rewrite rules in registration order with the node kind each
rule's pattern is rooted at. Rules are tried in this order at every
node.

With --kinds, list the node kinds instead: name, display symbol, arity
("2", or "1+" for variadic kinds) and the number of rules rooted there.

Examples:
  unumpy rules
  unumpy rules --no-laws --format json
  unumpy rules --kinds`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.NoLaws, "no-laws", false, "omit algebraic laws beyond the reduction rules")
	cmd.Flags().BoolVar(&opts.Kinds, "kinds", false, "list node kinds instead of rules")

	return cmd
}

func runRules(opts *RulesOptions, cmd *cobra.Command) error {
	e, err := moa.NewEngine(moa.Options{NoLaws: opts.NoLaws})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create engine", err)
	}

	rules := e.Registry().Rules()
	views := make([]RuleView, len(rules))
	for i, r := range rules {
		root := "*"
		if k := pattern.RootKind(r.Pattern); k != nil {
			root = k.Name
		}
		views[i] = RuleView{ID: r.ID, Root: root}
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Kinds {
		kinds := kindViews(views)
		return out.Emit(kinds, nil, func(w io.Writer) {
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tSYMBOL\tARITY\tRULES")
			for _, k := range kinds {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", k.Name, k.Symbol, k.Arity, k.Rules)
			}
			tw.Flush()
		})
	}
	return out.Emit(views, nil, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RULE\tROOT")
		for _, v := range views {
			fmt.Fprintf(tw, "%s\t%s\n", v.ID, v.Root)
		}
		tw.Flush()
	})
}

// kindViews lists the array kinds by name with per-kind rule counts.
func kindViews(rules []RuleView) []KindView {
	rooted := make(map[string]int)
	for _, r := range rules {
		rooted[r.Root]++
	}
	kinds := moa.Kinds()
	views := make([]KindView, len(kinds))
	for i, k := range kinds {
		arity := strconv.Itoa(k.Arity)
		if k.Variadic {
			arity += "+"
		}
		views[i] = KindView{Name: k.Name, Symbol: k.Symbol, Arity: arity, Rules: rooted[k.Name]}
	}
	return views
}
