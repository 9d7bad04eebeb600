package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Database string
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count rule firings across stored runs",
		Long: `Count how often each rule fired across every stored run, most
frequent first.

Examples:
  unumpy stats --db ./runs.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openExisting(opts.Database)
			if err != nil {
				return err
			}
			defer st.Close()

			counts, err := st.RuleCounts(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to count rules", err)
			}

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			return out.Emit(counts, nil, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "RULE\tFIRINGS")
				for _, c := range counts {
					fmt.Fprintf(tw, "%s\t%d\n", c.RuleID, c.Count)
				}
				tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
