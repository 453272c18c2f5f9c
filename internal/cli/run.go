package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/the4estate/t4e/internal/harness"
	"github.com/the4estate/t4e/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	SaveSlot string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scripted scenario and print its trace",
		Long: `Load a scenario file, wire a simulation over its content pack,
execute every step and print the trace.

With --db and --save, the final simulation state is written into the
named save slot.

Example:
  t4e run scenarios/strike_week.yaml
  t4e run scenarios/strike_week.yaml --db t4e.db --save campaign`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite save database")
	cmd.Flags().StringVar(&opts.SaveSlot, "save", "", "save slot to write the final state into")

	return cmd
}

func runScenario(opts *RunOptions, cmd *cobra.Command, path string) error {
	if (opts.Database == "") != (opts.SaveSlot == "") {
		return fmt.Errorf("--db and --save must be used together")
	}

	sc, err := harness.LoadScenario(path)
	if err != nil {
		return err
	}
	result, err := harness.Run(sc)
	if err != nil {
		return err
	}

	cmd.OutOrStdout().Write(result.TraceText())

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return fmt.Errorf("open save database: %w", err)
		}
		defer st.Close()
		if err := result.Sim.Save(cmd.Context(), st, opts.SaveSlot); err != nil {
			return fmt.Errorf("save slot %q: %w", opts.SaveSlot, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved slot %q to %s\n", opts.SaveSlot, opts.Database)
	}
	return nil
}
