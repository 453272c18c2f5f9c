package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/the4estate/t4e/internal/store"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inspect <db>",
		Short:         "List save slots in a database",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}
	return cmd
}

func runInspect(cmd *cobra.Command, path string) error {
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open save database: %w", err)
	}
	defer st.Close()

	slots, err := st.Slots(cmd.Context())
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no save slots")
		return nil
	}
	for _, slot := range slots {
		saved, err := st.Load(cmd.Context(), slot)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tnews=%d leads=%d flags=%d\n",
			slot, saved.Date, len(saved.News), len(saved.Leads), len(saved.Flags))
	}
	return nil
}
