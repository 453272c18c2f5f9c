package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/the4estate/t4e/internal/content"
)

// ValidationResult is the validate command's JSON output shape.
type ValidationResult struct {
	Valid  bool        `json:"valid"`
	Errors []string    `json:"errors,omitempty"`
	Counts *PackCounts `json:"counts,omitempty"`
}

// PackCounts summarizes a compiled pack.
type PackCounts struct {
	Rules    int `json:"rules"`
	News     int `json:"news"`
	Leads    int `json:"leads"`
	Sources  int `json:"sources"`
	Timeline int `json:"timeline"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <pack-dir>",
		Short: "Compile a content pack and check cross-references",
		Long: `Compile the CUE content pack in the given directory and check that
every effect, tone and timeline entry refers to declared content.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command, dir string) error {
	pack, err := content.LoadPack(dir)
	if err != nil {
		return fmt.Errorf("compile failed: %w", err)
	}

	if errs := content.Validate(pack); len(errs) > 0 {
		if opts.Format == "json" {
			result := ValidationResult{Valid: false}
			for _, e := range errs {
				result.Errors = append(result.Errors, e.Error())
			}
			writeJSON(cmd, result)
		} else {
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", e)
			}
		}
		return fmt.Errorf("%d validation errors", len(errs))
	}

	repo := content.NewRepository(pack)
	rules, newsItems, leadDefs, sources, timeline := repo.Counts()
	counts := PackCounts{Rules: rules, News: newsItems, Leads: leadDefs, Sources: sources, Timeline: timeline}

	if opts.Format == "json" {
		writeJSON(cmd, ValidationResult{Valid: true, Counts: &counts})
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d rules, %d news, %d leads, %d sources, %d timeline items\n",
		counts.Rules, counts.News, counts.Leads, counts.Sources, counts.Timeline)
	return nil
}

func writeJSON(cmd *cobra.Command, v any) {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
