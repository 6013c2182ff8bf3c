package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/sonarsweep/internal/plan"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <plan.yaml> [plan.yaml...]",
	Short: "Check plan files without submitting anything",
	Long: "Parses each plan, resolves comment references, and reports problems.\n" +
		"Duplicate hotspot keys are legal (each occurrence submits independently)\n" +
		"but are flagged as warnings. Exit code 1 if any plan is invalid.",
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	invalid := 0

	for _, path := range args {
		p, err := plan.Load(path)
		if err != nil {
			invalid++
			fmt.Fprintf(out, "  INVALID  %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "  OK       %s (%d entries)\n", path, len(p.Entries))
		for _, key := range p.Duplicates() {
			fmt.Fprintf(out, "    warning: hotspot %s appears more than once\n", key)
		}
	}

	if invalid > 0 {
		fmt.Fprintf(out, "\n%d of %d plans invalid.\n", invalid, len(args))
		os.Exit(1)
	}
	return nil
}
