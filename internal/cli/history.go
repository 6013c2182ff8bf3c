package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/sonarsweep/internal/history"
)

var (
	historyDB    string
	historyLimit int
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.PersistentFlags().StringVar(&historyDB, "db", "", "Path to the history database (required)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of recent runs to show")
	historyCmd.MarkPersistentFlagRequired("db")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs",
	Long: "Reads the SQLite database written by apply/watch --history and prints\n" +
		"recent runs, newest first.",
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run's per-entry outcomes",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open(historyDB)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.RecentRuns(historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%4d  %s  ok=%d failed=%d  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.OK, r.Failed, r.Plan)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id: %s", args[0])
	}

	store, err := history.Open(historyDB)
	if err != nil {
		return err
	}
	defer store.Close()

	outcomes, err := store.RunOutcomes(runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(outcomes) == 0 {
		fmt.Fprintf(out, "No outcomes for run %d.\n", runID)
		return nil
	}
	for _, o := range outcomes {
		if o.OK {
			fmt.Fprintf(out, "  OK    %s  %s (%s)\n", o.Hotspot, o.Label, o.Resolution)
		} else {
			fmt.Fprintf(out, "  FAIL  %s  %s - %s\n", o.Hotspot, o.Label, o.Error)
		}
	}
	return nil
}
