package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/sonarsweep/internal/history"
	"github.com/ppiankov/sonarsweep/internal/notify"
	"github.com/ppiankov/sonarsweep/internal/plan"
	"github.com/ppiankov/sonarsweep/internal/review"
	"github.com/ppiankov/sonarsweep/internal/sonar"
)

var (
	applyEndpoint  string
	applyTimeout   time.Duration
	applyDryRun    bool
	applyHistoryDB string
	applyNotifyURL string
)

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringVar(&applyEndpoint, "endpoint", sonar.DefaultEndpoint, "Sonar API endpoint")
	applyCmd.Flags().DurationVar(&applyTimeout, "timeout", 0, "Per-request timeout (0 = no timeout)")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Print entries without submitting")
	applyCmd.Flags().StringVar(&applyHistoryDB, "history", "", "Record outcomes to this SQLite database")
	applyCmd.Flags().StringVar(&applyNotifyURL, "notify-url", "", "POST a JSON run summary to this webhook")
}

var applyCmd = &cobra.Command{
	Use:   "apply <plan.yaml> [plan.yaml...]",
	Short: "Submit the reviews in one or more plan files",
	Long: "Submits every entry of each plan, in order, one request at a time.\n" +
		"A failed submission is logged and counted but never stops the batch.\n\n" +
		"Exit code is 0 even when submissions failed; only a missing SONAR_TOKEN\n" +
		"or an unreadable plan exits non-zero. The tally line has the last word.",
	Args: cobra.MinimumNArgs(1),
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	var token string
	if !applyDryRun {
		var err error
		if token, err = requireToken(cmd); err != nil {
			return err
		}
	}

	// Parse every plan before submitting anything: a typo in the third
	// file must not leave the first two half-applied.
	plans := make([]*plan.Plan, 0, len(args))
	for _, path := range args {
		p, err := plan.Load(path)
		if err != nil {
			return err
		}
		plans = append(plans, p)
	}

	var store *history.Store
	if applyHistoryDB != "" {
		var err error
		store, err = history.Open(applyHistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	client := sonar.NewClient(applyEndpoint, token, applyTimeout)
	runner := &review.Runner{Submitter: client, Out: cmd.OutOrStdout(), DryRun: applyDryRun}

	var total review.Summary
	for i, p := range plans {
		started := time.Now()
		summary := runner.Run(context.Background(), p.Resolve())
		total = total.Merge(summary)

		if store != nil {
			if _, err := store.RecordRun(started, args[i], client.Endpoint(), history.FromSummary(summary)); err != nil {
				fmt.Fprintf(os.Stderr, "warning: record history: %v\n", err)
			}
		}
		if applyNotifyURL != "" {
			if err := notify.Send(applyNotifyURL, notify.FromSummary(args[i], summary)); err != nil {
				fmt.Fprintf(os.Stderr, "warning: notify webhook: %v\n", err)
			}
		}
	}

	review.WriteReport(cmd.OutOrStdout(), total)
	return nil
}
