package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/sonarsweep/internal/history"
	"github.com/ppiankov/sonarsweep/internal/sonar"
	"github.com/ppiankov/sonarsweep/internal/spool"
)

var (
	watchEndpoint  string
	watchSpool     string
	watchTimeout   time.Duration
	watchHistoryDB string
	watchNotifyURL string
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchEndpoint, "endpoint", sonar.DefaultEndpoint, "Sonar API endpoint")
	watchCmd.Flags().StringVar(&watchSpool, "spool", "", "Spool directory to watch (required)")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 0, "Per-request timeout (0 = no timeout)")
	watchCmd.Flags().StringVar(&watchHistoryDB, "history", "", "Record outcomes to this SQLite database")
	watchCmd.Flags().StringVar(&watchNotifyURL, "notify-url", "", "POST a JSON run summary per plan to this webhook")
	watchCmd.MarkFlagRequired("spool")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process review plans dropped into a spool directory",
	Long: "Watches a directory for plan files and applies each one as it settles,\n" +
		"strictly one plan at a time. Completed plans move to done/, rejected ones\n" +
		"to failed/, each with a .result file. Ctrl-C stops after the in-flight plan.",
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	token, err := requireToken(cmd)
	if err != nil {
		return err
	}

	client := sonar.NewClient(watchEndpoint, token, watchTimeout)
	proc := &spool.Processor{
		Dir:       watchSpool,
		Submitter: client,
		Endpoint:  client.Endpoint(),
		NotifyURL: watchNotifyURL,
		Out:       cmd.OutOrStdout(),
	}

	if watchHistoryDB != "" {
		store, err := history.Open(watchHistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()
		proc.History = store
	}

	if err := proc.EnsureDirs(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for review plans...\n", watchSpool)

	// The in-flight plan runs on a background context: Ctrl-C stops the
	// watcher from dispatching, it does not abort submissions mid-batch.
	watcher := spool.NewWatcher(watchSpool, func(path string) {
		if err := proc.Process(context.Background(), path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	})
	return watcher.Run(ctx)
}
