package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/sonarsweep/internal/plan"
	"github.com/ppiankov/sonarsweep/internal/sonar"
)

var (
	hotspotsEndpoint string
	hotspotsProject  string
	hotspotsStatus   string
	hotspotsFormat   string
	hotspotsPlanOut  string
	hotspotsTimeout  time.Duration
)

func init() {
	rootCmd.AddCommand(hotspotsCmd)
	hotspotsCmd.Flags().StringVar(&hotspotsEndpoint, "endpoint", sonar.DefaultEndpoint, "Sonar API endpoint")
	hotspotsCmd.Flags().StringVar(&hotspotsProject, "project", "", "Project key (required)")
	hotspotsCmd.Flags().StringVar(&hotspotsStatus, "status", "TO_REVIEW", "Hotspot review status filter")
	hotspotsCmd.Flags().StringVarP(&hotspotsFormat, "format", "f", "text", "Output format (text|json)")
	hotspotsCmd.Flags().StringVar(&hotspotsPlanOut, "plan-out", "", "Write a skeleton review plan to this path")
	hotspotsCmd.Flags().DurationVar(&hotspotsTimeout, "timeout", 30*time.Second, "Per-request timeout")
	hotspotsCmd.MarkFlagRequired("project")
}

var hotspotsCmd = &cobra.Command{
	Use:   "hotspots",
	Short: "List a project's security hotspots",
	Long: "Queries the hotspot search API, following pagination, and prints one\n" +
		"hotspot per line. With --plan-out, also writes a skeleton review plan\n" +
		"with empty comments for triage.",
	RunE: runHotspots,
}

func runHotspots(cmd *cobra.Command, args []string) error {
	token, err := requireToken(cmd)
	if err != nil {
		return err
	}
	client := sonar.NewClient(hotspotsEndpoint, token, hotspotsTimeout)

	hotspots, err := client.SearchHotspots(context.Background(), hotspotsProject, hotspotsStatus)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch hotspotsFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(hotspots); err != nil {
			return err
		}
	default:
		for _, h := range hotspots {
			fmt.Fprintf(out, "%s  %-8s %s  %s\n",
				h.Key, h.VulnerabilityProbability, h.Location(), h.Message)
		}
		fmt.Fprintf(out, "\n%d hotspots.\n", len(hotspots))
	}

	if hotspotsPlanOut != "" {
		data, err := plan.Skeleton(hotspotsProject, hotspots)
		if err != nil {
			return err
		}
		if err := os.WriteFile(hotspotsPlanOut, data, 0640); err != nil {
			return fmt.Errorf("write skeleton plan: %w", err)
		}
		fmt.Fprintf(out, "Skeleton plan written to %s — fill in the comments before applying.\n", hotspotsPlanOut)
	}
	return nil
}
