package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// tokenEnv is the environment variable holding the Sonar user token.
const tokenEnv = "SONAR_TOKEN"

var rootCmd = &cobra.Command{
	Use:   "sonarsweep",
	Short: "Batch reviewer for SonarCloud security hotspots",
	Long: "Marks pre-identified security hotspots as reviewed with justification\n" +
		"comments, driven by YAML review plans. One POST per hotspot, strictly in\n" +
		"plan order, with a per-entry log and a final tally.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// requireToken reads the Sonar token from the environment. Absence is the
// one fatal precondition: the guidance lines are printed here and the
// returned error makes the process exit non-zero before any network call,
// with cobra's own error and usage output suppressed so the two-line
// diagnostic is all the operator sees.
func requireToken(cmd *cobra.Command) (string, error) {
	token := os.Getenv(tokenEnv)
	if token == "" {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "ERROR: Set SONAR_TOKEN env var first.")
		fmt.Fprintln(out, "Get one from: https://sonarcloud.io/account/security")
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return "", fmt.Errorf("%s is not set", tokenEnv)
	}
	return token, nil
}
