// sonarsweep marks pre-identified SonarCloud security hotspots as reviewed,
// each with a justification comment, driven by YAML review plans.
package main

import "github.com/ppiankov/sonarsweep/internal/cli"

func main() {
	cli.Execute()
}
