// Package cmd wires the credit-scoring-engine command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/banking/credit-scoring-engine/logger"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Running the root without a subcommand
// starts the server, so container images can keep an empty args list.
func NewRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "credit-scoring-engine",
		Short: "Credit scoring engine health and operations service",
		Long: `credit-scoring-engine serves the actuator health endpoints used by
Kubernetes liveness and readiness probes, and ships operational tooling
for checking health in-process and validating deployment manifests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitLogger()
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to an optional YAML configuration file")

	serve := newServeCmd(&configFile)
	root.RunE = serve.RunE

	root.AddCommand(serve)
	root.AddCommand(newCheckCmd(&configFile))
	root.AddCommand(newValidateManifestsCmd())
	root.CompletionOptions.DisableDefaultCmd = true

	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	err := NewRootCmd().Execute()
	_ = logger.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
