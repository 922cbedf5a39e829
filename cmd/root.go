package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "batchserve",
	Short: "Request-batching session layer for single-request inference engines",
	Long: "batchserve fronts a single-request inference engine and transparently\n" +
		"coalesces concurrent calls into larger batched calls. The bench command\n" +
		"drives a synthetic workload through the batching session to measure\n" +
		"batching behavior under different scheduler settings.",
}

// Execute runs the CLI entry point.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
