// Package cli implements the fundme command line.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	networkName  string
	logLevel     string
	logFormat    string
	databasePath string
	artifactsDir string
	metricsFile  string
)

// Execute runs the CLI
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd(version).ExecuteContext(ctx)
}

func newRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fundme",
		Short: "Deploy and exercise the FundMe crowdfunding contract",
		Long: `fundme deploys the FundMe contract (and a mock price feed on development
networks), verifies it on a block explorer, and runs the unit and staging
check suites against it.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: fundme.toml)")
	rootCmd.PersistentFlags().StringVarP(&networkName, "network", "n", "", "network to use (default from config, then hardhat)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
	rootCmd.PersistentFlags().StringVar(&databasePath, "database", "", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&artifactsDir, "artifacts", "", "hardhat or foundry project directory")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	// Add subcommands
	rootCmd.AddCommand(createDeployCmd())
	rootCmd.AddCommand(createTestCmd())
	rootCmd.AddCommand(createVerifyCmd())
	rootCmd.AddCommand(createNetworksCmd())
	rootCmd.AddCommand(createDeploymentsCmd())
	rootCmd.AddCommand(createRunsCmd())
	rootCmd.AddCommand(createGasReportCmd())

	return rootCmd
}
