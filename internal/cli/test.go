package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gateway-fm/fundme/internal/devchain"
	"github.com/gateway-fm/fundme/internal/gasreport"
	"github.com/gateway-fm/fundme/internal/harness"
	"github.com/gateway-fm/fundme/internal/storage"
	"github.com/gateway-fm/fundme/pkg/types"
)

func createTestCmd() *cobra.Command {
	var suites []string
	var grep string
	var gasReport bool

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run the FundMe check suites",
		Long: `Run the unit and staging check suites against the selected network.

The unit suite runs on development networks against a fresh deployment for
every check. The staging suite runs on public networks against the recorded
FundMe deployment. Checks of a suite that does not match the network are
reported as skipped.

EXAMPLES:
  # Unit checks on the in-process chain
  fundme test

  # Only the withdraw checks
  fundme test --grep withdraw

  # Staging checks on Sepolia
  fundme test --network sepolia --suite staging
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var report *bool
			if cmd.Flags().Changed("gas-report") {
				report = &gasReport
			}
			return withApp(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
				enabled := a.cfg.GasReporter.Enabled
				if report != nil {
					enabled = *report
				}
				return runTests(ctx, a, cmd.OutOrStdout(), suites, grep, enabled)
			})
		},
	}

	cmd.Flags().StringSliceVar(&suites, "suite", []string{harness.SuiteUnit, harness.SuiteStaging}, "suites to run (unit, staging)")
	cmd.Flags().StringVarP(&grep, "grep", "g", "", "only run checks whose name contains this")
	cmd.Flags().BoolVar(&gasReport, "gas-report", false, "write the gas report (default from config)")

	return cmd
}

func runTests(ctx context.Context, a *app, out io.Writer, names []string, grep string, reportGas bool) error {
	selected := make([]harness.Suite, 0, len(names))
	for _, name := range names {
		suite, ok := harness.SuiteByName(name)
		if !ok {
			return fmt.Errorf("unknown suite %q (unit, staging)", name)
		}
		selected = append(selected, suite)
	}

	var s *session
	if !a.profile.InProcess {
		var err error
		if s, err = a.connect(ctx); err != nil {
			return err
		}
		defer s.close()
	}

	var samples []storage.GasSample
	failed := 0
	for _, suite := range selected {
		gas := gasreport.NewCollector(a.metrics)
		summary, err := harness.Run(ctx, harness.Options{
			Suite:      suite,
			Profile:    a.profile,
			Fixture:    a.fixture(s, suite, gas),
			Filter:     grep,
			Runs:       a.store,
			GasSamples: a.store,
			Gas:        gas,
			Metrics:    a.metrics,
			Logger:     a.logger,
		})
		if err != nil {
			return err
		}
		writeSummary(out, summary)
		failed += summary.Failed
		samples = append(samples, gas.Samples()...)
	}

	if reportGas {
		var node headerReader
		if s != nil {
			node, _ = s.backend.(headerReader)
		}
		report := a.gasReport(ctx, gasreport.Summarize(samples), node)
		if a.profile.InProcess {
			report.BlockGasLimit = devchain.DefaultGasLimit
		}
		if err := report.WriteFile(a.cfg.GasReporter.OutputFile); err != nil {
			return err
		}
		a.logger.Info("Gas report written", slog.String("path", a.cfg.GasReporter.OutputFile))
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

// fixture picks how checks get their Env: a new in-process chain per
// check, or the connected node.
func (a *app) fixture(s *session, suite harness.Suite, gas *gasreport.Collector) harness.Fixture {
	if s == nil {
		return &harness.InProcessFixture{
			Profile: a.profile,
			Gas:     gas,
			Metrics: a.metrics,
			Logger:  a.logger,
		}
	}
	return &harness.RPCFixture{
		Profile:   a.profile,
		Backend:   s.backend,
		Signers:   s.signers,
		Artifacts: s.artifacts,
		Store:     s.deployments,
		Funders:   suite.Funders,
		Gas:       gas,
		Metrics:   a.metrics,
		Logger:    a.logger,
	}
}

func writeSummary(out io.Writer, s *harness.Summary) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s suite on %s (run %s)\n", s.Suite, s.Network, s.RunID)
	for _, r := range s.Results {
		status := types.CheckStatusOf(r.Passed, r.Skipped)
		fmt.Fprintf(tw, "  %s\t%s\t%dms\n", status, r.Name, r.DurationMs)
		if r.Error != "" && status == types.CheckFailed {
			fmt.Fprintf(tw, "  \t  %s\t\n", r.Error)
		}
	}
	fmt.Fprintf(tw, "%d passed, %d failed, %d skipped in %s\n\n", s.Passed, s.Failed, s.Skipped, s.Duration.Round(time.Millisecond))
	tw.Flush()
}
