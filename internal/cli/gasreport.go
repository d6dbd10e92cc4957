package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
	"github.com/spf13/cobra"

	"github.com/gateway-fm/fundme/internal/gasreport"
	"github.com/gateway-fm/fundme/internal/storage"
	"github.com/gateway-fm/fundme/internal/view"
)

func createGasReportCmd() *cobra.Command {
	var runID string
	var output string
	var format string

	cmd := &cobra.Command{
		Use:   "gas-report",
		Short: "Show the gas used by a recorded run",
		Long: `Show per-method and per-deployment gas statistics collected by a test run.

EXAMPLES:
  # Gas used by the latest run
  fundme gas-report

  # A specific run, written to a file
  fundme gas-report --run 3f0c... --output gas-report.txt
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return withApp(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
				return runGasReport(ctx, a, cmd.OutOrStdout(), runID, output, format)
			})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "run id (default: latest run)")
	cmd.Flags().StringVar(&output, "output", "", "also write the table to this file")
	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "output format: table, json, yaml")

	return cmd
}

func runGasReport(ctx context.Context, a *app, out io.Writer, runID, output, format string) error {
	if runID == "" {
		page, err := a.store.ListRuns(ctx, 1, 0)
		if err != nil {
			return err
		}
		if len(page.Runs) == 0 {
			return errors.New("no runs recorded yet: run fundme test first")
		}
		runID = page.Runs[0].ID
	} else if _, err := a.store.GetRun(ctx, runID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("run %s not found", runID)
		}
		return err
	}

	samples, err := a.store.GetGasSamples(ctx, runID)
	if err != nil {
		return err
	}
	summary := gasreport.Summarize(samples)

	if format != formatTable {
		return render(out, format, view.GasReport(runID, summary), nil)
	}

	report := a.gasReport(ctx, summary, nil)
	if output != "" {
		if err := report.WriteFile(output); err != nil {
			return err
		}
	}
	_, err = report.WriteTo(out)
	return err
}

// headerReader is implemented by both backends and gives the block gas limit.
type headerReader interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// gasReport prices a summary. node is optional and supplies the block gas
// limit and, when none is configured, the gas price.
func (a *app) gasReport(ctx context.Context, summary gasreport.Summary, node headerReader) gasreport.Report {
	gr := a.cfg.GasReporter
	report := gasreport.Report{
		Summary:      summary,
		GasPriceGwei: gr.GasPriceGwei,
		Currency:     gr.Currency,
		Token:        gr.Token,
	}

	if node != nil {
		if head, err := node.HeaderByNumber(ctx, nil); err == nil {
			report.BlockGasLimit = head.GasLimit
		}
		if report.GasPriceGwei == 0 {
			if price, err := node.SuggestGasPrice(ctx); err == nil {
				gwei, _ := new(big.Float).Quo(new(big.Float).SetInt(price), big.NewFloat(params.GWei)).Float64()
				report.GasPriceGwei = gwei
			}
		}
	}

	if a.cfg.CoinMarketCapAPIKey != "" {
		fetcher := gasreport.NewPriceFetcher(a.cfg.CoinMarketCapURL, a.cfg.CoinMarketCapAPIKey, a.logger)
		price, err := fetcher.Price(ctx, report.Token, report.Currency)
		if err != nil {
			a.logger.Warn("failed to fetch token price", slog.String("token", report.Token), slog.String("error", err.Error()))
		} else {
			report.TokenPrice = price
		}
	}
	return report
}
