package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gateway-fm/fundme/internal/deploy"
	"github.com/gateway-fm/fundme/internal/view"
	"github.com/gateway-fm/fundme/pkg/types"
)

func createDeployCmd() *cobra.Command {
	var tags []string
	var reset bool
	var format string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Run the deploy steps",
		Long: `Run the deploy steps against the selected network.

On development networks a MockV3Aggregator is deployed first and FundMe is
pointed at it. On other networks FundMe uses the network's Chainlink ETH/USD
feed and is verified on the block explorer when ETHERSCAN_API_KEY is set.

Contracts already recorded for the network with the same bytecode and
constructor arguments are reused.

EXAMPLES:
  # Deploy everything to the in-process chain
  fundme deploy

  # Deploy only the mocks to a local node
  fundme deploy --network localhost --tags mocks

  # Deploy and verify on Sepolia
  fundme deploy --network sepolia
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return withApp(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
				return runDeploy(ctx, a, cmd.OutOrStdout(), tags, reset, format)
			})
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tags", nil, "only run steps with these tags (all, mocks, fundme)")
	cmd.Flags().BoolVar(&reset, "reset", false, "forget recorded deployments on this network first")
	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "output format: table, json, yaml")

	return cmd
}

func runDeploy(ctx context.Context, a *app, out io.Writer, tags []string, reset bool, format string) error {
	s, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if reset {
		if err := s.deployments.DeleteDeployments(ctx, a.profile.Name); err != nil {
			return fmt.Errorf("failed to reset deployments: %w", err)
		}
		a.logger.Info("Cleared recorded deployments", slog.String("network", a.profile.Name))
	}

	if err := deploy.Run(ctx, a.environment(s), tags); err != nil {
		return err
	}

	records, err := s.deployments.ListDeployments(ctx, a.profile.Name)
	if err != nil {
		return err
	}
	deployments := make([]types.Deployment, len(records))
	for i, d := range records {
		deployments[i] = view.Deployment(d, a.profile.ExplorerURL)
	}
	return writeDeployments(out, format, deployments)
}

func writeDeployments(out io.Writer, format string, deployments []types.Deployment) error {
	return render(out, format, deployments, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "NETWORK\tCONTRACT\tADDRESS\tBLOCK\tGAS\tVERIFIED")
		for _, d := range deployments {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%t\n", d.Network, d.Name, d.Address, d.BlockNumber, d.GasUsed, d.Verified)
		}
	})
}
