package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/gateway-fm/fundme/internal/view"
	"github.com/gateway-fm/fundme/pkg/types"
)

func createDeploymentsCmd() *cobra.Command {
	var all bool
	var format string

	cmd := &cobra.Command{
		Use:   "deployments",
		Short: "List recorded deployments",
		Long: `List the deployments recorded for the selected network, or every network
with --all. Deployments to the in-process chain are not recorded.

EXAMPLES:
  fundme deployments --network sepolia
  fundme deployments --all --format yaml
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return withApp(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
				filter := a.profile.Name
				if all {
					filter = ""
				}
				records, err := a.store.ListDeployments(ctx, filter)
				if err != nil {
					return err
				}
				reg, err := a.cfg.Registry()
				if err != nil {
					return err
				}

				deployments := make([]types.Deployment, len(records))
				for i, d := range records {
					explorer := ""
					if p := reg.Get(d.Network); p != nil {
						explorer = p.ExplorerURL
					}
					deployments[i] = view.Deployment(d, explorer)
				}
				return writeDeployments(cmd.OutOrStdout(), format, deployments)
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list deployments on every network")
	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "output format: table, json, yaml")

	return cmd
}
