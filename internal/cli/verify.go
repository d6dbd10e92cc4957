package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/gateway-fm/fundme/internal/contracts"
	"github.com/gateway-fm/fundme/internal/deploy"
)

func createVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [contract]",
		Short: "Verify a recorded deployment on the block explorer",
		Long: `Submit the source of a recorded deployment to the network's block explorer.

deploy already verifies FundMe on public networks. Use this command to retry
after a failed verification. Requires ETHERSCAN_API_KEY.

EXAMPLES:
  fundme verify --network sepolia
  fundme verify FundMe --network sepolia
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := contracts.FundMeName
			if len(args) == 1 {
				name = args[0]
			}
			return withApp(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
				s, err := a.connect(ctx)
				if err != nil {
					return err
				}
				defer s.close()
				return deploy.Verify(ctx, a.environment(s), name)
			})
		},
	}

	return cmd
}
