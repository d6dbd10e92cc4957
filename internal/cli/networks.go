package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gateway-fm/fundme/internal/view"
	"github.com/gateway-fm/fundme/pkg/types"
)

func createNetworksCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "networks [name]",
		Short: "List configured networks",
		Long: `List the built-in networks merged with the [networks] tables of the
config file and <NAME>_RPC_URL variables. With a name, resolve that network
the way deploy and test do, failing if it cannot be used.

EXAMPLES:
  fundme networks
  fundme networks sepolia --format json
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				p, err := reg.Resolve(args[0])
				if err != nil {
					return err
				}
				return writeNetworks(cmd.OutOrStdout(), format, []types.Network{view.Network(p)}, cfg.Network)
			}

			var networks []types.Network
			for _, name := range reg.Names() {
				p, err := reg.Resolve(name)
				if err != nil {
					p = reg.Get(name)
				}
				networks = append(networks, view.Network(p))
			}
			return writeNetworks(cmd.OutOrStdout(), format, networks, cfg.Network)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "output format: table, json, yaml")

	return cmd
}

func writeNetworks(out io.Writer, format string, networks []types.Network, selected string) error {
	return render(out, format, networks, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "\tNAME\tCHAIN ID\tKIND\tPRICE FEED\tCONFIRMATIONS\tRPC")
		for _, n := range networks {
			marker := ""
			if n.Name == selected {
				marker = "*"
			}
			kind := "public"
			if n.Development {
				kind = "development"
			}
			feed := string(n.Oracle)
			if n.OracleAddress != "" {
				feed = n.OracleAddress
			}
			rpc := "unset"
			switch {
			case n.InProcess:
				rpc = "in-process"
			case n.RPCConfigured:
				rpc = "set"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%d\t%s\n", marker, n.Name, n.ChainID, kind, feed, n.Confirmations, rpc)
		}
	})
}
