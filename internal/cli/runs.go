package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gateway-fm/fundme/internal/storage"
	"github.com/gateway-fm/fundme/internal/view"
	"github.com/gateway-fm/fundme/pkg/types"
)

func createRunsCmd() *cobra.Command {
	var limit int
	var offset int
	var format string

	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "List recorded test runs",
		Long: `List recorded test runs, newest first. With an id, show the run and the
outcome of each check.

EXAMPLES:
  fundme runs --limit 5
  fundme runs 3f0c... --format json
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return withApp(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
				if len(args) == 1 {
					return showRun(ctx, a.store, cmd.OutOrStdout(), args[0], format)
				}
				page, err := a.store.ListRuns(ctx, limit, offset)
				if err != nil {
					return err
				}
				return writeRuns(cmd.OutOrStdout(), format, view.RunList(page))
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of runs to skip")
	cmd.Flags().StringVarP(&format, "format", "o", formatTable, "output format: table, json, yaml")

	return cmd
}

func showRun(ctx context.Context, runs storage.RunStore, out io.Writer, id, format string) error {
	r, err := runs.GetRun(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return err
	}
	run := view.Run(*r, true)
	return render(out, format, run, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Run:\t%s\n", run.ID)
		fmt.Fprintf(tw, "Suite:\t%s\n", run.Suite)
		fmt.Fprintf(tw, "Network:\t%s (chain %d)\n", run.Network, run.ChainID)
		fmt.Fprintf(tw, "Status:\t%s\n", run.Status)
		fmt.Fprintf(tw, "Started:\t%s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
		if run.ErrorMessage != "" {
			fmt.Fprintf(tw, "Error:\t%s\n", run.ErrorMessage)
		}
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "STATUS\tCHECK\tDURATION\tERROR")
		for _, c := range run.Results {
			fmt.Fprintf(tw, "%s\t%s\t%dms\t%s\n", c.Status, c.Name, c.DurationMs, orDash(c.Error))
		}
	})
}

func writeRuns(out io.Writer, format string, list types.RunList) error {
	return render(out, format, list, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tSUITE\tNETWORK\tSTATUS\tPASSED\tFAILED\tSKIPPED\tSTARTED")
		for _, r := range list.Runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				r.ID, r.Suite, r.Network, r.Status, r.Passed, r.Failed, r.Skipped, r.StartedAt.Format("2006-01-02 15:04:05"))
		}
		if list.Total > list.Offset+len(list.Runs) {
			fmt.Fprintf(tw, "\n%d of %d runs shown\n", len(list.Runs), list.Total)
		}
	})
}
