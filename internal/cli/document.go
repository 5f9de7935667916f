package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/victorsole/brubru/pkg/orchestrator"
	"github.com/victorsole/brubru/pkg/sources"
)

// documentCommand creates the document command.
func (c *CLI) documentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "document SOURCE ID",
		Short: "Fetch one document from a source",
		Example: `  brubru document eurlex 32016R0679
  brubru document european_parliament 197490`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return sources.Keys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := c.newOrchestrator()
			if err != nil {
				return err
			}

			stop := c.spin(cmd, fmt.Sprintf("Fetching %s from %s...", args[1], args[0]))
			result, err := orch.GetDocumentFromSource(cmd.Context(), args[0], args[1])
			stop()
			if err != nil {
				return err
			}
			if err := c.emit(result, func(w io.Writer) { printResult(w, result) }); err != nil {
				return err
			}
			return resultError(result)
		},
	}
}

// latestCommand creates the latest command.
func (c *CLI) latestCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the latest updates of every source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := c.newOrchestrator()
			if err != nil {
				return err
			}

			sw := startStopwatch(c.Logger)
			stop := c.spin(cmd, "Collecting latest updates...")
			resp := orch.GetLatestUpdatesAll(cmd.Context(), limit)
			stop()
			sw.batch("latest updates collected", resp)

			return c.emit(resp, func(w io.Writer) { printAggregated(w, resp) })
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", orchestrator.DefaultLatestLimit, "max records per source")
	return cmd
}

// trackCommand creates the track command.
func (c *CLI) trackCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "track REF",
		Short:   "Track a legislative procedure across its three sources",
		Example: `  brubru track "2021/0106(COD)"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			if err := sources.ValidateProcedureReference(ref); err != nil {
				return err
			}
			orch, err := c.newOrchestrator()
			if err != nil {
				return err
			}

			stop := c.spin(cmd, "Tracking "+ref+"...")
			tracking := orch.TrackProcedure(cmd.Context(), ref)
			stop()

			return c.emit(tracking, func(w io.Writer) { printTracking(w, tracking) })
		},
	}
}

// resultError turns a failed single-source result into a command error.
func resultError(r orchestrator.SourceResult) error {
	if r.Success {
		return nil
	}
	return fmt.Errorf("%w: %s: %s", errSourceFailed, r.Source, r.Error)
}
