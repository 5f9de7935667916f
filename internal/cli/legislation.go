package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/victorsole/brubru/pkg/orchestrator"
	"github.com/victorsole/brubru/pkg/sources"
)

// consolidatedCommand creates the consolidated command.
func (c *CLI) consolidatedCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "consolidated CELEX",
		Short:   "Find the consolidated version of an EUR-Lex act",
		Example: `  brubru consolidated 32016R0679`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.lookup(cmd, "Looking up consolidated version of "+args[0]+"...",
				func(ctx context.Context, o *orchestrator.Orchestrator) orchestrator.SourceResult {
					return o.GetConsolidatedVersion(ctx, args[0])
				})
			if err != nil {
				return err
			}
			if err := c.emit(result, func(w io.Writer) { printAvailability(w, result, "consolidated_celex") }); err != nil {
				return err
			}
			return resultError(result)
		},
	}
}

// aknCommand creates the akn command.
func (c *CLI) aknCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "akn CELEX",
		Short: "Download the Akoma Ntoso XML of an EUR-Lex act",
		Example: `  brubru akn 32016R0679 -o gdpr.akn.xml
  brubru akn --json 32019L0790`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.lookup(cmd, "Downloading Akoma Ntoso XML of "+args[0]+"...",
				func(ctx context.Context, o *orchestrator.Orchestrator) orchestrator.SourceResult {
					return o.GetAkomaNtoso(ctx, args[0])
				})
			if err != nil {
				return err
			}
			if err := resultError(result); err != nil {
				_ = c.emit(result, func(w io.Writer) { printResult(w, result) })
				return err
			}

			rec, _ := result.Data.(sources.Record)
			if output != "" && rec.Metadata["available"] == true {
				if err := os.WriteFile(output, []byte(rec.Content), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", output, err)
				}
				printSuccess(c.out, "Wrote %s (%d bytes)", output, len(rec.Content))
				return nil
			}
			return c.emit(result, func(w io.Writer) { printAvailability(w, result, "celex_number") })
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the XML to this file")
	return cmd
}

// committeeCommand creates the committee command.
func (c *CLI) committeeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "committee CODE",
		Short:   "List the MEPs sitting on a European Parliament committee",
		Example: `  brubru committee ENVI`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.lookup(cmd, "Listing members of "+args[0]+"...",
				func(ctx context.Context, o *orchestrator.Orchestrator) orchestrator.SourceResult {
					return o.GetCommitteeMembers(ctx, args[0])
				})
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

// lookup builds the orchestrator and runs one single-source lookup under the spinner.
func (c *CLI) lookup(cmd *cobra.Command, msg string, fn func(context.Context, *orchestrator.Orchestrator) orchestrator.SourceResult) (orchestrator.SourceResult, error) {
	orch, err := c.newOrchestrator()
	if err != nil {
		return orchestrator.SourceResult{}, err
	}
	sw := startStopwatch(c.Logger)
	stop := c.spin(cmd, msg)
	result := fn(cmd.Context(), orch)
	stop()
	sw.done("lookup finished", "source", result.Source, "success", result.Success)
	return result, nil
}

// printAvailability prints a lookup record whose metadata says whether the
// requested rendition exists, with the metadata value under key.
func printAvailability(w io.Writer, r orchestrator.SourceResult, key string) {
	rec, ok := r.Data.(sources.Record)
	if !ok || !r.Success {
		printResult(w, r)
		return
	}
	if rec.Metadata["available"] != true {
		printWarning(w, "%s %s", StyleTitle.Render(rec.ID), StyleDim.Render("not available"))
		printLink(w, rec.URL)
		return
	}
	printSuccess(w, "%s %s", StyleTitle.Render(rec.ID), StyleValue.Render(fmt.Sprint(rec.Metadata[key])))
	printLink(w, rec.URL)
}
