package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	brerrors "github.com/victorsole/brubru/pkg/errors"
	"github.com/victorsole/brubru/pkg/sources"
)

// searchFlags holds the search command's filter flags.
type searchFlags struct {
	sources []string
	limit   int
	docType string
	from    string
	to      string
	author  string
	country string
}

func (f searchFlags) options() (sources.SearchOptions, error) {
	opts := sources.SearchOptions{
		Limit:        f.limit,
		DocumentType: f.docType,
		Author:       f.author,
		Country:      f.country,
	}
	if f.limit < 0 {
		return opts, brerrors.New(brerrors.ErrCodeInvalidInput, "--limit must not be negative")
	}
	var err error
	if opts.DateFrom, err = parseDate("from", f.from); err != nil {
		return opts, err
	}
	if opts.DateTo, err = parseDate("to", f.to); err != nil {
		return opts, err
	}
	return opts, nil
}

func parseDate(flag, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, brerrors.New(brerrors.ErrCodeInvalidInput, "--%s must be YYYY-MM-DD, got %q", flag, s)
	}
	return t, nil
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search all (or selected) sources",
		Long: `Search every registered source concurrently and print one block per source.

A failing source never fails the command; its error is shown in its block.`,
		Example: `  brubru search "artificial intelligence"
  brubru search "data protection" --source eurlex,council --from 2024-01-01
  brubru search Weber --source european_parliament --country DE`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if err := brerrors.ValidateQuery(query); err != nil {
				return err
			}
			opts, err := flags.options()
			if err != nil {
				return err
			}
			orch, err := c.newOrchestrator()
			if err != nil {
				return err
			}

			sw := startStopwatch(c.Logger)
			stop := c.spin(cmd, fmt.Sprintf("Searching %q...", query))
			resp := orch.SearchAll(cmd.Context(), query, flags.sources, opts)
			stop()
			sw.batch("search finished", resp)

			return c.emit(resp, func(w io.Writer) { printAggregated(w, resp) })
		},
	}

	cmd.Flags().StringSliceVarP(&flags.sources, "source", "s", nil, "restrict to these sources (repeatable or comma-separated)")
	cmd.Flags().IntVarP(&flags.limit, "limit", "n", 0, fmt.Sprintf("max records per source (default %d)", sources.DefaultSearchLimit))
	cmd.Flags().StringVar(&flags.docType, "type", "", "document type filter")
	cmd.Flags().StringVar(&flags.from, "from", "", "earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.to, "to", "", "latest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.author, "author", "", "author filter")
	cmd.Flags().StringVar(&flags.country, "country", "", "country filter (MEP search)")
	_ = cmd.RegisterFlagCompletionFunc("source", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return sources.Keys(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}
