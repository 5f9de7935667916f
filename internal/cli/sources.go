package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/victorsole/brubru/pkg/integrations"
	"github.com/victorsole/brubru/pkg/sources"
)

type sourceRow struct {
	Name             string  `json:"name"`
	DisplayName      string  `json:"display_name"`
	BaseURL          string  `json:"base_url"`
	RateLimitDelay   float64 `json:"rate_limit_delay"`
	TracksProcedures bool    `json:"tracks_procedures"`
}

// sourcesCommand creates the sources command.
func (c *CLI) sourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the registered sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := c.newOrchestrator()
			if err != nil {
				return err
			}

			var rows []sourceRow
			for _, name := range orch.Sources() {
				a, _ := orch.Adapter(name)
				st := a.Stats()
				_, tracks := a.(sources.ProcedureTracker)
				rows = append(rows, sourceRow{
					Name:             name,
					DisplayName:      a.DisplayName(),
					BaseURL:          st.BaseURL,
					RateLimitDelay:   st.RateLimitDelay,
					TracksProcedures: tracks,
				})
			}

			return c.emit(rows, func(w io.Writer) {
				for _, r := range rows {
					line := StyleTitle.Render(fmt.Sprintf("%-20s", r.Name)) + " " + StyleValue.Render(r.DisplayName)
					if r.TracksProcedures {
						line += " " + StyleDim.Render("(procedures)")
					}
					fmt.Fprintln(w, line)
					printDetail(w, "%s · %.1fs", r.BaseURL, r.RateLimitDelay)
				}
			})
		},
	}
}

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-source request and cache counters",
		Long: `Show per-source request and cache counters.

Caches and counters live in memory, so they are read from a running
"brubru serve" process. Without --server, the counters of this process are
shown, which are empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats map[string]integrations.AdapterStats
			if serverURL != "" {
				remote := newRemote(serverURL, c.Logger)
				if err := remote.stats(cmd.Context(), &stats); err != nil {
					return err
				}
			} else {
				orch, err := c.newOrchestrator()
				if err != nil {
					return err
				}
				stats = orch.AllStats()
			}
			return c.emit(stats, func(w io.Writer) { printStatsTable(w, stats) })
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "base URL of a running brubru server")
	return cmd
}
