package cli

import (
	"github.com/spf13/cobra"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response caches of a running server",
	}

	cmd.AddCommand(c.cacheClearCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear every source's cached responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			remote := newRemote(serverURL, c.Logger)
			n, err := remote.clearCache(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess(c.out, "Cleared caches of %d sources", n)
			printDetail(c.out, "Server: %s", serverURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", defaultServerURL, "base URL of a running brubru server")
	return cmd
}
