package cli

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/victorsole/brubru/pkg/buildinfo"
	"github.com/victorsole/brubru/pkg/config"
	"github.com/victorsole/brubru/pkg/orchestrator"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "brubru"

	// configFileName is the default config file inside the config directory.
	configFileName = "config.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out    io.Writer // command results
	errOut io.Writer // spinner and progress

	configPath    string
	maxConcurrent int
	jsonOutput    bool

	// build constructs the orchestrator from the loaded config.
	build func(*config.Config, *log.Logger) (*orchestrator.Orchestrator, error)
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
		errOut: w,
		build: func(cfg *config.Config, l *log.Logger) (*orchestrator.Orchestrator, error) {
			return orchestrator.NewFromConfig(cfg, l)
		},
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Brubru searches EU institutional sources in one go",
		Long: `Brubru queries the European Parliament, Commission, Council, EUR-Lex and
other EU institutional sources concurrently and merges their answers into a
single response. Each source is rate limited and cached independently.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default "+defaultConfigHint()+")")
	root.PersistentFlags().IntVar(&c.maxConcurrent, "max-concurrent", 0, "cap on concurrent source requests (overrides config)")
	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "print results as JSON")

	// Register all subcommands
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.documentCommand())
	root.AddCommand(c.latestCommand())
	root.AddCommand(c.trackCommand())
	root.AddCommand(c.consolidatedCommand())
	root.AddCommand(c.aknCommand())
	root.AddCommand(c.committeeCommand())
	root.AddCommand(c.sourcesCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Orchestrator Factory
// =============================================================================

// loadConfig reads the config file named by --config, or the default file
// when it exists, and applies the --max-concurrent override.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.configPath
	if path == "" {
		if p, err := defaultConfigPath(); err == nil {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}

	var cfg *config.Config
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("loaded config", "path", path)
		cfg = loaded
	} else {
		cfg = config.Default()
		if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
			return nil, err
		}
	}

	if c.maxConcurrent > 0 {
		cfg.MaxConcurrent = c.maxConcurrent
	}
	return cfg, nil
}

// newOrchestrator builds an orchestrator for one command invocation.
func (c *CLI) newOrchestrator() (*orchestrator.Orchestrator, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return c.build(cfg, c.Logger)
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/brubru/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

func defaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

func defaultConfigHint() string {
	return filepath.Join("$XDG_CONFIG_HOME", appName, configFileName)
}

// =============================================================================
// Output
// =============================================================================

// emit writes v as JSON when --json is set, and calls human otherwise.
func (c *CLI) emit(v any, human func(w io.Writer)) error {
	if c.jsonOutput {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human(c.out)
	return nil
}

// spin starts a spinner unless JSON output is requested.
func (c *CLI) spin(cmd *cobra.Command, message string) func() {
	if c.jsonOutput {
		return func() {}
	}
	s := newSpinner(cmd.Context(), c.errOut, message)
	s.Start()
	return s.Stop
}

var errSourceFailed = errors.New("source request failed")
