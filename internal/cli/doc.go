// Package cli implements the brubru command-line interface.
//
// The commands drive one [orchestrator.Orchestrator] built from the config
// file, so every command sees the same sources, rate limits and cache
// settings as a running server would.
//
// # Commands
//
//   - search: query all (or selected) sources concurrently
//   - document: fetch one document from one source
//   - latest: recent updates from every source
//   - track: follow a legislative procedure across its three sources
//   - sources, stats: inspect the registry and its counters
//   - cache clear: clear the caches of a running server
//   - serve: expose the same operations over JSON HTTP
//
// # Output
//
// Results are printed with lipgloss styles; --json prints the underlying
// response structure instead. Logs go to stderr via charmbracelet/log and
// --verbose (-v) enables debug output.
//
// [orchestrator.Orchestrator]: github.com/victorsole/brubru/pkg/orchestrator.Orchestrator
package cli
