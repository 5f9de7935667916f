// Package orchestrator fans operations out across the EU sources.
//
// # Overview
//
// An [Orchestrator] holds a registry of [sources.Adapter] values and one
// global semaphore. Every source operation goes through [Orchestrator.Dispatch],
// which takes a semaphore permit, runs the operation, and turns any failure
// into a [SourceResult] with Success=false. Dispatch never returns an error,
// so multi-source calls always produce one result per requested source:
//
//	o, err := orchestrator.NewFromConfig(cfg, logger)
//	resp := o.SearchAll(ctx, "artificial intelligence", nil, sources.SearchOptions{})
//	for name, r := range resp.Results {
//	    fmt.Println(name, r.Success, r.Error)
//	}
//
// # Concurrency
//
// At most MaxConcurrent operations run at once across all sources. Each
// source additionally spaces its own requests by its rate-limit delay.
// Fan-out calls wait for every dispatched operation before returning; there
// is no fail-fast and no cancellation of slow sources.
//
// # Errors
//
// The only error surfaced directly is UNKNOWN_SOURCE from
// [Orchestrator.GetDocumentFromSource], which signals a caller mistake rather
// than a remote failure.
//
// [sources.Adapter]: github.com/victorsole/brubru/pkg/sources.Adapter
package orchestrator
