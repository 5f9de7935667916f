package orchestrator

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/victorsole/brubru/pkg/sources"
)

// Procedure sources and the labels they are merged under.
var procedureSources = [3]string{
	sources.OEIL,             // Observatory
	sources.LegislativeTrain, // Timeline
	sources.LawTracker,       // Tracker
}

// TrackProcedure follows one legislative procedure across the observatory,
// the timeline and the tracker sources. All three results are always set,
// whichever of them failed.
func (o *Orchestrator) TrackProcedure(ctx context.Context, ref string) ProcedureTracking {
	tracking := ProcedureTracking{
		RequestID:          uuid.NewString(),
		ProcedureReference: ref,
	}
	logger := o.logger.With("request_id", tracking.RequestID)
	logger.Info("tracking procedure", "ref", ref)

	start := o.now()
	var results [3]SourceResult
	var g errgroup.Group
	for i, name := range procedureSources {
		g.Go(func() error {
			results[i] = o.Dispatch(ctx, name, OpGetProcedure, Args{ProcedureRef: ref})
			return nil
		})
	}
	_ = g.Wait()

	tracking.Observatory, tracking.Timeline, tracking.Tracker = results[0], results[1], results[2]
	tracking.TotalExecutionTimeMs = millis(o.now().Sub(start))
	tracking.Timestamp = o.now().UTC()
	return tracking
}
