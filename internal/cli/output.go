package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/victorsole/brubru/pkg/integrations"
	"github.com/victorsole/brubru/pkg/orchestrator"
	"github.com/victorsole/brubru/pkg/sources"
)

// maxRecordsShown limits the records printed per source in human output.
const maxRecordsShown = 5

// printAggregated prints a fan-out response, one block per source.
func printAggregated(w io.Writer, resp orchestrator.AggregatedResponse) {
	names := make([]string, 0, len(resp.Results))
	for name := range resp.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		printResult(w, resp.Results[name])
	}
	fmt.Fprintln(w)
	summary := fmt.Sprintf("%d/%d sources succeeded in %.0fms",
		resp.Successful, resp.TotalSourcesRequested, resp.TotalExecutionTimeMs)
	if resp.Failed > 0 {
		printWarning(w, "%s", summary)
	} else {
		printSuccess(w, "%s", summary)
	}
	printDetail(w, "request %s", resp.RequestID)
}

// printResult prints one source result and up to maxRecordsShown records.
func printResult(w io.Writer, r orchestrator.SourceResult) {
	if !r.Success {
		printError(w, "%s %s", StyleTitle.Render(r.Source), StyleDim.Render(r.Error))
		return
	}
	recs := r.Records()
	printSuccess(w, "%s %s", StyleTitle.Render(r.Source),
		StyleDim.Render(fmt.Sprintf("%d records · %.0fms · ", len(recs), r.ExecutionTimeMs))+cacheLabel(r.CacheHit))
	for i, rec := range recs {
		if i == maxRecordsShown {
			printDetail(w, "… %d more", len(recs)-maxRecordsShown)
			break
		}
		printRecord(w, rec)
	}
}

func printRecord(w io.Writer, rec sources.Record) {
	title := rec.Title
	if title == "" {
		title = rec.ID
	}
	line := "  " + StyleValue.Render(title)
	if rec.Published != nil {
		line += " " + StyleDim.Render(rec.Published.Format("2006-01-02"))
	}
	fmt.Fprintln(w, line)
	if rec.URL != "" {
		printLink(w, rec.URL)
	}
}

// printTracking prints the three procedure results under their labels.
func printTracking(w io.Writer, t orchestrator.ProcedureTracking) {
	fmt.Fprintln(w, StyleTitle.Render("Procedure "+t.ProcedureReference))
	for _, part := range []struct {
		label  string
		result orchestrator.SourceResult
	}{
		{"Observatory", t.Observatory},
		{"Timeline", t.Timeline},
		{"Tracker", t.Tracker},
	} {
		printKeyValue(w, part.label, part.result.Source)
		printResult(w, part.result)
	}
	printDetail(w, "%.0fms total", t.TotalExecutionTimeMs)
}

// printStatsTable prints per-source client counters sorted by name.
func printStatsTable(w io.Writer, stats map[string]integrations.AdapterStats) {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := stats[name]
		fmt.Fprintln(w, StyleTitle.Render(name))
		printKeyValue(w, "requests", StyleNumber.Render(strconv.FormatInt(s.RequestsMade, 10)))
		printKeyValue(w, "cache hits", fmt.Sprintf("%d (%.0f%%)", s.CacheHits, s.HitRate()*100))
		printKeyValue(w, "errors", strconv.FormatInt(s.Errors, 10))
		printKeyValue(w, "bytes", strconv.FormatInt(s.TotalBytes, 10))
		printKeyValue(w, "cached", strconv.Itoa(s.CacheSize))
		printKeyValue(w, "delay", fmt.Sprintf("%.1fs", s.RateLimitDelay))
	}
}
