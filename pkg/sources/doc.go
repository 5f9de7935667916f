// Package sources defines the EU institutional sources and the capability
// interface the orchestrator drives them through.
//
// # Overview
//
// Every source is an [Adapter]. The built-in sources are not separate types:
// each is a [Definition] (registry key, display name, base URL, rate-limit
// delay and endpoint builders) turned into a generic [Source] by [New]:
//
//	def, _ := sources.Lookup(sources.EURLex)
//	adapter := sources.New(def, def.ClientConfig())
//	recs, err := adapter.Search(ctx, "artificial intelligence", sources.SearchOptions{
//	    DocumentType: "regulation",
//	    DateFrom:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
//	})
//
// Sources that follow legislative procedures (OEIL, Legislative Train, Law
// Tracker) also implement [ProcedureTracker]. EUR-Lex implements
// [LegislationArchive] and the European Parliament [CommitteeDirectory].
//
// # Parsing
//
// Turning institution HTML into typed records is delegated to a [Parser].
// The default [RawParser] emits one [Record] per fetched page carrying the
// raw content and the page title. The European Parliament search reads the
// XML MEP directory with [MEPDirectoryParser].
//
// # Identifiers
//
// Document ids are checked before any request is made: EUR-Lex ids must be
// CELEX numbers ([ValidateCELEX]), MEP ids numeric ([ValidateMEPID]) and
// procedure references look like "2021/0106(COD)"
// ([ValidateProcedureReference]).
package sources
