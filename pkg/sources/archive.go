package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	brerrors "github.com/victorsole/brubru/pkg/errors"
	"github.com/victorsole/brubru/pkg/httputil"
)

// ArchiveSource is a [Source] whose definition serves consolidated acts and
// Akoma Ntoso XML.
type ArchiveSource struct {
	*Source
}

// GetConsolidatedVersion fetches the consolidated-versions page of celex and
// records the CELEX number its "Consolidated" link points at.
func (s *ArchiveSource) GetConsolidatedVersion(ctx context.Context, celex string) (Record, error) {
	celex = strings.TrimSpace(celex)
	if err := ValidateCELEX(celex); err != nil {
		return Record{}, err
	}

	ep := s.def.Consolidated(celex)
	resp, target, err := s.fetchRaw(ctx, ep)
	if err != nil {
		if httputil.IsNotFound(err) {
			return Record{}, brerrors.NotFound(s.def.Key, celex, err)
		}
		return Record{}, fmt.Errorf("%s consolidated version %s: %w", s.def.Key, celex, err)
	}

	rec := s.archiveRecord(KindConsolidated, celex, withParams(target, ep.Params))
	consolidated := FindConsolidatedCELEX(resp.Content)
	rec.SetMeta("available", consolidated != "")
	if consolidated != "" {
		rec.SetMeta("consolidated_celex", consolidated)
		rec.URL = CELEXURLs(consolidated)["html_url"]
	}
	return rec, nil
}

// GetAkomaNtoso downloads the Akoma Ntoso XML of celex into Content. EUR-Lex
// answers with an error status for acts it has no AKN rendition of; that is
// reported as available=false, not as a failure.
func (s *ArchiveSource) GetAkomaNtoso(ctx context.Context, celex string) (Record, error) {
	celex = strings.TrimSpace(celex)
	if err := ValidateCELEX(celex); err != nil {
		return Record{}, err
	}

	ep := s.def.AkomaNtoso(celex)
	resp, target, err := s.fetchRaw(ctx, ep)
	rec := s.archiveRecord(KindAkomaNtoso, celex, withParams(target, ep.Params))
	var status *httputil.HTTPStatusError
	switch {
	case errors.As(err, &status):
		rec.SetMeta("available", false)
		rec.SetMeta("status_code", status.StatusCode)
		return rec, nil
	case err != nil:
		return Record{}, fmt.Errorf("%s akoma ntoso %s: %w", s.def.Key, celex, err)
	}
	rec.Content = string(resp.Content)
	rec.SetMeta("available", true)
	return rec, nil
}

func (s *ArchiveSource) archiveRecord(kind, celex, target string) Record {
	rec := Record{
		ID:        celex,
		Source:    s.def.Key,
		URL:       target,
		Kind:      kind,
		FetchedAt: s.now().UTC(),
	}
	rec.SetMeta("celex_number", celex)
	rec.SetMeta("document_type", CELEXDocumentType(celex))
	return rec
}

func withParams(target string, params url.Values) string {
	if len(params) == 0 {
		return target
	}
	return target + "?" + params.Encode()
}

// CommitteeSource is a [Source] whose definition lists committee members.
type CommitteeSource struct {
	*Source
}

// GetCommitteeMembers returns one MEP record per distinct member linked from
// the committee's members page. Codes are case-insensitive.
func (s *CommitteeSource) GetCommitteeMembers(ctx context.Context, code string) ([]Record, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := ValidateCommitteeCode(code); err != nil {
		return nil, err
	}

	resp, _, err := s.fetchRaw(ctx, s.def.Committee(code))
	if err != nil {
		if httputil.IsNotFound(err) {
			return nil, brerrors.NotFound(s.def.Key, code, err)
		}
		return nil, fmt.Errorf("%s committee %s: %w", s.def.Key, code, err)
	}

	fetched := s.now().UTC()
	ids := FindMEPIDs(resp.Content)
	recs := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec := Record{
			ID:        id,
			Source:    s.def.Key,
			URL:       fmt.Sprintf(mepProfileURL, id),
			Kind:      KindMEP,
			FetchedAt: fetched,
		}
		rec.SetMeta("committee", code)
		recs = append(recs, rec)
	}
	return recs, nil
}

var (
	_ LegislationArchive = (*ArchiveSource)(nil)
	_ CommitteeDirectory = (*CommitteeSource)(nil)
)
