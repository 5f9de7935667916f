package sources

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	brerrors "github.com/victorsole/brubru/pkg/errors"
)

const (
	europarlBase         = "https://www.europarl.europa.eu"
	mepDirectoryPath     = "meps/en/directory/xml"
	mepProfilePath       = "meps/en/%s"
	committeeMembersPath = "committees/en/%s/members"
	mepProfileURL        = europarlBase + "/" + mepProfilePath
)

var (
	mepIDRE         = regexp.MustCompile(`^[0-9]+$`)
	committeeCodeRE = regexp.MustCompile(`^[A-Z]{4}$`)
	mepLinkRE       = regexp.MustCompile(`/meps/en/([0-9]+)`)
)

// ValidateMEPID checks that id is a numeric MEP identifier.
func ValidateMEPID(id string) error {
	if !mepIDRE.MatchString(id) {
		return brerrors.New(brerrors.ErrCodeInvalidInput, "invalid MEP id: %q (must be numeric)", id)
	}
	return nil
}

// ValidateCommitteeCode checks a four-letter committee code such as "ENVI".
func ValidateCommitteeCode(code string) error {
	if !committeeCodeRE.MatchString(code) {
		return brerrors.New(brerrors.ErrCodeInvalidInput, "invalid committee code: %q (want four letters, e.g. ENVI)", code)
	}
	return nil
}

// FindMEPIDs returns the distinct MEP ids linked from page, in order of
// first appearance.
func FindMEPIDs(page []byte) []string {
	seen := make(map[string]bool)
	ids := []string{}
	for _, m := range mepLinkRE.FindAllSubmatch(page, -1) {
		id := string(m[1])
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// mepDirectory is the shape of the Parliament's XML MEP directory.
type mepDirectory struct {
	MEPs []struct {
		ID             string `xml:"id"`
		FullName       string `xml:"fullName"`
		Country        string `xml:"country"`
		PoliticalGroup string `xml:"politicalGroup"`
		NationalGroup  string `xml:"nationalPoliticalGroup"`
	} `xml:"mep"`
}

// MEPDirectoryParser parses the MEP directory and keeps the MEPs matching
// Query (case-insensitive substring of name, country or political group)
// and, when set, exactly Country.
type MEPDirectoryParser struct {
	Query   string
	Country string
}

// Parse implements [Parser].
func (p MEPDirectoryParser) Parse(page Page) ([]Record, error) {
	var dir mepDirectory
	if err := xml.NewDecoder(bytes.NewReader(page.Content)).Decode(&dir); err != nil {
		return nil, fmt.Errorf("decoding MEP directory: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(p.Query))
	if query == "*" {
		query = ""
	}
	recs := make([]Record, 0, len(dir.MEPs))
	for _, m := range dir.MEPs {
		name := strings.TrimSpace(m.FullName)
		if name == "" {
			name = "Unknown"
		}
		if p.Country != "" && !strings.EqualFold(m.Country, p.Country) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(name), query) &&
			!strings.Contains(strings.ToLower(m.Country), query) &&
			!strings.Contains(strings.ToLower(m.PoliticalGroup), query) {
			continue
		}

		rec := Record{
			ID:        strings.TrimSpace(m.ID),
			Source:    page.Source,
			Title:     name,
			URL:       fmt.Sprintf(mepProfileURL, strings.TrimSpace(m.ID)),
			Kind:      KindMEP,
			FetchedAt: page.FetchedAt,
		}
		rec.SetMeta("country", m.Country)
		rec.SetMeta("political_group", m.PoliticalGroup)
		if m.NationalGroup != "" {
			rec.SetMeta("national_political_group", m.NationalGroup)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
