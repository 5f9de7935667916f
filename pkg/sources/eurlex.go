package sources

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	brerrors "github.com/victorsole/brubru/pkg/errors"
)

const (
	eurlexBase        = "https://eur-lex.europa.eu"
	eurlexDocumentURL = eurlexBase + "/legal-content/EN/TXT/"
)

// celexRE matches a sector-3 style CELEX number: year, sector letter, number.
var celexRE = regexp.MustCompile(`^[0-9]{5}[A-Z][0-9]{4}$`)

// celexSearchRE finds CELEX numbers inside free text or URLs.
var celexSearchRE = regexp.MustCompile(`[0-9]{5}[A-Z][0-9]{4}`)

// anchorRE captures the href and inner text of an HTML anchor.
var anchorRE = regexp.MustCompile(`(?is)<a\s[^>]*?href\s*=\s*["']([^"']*)["'][^>]*>(.*?)</a>`)

// tagRE strips markup from anchor text.
var tagRE = regexp.MustCompile(`<[^>]*>`)

// EUR-Lex document types derived from the CELEX sector letter.
const (
	DocRegulation    = "regulation"
	DocDirective     = "directive"
	DocDecision      = "decision"
	DocCommunication = "communication"
	DocOther         = "other"
)

// ValidateCELEX checks the CELEX format, e.g. "32016R0679" (GDPR).
func ValidateCELEX(celex string) error {
	if !celexRE.MatchString(celex) {
		return brerrors.New(brerrors.ErrCodeInvalidInput, "invalid CELEX number format: %s", celex)
	}
	return nil
}

// FindCELEX returns the first CELEX number in s, or "".
func FindCELEX(s string) string {
	return celexSearchRE.FindString(s)
}

// FindConsolidatedCELEX returns the CELEX number linked from the first anchor
// whose text mentions "Consolidated", or "" when the page has none.
func FindConsolidatedCELEX(page []byte) string {
	for _, m := range anchorRE.FindAllSubmatch(page, -1) {
		text := tagRE.ReplaceAll(m[2], nil)
		if !strings.Contains(string(text), "Consolidated") {
			continue
		}
		if celex := FindCELEX(string(m[1])); celex != "" {
			return celex
		}
	}
	return ""
}

// CELEXDocumentType maps the sector letter at position 6 onto a document type.
func CELEXDocumentType(celex string) string {
	if len(celex) < 6 {
		return DocOther
	}
	switch celex[5] {
	case 'R':
		return DocRegulation
	case 'L':
		return DocDirective
	case 'D':
		return DocDecision
	case 'C':
		return DocCommunication
	default:
		return DocOther
	}
}

// CELEXURLs returns the HTML, PDF, XML and Akoma Ntoso URLs of a document.
func CELEXURLs(celex string) map[string]string {
	uri := "uri=CELEX:" + celex
	return map[string]string{
		"html_url": eurlexDocumentURL + "?" + uri,
		"pdf_url":  eurlexDocumentURL + "PDF/?" + uri,
		"xml_url":  eurlexDocumentURL + "XML/?" + uri,
		"akn_url":  eurlexDocumentURL + "XML/?" + uri + "&format=akn",
	}
}

// eurlexSearchParams builds the quick-search query EUR-Lex expects.
func eurlexSearchParams(query string, opts SearchOptions) url.Values {
	params := url.Values{
		"text": {query},
		"qid":  {"1"},
		"type": {"quick"},
		"lang": {"en"},
	}
	if opts.DocumentType != "" {
		params.Set("FM_CODED", strings.ToUpper(opts.DocumentType))
	}
	if !opts.DateFrom.IsZero() {
		params.Set("DD_FROM", opts.DateFrom.Format("20060102"))
	}
	if !opts.DateTo.IsZero() {
		params.Set("DD_TO", opts.DateTo.Format("20060102"))
	}
	if opts.Author != "" {
		params.Set("AUTHOR", opts.Author)
	}
	for k, v := range opts.Extra {
		params.Set(k, v)
	}
	return params
}

// firstOfMonth returns midnight on the first day of now's month.
func firstOfMonth(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}

// enrichEURLex tags records whose id is a CELEX number with the document
// type and companion format URLs.
func enrichEURLex(rec *Record) {
	celex := rec.ID
	if !celexRE.MatchString(celex) {
		celex = FindCELEX(rec.URL)
	}
	if celex == "" {
		return
	}
	rec.SetMeta("celex_number", celex)
	if rec.Kind == KindDocument {
		rec.Kind = CELEXDocumentType(celex)
	}
	rec.SetMeta("document_type", CELEXDocumentType(celex))
	for k, v := range CELEXURLs(celex) {
		rec.SetMeta(k, v)
	}
}
