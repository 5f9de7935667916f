package sources

import (
	"html"
	"regexp"
	"strings"

	"github.com/victorsole/brubru/pkg/cache"
)

// Parser turns a fetched page into records. A document page that yields no
// records is reported as not found.
type Parser interface {
	Parse(page Page) ([]Record, error)
}

// ParserFunc adapts a function to [Parser].
type ParserFunc func(page Page) ([]Record, error)

// Parse calls f.
func (f ParserFunc) Parse(page Page) ([]Record, error) { return f(page) }

// RawParser emits one record per page carrying the raw content. Only the
// <title> element is read.
type RawParser struct{}

var titleRE = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// Parse implements [Parser].
func (RawParser) Parse(page Page) ([]Record, error) {
	if len(page.Content) == 0 {
		return nil, nil
	}
	id := page.ID
	if id == "" {
		id = cache.Hash([]byte(page.URL + "?" + page.Params.Encode()))
	}
	rec := Record{
		ID:        id,
		Source:    page.Source,
		Title:     extractTitle(page.Content),
		URL:       pageURL(page),
		Kind:      page.Kind,
		Content:   string(page.Content),
		FetchedAt: page.FetchedAt,
	}
	rec.SetMeta("bytes", len(page.Content))
	rec.SetMeta("cache_hit", page.CacheHit)
	if page.Query != "" {
		rec.SetMeta("query", page.Query)
	}
	return []Record{rec}, nil
}

func extractTitle(content []byte) string {
	m := titleRE.FindSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(string(m[1]))), " ")
}

func pageURL(page Page) string {
	if len(page.Params) == 0 {
		return page.URL
	}
	sep := "?"
	if strings.Contains(page.URL, "?") {
		sep = "&"
	}
	return page.URL + sep + page.Params.Encode()
}
