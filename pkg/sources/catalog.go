package sources

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"
)

// Registry keys of the built-in sources.
const (
	EuropeanParliament = "european_parliament"
	EuropeanCommission = "european_commission"
	Council            = "council"
	EURLex             = "eurlex"
	OEIL               = "oeil"
	LegislativeTrain   = "legislative_train"
	LawTracker         = "law_tracker"
	WhoIsWho           = "who_is_who"
	AssistEU           = "assist_eu"
	JRC                = "jrc"
	ThinkTank          = "think_tank"
	StyleGuide         = "style_guide"
	IATE               = "iate"
)

// Catalog returns the definitions of every built-in source, sorted by key.
func Catalog() []Definition {
	defs := []Definition{
		europeanParliament(),
		europeanCommission(),
		council(),
		eurlex(),
		oeil(),
		legislativeTrain(),
		lawTracker(),
		whoIsWho(),
		assistEU(),
		jrc(),
		thinkTank(),
		styleGuide(),
		iate(),
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Key < defs[j].Key })
	return defs
}

// Lookup returns the built-in definition for key.
func Lookup(key string) (Definition, bool) {
	for _, d := range Catalog() {
		if d.Key == key {
			return d, true
		}
	}
	return Definition{}, false
}

// Keys returns the registry keys of every built-in source, sorted.
func Keys() []string {
	defs := Catalog()
	keys := make([]string, len(defs))
	for i, d := range defs {
		keys[i] = d.Key
	}
	return keys
}

// query builds single-valued query parameters from key/value pairs.
func query(kv ...string) url.Values {
	v := make(url.Values, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			v.Set(kv[i], kv[i+1])
		}
	}
	return v
}

// withExtra adds caller-supplied parameters to v.
func withExtra(v url.Values, opts SearchOptions) url.Values {
	for k, val := range opts.Extra {
		v.Set(k, val)
	}
	return v
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func europeanParliament() Definition {
	return Definition{
		Key:            EuropeanParliament,
		DisplayName:    "European Parliament",
		BaseURL:        europarlBase,
		RateLimitDelay: 2 * time.Second,
		Search: func(q string, opts SearchOptions) Endpoint {
			return Endpoint{
				Path:   mepDirectoryPath,
				Parser: MEPDirectoryParser{Query: q, Country: opts.Country},
			}
		},
		Document: func(id string) Endpoint {
			return Endpoint{Path: fmt.Sprintf(mepProfilePath, url.PathEscape(id))}
		},
		Committee: func(code string) Endpoint {
			return Endpoint{Path: fmt.Sprintf(committeeMembersPath, url.PathEscape(code))}
		},
		ValidateID: ValidateMEPID,
	}
}

func europeanCommission() Definition {
	return Definition{
		Key:         EuropeanCommission,
		DisplayName: "European Commission",
		BaseURL:     "https://ec.europa.eu/commission/presscorner",
		Search: func(q string, opts SearchOptions) Endpoint {
			return Endpoint{Path: "api/search", Params: withExtra(query(
				"text", q,
				"documenttype", opts.DocumentType,
				"datefrom", isoDate(opts.DateFrom),
				"dateto", isoDate(opts.DateTo),
				"language", "en",
			), opts)}
		},
		Document: func(id string) Endpoint {
			return Endpoint{Path: "detail/en/" + url.PathEscape(id)}
		},
		Latest: func(_ time.Time, limit int) Endpoint {
			return Endpoint{Path: "home/en", Params: query("pagesize", strconv.Itoa(limit))}
		},
	}
}

func council() Definition {
	return Definition{
		Key:         Council,
		DisplayName: "Council of the EU",
		BaseURL:     "https://www.consilium.europa.eu/en",
		Search: func(q string, opts SearchOptions) Endpoint {
			return Endpoint{Path: "search/", Params: withExtra(query(
				"keyword", q,
				"DateFrom", isoDate(opts.DateFrom),
				"DateTo", isoDate(opts.DateTo),
			), opts)}
		},
		Document: func(id string) Endpoint {
			return Endpoint{Path: "https://data.consilium.europa.eu/doc/document/" + url.PathEscape(id) + "/en/pdf"}
		},
		Latest: func(time.Time, int) Endpoint {
			return Endpoint{Path: "press/press-releases/"}
		},
	}
}

func eurlex() Definition {
	search := func(q string, opts SearchOptions) Endpoint {
		return Endpoint{Path: "search.html", Params: eurlexSearchParams(q, opts)}
	}
	return Definition{
		Key:            EURLex,
		DisplayName:    "EUR-Lex",
		BaseURL:        eurlexBase,
		RateLimitDelay: 1500 * time.Millisecond,
		Search:         search,
		Document: func(id string) Endpoint {
			return Endpoint{Path: "legal-content/EN/TXT/", Params: query("uri", "CELEX:"+id)}
		},
		Latest: func(now time.Time, limit int) Endpoint {
			return search("*", SearchOptions{DateFrom: firstOfMonth(now), Limit: limit})
		},
		Consolidated: func(celex string) Endpoint {
			return Endpoint{Path: "legal-content/EN/TXT/", Params: query("uri", "CELEX:"+celex, "qid", "consolidated")}
		},
		AkomaNtoso: func(celex string) Endpoint {
			return Endpoint{Path: "legal-content/EN/TXT/XML/", Params: query("uri", "CELEX:"+celex, "format", "akn")}
		},
		ValidateID: ValidateCELEX,
		Enrich:     enrichEURLex,
	}
}

func oeil() Definition {
	return Definition{
		Key:         OEIL,
		DisplayName: "Legislative Observatory (OEIL)",
		BaseURL:     "https://oeil.secure.europarl.europa.eu/oeil/en",
		Search: func(q string, opts SearchOptions) Endpoint {
			return Endpoint{Path: "search", Params: withExtra(query("searchText", q), opts)}
		},
		Document: func(id string) Endpoint {
			return Endpoint{Path: "procedure-file", Params: query("reference", id)}
		},
		Procedure: func(ref string) Endpoint {
			return Endpoint{Path: "procedure-file", Params: query("reference", ref)}
		},
	}
}

func legislativeTrain() Definition {
	return Definition{
		Key:         LegislativeTrain,
		DisplayName: "Legislative Train Schedule",
		BaseURL:     "https://www.europarl.europa.eu/legislative-train",
		Search: func(q string, opts SearchOptions) Endpoint {
			return Endpoint{Path: "search", Params: withExtra(query("q", q), opts)}
		},
		Document: func(id string) Endpoint {
			return Endpoint{Path: "carriage/" + url.PathEscape(id)}
		},
		Procedure: func(ref string) Endpoint {
			return Endpoint{Path: "search", Params: query("q", ref)}
		},
	}
}

func lawTracker() Definition {
	return Definition{
		Key:         LawTracker,
		DisplayName: "EU Law Tracker",
		BaseURL:     "https://law-tracker.europa.eu",
		Search: func(q string, opts SearchOptions) Endpoint {
			return Endpoint{Path: "results", Params: withExtra(query("searchTerm", q, "lang", "en"), opts)}
		},
		Document: func(id string) Endpoint {
			return Endpoint{Path: "procedure/" + url.PathEscape(id), Params: query("lang", "en")}
		},
		Procedure: func(ref string) Endpoint {
			return Endpoint{Path: "results", Params: query("procedureReference", ref, "lang", "en")}
		},
	}
}

func whoIsWho() Definition {
	return Definition{
		Key:         WhoIsWho,
		DisplayName: "EU Whoiswho",
		BaseURL:     "https://op.europa.eu/en/web/who-is-who",
		Search: func(q string, opts SearchOptions) Endpoint {
			return Endpoint{Path: "search", Params: withExtra(query("text", q), opts)}
		},
		Document: func(id string) Endpoint {
			return Endpoint{Path: "person/-/person/" + url.PathEscape(id)}
		},
	}
}

func assistEU() Definition {
	return Definition{
		Key:         AssistEU,
		DisplayName: "Assist EU",
		BaseURL:     "https://assist-eu.europa.eu",
		Search: func(q string, opts SearchOptions) Endpoint {
			return Endpoint{Path: "search", Params: withExtra(query("q", q, "country", opts.Country), opts)}
		},
		Document: func(id string) Endpoint {
			return Endpoint{Path: "content/" + url.PathEscape(id)}
		},
	}
}

func jrc() Definition {
	return Definition{
		Key:         JRC,
		DisplayName: "Joint Research Centre",
		BaseURL:     "https://publications.jrc.ec.europa.eu/repository",
		Search: func(q string, opts SearchOptions) Endpoint {
			return Endpoint{Path: "search", Params: withExtra(query(
				"query", q,
				"author", opts.Author,
				"dateFrom", isoDate(opts.DateFrom),
				"dateTo", isoDate(opts.DateTo),
			), opts)}
		},
		Document: func(id string) Endpoint {
			return Endpoint{Path: "handle/" + url.PathEscape(id)}
		},
		Latest: func(time.Time, int) Endpoint {
			return Endpoint{Path: "search", Params: query("sort", "date_desc")}
		},
	}
}

func thinkTank() Definition {
	return Definition{
		Key:         ThinkTank,
		DisplayName: "EP Think Tank",
		BaseURL:     "https://www.europarl.europa.eu/thinktank/en",
		Search: func(q string, opts SearchOptions) Endpoint {
			return Endpoint{Path: "research/advanced-search", Params: withExtra(query(
				"textualSearch", q,
				"startDate", isoDate(opts.DateFrom),
				"endDate", isoDate(opts.DateTo),
			), opts)}
		},
		Document: func(id string) Endpoint {
			return Endpoint{Path: "document/" + url.PathEscape(id)}
		},
		Latest: func(time.Time, int) Endpoint {
			return Endpoint{Path: "home"}
		},
	}
}

func styleGuide() Definition {
	return Definition{
		Key:         StyleGuide,
		DisplayName: "Interinstitutional Style Guide",
		BaseURL:     "https://style-guide.europa.eu/en/",
		Search: func(q string, opts SearchOptions) Endpoint {
			return Endpoint{Path: "search", Params: withExtra(query("q", q), opts)}
		},
		Document: func(id string) Endpoint {
			return Endpoint{Path: "content/-/isg/topic", Params: query("identifier", id)}
		},
	}
}

func iate() Definition {
	return Definition{
		Key:         IATE,
		DisplayName: "IATE",
		BaseURL:     "https://iate.europa.eu/home",
		Search: func(q string, opts SearchOptions) Endpoint {
			return Endpoint{Path: "https://iate.europa.eu/search/result", Params: withExtra(query("term", q, "sl", "en"), opts)}
		},
		Document: func(id string) Endpoint {
			return Endpoint{Path: "https://iate.europa.eu/entry/result/" + url.PathEscape(id)}
		},
	}
}
