package cache

import (
	"net/url"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint identifies a cache slot for a request.
// Equal URLs with equal parameters (in any order) produce equal fingerprints.
type Fingerprint string

// NewFingerprint derives a fingerprint from rawURL and params.
//
// The URL is normalized first: scheme and host are lower-cased, default ports
// dropped, an empty path becomes "/", the fragment is discarded, and any query
// already present in rawURL is merged with params. The merged parameters are
// then sorted by key and value so that ordering never affects the result.
// If rawURL cannot be parsed it is used verbatim.
func NewFingerprint(rawURL string, params url.Values) Fingerprint {
	base, query := normalizeURL(rawURL)
	for k, vs := range params {
		query[k] = append(query[k], vs...)
	}

	h := xxhash.New()
	_, _ = h.WriteString(base)
	_, _ = h.WriteString("?")
	_, _ = h.WriteString(canonicalQuery(query))
	return Fingerprint(hexUint64(h.Sum64()))
}

// String returns the hex form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

func normalizeURL(rawURL string) (string, url.Values) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL, url.Values{}
	}
	query := u.Query()
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)

	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host += ":" + port
	}
	u.Host = host

	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), query
}

// canonicalQuery encodes query with keys sorted and each key's values sorted.
func canonicalQuery(query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		vs := append([]string(nil), query[k]...)
		sort.Strings(vs)
		for _, v := range vs {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}
