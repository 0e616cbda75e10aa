package scrape

import (
	"net/url"
	"path"
	"strings"
)

// keyNamespace prefixes every rendered-page cache key so page entries share
// the Badger store with other caches without colliding.
const keyNamespace = "nanarbase:pages"

// DeriveCacheKey maps a canonical page URL to a deterministic cache key:
// scheme and host are dropped, a trailing document extension is stripped,
// path separators become the namespacing delimiter, and the fixed service
// namespace is prepended. Two URLs produce the same key exactly when they
// address the same logical document.
func DeriveCacheKey(rawurl string) string {
	p := rawurl
	if u, err := url.Parse(rawurl); err == nil && u.Path != "" {
		p = u.Path
	}
	if ext := path.Ext(p); ext != "" {
		p = strings.TrimSuffix(p, ext)
	}
	p = strings.Trim(p, "/")
	if p == "" {
		p = "root"
	}
	return keyNamespace + ":" + strings.ReplaceAll(p, "/", ":")
}
