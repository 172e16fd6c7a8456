package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Key identifies a memoized result by namespace and parameter set.
type Key struct {
	Namespace string
	Params    map[string]string
}

// String generates a deterministic key: params are sorted by name and values are
// query-escaped, so insertion order never changes the result.
//
// Example:
//
//	discussions:body=false:category=Blog:first=100
func (k Key) String() string {
	parts := []string{k.Namespace}

	names := make([]string, 0, len(k.Params))
	for name := range k.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		parts = append(parts, url.QueryEscape(name)+"="+url.QueryEscape(k.Params[name]))
	}

	return strings.Join(parts, ":")
}
