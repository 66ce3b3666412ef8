package route

import (
	"sort"
	"strings"
)

// MethodCount is the number of routes registered with one method.
type MethodCount struct {
	Method string
	Count  int
}

// Summary aggregates statistics over a scan.
type Summary struct {
	Total         int
	ByMethod      []MethodCount
	Authenticated int
	Protected     int
}

// Summarize counts routes per method (sorted by method) and the routes
// guarded by auth or hasPermission middleware.
func Summarize(routes []Descriptor) Summary {
	counts := make(map[string]int)
	s := Summary{Total: len(routes)}
	for _, r := range routes {
		counts[strings.ToLower(r.Method)]++
		if r.Authenticated {
			s.Authenticated++
		}
		if r.HasMiddleware(MiddlewarePermission) {
			s.Protected++
		}
	}
	for m, c := range counts {
		s.ByMethod = append(s.ByMethod, MethodCount{Method: m, Count: c})
	}
	sort.Slice(s.ByMethod, func(i, j int) bool {
		return s.ByMethod[i].Method < s.ByMethod[j].Method
	})
	return s
}
