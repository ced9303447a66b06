package derive

import "strings"

// Search retains the items for which at least one field value contains the
// query, case-insensitively. An empty or whitespace-only query is the
// identity: the input slice is returned as-is, not copied and not emptied.
func Search[T any](items []T, query string, fields ...func(T) string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(item)), q) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// MatchField retains the items whose field equals want exactly. When want is
// empty or equals the sentinel (e.g. "All Statuses") the filter is a no-op
// and the input is returned unchanged. Composes with Search by chaining.
func MatchField[T any](items []T, want, sentinel string, field func(T) string) []T {
	if want == "" || want == sentinel {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if field(item) == want {
			out = append(out, item)
		}
	}
	return out
}
