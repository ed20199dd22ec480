package domain

import "strings"

// SlugID derives a stable creator ID from a display name: lowercased with
// whitespace runs replaced by underscores.
func SlugID(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	return strings.Join(fields, "_")
}

// FilterCreators returns the creators matching a search query. Matching is
// case-insensitive and partial, against name, ID and X username. Multiple
// whitespace-separated keywords are combined with AND logic. An empty query
// matches everything.
func FilterCreators(creators []Creator, query string) []Creator {
	keywords := strings.Fields(strings.ToLower(query))
	if len(keywords) == 0 {
		return creators
	}

	var out []Creator
	for _, c := range creators {
		name := strings.ToLower(c.Name)
		id := strings.ToLower(c.ID)
		handle := strings.ToLower(c.XUsername)

		matched := true
		for _, kw := range keywords {
			if strings.Contains(name, kw) || strings.Contains(id, kw) ||
				(handle != "" && strings.Contains(handle, kw)) {
				continue
			}
			matched = false
			break
		}
		if matched {
			out = append(out, c)
		}
	}
	return out
}
