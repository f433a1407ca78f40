package models

import "sort"

// FieldSet is a normalized set of pending writes keyed by dotted document
// path. Values are usually strings (ingestion output) but calculations and
// damage-center records pass through as opaque values.
type FieldSet map[string]interface{}

// SortedPaths returns the paths in lexical order so merges and logs are
// deterministic regardless of map iteration order.
func (f FieldSet) SortedPaths() []string {
	paths := make([]string, 0, len(f))
	for p := range f {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Sections returns the distinct top-level sections touched by the set.
func (f FieldSet) Sections() []string {
	seen := map[string]struct{}{}
	for p := range f {
		for i := 0; i < len(p); i++ {
			if p[i] == '.' {
				seen[p[:i]] = struct{}{}
				break
			}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Conflict records two unrelated non-empty values observed for the same field
// across multi-record ingestion. The first value stays the working value; the
// discarded one is kept here for operator visibility.
type Conflict struct {
	Field     string `json:"field" bson:"field"`
	Kept      string `json:"kept" bson:"kept"`
	Discarded string `json:"discarded" bson:"discarded"`
}
