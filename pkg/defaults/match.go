package defaults

import "strings"

// bestFit selects the winning entry for a query. It is the single matching
// function every default lookup goes through:
//
//  1. Entries whose predicate names an attribute that is absent from the
//     query, or present with a different value, are discarded. Attribute
//     values compare case-insensitively.
//  2. Among the survivors the most specific predicate (most attributes)
//     wins.
//  3. Specificity ties go to the entry loaded last.
//
// A nil return means no entry survived; callers decide whether absence is
// fatal.
func bestFit(entries []*Entry, query map[string]string) *Entry {
	var best *Entry
	for _, e := range entries {
		if !matches(e, query) {
			continue
		}
		if best == nil ||
			len(e.Attributes) > len(best.Attributes) ||
			(len(e.Attributes) == len(best.Attributes) && e.seq >= best.seq) {
			best = e
		}
	}
	return best
}

// matches reports whether every predicate attribute equals the query's
// value for it. A predicate attribute with no corresponding query value
// makes the entry non-matching.
func matches(e *Entry, query map[string]string) bool {
	for attr, want := range e.Attributes {
		got, ok := query[attr]
		if !ok || !strings.EqualFold(got, want) {
			return false
		}
	}
	return true
}
