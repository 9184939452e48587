package application

import "strings"

// CategoryFilter restricts generated output to a set of category names.
// An empty filter allows every category. Matching ignores case and
// surrounding whitespace.
type CategoryFilter map[string]struct{}

// NewCategoryFilter builds a filter from category names. Blank names are ignored.
func NewCategoryFilter(names []string) CategoryFilter {
	f := CategoryFilter{}
	for _, name := range names {
		key := normalizeCategory(name)
		if key == "" {
			continue
		}
		f[key] = struct{}{}
	}
	return f
}

// Allows reports whether streams of the named category should be rendered.
func (f CategoryFilter) Allows(name string) bool {
	if len(f) == 0 {
		return true
	}
	_, ok := f[normalizeCategory(name)]
	return ok
}

func normalizeCategory(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
