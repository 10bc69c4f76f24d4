package media

import (
	"sort"
	"strings"
)

// NormalizeTitle produces the form used for duplicate comparison: trimmed,
// case-folded, with path-forbidden characters removed.
func NormalizeTitle(title string) string {
	trimmed := strings.TrimSpace(title)
	lowered := strings.ToLower(trimmed)
	return strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		return r
	}, lowered)
}

// DuplicateTitleIndexes groups the selected parts by normalized title and
// returns the indices (into parts) of every group with more than one
// member, sorted ascending.
func DuplicateTitleIndexes(parts []Part) []int {
	groups := make(map[string][]int)
	for i, p := range parts {
		if !p.Selected {
			continue
		}
		key := NormalizeTitle(p.Title)
		groups[key] = append(groups[key], i)
	}
	var dupes []int
	for _, idxs := range groups {
		if len(idxs) > 1 {
			dupes = append(dupes, idxs...)
		}
	}
	sort.Ints(dupes)
	return dupes
}
