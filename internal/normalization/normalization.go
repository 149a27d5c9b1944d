package normalization

import (
	"sort"
	"strings"
)

// Key folds a user supplied tag, topic or skill into its comparison form.
func Key(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Keys folds every entry with Key, drops empties and duplicates, and returns
// the result sorted so that derived sets are deterministic.
func Keys(inputs []string) []string {
	if len(inputs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(inputs))
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		k := Key(in)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Title trims and collapses internal whitespace.
func Title(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
