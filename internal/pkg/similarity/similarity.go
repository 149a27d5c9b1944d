// Package similarity holds the pure overlap scores used to compare work
// items and behavioral profiles. All functions are total: empty input yields
// a zero score rather than an error.
package similarity

import (
	"math"
	"sort"
	"strings"

	"github.com/yungbote/workpulse-backend/internal/normalization"
)

// MinTokenLen is the shortest token Text keeps; shorter tokens are noise
// words ("the", "and", "api").
const MinTokenLen = 4

// Text scores two free-text strings by the Jaccard index of their
// whitespace tokens, scaled to 0..100. Tokens of length three or less are
// dropped before comparison.
func Text(a, b string) int {
	return jaccard(tokenSet(a), tokenSet(b))
}

// Tags scores two tag lists by their case-insensitive Jaccard index, scaled
// to 0..100.
func Tags(a, b []string) int {
	return jaccard(keySet(a), keySet(b))
}

// Intersect returns the normalized keys present in both lists, sorted.
func Intersect(a, b []string) []string {
	right := keySet(b)
	out := make([]string, 0)
	for k := range keySet(a) {
		if _, ok := right[k]; ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Difference returns the normalized keys of a that are absent from b, sorted.
func Difference(a, b []string) []string {
	right := keySet(b)
	out := make([]string, 0)
	for k := range keySet(a) {
		if _, ok := right[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Clamp bounds a raw additive score to 0..100.
func Clamp(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

func jaccard(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return Clamp(int(math.Round(float64(inter) / float64(union) * 100)))
}

func tokenSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		if len([]rune(tok)) < MinTokenLen {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}

func keySet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, v := range in {
		if k := normalization.Key(v); k != "" {
			out[k] = struct{}{}
		}
	}
	return out
}
