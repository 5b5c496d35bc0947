// Package suggestion merges and orders autocomplete candidates.
package suggestion

import (
	"sort"
	"strings"
)

// BranchLimit caps each retrieval branch before the merge.
const BranchLimit = 10

// Suggestion is the read-only projection shown in the autocomplete dropdown.
type Suggestion struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	Age         int    `json:"age"`
	Profession  string `json:"profession"`
	Location    string `json:"location"`
}

// Normalize trims and lowercases a raw query. An empty result means no lookup.
func Normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Merge concatenates branch results and drops repeated ids, keeping the
// first occurrence.
func Merge(branches ...[]Suggestion) []Suggestion {
	n := 0
	for _, b := range branches {
		n += len(b)
	}
	seen := make(map[string]struct{}, n)
	out := make([]Suggestion, 0, n)
	for _, b := range branches {
		for _, s := range b {
			if _, dup := seen[s.ID]; dup {
				continue
			}
			seen[s.ID] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// Rank orders candidates in place for the normalized query q:
// display names starting with q first, then names containing q, then the
// rest. Ties break on lowercased display name, then id. It reorders items
// and returns the same slice, not a copy.
func Rank(q string, items []Suggestion) []Suggestion {
	type keyed struct {
		tier int
		name string
		s    Suggestion
	}
	ks := make([]keyed, len(items))
	for i, s := range items {
		name := strings.ToLower(s.DisplayName)
		ks[i] = keyed{tier: tier(q, name), name: name, s: s}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.tier != b.tier {
			return a.tier < b.tier
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.s.ID < b.s.ID
	})
	for i := range ks {
		items[i] = ks[i].s
	}
	return items
}

func tier(q, name string) int {
	switch {
	case strings.HasPrefix(name, q):
		return 0
	case strings.Contains(name, q):
		return 1
	default:
		return 2
	}
}
