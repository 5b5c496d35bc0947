// Package tokens derives the prefix token set stored as a user's searchTerms.
//
// Every word of the display name, profession and location contributes its
// lowercased form and each of its non-empty prefixes. Bio words contribute the
// same way after short words and stoplisted words are dropped.
package tokens

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinBioWordLen is the shortest bio word that is indexed, in runes.
const MinBioWordLen = 3

var stoplist = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "that": {}, "this": {}, "with": {},
	"from": {}, "have": {}, "are": {}, "was": {}, "were": {}, "is": {},
}

// Fields are the profile fields that feed the token set. Empty fields
// contribute nothing.
type Fields struct {
	DisplayName string
	Profession  string
	Location    string
	Bio         string
}

// Set is an unordered set of tokens.
type Set map[string]struct{}

// Generate computes the token set for the given fields. It never fails and is
// deterministic for identical input.
func Generate(f Fields) Set {
	set := make(Set)
	for _, w := range strings.Fields(f.DisplayName) {
		set.addPrefixes(w)
	}
	for _, w := range strings.Fields(f.Profession) {
		set.addPrefixes(w)
	}
	for _, w := range splitLocation(f.Location) {
		set.addPrefixes(w)
	}
	for _, w := range strings.Fields(f.Bio) {
		lw := strings.ToLower(w)
		if isBioNoise(lw) {
			continue
		}
		set.addPrefixes(lw)
	}
	return set
}

// IsStopword reports whether a lowercased word is never indexed from a bio.
func IsStopword(w string) bool {
	_, ok := stoplist[w]
	return ok
}

func isBioNoise(lw string) bool {
	return utf8.RuneCountInString(lw) < MinBioWordLen || IsStopword(lw)
}

func splitLocation(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// addPrefixes adds every rune-aligned prefix of the lowercased word.
func (s Set) addPrefixes(word string) {
	lw := strings.ToLower(word)
	for i := range lw {
		if i > 0 {
			s[lw[:i]] = struct{}{}
		}
	}
	if lw != "" {
		s[lw] = struct{}{}
	}
}

// Contains reports whether tok is in the set.
func (s Set) Contains(tok string) bool {
	_, ok := s[tok]
	return ok
}

// Sorted returns the tokens in ascending byte order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Join serializes the set with sep in sorted order.
func (s Set) Join(sep string) string {
	return strings.Join(s.Sorted(), sep)
}

// Split parses a serialized set. Empty parts are skipped.
func Split(raw, sep string) Set {
	set := make(Set)
	for _, t := range strings.Split(raw, sep) {
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}
