// Package profile defines the user record, its write-time validation and the
// defaulting rules applied to records read back from storage.
package profile

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/matchcraft/internal/domain"
	"github.com/kailas-cloud/matchcraft/internal/domain/search/suggestion"
	"github.com/kailas-cloud/matchcraft/internal/domain/search/tokens"
)

// Field limits enforced on write.
const (
	MaxDisplayNameLen = 80
	MaxShortFieldLen  = 120
	MaxBioLen         = 2000
	MaxListItems      = 20
	MaxListItemLen    = 80
	MinAge            = 18
	MaxAge            = 120
)

// Gender is the self-declared gender. The zero value means unspecified.
type Gender string

// Gender values.
const (
	GenderUnspecified Gender = ""
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderOther       Gender = "other"
)

// ParseGender returns the gender for s, or false when s is not a known value.
func ParseGender(s string) (Gender, bool) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderUnspecified, GenderMale, GenderFemale, GenderOther:
		return g, true
	default:
		return GenderUnspecified, false
	}
}

// Horoscope holds the astrological attributes of a user.
type Horoscope struct {
	SunSign   string `json:"sunSign"`
	MoonSign  string `json:"moonSign"`
	Nakshatra string `json:"nakshatra"`
	Ascendant string `json:"ascendant"`
	Manglik   bool   `json:"manglik"`
}

// Input carries the user-editable fields of a profile.
type Input struct {
	DisplayName string
	Profession  string
	Location    string
	Bio         string
	Age         int
	Gender      Gender
	Religion    string
	Hobbies     []string
	Movies      []string
	Music       []string
	Horoscope   *Horoscope
}

// ListFilter narrows the admin listing. Zero values mean no constraint.
type ListFilter struct {
	Gender Gender
	MinAge int
	MaxAge int
}

// Record is a stored user profile. SearchTerms is derived and always
// reflects the current DisplayName, Profession, Location and Bio.
type Record struct {
	ID          string
	DisplayName string
	Profession  string
	Location    string
	Bio         string
	PhotoURL    string
	Age         int
	Gender      Gender
	Religion    string
	Hobbies     []string
	Movies      []string
	Music       []string
	Horoscope   *Horoscope
	SearchTerms tokens.Set
	CreatedAt   int64 // unix millis
	UpdatedAt   int64 // unix millis
}

// New validates in and builds a fresh record with computed search terms.
func New(id string, in Input, nowMillis int64) (Record, error) {
	if id == "" {
		return Record{}, domain.InvalidField(domain.ErrInvalidProfile, "id", "is required")
	}
	in, err := normalize(in)
	if err != nil {
		return Record{}, err
	}
	r := Record{ID: id, CreatedAt: nowMillis}
	r.apply(in, nowMillis)
	return r, nil
}

// Update returns a copy of r with every editable field overwritten by in.
// Identity, photo and creation time are kept; search terms are recomputed.
func (r Record) Update(in Input, nowMillis int64) (Record, error) {
	in, err := normalize(in)
	if err != nil {
		return Record{}, err
	}
	r.apply(in, nowMillis)
	return r, nil
}

// WithPhoto returns a copy of r pointing at a new photo.
func (r Record) WithPhoto(url string, nowMillis int64) Record {
	r.PhotoURL = url
	r.UpdatedAt = nowMillis
	return r
}

// Reindexed returns a copy of r whose search terms are recomputed from its
// current fields.
func (r Record) Reindexed() Record {
	r.SearchTerms = tokens.Generate(r.tokenFields())
	return r
}

// Suggestion projects the record for autocomplete.
func (r Record) Suggestion() suggestion.Suggestion {
	return suggestion.Suggestion{
		ID:          r.ID,
		DisplayName: r.DisplayName,
		PhotoURL:    r.PhotoURL,
		Age:         r.Age,
		Profession:  r.Profession,
		Location:    r.Location,
	}
}

// Input returns the editable fields of r.
func (r Record) Input() Input {
	return Input{
		DisplayName: r.DisplayName,
		Profession:  r.Profession,
		Location:    r.Location,
		Bio:         r.Bio,
		Age:         r.Age,
		Gender:      r.Gender,
		Religion:    r.Religion,
		Hobbies:     slices.Clone(r.Hobbies),
		Movies:      slices.Clone(r.Movies),
		Music:       slices.Clone(r.Music),
		Horoscope:   r.Horoscope,
	}
}

func (r *Record) apply(in Input, nowMillis int64) {
	r.DisplayName = in.DisplayName
	r.Profession = in.Profession
	r.Location = in.Location
	r.Bio = in.Bio
	r.Age = in.Age
	r.Gender = in.Gender
	r.Religion = in.Religion
	r.Hobbies = in.Hobbies
	r.Movies = in.Movies
	r.Music = in.Music
	r.Horoscope = in.Horoscope
	r.UpdatedAt = nowMillis
	r.SearchTerms = tokens.Generate(r.tokenFields())
}

func (r Record) tokenFields() tokens.Fields {
	return tokens.Fields{
		DisplayName: r.DisplayName,
		Profession:  r.Profession,
		Location:    r.Location,
		Bio:         r.Bio,
	}
}

// normalize trims text fields and enforces the write-time limits.
func normalize(in Input) (Input, error) {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Profession = strings.TrimSpace(in.Profession)
	in.Location = strings.TrimSpace(in.Location)
	in.Bio = strings.TrimSpace(in.Bio)
	in.Religion = strings.TrimSpace(in.Religion)

	if in.DisplayName == "" {
		return Input{}, domain.InvalidField(domain.ErrInvalidProfile, "displayName", "is required")
	}
	checks := []struct {
		field string
		value string
		limit int
	}{
		{"displayName", in.DisplayName, MaxDisplayNameLen},
		{"profession", in.Profession, MaxShortFieldLen},
		{"location", in.Location, MaxShortFieldLen},
		{"religion", in.Religion, MaxShortFieldLen},
		{"bio", in.Bio, MaxBioLen},
	}
	for _, c := range checks {
		if utf8.RuneCountInString(c.value) > c.limit {
			return Input{}, domain.InvalidField(domain.ErrInvalidProfile, c.field, "is too long")
		}
	}

	if in.Age != 0 && (in.Age < MinAge || in.Age > MaxAge) {
		return Input{}, domain.InvalidField(domain.ErrInvalidProfile, "age", "must be 0 or between 18 and 120")
	}
	g, ok := ParseGender(string(in.Gender))
	if !ok {
		return Input{}, domain.InvalidField(domain.ErrInvalidProfile, "gender", "must be male, female or other")
	}
	in.Gender = g

	var err error
	if in.Hobbies, err = normalizeList("hobbies", in.Hobbies); err != nil {
		return Input{}, err
	}
	if in.Movies, err = normalizeList("movies", in.Movies); err != nil {
		return Input{}, err
	}
	if in.Music, err = normalizeList("music", in.Music); err != nil {
		return Input{}, err
	}
	return in, nil
}

// normalizeList trims items, drops blanks and case-insensitive duplicates.
func normalizeList(field string, items []string) ([]string, error) {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if utf8.RuneCountInString(it) > MaxListItemLen {
			return nil, domain.InvalidField(domain.ErrInvalidProfile, field, "item is too long")
		}
		k := strings.ToLower(it)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	if len(out) > MaxListItems {
		return nil, domain.InvalidField(domain.ErrInvalidProfile, field, "has too many items")
	}
	return out, nil
}
