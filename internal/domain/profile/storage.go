package profile

import (
	"encoding/json"
	"strconv"

	"github.com/kailas-cloud/matchcraft/internal/domain/search/tokens"
)

// Storage field names of a flattened record.
const (
	FieldID          = "id"
	FieldDisplayName = "displayName"
	FieldProfession  = "profession"
	FieldLocation    = "location"
	FieldBio         = "bio"
	FieldPhotoURL    = "photoURL"
	FieldAge         = "age"
	FieldGender      = "gender"
	FieldReligion    = "religion"
	FieldHobbies     = "hobbies"
	FieldMovies      = "movies"
	FieldMusic       = "music"
	FieldHoroscope   = "horoscope"
	FieldSearchTerms = "searchTerms"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
)

// TermSeparator joins search terms in the flattened record. It never
// occurs in user text, so tokens containing commas or spaces survive.
const TermSeparator = "\x1f"

// ToStorage flattens r into string fields. Every field is written so that a
// save fully overwrites the previous version.
func ToStorage(r Record) map[string]string {
	m := map[string]string{
		FieldID:          r.ID,
		FieldDisplayName: r.DisplayName,
		FieldProfession:  r.Profession,
		FieldLocation:    r.Location,
		FieldBio:         r.Bio,
		FieldPhotoURL:    r.PhotoURL,
		FieldAge:         strconv.Itoa(r.Age),
		FieldGender:      string(r.Gender),
		FieldReligion:    r.Religion,
		FieldHobbies:     encodeList(r.Hobbies),
		FieldMovies:      encodeList(r.Movies),
		FieldMusic:       encodeList(r.Music),
		FieldHoroscope:   "",
		FieldSearchTerms: r.SearchTerms.Join(TermSeparator),
		FieldCreatedAt:   strconv.FormatInt(r.CreatedAt, 10),
		FieldUpdatedAt:   strconv.FormatInt(r.UpdatedAt, 10),
	}
	if r.Horoscope != nil {
		if b, err := json.Marshal(r.Horoscope); err == nil {
			m[FieldHoroscope] = string(b)
		}
	}
	return m
}

// FromStorage rebuilds a record from stored fields. It never fails: missing
// or malformed values fall back to their zero defaults (empty strings, age 0,
// unspecified gender, empty lists, no horoscope).
func FromStorage(m map[string]string) Record {
	g, ok := ParseGender(m[FieldGender])
	if !ok {
		g = GenderUnspecified
	}
	age, err := strconv.Atoi(m[FieldAge])
	if err != nil || age < 0 {
		age = 0
	}
	return Record{
		ID:          m[FieldID],
		DisplayName: m[FieldDisplayName],
		Profession:  m[FieldProfession],
		Location:    m[FieldLocation],
		Bio:         m[FieldBio],
		PhotoURL:    m[FieldPhotoURL],
		Age:         age,
		Gender:      g,
		Religion:    m[FieldReligion],
		Hobbies:     decodeList(m[FieldHobbies]),
		Movies:      decodeList(m[FieldMovies]),
		Music:       decodeList(m[FieldMusic]),
		Horoscope:   decodeHoroscope(m[FieldHoroscope]),
		SearchTerms: tokens.Split(m[FieldSearchTerms], TermSeparator),
		CreatedAt:   parseMillis(m[FieldCreatedAt]),
		UpdatedAt:   parseMillis(m[FieldUpdatedAt]),
	}
}

func encodeList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []string{}
	}
	return items
}

func decodeHoroscope(raw string) *Horoscope {
	if raw == "" {
		return nil
	}
	var h Horoscope
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		return nil
	}
	return &h
}

func parseMillis(raw string) int64 {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
