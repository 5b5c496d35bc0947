package prompt

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/matchcraft/internal/domain/profile"
)

// Schema limits.
const (
	MaxBioLen         = profile.MaxBioLen
	MaxItems          = profile.MaxListItems
	MaxCandidates     = 20
	MaxGunaScore      = 36
	MaxMatchScore     = 100
	maxSummaryLen     = 600
	maxReasonLen      = 400
	maxBirthPlaceLen  = 120
	maxCompatListSize = 10
)

// --- enhance_bio ---

// EnhanceBioInput asks for a rewritten bio.
type EnhanceBioInput struct {
	Bio         string `json:"bio"`
	DisplayName string `json:"displayName,omitempty"`
	Profession  string `json:"profession,omitempty"`
}

// Feature implements Input.
func (EnhanceBioInput) Feature() Feature { return FeatureEnhanceBio }

// Validate implements Input.
func (in EnhanceBioInput) Validate() error {
	if strings.TrimSpace(in.Bio) == "" {
		return invalid("bio", "is required")
	}
	if utf8.RuneCountInString(in.Bio) > MaxBioLen {
		return invalid("bio", "is too long")
	}
	return nil
}

// EnhanceBioOutput is the rewritten bio.
type EnhanceBioOutput struct {
	Bio string `json:"bio"`
}

// Check implements Output.
func (o *EnhanceBioOutput) Check(Input) error {
	o.Bio = strings.TrimSpace(o.Bio)
	if o.Bio == "" {
		return errors.New("bio is empty")
	}
	if utf8.RuneCountInString(o.Bio) > MaxBioLen {
		return errors.New("bio is too long")
	}
	return nil
}

// --- enhance_hobbies / enhance_movies / enhance_music ---

// EnhanceListInput asks for a cleaned list of interests of one kind.
type EnhanceListInput struct {
	Kind  Feature  `json:"-"`
	Items []string `json:"items"`
	Bio   string   `json:"bio,omitempty"`
}

// Feature implements Input.
func (in EnhanceListInput) Feature() Feature { return in.Kind }

// Validate implements Input.
func (in EnhanceListInput) Validate() error {
	switch in.Kind {
	case FeatureEnhanceHobbies, FeatureEnhanceMovies, FeatureEnhanceMusic:
	default:
		return invalid("kind", "must be hobbies, movies or music")
	}
	n := 0
	for _, it := range in.Items {
		if strings.TrimSpace(it) != "" {
			n++
		}
	}
	if n == 0 {
		return invalid("items", "at least one item is required")
	}
	if len(in.Items) > MaxItems {
		return invalid("items", fmt.Sprintf("at most %d items", MaxItems))
	}
	if utf8.RuneCountInString(in.Bio) > MaxBioLen {
		return invalid("bio", "is too long")
	}
	return nil
}

// EnhanceListOutput is the cleaned list with a short summary.
type EnhanceListOutput struct {
	Items   []string `json:"items"`
	Summary string   `json:"summary"`
}

// Check implements Output.
func (o *EnhanceListOutput) Check(Input) error {
	items := make([]string, 0, len(o.Items))
	seen := make(map[string]struct{}, len(o.Items))
	for _, it := range o.Items {
		it = strings.TrimSpace(it)
		k := strings.ToLower(it)
		if it == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		items = append(items, it)
	}
	if len(items) == 0 {
		return errors.New("items are empty")
	}
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	o.Items = items
	o.Summary = truncate(strings.TrimSpace(o.Summary), maxSummaryLen)
	return nil
}

// --- extract_horoscope ---

// HoroscopeInput carries birth details.
type HoroscopeInput struct {
	BirthDate  string `json:"birthDate"`           // YYYY-MM-DD
	BirthTime  string `json:"birthTime,omitempty"` // HH:MM, 24h
	BirthPlace string `json:"birthPlace"`
}

// Feature implements Input.
func (HoroscopeInput) Feature() Feature { return FeatureExtractHoroscope }

// Validate implements Input.
func (in HoroscopeInput) Validate() error {
	d, err := time.Parse("2006-01-02", in.BirthDate)
	if err != nil {
		return invalid("birthDate", "must be YYYY-MM-DD")
	}
	if d.After(time.Now()) {
		return invalid("birthDate", "is in the future")
	}
	if in.BirthTime != "" {
		if _, err := time.Parse("15:04", in.BirthTime); err != nil {
			return invalid("birthTime", "must be HH:MM")
		}
	}
	place := strings.TrimSpace(in.BirthPlace)
	if place == "" {
		return invalid("birthPlace", "is required")
	}
	if utf8.RuneCountInString(place) > maxBirthPlaceLen {
		return invalid("birthPlace", "is too long")
	}
	return nil
}

// HoroscopeOutput is the derived horoscope.
type HoroscopeOutput struct {
	SunSign   string `json:"sunSign"`
	MoonSign  string `json:"moonSign"`
	Nakshatra string `json:"nakshatra"`
	Ascendant string `json:"ascendant"`
	Manglik   bool   `json:"manglik"`
	Summary   string `json:"summary"`
}

// Check implements Output. Sign names are canonicalized; an unknown sun
// sign fails the check, unknown optional signs are dropped.
func (o *HoroscopeOutput) Check(Input) error {
	sun, ok := CanonicalSign(o.SunSign)
	if !ok {
		return fmt.Errorf("unknown sun sign %q", o.SunSign)
	}
	o.SunSign = sun
	o.MoonSign, _ = CanonicalSign(o.MoonSign)
	o.Ascendant, _ = CanonicalSign(o.Ascendant)
	o.Nakshatra = strings.TrimSpace(o.Nakshatra)
	o.Summary = truncate(strings.TrimSpace(o.Summary), maxSummaryLen)
	return nil
}

// Horoscope converts the output to the profile representation.
func (o HoroscopeOutput) Horoscope() profile.Horoscope {
	return profile.Horoscope{
		SunSign:   o.SunSign,
		MoonSign:  o.MoonSign,
		Nakshatra: o.Nakshatra,
		Ascendant: o.Ascendant,
		Manglik:   o.Manglik,
	}
}

// --- horoscope_compatibility ---

// CompatibilityInput pairs two horoscopes.
type CompatibilityInput struct {
	First  profile.Horoscope `json:"first"`
	Second profile.Horoscope `json:"second"`
}

// Feature implements Input.
func (CompatibilityInput) Feature() Feature { return FeatureHoroscopeCompatibility }

// Validate implements Input.
func (in CompatibilityInput) Validate() error {
	if !hasSigns(in.First) {
		return invalid("first", "needs a moon sign or nakshatra")
	}
	if !hasSigns(in.Second) {
		return invalid("second", "needs a moon sign or nakshatra")
	}
	return nil
}

func hasSigns(h profile.Horoscope) bool {
	return strings.TrimSpace(h.MoonSign) != "" || strings.TrimSpace(h.Nakshatra) != ""
}

// CompatibilityOutput is a guna milan result.
type CompatibilityOutput struct {
	Score     float64  `json:"score"`
	MaxScore  int      `json:"maxScore"`
	Verdict   string   `json:"verdict"`
	Strengths []string `json:"strengths"`
	Concerns  []string `json:"concerns"`
}

// Check implements Output.
func (o *CompatibilityOutput) Check(Input) error {
	if math.IsNaN(o.Score) || o.Score < 0 || o.Score > MaxGunaScore {
		return fmt.Errorf("score %v outside 0..%d", o.Score, MaxGunaScore)
	}
	o.Score = math.Round(o.Score*2) / 2
	o.MaxScore = MaxGunaScore
	o.Verdict = strings.TrimSpace(o.Verdict)
	if o.Verdict == "" {
		return errors.New("verdict is empty")
	}
	o.Strengths = cleanList(o.Strengths, maxCompatListSize)
	o.Concerns = cleanList(o.Concerns, maxCompatListSize)
	return nil
}

// --- match_suggestions ---

// Candidate is the profile summary sent to the model.
type Candidate struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Age        int      `json:"age,omitempty"`
	Gender     string   `json:"gender,omitempty"`
	Profession string   `json:"profession,omitempty"`
	Location   string   `json:"location,omitempty"`
	Religion   string   `json:"religion,omitempty"`
	Bio        string   `json:"bio,omitempty"`
	Hobbies    []string `json:"hobbies,omitempty"`
	SunSign    string   `json:"sunSign,omitempty"`
}

// CandidateFromRecord summarizes a stored profile.
func CandidateFromRecord(r profile.Record) Candidate {
	c := Candidate{
		ID:         r.ID,
		Name:       r.DisplayName,
		Age:        r.Age,
		Gender:     string(r.Gender),
		Profession: r.Profession,
		Location:   r.Location,
		Religion:   r.Religion,
		Bio:        r.Bio,
		Hobbies:    r.Hobbies,
	}
	if r.Horoscope != nil {
		c.SunSign = r.Horoscope.SunSign
	}
	return c
}

// MatchInput asks the model to rank candidates for a profile.
type MatchInput struct {
	Profile    Candidate   `json:"profile"`
	Candidates []Candidate `json:"candidates"`
}

// Feature implements Input.
func (MatchInput) Feature() Feature { return FeatureMatchSuggestions }

// Validate implements Input.
func (in MatchInput) Validate() error {
	if in.Profile.ID == "" {
		return invalid("profile.id", "is required")
	}
	if len(in.Candidates) == 0 {
		return invalid("candidates", "at least one candidate is required")
	}
	if len(in.Candidates) > MaxCandidates {
		return invalid("candidates", fmt.Sprintf("at most %d candidates", MaxCandidates))
	}
	seen := make(map[string]struct{}, len(in.Candidates))
	for i, c := range in.Candidates {
		if c.ID == "" {
			return invalid(fmt.Sprintf("candidates[%d].id", i), "is required")
		}
		if c.ID == in.Profile.ID {
			return invalid(fmt.Sprintf("candidates[%d].id", i), "must differ from the profile")
		}
		if _, dup := seen[c.ID]; dup {
			return invalid(fmt.Sprintf("candidates[%d].id", i), "is duplicated")
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// Match is one ranked candidate.
type Match struct {
	ID     string `json:"id"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// MatchOutput is the ranked candidate list.
type MatchOutput struct {
	Matches []Match `json:"matches"`
}

// Check implements Output. Ids that were not offered and repeated ids are
// dropped; the rest is sorted by score descending, then id.
func (o *MatchOutput) Check(in Input) error {
	mi, ok := in.(MatchInput)
	if !ok {
		return fmt.Errorf("unexpected input %T", in)
	}
	offered := make(map[string]struct{}, len(mi.Candidates))
	for _, c := range mi.Candidates {
		offered[c.ID] = struct{}{}
	}

	kept := make([]Match, 0, len(o.Matches))
	seen := make(map[string]struct{}, len(o.Matches))
	for _, m := range o.Matches {
		if _, ok := offered[m.ID]; !ok {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		if m.Score < 0 || m.Score > MaxMatchScore {
			return fmt.Errorf("score %d for %s outside 0..%d", m.Score, m.ID, MaxMatchScore)
		}
		seen[m.ID] = struct{}{}
		m.Reason = truncate(strings.TrimSpace(m.Reason), maxReasonLen)
		kept = append(kept, m)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		return kept[i].ID < kept[j].ID
	})
	o.Matches = kept
	return nil
}

func cleanList(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit])
}
