package prompt

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/matchcraft/internal/domain"
	"github.com/kailas-cloud/matchcraft/internal/domain/profile"
)

func TestParseFeature(t *testing.T) {
	for _, f := range Features() {
		got, err := ParseFeature(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
		assert.NotEmpty(t, Instruction(f), "instruction for %s", f)
	}

	_, err := ParseFeature("write_poem")
	assert.ErrorIs(t, err, domain.ErrInvalidPromptInput)
}

func TestRender(t *testing.T) {
	in := EnhanceBioInput{Bio: "i like hiking", DisplayName: "Priya"}
	req, err := Render(in, 256)
	require.NoError(t, err)

	assert.True(t, req.JSON)
	assert.Equal(t, 256, req.MaxTokens)
	assert.True(t, strings.HasSuffix(req.System, jsonOnly))

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.User), &payload))
	assert.Equal(t, "i like hiking", payload["bio"])
	assert.NotContains(t, payload, "profession")
}

func TestRender_ListKindNotSerialized(t *testing.T) {
	req, err := Render(EnhanceListInput{Kind: FeatureEnhanceMusic, Items: []string{"jazz"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, `{"items":["jazz"]}`, req.User)
	assert.Equal(t, Instruction(FeatureEnhanceMusic), req.System)
}

func TestDecode(t *testing.T) {
	in := EnhanceBioInput{Bio: "x"}

	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{"plain", `{"bio":" Hi there "}`, "Hi there", false},
		{"fenced", "```json\n{\"bio\":\"Hi\"}\n```", "Hi", false},
		{"empty", "  ", "", true},
		{"not json", "Sure! Here is your bio", "", true},
		{"schema violation", `{"bio":""}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out EnhanceBioOutput
			err := Decode(tt.text, in, &out)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrPromptProviderError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Bio)
		})
	}
}

func TestInputValidate(t *testing.T) {
	many := make([]string, MaxItems+1)
	for i := range many {
		many[i] = "x"
	}
	candidates := func(ids ...string) []Candidate {
		out := make([]Candidate, len(ids))
		for i, id := range ids {
			out[i] = Candidate{ID: id}
		}
		return out
	}

	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"bio empty", EnhanceBioInput{Bio: "  "}, "bio"},
		{"bio too long", EnhanceBioInput{Bio: strings.Repeat("a", MaxBioLen+1)}, "bio"},
		{"list wrong kind", EnhanceListInput{Kind: FeatureEnhanceBio, Items: []string{"a"}}, "kind"},
		{"list empty", EnhanceListInput{Kind: FeatureEnhanceHobbies, Items: []string{" "}}, "items"},
		{"list too long", EnhanceListInput{Kind: FeatureEnhanceMovies, Items: many}, "items"},
		{"bad date", HoroscopeInput{BirthDate: "12/01/1990", BirthPlace: "Pune"}, "birthDate"},
		{"future date", HoroscopeInput{BirthDate: "2999-01-01", BirthPlace: "Pune"}, "birthDate"},
		{"bad time", HoroscopeInput{BirthDate: "1990-01-12", BirthTime: "7pm", BirthPlace: "Pune"}, "birthTime"},
		{"no place", HoroscopeInput{BirthDate: "1990-01-12"}, "birthPlace"},
		{"first missing", CompatibilityInput{Second: profile.Horoscope{MoonSign: "Leo"}}, "first"},
		{"second missing", CompatibilityInput{First: profile.Horoscope{Nakshatra: "Rohini"}}, "second"},
		{"no profile", MatchInput{Candidates: candidates("a")}, "profile.id"},
		{"no candidates", MatchInput{Profile: Candidate{ID: "me"}}, "candidates"},
		{"self candidate", MatchInput{Profile: Candidate{ID: "me"}, Candidates: candidates("a", "me")}, "candidates[1].id"},
		{"duplicate candidate", MatchInput{Profile: Candidate{ID: "me"}, Candidates: candidates("a", "a")}, "candidates[1].id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			require.ErrorIs(t, err, domain.ErrInvalidPromptInput)
			var fe *domain.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestInputValidate_OK(t *testing.T) {
	ok := []Input{
		EnhanceBioInput{Bio: "Engineer who loves chai"},
		EnhanceListInput{Kind: FeatureEnhanceHobbies, Items: []string{"trekking"}},
		HoroscopeInput{BirthDate: "1992-08-15", BirthTime: "06:30", BirthPlace: "Nagpur"},
		CompatibilityInput{First: profile.Horoscope{MoonSign: "Leo"}, Second: profile.Horoscope{Nakshatra: "Rohini"}},
		MatchInput{Profile: Candidate{ID: "me"}, Candidates: []Candidate{{ID: "a"}, {ID: "b"}}},
	}
	for _, in := range ok {
		assert.NoError(t, in.Validate(), "%s", in.Feature())
	}
}

func TestEnhanceListOutput_Check(t *testing.T) {
	out := EnhanceListOutput{Items: []string{" Chess ", "chess", "", "Cycling"}, Summary: " likes games "}
	require.NoError(t, out.Check(nil))
	assert.Equal(t, []string{"Chess", "Cycling"}, out.Items)
	assert.Equal(t, "likes games", out.Summary)

	empty := EnhanceListOutput{Items: []string{" "}}
	assert.Error(t, empty.Check(nil))
}

func TestHoroscopeOutput_Check(t *testing.T) {
	out := HoroscopeOutput{SunSign: "leo", MoonSign: "Vrishabha", Ascendant: "nonsense", Nakshatra: " Rohini "}
	require.NoError(t, out.Check(nil))
	assert.Equal(t, "Leo", out.SunSign)
	assert.Equal(t, "Taurus", out.MoonSign)
	assert.Empty(t, out.Ascendant)
	assert.Equal(t, profile.Horoscope{SunSign: "Leo", MoonSign: "Taurus", Nakshatra: "Rohini"}, out.Horoscope())

	bad := HoroscopeOutput{SunSign: "Ophiuchus"}
	assert.Error(t, bad.Check(nil))
}

func TestCompatibilityOutput_Check(t *testing.T) {
	out := CompatibilityOutput{Score: 27.3, MaxScore: 100, Verdict: "Good match"}
	require.NoError(t, out.Check(nil))
	assert.InDelta(t, 27.5, out.Score, 0)
	assert.Equal(t, MaxGunaScore, out.MaxScore)

	for _, score := range []float64{-1, 36.5} {
		o := CompatibilityOutput{Score: score, Verdict: "x"}
		assert.Error(t, o.Check(nil), "score %v", score)
	}
	noVerdict := CompatibilityOutput{Score: 10}
	assert.Error(t, noVerdict.Check(nil))
}

func TestMatchOutput_Check(t *testing.T) {
	in := MatchInput{
		Profile:    Candidate{ID: "me"},
		Candidates: []Candidate{{ID: "a"}, {ID: "b"}, {ID: "c"}},
	}
	out := MatchOutput{Matches: []Match{
		{ID: "b", Score: 70, Reason: "same city"},
		{ID: "ghost", Score: 99},
		{ID: "c", Score: 90},
		{ID: "a", Score: 70},
		{ID: "c", Score: 10},
	}}
	require.NoError(t, out.Check(in))

	ids := make([]string, len(out.Matches))
	for i, m := range out.Matches {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
	assert.Equal(t, 90, out.Matches[0].Score)

	bad := MatchOutput{Matches: []Match{{ID: "a", Score: 101}}}
	assert.Error(t, bad.Check(in))
}

func TestDecode_MatchDropsUnknown(t *testing.T) {
	in := MatchInput{Profile: Candidate{ID: "me"}, Candidates: []Candidate{{ID: "a"}}}
	var out MatchOutput
	require.NoError(t, Decode(`{"matches":[{"id":"zz","score":5},{"id":"a","score":50,"reason":"ok"}]}`, in, &out))
	assert.Equal(t, []Match{{ID: "a", Score: 50, Reason: "ok"}}, out.Matches)
}

func TestCandidateFromRecord(t *testing.T) {
	r := profile.Record{
		ID: "u1", DisplayName: "Asha", Age: 29, Gender: profile.GenderFemale,
		Hobbies: []string{"dance"}, Horoscope: &profile.Horoscope{SunSign: "Pisces"},
	}
	c := CandidateFromRecord(r)
	assert.Equal(t, "u1", c.ID)
	assert.Equal(t, "female", c.Gender)
	assert.Equal(t, "Pisces", c.SunSign)
	assert.Equal(t, []string{"dance"}, c.Hobbies)
}

func TestCanonicalSign(t *testing.T) {
	for in, want := range map[string]string{"ARIES": "Aries", " meena ": "Pisces", "Scorpio": "Scorpio"} {
		got, ok := CanonicalSign(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := CanonicalSign("")
	assert.False(t, ok)
}
