// Package prompt defines the AI helper features: their fixed input and
// output schemas, the instructions sent to the model and the checks applied
// to what comes back.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/matchcraft/internal/domain"
)

// Feature identifies an AI helper.
type Feature string

// Supported features.
const (
	FeatureEnhanceBio             Feature = "enhance_bio"
	FeatureEnhanceHobbies         Feature = "enhance_hobbies"
	FeatureEnhanceMovies          Feature = "enhance_movies"
	FeatureEnhanceMusic           Feature = "enhance_music"
	FeatureExtractHoroscope       Feature = "extract_horoscope"
	FeatureHoroscopeCompatibility Feature = "horoscope_compatibility"
	FeatureMatchSuggestions       Feature = "match_suggestions"
)

// Features lists every feature in a stable order.
func Features() []Feature {
	return []Feature{
		FeatureEnhanceBio,
		FeatureEnhanceHobbies,
		FeatureEnhanceMovies,
		FeatureEnhanceMusic,
		FeatureExtractHoroscope,
		FeatureHoroscopeCompatibility,
		FeatureMatchSuggestions,
	}
}

// ParseFeature validates a feature name.
func ParseFeature(s string) (Feature, error) {
	for _, f := range Features() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown feature %q", domain.ErrInvalidPromptInput, s)
}

// Input is the request payload of a feature.
type Input interface {
	Feature() Feature
	Validate() error
}

// Output is the response payload of a feature. Check validates a decoded
// response against its input and normalizes it in place.
type Output interface {
	Check(in Input) error
}

// Render builds the generation request for in.
func Render(in Input, maxTokens int) (domain.GenerateRequest, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return domain.GenerateRequest{}, fmt.Errorf("marshal %s input: %w", in.Feature(), err)
	}
	return domain.GenerateRequest{
		System:    Instruction(in.Feature()),
		User:      string(payload),
		MaxTokens: maxTokens,
		JSON:      true,
	}, nil
}

// Decode parses model text into out and checks it. Any failure is a
// provider error: the model did not honor the schema.
func Decode(text string, in Input, out Output) error {
	body := stripFences(text)
	if body == "" {
		return fmt.Errorf("%w: empty response", domain.ErrPromptProviderError)
	}
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: malformed %s output: %v", domain.ErrPromptProviderError, in.Feature(), err)
	}
	if err := out.Check(in); err != nil {
		return fmt.Errorf("%w: %s output: %v", domain.ErrPromptProviderError, in.Feature(), err)
	}
	return nil
}

// stripFences removes a surrounding markdown code fence some models emit
// despite JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func invalid(field, reason string) error {
	return domain.InvalidField(domain.ErrInvalidPromptInput, field, reason)
}
