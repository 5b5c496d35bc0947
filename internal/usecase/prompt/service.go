// Package prompt runs the AI helper features against a text generation
// provider: schema validation, a single provider attempt, output checks,
// response caching and token budgeting.
package prompt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchcraft/internal/domain"
	domprompt "github.com/kailas-cloud/matchcraft/internal/domain/prompt"
	"github.com/kailas-cloud/matchcraft/internal/metrics"
)

// DefaultMaxTokens bounds a single completion when no limit is configured.
const DefaultMaxTokens = 1024

// Service executes AI helper features.
type Service struct {
	gen       domain.Generator
	model     string
	maxTokens int
	cache     Cache
	profiles  ProfileReader
	hits      CacheHitRecorder
	logger    *zap.Logger
}

// New creates a prompt service. gen can be nil when no provider is
// configured; every feature then fails with domain.ErrNotImplemented.
func New(gen domain.Generator, model string, maxTokens int, logger *zap.Logger) *Service {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Service{gen: gen, model: model, maxTokens: maxTokens, logger: logger}
}

// WithCache attaches a response cache.
func (s *Service) WithCache(c Cache) *Service {
	s.cache = c
	return s
}

// WithProfiles attaches the profile reader used by SuggestMatches.
func (s *Service) WithProfiles(p ProfileReader) *Service {
	s.profiles = p
	return s
}

// WithCacheHitRecorder attaches the usage counter for cached answers.
func (s *Service) WithCacheHitRecorder(r CacheHitRecorder) *Service {
	s.hits = r
	return s
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool { return s.gen != nil }

// EnhanceBio rewrites a profile bio.
func (s *Service) EnhanceBio(ctx context.Context, in domprompt.EnhanceBioInput) (domprompt.EnhanceBioOutput, error) {
	var out domprompt.EnhanceBioOutput
	if err := s.run(ctx, in, &out); err != nil {
		return domprompt.EnhanceBioOutput{}, err
	}
	return out, nil
}

// EnhanceList cleans up a hobbies, movies or music list. in.Kind selects the feature.
func (s *Service) EnhanceList(ctx context.Context, in domprompt.EnhanceListInput) (domprompt.EnhanceListOutput, error) {
	var out domprompt.EnhanceListOutput
	if err := s.run(ctx, in, &out); err != nil {
		return domprompt.EnhanceListOutput{}, err
	}
	return out, nil
}

// ExtractHoroscope derives horoscope attributes from birth details.
func (s *Service) ExtractHoroscope(ctx context.Context, in domprompt.HoroscopeInput) (domprompt.HoroscopeOutput, error) {
	var out domprompt.HoroscopeOutput
	if err := s.run(ctx, in, &out); err != nil {
		return domprompt.HoroscopeOutput{}, err
	}
	return out, nil
}

// Compatibility scores two horoscopes out of 36 gunas.
func (s *Service) Compatibility(
	ctx context.Context, in domprompt.CompatibilityInput,
) (domprompt.CompatibilityOutput, error) {
	var out domprompt.CompatibilityOutput
	if err := s.run(ctx, in, &out); err != nil {
		return domprompt.CompatibilityOutput{}, err
	}
	return out, nil
}

// SuggestMatches ranks stored candidates for a stored profile. Candidate ids
// that do not resolve to a profile are skipped.
func (s *Service) SuggestMatches(
	ctx context.Context, profileID string, candidateIDs []string,
) (domprompt.MatchOutput, error) {
	feature := string(domprompt.FeatureMatchSuggestions)
	if s.profiles == nil {
		return domprompt.MatchOutput{}, fmt.Errorf("match suggestions: %w", domain.ErrNotImplemented)
	}
	if len(candidateIDs) == 0 {
		s.outcome(feature, outcomeInvalid)
		return domprompt.MatchOutput{}, domain.InvalidField(
			domain.ErrInvalidPromptInput, "candidates", "at least one candidate is required")
	}
	if len(candidateIDs) > domprompt.MaxCandidates {
		s.outcome(feature, outcomeInvalid)
		return domprompt.MatchOutput{}, domain.InvalidField(
			domain.ErrInvalidPromptInput, "candidates", fmt.Sprintf("at most %d candidates", domprompt.MaxCandidates))
	}

	self, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return domprompt.MatchOutput{}, fmt.Errorf("load profile %s: %w", profileID, err)
	}
	records, err := s.profiles.GetMany(ctx, candidateIDs)
	if err != nil {
		return domprompt.MatchOutput{}, fmt.Errorf("load candidates: %w", err)
	}

	in := domprompt.MatchInput{
		Profile:    domprompt.CandidateFromRecord(self),
		Candidates: make([]domprompt.Candidate, 0, len(records)),
	}
	for _, r := range records {
		in.Candidates = append(in.Candidates, domprompt.CandidateFromRecord(r))
	}

	var out domprompt.MatchOutput
	if err := s.run(ctx, in, &out); err != nil {
		return domprompt.MatchOutput{}, err
	}
	return out, nil
}

// Feature outcomes for metrics.
const (
	outcomeOK            = "ok"
	outcomeCached        = "cached"
	outcomeInvalid       = "invalid_input"
	outcomeQuota         = "quota"
	outcomeRateLimited   = "rate_limited"
	outcomeProviderError = "provider_error"
	outcomeError         = "error"
)

// run validates in, answers from cache when possible, otherwise makes a
// single provider attempt and decodes into out.
func (s *Service) run(ctx context.Context, in domprompt.Input, out domprompt.Output) error {
	feature := string(in.Feature())

	if err := in.Validate(); err != nil {
		s.outcome(feature, outcomeInvalid)
		return err
	}
	if s.gen == nil {
		return fmt.Errorf("%s: %w", feature, domain.ErrNotImplemented)
	}

	payload, err := json.Marshal(in)
	if err != nil {
		s.outcome(feature, outcomeError)
		return fmt.Errorf("marshal %s input: %w", feature, err)
	}

	if s.cached(ctx, feature, payload, in, out) {
		domain.UsageFromContext(ctx).MarkCached()
		if s.hits != nil {
			s.hits.RecordCacheHit()
		}
		s.outcome(feature, outcomeCached)
		return nil
	}

	req, err := domprompt.Render(in, s.maxTokens)
	if err != nil {
		s.outcome(feature, outcomeError)
		return err
	}

	res, err := s.gen.Generate(ctx, req)
	if err != nil {
		s.outcome(feature, classify(err))
		return fmt.Errorf("%s: %w", feature, err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	if err := domprompt.Decode(res.Text, in, out); err != nil {
		s.outcome(feature, outcomeProviderError)
		s.logger.Warn("Prompt output rejected",
			zap.String("feature", feature),
			zap.String("model", res.Model),
			zap.Error(err),
		)
		return err
	}

	if s.cache != nil {
		if data, err := json.Marshal(out); err == nil {
			s.cache.Put(ctx, feature, s.model, payload, data)
		}
	}

	s.outcome(feature, outcomeOK)
	return nil
}

// cached fills out from the response cache. Entries that no longer pass the
// output check are treated as misses.
func (s *Service) cached(
	ctx context.Context, feature string, payload []byte, in domprompt.Input, out domprompt.Output,
) bool {
	if s.cache == nil {
		return false
	}
	data, ok := s.cache.Get(ctx, feature, s.model, payload)
	if !ok {
		return false
	}
	err := json.Unmarshal(data, out)
	if err == nil {
		err = out.Check(in)
	}
	if err != nil {
		s.logger.Warn("Discarding unusable cache entry", zap.String("feature", feature), zap.Error(err))
		reflect.ValueOf(out).Elem().SetZero()
		return false
	}
	return true
}

func (s *Service) outcome(feature, outcome string) {
	metrics.PromptFeatureTotal.WithLabelValues(feature, outcome).Inc()
}

func classify(err error) string {
	switch {
	case errors.Is(err, domain.ErrPromptQuotaExceeded):
		return outcomeQuota
	case errors.Is(err, domain.ErrRateLimited):
		return outcomeRateLimited
	case errors.Is(err, domain.ErrPromptProviderError):
		return outcomeProviderError
	default:
		return outcomeError
	}
}
