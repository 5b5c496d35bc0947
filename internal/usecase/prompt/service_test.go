package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchcraft/internal/domain"
	domprofile "github.com/kailas-cloud/matchcraft/internal/domain/profile"
	domprompt "github.com/kailas-cloud/matchcraft/internal/domain/prompt"
	"github.com/kailas-cloud/matchcraft/internal/metrics"
)

type memCache struct {
	data map[string][]byte
	puts int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) key(feature, model string, input []byte) string {
	return feature + "\x00" + model + "\x00" + string(input)
}

func (c *memCache) Get(_ context.Context, feature, model string, input []byte) ([]byte, bool) {
	v, ok := c.data[c.key(feature, model, input)]
	return v, ok
}

func (c *memCache) Put(_ context.Context, feature, model string, input, output []byte) {
	c.puts++
	c.data[c.key(feature, model, input)] = output
}

type mockProfiles struct {
	records map[string]domprofile.Record
	err     error
}

func (m *mockProfiles) Get(_ context.Context, id string) (domprofile.Record, error) {
	if m.err != nil {
		return domprofile.Record{}, m.err
	}
	r, ok := m.records[id]
	if !ok {
		return domprofile.Record{}, domain.ErrUserNotFound
	}
	return r, nil
}

func (m *mockProfiles) GetMany(_ context.Context, ids []string) ([]domprofile.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domprofile.Record
	for _, id := range ids {
		if r, ok := m.records[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

type hitCounter struct{ n int }

func (h *hitCounter) RecordCacheHit() { h.n++ }

func newService(gen domain.Generator) *Service {
	return New(gen, "test-model", 256, zap.NewNop())
}

func TestService_EnhanceBio(t *testing.T) {
	gen := &mockGenerator{result: domain.GenerateResult{Text: "```json\n{\"bio\":\"  I love hiking. \"}\n```", TotalTokens: 42}}
	svc := newService(gen)

	ctx, usage := domain.NewContextWithUsage(context.Background())
	out, err := svc.EnhanceBio(ctx, domprompt.EnhanceBioInput{Bio: "i like hikes"})
	if err != nil {
		t.Fatalf("EnhanceBio: %v", err)
	}
	if out.Bio != "I love hiking." {
		t.Errorf("Bio = %q", out.Bio)
	}
	if usage.TotalTokens != 42 || usage.Cached {
		t.Errorf("usage = %+v", *usage)
	}
	if gen.last.MaxTokens != 256 || !gen.last.JSON {
		t.Errorf("request = %+v", gen.last)
	}
}

func TestService_InvalidInputSkipsProvider(t *testing.T) {
	gen := &mockGenerator{}
	svc := newService(gen)

	_, err := svc.EnhanceBio(context.Background(), domprompt.EnhanceBioInput{Bio: "   "})
	if !errors.Is(err, domain.ErrInvalidPromptInput) {
		t.Fatalf("expected ErrInvalidPromptInput, got %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("provider called %d times", gen.calls)
	}
}

func TestService_MalformedOutputIsProviderError(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "sure! here is your bio"},
		{"empty", ""},
		{"schema violation", `{"score": 40, "verdict": "great"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{result: domain.GenerateResult{Text: tt.text}}
			cache := newMemCache()
			svc := newService(gen).WithCache(cache)

			_, err := svc.Compatibility(context.Background(), domprompt.CompatibilityInput{
				First:  domprofile.Horoscope{MoonSign: "Mesha"},
				Second: domprofile.Horoscope{Nakshatra: "Rohini"},
			})
			if !errors.Is(err, domain.ErrPromptProviderError) {
				t.Fatalf("expected ErrPromptProviderError, got %v", err)
			}
			if cache.puts != 0 {
				t.Error("rejected output must not be cached")
			}
		})
	}
}

func TestService_ProviderErrorsPropagate(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		outcome string
	}{
		{"quota", domain.ErrPromptQuotaExceeded, outcomeQuota},
		{"rate limited", domain.ErrRateLimited, outcomeRateLimited},
		{"provider", domain.ErrPromptProviderError, outcomeProviderError},
		{"other", errors.New("boom"), outcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := metrics.PromptFeatureTotal.WithLabelValues(string(domprompt.FeatureEnhanceMusic), tt.outcome)
			before := testutil.ToFloat64(counter)

			svc := newService(&mockGenerator{err: tt.err})
			_, err := svc.EnhanceList(context.Background(), domprompt.EnhanceListInput{
				Kind:  domprompt.FeatureEnhanceMusic,
				Items: []string{"arijit singh"},
			})
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("outcome %s incremented by %v, want 1", tt.outcome, got)
			}
		})
	}
}

func TestService_CacheHitSkipsProvider(t *testing.T) {
	gen := &mockGenerator{result: domain.GenerateResult{
		Text:        `{"items":["Hiking","hiking","Chess"],"summary":"Outdoorsy."}`,
		TotalTokens: 30,
	}}
	cache := newMemCache()
	hits := &hitCounter{}
	svc := newService(gen).WithCache(cache).WithCacheHitRecorder(hits)
	in := domprompt.EnhanceListInput{Kind: domprompt.FeatureEnhanceHobbies, Items: []string{"hiking", "chess"}}

	first, err := svc.EnhanceList(context.Background(), in)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if len(first.Items) != 2 {
		t.Fatalf("items = %v, want deduplicated pair", first.Items)
	}

	ctx, usage := domain.NewContextWithUsage(context.Background())
	second, err := svc.EnhanceList(ctx, in)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("provider calls = %d, want 1", gen.calls)
	}
	if !usage.Cached || usage.TotalTokens != 0 {
		t.Errorf("usage = %+v, want cached with no tokens", *usage)
	}
	if hits.n != 1 {
		t.Errorf("cache hits recorded = %d, want 1", hits.n)
	}
	if second.Summary != first.Summary || len(second.Items) != len(first.Items) {
		t.Errorf("cached output = %+v, want %+v", second, first)
	}
}

func TestService_CacheIsPerFeature(t *testing.T) {
	gen := &mockGenerator{result: domain.GenerateResult{Text: `{"items":["x"],"summary":""}`}}
	svc := newService(gen).WithCache(newMemCache())

	items := []string{"x"}
	if _, err := svc.EnhanceList(context.Background(), domprompt.EnhanceListInput{
		Kind: domprompt.FeatureEnhanceMovies, Items: items,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.EnhanceList(context.Background(), domprompt.EnhanceListInput{
		Kind: domprompt.FeatureEnhanceMusic, Items: items,
	}); err != nil {
		t.Fatal(err)
	}
	if gen.calls != 2 {
		t.Errorf("provider calls = %d, want 2", gen.calls)
	}
}

func TestService_UnusableCacheEntryIsMiss(t *testing.T) {
	gen := &mockGenerator{result: domain.GenerateResult{Text: `{"sunSign":"leo","moonSign":"kark"}`}}
	cache := newMemCache()
	svc := newService(gen).WithCache(cache)
	in := domprompt.HoroscopeInput{BirthDate: "1994-08-10", BirthPlace: "Pune"}

	payload := []byte(`{"birthDate":"1994-08-10","birthPlace":"Pune"}`)
	cache.Put(context.Background(), string(domprompt.FeatureExtractHoroscope), "test-model", payload,
		[]byte(`{"sunSign":"pluto","summary":"stale"}`))

	out, err := svc.ExtractHoroscope(context.Background(), in)
	if err != nil {
		t.Fatalf("ExtractHoroscope: %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("provider calls = %d, want 1", gen.calls)
	}
	if out.SunSign != "Leo" || out.Summary != "" {
		t.Errorf("out = %+v", out)
	}
}

func TestService_NoProvider(t *testing.T) {
	svc := newService(nil)
	if svc.Enabled() {
		t.Error("expected disabled service")
	}
	_, err := svc.EnhanceBio(context.Background(), domprompt.EnhanceBioInput{Bio: "hello there"})
	if !errors.Is(err, domain.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}

func TestService_SuggestMatches(t *testing.T) {
	profiles := &mockProfiles{records: map[string]domprofile.Record{
		"u1": {ID: "u1", DisplayName: "Asha", Age: 28},
		"u2": {ID: "u2", DisplayName: "Ravi", Age: 30},
		"u3": {ID: "u3", DisplayName: "Kiran", Age: 31},
	}}
	gen := &mockGenerator{result: domain.GenerateResult{Text: `{"matches":[
		{"id":"u3","score":70,"reason":"shared love of trekking"},
		{"id":"ghost","score":99,"reason":"invented"},
		{"id":"u2","score":85,"reason":"same city"}
	]}`}}
	svc := newService(gen).WithProfiles(profiles)

	out, err := svc.SuggestMatches(context.Background(), "u1", []string{"u2", "u3", "missing"})
	if err != nil {
		t.Fatalf("SuggestMatches: %v", err)
	}
	if len(out.Matches) != 2 || out.Matches[0].ID != "u2" || out.Matches[1].ID != "u3" {
		t.Errorf("matches = %+v", out.Matches)
	}
}

func TestService_SuggestMatchesErrors(t *testing.T) {
	profiles := &mockProfiles{records: map[string]domprofile.Record{
		"u1": {ID: "u1", DisplayName: "Asha"},
	}}
	svc := newService(&mockGenerator{}).WithProfiles(profiles)
	ctx := context.Background()

	if _, err := svc.SuggestMatches(ctx, "nobody", []string{"u1"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("unknown profile: got %v", err)
	}
	if _, err := svc.SuggestMatches(ctx, "u1", nil); !errors.Is(err, domain.ErrInvalidPromptInput) {
		t.Errorf("no candidates: got %v", err)
	}
	if _, err := svc.SuggestMatches(ctx, "u1", []string{"missing"}); !errors.Is(err, domain.ErrInvalidPromptInput) {
		t.Errorf("unresolved candidates: got %v", err)
	}
	many := make([]string, domprompt.MaxCandidates+1)
	for i := range many {
		many[i] = string(rune('a' + i))
	}
	if _, err := svc.SuggestMatches(ctx, "u1", many); !errors.Is(err, domain.ErrInvalidPromptInput) {
		t.Errorf("too many candidates: got %v", err)
	}

	if _, err := newService(&mockGenerator{}).SuggestMatches(ctx, "u1", []string{"u2"}); !errors.Is(err, domain.ErrNotImplemented) {
		t.Errorf("no profile reader: got %v", err)
	}
}
