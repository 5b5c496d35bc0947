package matchcraft

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitResult(t *testing.T, c *collector) {
	t.Helper()
	select {
	case <-c.got:
	case <-time.After(2 * time.Second):
		t.Fatal("no result delivered")
	}
}

func TestSuggestSession_DebouncesKeystrokes(t *testing.T) {
	f := &fakeSuggester{answers: map[string][]Suggestion{
		"pri": {{ID: "1", DisplayName: "Priya Sharma"}},
	}}
	c := newCollector()
	s := NewSuggestSession(context.Background(), f, c.add, WithDebounce(50*time.Millisecond))
	defer s.Close()

	s.Type("p")
	s.Type("pr")
	id := s.Type("pri")

	waitResult(t, c)
	s.Close()

	want := []SuggestResult{{
		RequestID: id,
		Query:     "pri",
		Items:     []Suggestion{{ID: "1", DisplayName: "Priya Sharma"}},
	}}
	if diff := cmp.Diff(want, c.all()); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"pri"}, f.seen()); diff != "" {
		t.Errorf("lookups mismatch (-want +got):\n%s", diff)
	}
}

func TestSuggestSession_DiscardsSupersededResult(t *testing.T) {
	f := &fakeSuggester{
		answers: map[string][]Suggestion{
			"a":  {{ID: "1", DisplayName: "Asha"}},
			"am": {{ID: "2", DisplayName: "Amit"}},
		},
		delays: map[string]time.Duration{"a": 200 * time.Millisecond},
	}
	c := newCollector()
	obs, err := newObserver(nil, prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	s := NewSuggestSession(context.Background(), f, c.add, WithDebounce(0))
	s.obs = obs

	s.Type("a")
	// Let the slow lookup start before the next keystroke.
	time.Sleep(50 * time.Millisecond)
	latest := s.Type("am")

	waitResult(t, c)
	s.Close() // waits for the slow lookup, whose result is dropped

	got := c.all()
	if len(got) != 1 {
		t.Fatalf("delivered %d results, want 1: %+v", len(got), got)
	}
	if got[0].RequestID != latest || got[0].Query != "am" {
		t.Errorf("delivered %+v, want request %d for %q", got[0], latest, "am")
	}
	if diff := cmp.Diff([]string{"a", "am"}, f.seen()); diff != "" {
		t.Errorf("superseded lookup must still run (-want +got):\n%s", diff)
	}
	ops := obs.metrics.operations
	if n := testutil.ToFloat64(ops.WithLabelValues("suggest_session", statusDiscarded)); n != 1 {
		t.Errorf("discarded = %v, want 1", n)
	}
	if n := testutil.ToFloat64(ops.WithLabelValues("suggest_session", statusOK)); n != 1 {
		t.Errorf("delivered = %v, want 1", n)
	}
}

func TestSuggestSession_SlowCallbackNotOverwrittenByOlderResult(t *testing.T) {
	f := &fakeSuggester{answers: map[string][]Suggestion{
		"a":  {{ID: "1", DisplayName: "Asha"}},
		"ab": {{ID: "2", DisplayName: "Abhay"}},
	}}

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var display string
	delivered := make(chan struct{}, 4)
	onResult := func(r SuggestResult) {
		if r.Query == "a" {
			close(entered)
			<-release
		}
		mu.Lock()
		display = r.Query
		mu.Unlock()
		delivered <- struct{}{}
	}

	s := NewSuggestSession(context.Background(), f, onResult, WithDebounce(0))
	s.Type("a")
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first result not delivered")
	}

	latest := s.Type("ab")
	// Give the newer lookup time to resolve while the first callback is held.
	time.Sleep(50 * time.Millisecond)
	close(release)

	for range 2 {
		select {
		case <-delivered:
		case <-time.After(2 * time.Second):
			t.Fatal("result not delivered")
		}
	}
	s.Close()

	mu.Lock()
	defer mu.Unlock()
	if display != "ab" {
		t.Errorf("display = %q after request %d, want %q", display, latest, "ab")
	}
}

func TestSuggestSession_ErrorDeliveredAsEmpty(t *testing.T) {
	boom := errors.New("store down")
	f := &fakeSuggester{err: boom}
	c := newCollector()
	s := NewSuggestSession(context.Background(), f, c.add, WithDebounce(0))
	defer s.Close()

	s.Type("x")
	waitResult(t, c)

	got := c.all()[0]
	if !errors.Is(got.Err, boom) {
		t.Errorf("Err = %v, want %v", got.Err, boom)
	}
	if got.Items == nil || len(got.Items) != 0 {
		t.Errorf("Items = %#v, want empty non-nil slice", got.Items)
	}
}

func TestSuggestSession_CloseStopsPendingTimer(t *testing.T) {
	f := &fakeSuggester{}
	c := newCollector()
	s := NewSuggestSession(context.Background(), f, c.add, WithDebounce(time.Hour))

	if id := s.Type("pri"); id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}
	s.Close()
	s.Close()

	if id := s.Type("more"); id != 0 {
		t.Errorf("Type after Close = %d, want 0", id)
	}
	if s.Latest() != 1 {
		t.Errorf("Latest = %d, want 1", s.Latest())
	}
	if len(f.seen()) != 0 || len(c.all()) != 0 {
		t.Error("no lookup should run after Close")
	}
}

func TestClientSuggestSession(t *testing.T) {
	client := testClient(t)
	defer client.Close()
	ctx := context.Background()

	for _, name := range []string{"Priya Sharma", "Priyanka Singh", "Rahul Verma"} {
		if _, err := client.Profiles().Create(ctx, ProfileInput{DisplayName: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	c := newCollector()
	s := client.NewSuggestSession(ctx, c.add, WithDebounce(10*time.Millisecond))
	s.Type("ra")
	s.Type("pri")
	waitResult(t, c)
	s.Close()

	got := c.all()
	if len(got) != 1 {
		t.Fatalf("delivered %d results, want 1", len(got))
	}
	names := make([]string, len(got[0].Items))
	for i, it := range got[0].Items {
		names[i] = it.DisplayName
	}
	if diff := cmp.Diff([]string{"Priya Sharma", "Priyanka Singh"}, names); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
}
