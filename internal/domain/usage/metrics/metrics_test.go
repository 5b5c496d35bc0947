package metrics

import "testing"

func TestNew(t *testing.T) {
	m := New(100, 12, 50000)
	if m.PromptRequests() != 100 {
		t.Errorf("PromptRequests() = %d", m.PromptRequests())
	}
	if m.CacheHits() != 12 {
		t.Errorf("CacheHits() = %d", m.CacheHits())
	}
	if m.Tokens() != 50000 {
		t.Errorf("Tokens() = %d", m.Tokens())
	}
}

func TestNew_Zero(t *testing.T) {
	m := New(0, 0, 0)
	if m.PromptRequests() != 0 || m.CacheHits() != 0 || m.Tokens() != 0 {
		t.Error("zero metrics should have zero values")
	}
}
