package message

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/kailas-cloud/matchcraft/internal/domain"
)

func TestConversationID_Symmetric(t *testing.T) {
	if ConversationID("b", "a") != "a__b" || ConversationID("a", "b") != "a__b" {
		t.Errorf("ConversationID not symmetric: %q %q", ConversationID("b", "a"), ConversationID("a", "b"))
	}
}

func TestPeerOf(t *testing.T) {
	id := ConversationID("u1", "u2")
	tests := []struct{ user, want string }{
		{"u1", "u2"},
		{"u2", "u1"},
		{"u3", ""},
	}
	for _, tt := range tests {
		if got := PeerOf(id, tt.user); got != tt.want {
			t.Errorf("PeerOf(%q, %q) = %q, want %q", id, tt.user, got, tt.want)
		}
	}
	if PeerOf("malformed", "u1") != "" {
		t.Error("malformed id should have no peer")
	}
}

func TestNew(t *testing.T) {
	m, err := New("m1", "u2", "u1", "hello", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ConversationID != "u1__u2" || m.SentAt != 42 || m.IsRead() {
		t.Errorf("unexpected message: %+v", m)
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name, sender, recipient, text string
	}{
		{"self", "u1", "u1", "hi"},
		{"empty", "u1", "u2", "   "},
		{"too long", "u1", "u2", strings.Repeat("é", MaxTextLen+1)},
		{"no sender", "", "u2", "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("m", tt.sender, tt.recipient, tt.text, 1)
			if !errors.Is(err, domain.ErrInvalidMessage) {
				t.Fatalf("expected ErrInvalidMessage, got %v", err)
			}
		})
	}

	if _, err := New("m", "u1", "u2", strings.Repeat("é", MaxTextLen), 1); err != nil {
		t.Errorf("max length text rejected: %v", err)
	}
}

func TestLess(t *testing.T) {
	msgs := []Message{
		{ID: "c", SentAt: 2},
		{ID: "b", SentAt: 1},
		{ID: "a", SentAt: 2},
	}
	sort.Slice(msgs, func(i, j int) bool { return Less(msgs[i], msgs[j]) })
	got := msgs[0].ID + msgs[1].ID + msgs[2].ID
	if got != "bac" {
		t.Errorf("order = %q, want bac", got)
	}
}

func TestStorageRoundTrip(t *testing.T) {
	m, _ := New("m1", "u1", "u2", "namaste", 100)
	m.ReadAt = 200
	back := FromStorage(ToStorage(m))
	if back != m {
		t.Errorf("round trip = %+v, want %+v", back, m)
	}

	bad := FromStorage(map[string]string{"sentAt": "x"})
	if bad.SentAt != 0 || bad.IsRead() {
		t.Errorf("malformed timestamps should default to zero: %+v", bad)
	}
}
