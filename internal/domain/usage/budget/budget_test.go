package budget

import "testing"

func TestNew(t *testing.T) {
	b := New(1000000, 384200, 615800, false, 1700000000000)
	if b.TokensLimit() != 1000000 {
		t.Errorf("TokensLimit() = %d", b.TokensLimit())
	}
	if b.TokensUsed() != 384200 {
		t.Errorf("TokensUsed() = %d", b.TokensUsed())
	}
	if b.TokensRemaining() != 615800 {
		t.Errorf("TokensRemaining() = %d", b.TokensRemaining())
	}
	if b.IsExhausted() || b.IsUnlimited() {
		t.Error("budget should be limited and not exhausted")
	}
	if b.ResetsAt() != 1700000000000 {
		t.Errorf("ResetsAt() = %d", b.ResetsAt())
	}
}

func TestNew_Exhausted(t *testing.T) {
	b := New(1000, 1000, 0, true, 0)
	if !b.IsExhausted() {
		t.Error("IsExhausted() = false, want true")
	}
	if b.TokensRemaining() != 0 {
		t.Errorf("TokensRemaining() = %d", b.TokensRemaining())
	}
}

func TestNew_Unlimited(t *testing.T) {
	b := New(0, 50, -1, false, 0)
	if !b.IsUnlimited() {
		t.Error("IsUnlimited() = false, want true")
	}
}
