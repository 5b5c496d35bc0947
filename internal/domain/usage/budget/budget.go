package budget

// Budget is a snapshot of the prompt token budget. A zero limit means
// unlimited.
type Budget struct {
	tokensLimit     int
	tokensUsed      int
	tokensRemaining int
	isExhausted     bool
	resetsAt        int64 // unix millis, converted to ISO 8601 at transport layer
}

// New creates a Budget snapshot.
func New(limit, used, remaining int, isExhausted bool, resetsAt int64) Budget {
	return Budget{
		tokensLimit:     limit,
		tokensUsed:      used,
		tokensRemaining: remaining,
		isExhausted:     isExhausted,
		resetsAt:        resetsAt,
	}
}

// TokensLimit returns the token cap.
func (b Budget) TokensLimit() int { return b.tokensLimit }

// TokensUsed returns tokens consumed in the period.
func (b Budget) TokensUsed() int { return b.tokensUsed }

// TokensRemaining returns tokens left, -1 when unlimited.
func (b Budget) TokensRemaining() int { return b.tokensRemaining }

// IsUnlimited reports whether no cap is configured.
func (b Budget) IsUnlimited() bool { return b.tokensLimit == 0 }

// IsExhausted reports whether the budget is spent.
func (b Budget) IsExhausted() bool { return b.isExhausted }

// ResetsAt returns the reset timestamp (unix millis), 0 for no reset.
func (b Budget) ResetsAt() int64 { return b.resetsAt }
