package chi

import (
	dommsg "github.com/kailas-cloud/matchcraft/internal/domain/message"
	domprofile "github.com/kailas-cloud/matchcraft/internal/domain/profile"
	"github.com/kailas-cloud/matchcraft/internal/domain/search/suggestion"
)

// ErrorResponseCode is the machine-readable error code of an API error.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest          ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed    ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnauthorized        ErrorResponseCode = "unauthorized"
	ErrorResponseCodeForbidden           ErrorResponseCode = "forbidden"
	ErrorResponseCodeNotFound            ErrorResponseCode = "not_found"
	ErrorResponseCodeUserNotFound        ErrorResponseCode = "user_not_found"
	ErrorResponseCodeUnsupportedMedia    ErrorResponseCode = "unsupported_media_type"
	ErrorResponseCodePayloadTooLarge     ErrorResponseCode = "payload_too_large"
	ErrorResponseCodeRateLimited         ErrorResponseCode = "rate_limited"
	ErrorResponseCodePromptQuotaExceeded ErrorResponseCode = "prompt_quota_exceeded"
	ErrorResponseCodePromptProviderError ErrorResponseCode = "prompt_provider_error"
	ErrorResponseCodeNotImplemented      ErrorResponseCode = "not_implemented"
	ErrorResponseCodeInternalError       ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// ProfileRequest is the body of POST /users and PUT /users/{id}.
type ProfileRequest struct {
	DisplayName string                `json:"displayName"`
	Profession  string                `json:"profession,omitempty"`
	Location    string                `json:"location,omitempty"`
	Bio         string                `json:"bio,omitempty"`
	Age         int                   `json:"age,omitempty"`
	Gender      string                `json:"gender,omitempty"`
	Religion    string                `json:"religion,omitempty"`
	Hobbies     []string              `json:"hobbies,omitempty"`
	Movies      []string              `json:"movies,omitempty"`
	Music       []string              `json:"music,omitempty"`
	Horoscope   *domprofile.Horoscope `json:"horoscope,omitempty"`
}

// Profile is the public representation of a user record.
type Profile struct {
	ID          string                `json:"id"`
	DisplayName string                `json:"displayName"`
	Profession  string                `json:"profession"`
	Location    string                `json:"location"`
	Bio         string                `json:"bio"`
	PhotoURL    string                `json:"photoURL"`
	Age         int                   `json:"age"`
	Gender      string                `json:"gender"`
	Religion    string                `json:"religion"`
	Hobbies     []string              `json:"hobbies"`
	Movies      []string              `json:"movies"`
	Music       []string              `json:"music"`
	Horoscope   *domprofile.Horoscope `json:"horoscope,omitempty"`
	CreatedAt   int64                 `json:"createdAt"`
	UpdatedAt   int64                 `json:"updatedAt"`
}

// ProfileCursorListResponse is a page of the admin user listing.
type ProfileCursorListResponse struct {
	Items      []Profile `json:"items"`
	Total      int       `json:"total"`
	HasMore    bool      `json:"hasMore"`
	NextCursor *string   `json:"nextCursor,omitempty"`
}

// SuggestionListResponse is the autocomplete result.
type SuggestionListResponse struct {
	Items []suggestion.Suggestion `json:"items"`
}

// SendMessageRequest is the body of a message post.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// MessageListResponse lists messages in send order.
type MessageListResponse struct {
	Items []dommsg.Message `json:"items"`
}

// MarkReadResponse reports how many messages were marked read.
type MarkReadResponse struct {
	Updated int `json:"updated"`
}

// ConversationListResponse is a user's inbox.
type ConversationListResponse struct {
	Items []dommsg.Conversation `json:"items"`
}

// MatchRequest is the body of POST /ai/matches.
type MatchRequest struct {
	ProfileID    string   `json:"profileId"`
	CandidateIDs []string `json:"candidateIds"`
}

// ReindexResponse reports the number of rewritten records.
type ReindexResponse struct {
	Reindexed int `json:"reindexed"`
}

// UsageMetrics is the consumption part of a usage report.
type UsageMetrics struct {
	PromptRequests int `json:"promptRequests"`
	CacheHits      int `json:"cacheHits"`
	Tokens         int `json:"tokens"`
}

// BudgetStatus is the budget part of a usage report.
type BudgetStatus struct {
	TokensLimit     int    `json:"tokensLimit"`
	TokensUsed      int    `json:"tokensUsed"`
	TokensRemaining int    `json:"tokensRemaining"`
	IsUnlimited     bool   `json:"isUnlimited"`
	IsExhausted     bool   `json:"isExhausted"`
	ResetsAt        *int64 `json:"resetsAt,omitempty"`
}

// UsageResponse is the body of GET /usage.
type UsageResponse struct {
	Period        string       `json:"period"`
	PeriodStartAt *int64       `json:"periodStartAt,omitempty"`
	PeriodEndAt   *int64       `json:"periodEndAt,omitempty"`
	Usage         UsageMetrics `json:"usage"`
	Budget        BudgetStatus `json:"budget"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func profileToAPI(r domprofile.Record) Profile {
	return Profile{
		ID:          r.ID,
		DisplayName: r.DisplayName,
		Profession:  r.Profession,
		Location:    r.Location,
		Bio:         r.Bio,
		PhotoURL:    r.PhotoURL,
		Age:         r.Age,
		Gender:      string(r.Gender),
		Religion:    r.Religion,
		Hobbies:     nonNil(r.Hobbies),
		Movies:      nonNil(r.Movies),
		Music:       nonNil(r.Music),
		Horoscope:   r.Horoscope,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func profileFromAPI(req ProfileRequest) (domprofile.Input, error) {
	g, ok := domprofile.ParseGender(req.Gender)
	if !ok {
		return domprofile.Input{}, invalidGender(req.Gender)
	}
	return domprofile.Input{
		DisplayName: req.DisplayName,
		Profession:  req.Profession,
		Location:    req.Location,
		Bio:         req.Bio,
		Age:         req.Age,
		Gender:      g,
		Religion:    req.Religion,
		Hobbies:     req.Hobbies,
		Movies:      req.Movies,
		Music:       req.Music,
		Horoscope:   req.Horoscope,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
