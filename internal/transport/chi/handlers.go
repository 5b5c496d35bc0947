package chi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kailas-cloud/matchcraft/internal/domain"
	domprofile "github.com/kailas-cloud/matchcraft/internal/domain/profile"
	domprompt "github.com/kailas-cloud/matchcraft/internal/domain/prompt"
	domusage "github.com/kailas-cloud/matchcraft/internal/domain/usage"
	healthuc "github.com/kailas-cloud/matchcraft/internal/usecase/health"
)

// CreateUser handles POST /users.
func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	in, err := profileFromAPI(req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rec, err := s.profiles.Create(r.Context(), in)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/users/"+rec.ID)
	writeJSON(w, http.StatusCreated, profileToAPI(rec))
}

// GetUser handles GET /users/{id}.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.profiles.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileToAPI(rec))
}

// UpdateUser handles PUT /users/{id}.
func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request, id string) {
	var req ProfileRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	in, err := profileFromAPI(req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rec, err := s.profiles.Update(r.Context(), id, in)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileToAPI(rec))
}

// DeleteUser handles DELETE /users/{id}.
func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.profiles.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto handles PUT /users/{id}/photo. The body is the raw image.
func (s *Server) UploadPhoto(w http.ResponseWriter, r *http.Request, id string) {
	data, err := s.readPhoto(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body")
		return
	}

	rec, err := s.profiles.SetPhoto(r.Context(), id, r.Header.Get("Content-Type"), data)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileToAPI(rec))
}

// SuggestUsers handles GET /search/suggestions. Lookup failures return an
// empty list, never an error.
func (s *Server) SuggestUsers(w http.ResponseWriter, r *http.Request, params SuggestUsersParams) {
	q := ""
	if params.Q != nil {
		q = *params.Q
	}
	writeJSON(w, http.StatusOK, SuggestionListResponse{Items: s.suggest.Suggest(r.Context(), q)})
}

// Enhance handles POST /ai/enhance/{kind}.
func (s *Server) Enhance(w http.ResponseWriter, r *http.Request, kind string) {
	ctx, usage := domain.NewContextWithUsage(r.Context())

	switch kind {
	case "bio":
		var in domprompt.EnhanceBioInput
		if !s.decodeJSON(w, r, &in) {
			return
		}
		out, err := s.prompt.EnhanceBio(ctx, in)
		s.writePrompt(w, r, usage, out, err)
	case "hobbies", "movies", "music":
		var in domprompt.EnhanceListInput
		if !s.decodeJSON(w, r, &in) {
			return
		}
		in.Kind = domprompt.Feature("enhance_" + kind)
		out, err := s.prompt.EnhanceList(ctx, in)
		s.writePrompt(w, r, usage, out, err)
	default:
		writeError(w, http.StatusNotFound, ErrorResponseCodeNotFound, "unknown enhancement "+kind)
	}
}

// ExtractHoroscope handles POST /ai/horoscope/extract.
func (s *Server) ExtractHoroscope(w http.ResponseWriter, r *http.Request) {
	var in domprompt.HoroscopeInput
	if !s.decodeJSON(w, r, &in) {
		return
	}
	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, err := s.prompt.ExtractHoroscope(ctx, in)
	s.writePrompt(w, r, usage, out, err)
}

// HoroscopeCompatibility handles POST /ai/horoscope/compatibility.
func (s *Server) HoroscopeCompatibility(w http.ResponseWriter, r *http.Request) {
	var in domprompt.CompatibilityInput
	if !s.decodeJSON(w, r, &in) {
		return
	}
	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, err := s.prompt.Compatibility(ctx, in)
	s.writePrompt(w, r, usage, out, err)
}

// SuggestMatches handles POST /ai/matches.
func (s *Server) SuggestMatches(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, err := s.prompt.SuggestMatches(ctx, req.ProfileID, req.CandidateIDs)
	s.writePrompt(w, r, usage, out, err)
}

func (s *Server) writePrompt(w http.ResponseWriter, r *http.Request, usage *domain.PromptUsage, out any, err error) {
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setPromptHeaders(w, usage)
	writeJSON(w, http.StatusOK, out)
}

// GetUsage handles GET /usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request, params GetUsageParams) {
	raw := ""
	if params.Period != nil {
		raw = *params.Period
	}
	period, err := domusage.ParsePeriod(raw)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	report := s.usage.GetReport(r.Context(), period)
	b := report.Budget()
	resp := UsageResponse{
		Period: string(report.Period()),
		Usage: UsageMetrics{
			PromptRequests: report.Metrics().PromptRequests(),
			CacheHits:      report.Metrics().CacheHits(),
			Tokens:         report.Metrics().Tokens(),
		},
		Budget: BudgetStatus{
			TokensLimit:     b.TokensLimit(),
			TokensUsed:      b.TokensUsed(),
			TokensRemaining: b.TokensRemaining(),
			IsUnlimited:     b.IsUnlimited(),
			IsExhausted:     b.IsExhausted(),
		},
	}
	if report.PeriodStart() > 0 {
		start, end := report.PeriodStart(), report.PeriodEnd()
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}
	if b.ResetsAt() > 0 {
		resetsAt := b.ResetsAt()
		resp.Budget.ResetsAt = &resetsAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// SendMessage handles POST /users/{id}/conversations/{peer}/messages.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request, id, peer string) {
	var req SendMessageRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	m, err := s.messages.Send(r.Context(), id, peer, req.Text)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// ListMessages handles GET /users/{id}/conversations/{peer}/messages.
func (s *Server) ListMessages(w http.ResponseWriter, r *http.Request, id, peer string, params ListMessagesParams) {
	msgs, err := s.messages.List(r.Context(), id, peer, derefInt(params.Limit))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageListResponse{Items: msgs})
}

// MarkConversationRead handles POST /users/{id}/conversations/{peer}/read.
func (s *Server) MarkConversationRead(w http.ResponseWriter, r *http.Request, id, peer string) {
	n, err := s.messages.MarkRead(r.Context(), id, peer)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MarkReadResponse{Updated: n})
}

// ListConversations handles GET /users/{id}/conversations.
func (s *Server) ListConversations(
	w http.ResponseWriter, r *http.Request, id string, params ListConversationsParams,
) {
	convs, err := s.messages.Inbox(r.Context(), id, derefInt(params.Limit))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ConversationListResponse{Items: convs})
}

// AdminListUsers handles GET /admin/users.
func (s *Server) AdminListUsers(w http.ResponseWriter, r *http.Request, params AdminListUsersParams) {
	limit := defaultPageSize
	if params.Limit != nil {
		limit = *params.Limit
	}
	if limit <= 0 || limit > maxPageSize {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "limit must be between 1 and 100")
		return
	}

	var f domprofile.ListFilter
	if params.Gender != nil {
		g, ok := domprofile.ParseGender(*params.Gender)
		if !ok {
			s.handleDomainError(w, r, invalidGender(*params.Gender))
			return
		}
		f.Gender = g
	}
	f.MinAge = derefInt(params.MinAge)
	f.MaxAge = derefInt(params.MaxAge)

	cursor := ""
	if params.Cursor != nil {
		cursor = *params.Cursor
	}

	recs, next, err := s.profiles.List(r.Context(), f, cursor, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	total, err := s.profiles.Count(r.Context(), f)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]Profile, len(recs))
	for i, rec := range recs {
		items[i] = profileToAPI(rec)
	}
	resp := ProfileCursorListResponse{Items: items, Total: total, HasMore: next != ""}
	if next != "" {
		resp.NextCursor = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

// AdminDeleteUser handles DELETE /admin/users/{id}.
func (s *Server) AdminDeleteUser(w http.ResponseWriter, r *http.Request, id string) {
	s.DeleteUser(w, r, id)
}

// AdminReindex handles POST /admin/reindex.
func (s *Server) AdminReindex(w http.ResponseWriter, r *http.Request) {
	n, err := s.profiles.Reindex(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReindexResponse{Reindexed: n})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
