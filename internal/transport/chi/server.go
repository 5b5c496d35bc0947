// Package chi exposes the MatchCraft HTTP API on a chi router.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchcraft/internal/domain"
	logpkg "github.com/kailas-cloud/matchcraft/internal/logger"
	healthuc "github.com/kailas-cloud/matchcraft/internal/usecase/health"
	messageuc "github.com/kailas-cloud/matchcraft/internal/usecase/message"
	profileuc "github.com/kailas-cloud/matchcraft/internal/usecase/profile"
	promptuc "github.com/kailas-cloud/matchcraft/internal/usecase/prompt"
	suggestuc "github.com/kailas-cloud/matchcraft/internal/usecase/suggest"
	usageuc "github.com/kailas-cloud/matchcraft/internal/usecase/usage"
)

// Body size limits applied when no configuration is given.
const (
	DefaultMaxBodyBytes  = 1 << 20
	DefaultMaxPhotoBytes = 5 << 20
)

// Admin listing page sizes.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Services groups the usecases served over HTTP.
type Services struct {
	Profiles *profileuc.Service
	Suggest  *suggestuc.Service
	Prompt   *promptuc.Service
	Messages *messageuc.Service
	Usage    *usageuc.Service
	Health   *healthuc.Service
}

// Server implements ServerInterface.
type Server struct {
	profiles      *profileuc.Service
	suggest       *suggestuc.Service
	prompt        *promptuc.Service
	messages      *messageuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	maxBodyBytes  int64
	maxPhotoBytes int64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(svc Services, logger *zap.Logger) *Server {
	s := &Server{
		profiles:      svc.Profiles,
		suggest:       svc.Suggest,
		prompt:        svc.Prompt,
		messages:      svc.Messages,
		usage:         svc.Usage,
		health:        svc.Health,
		maxBodyBytes:  DefaultMaxBodyBytes,
		maxPhotoBytes: DefaultMaxPhotoBytes,
		logger:        logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUserNotFound, http.StatusNotFound, ErrorResponseCodeUserNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorResponseCodeBadRequest),
		sentinelHandler(domain.ErrInvalidProfile, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidMessage, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidPromptInput, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrUnsupportedMedia,
			http.StatusUnsupportedMediaType, ErrorResponseCodeUnsupportedMedia),
		sentinelHandler(domain.ErrPayloadTooLarge,
			http.StatusRequestEntityTooLarge, ErrorResponseCodePayloadTooLarge),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorResponseCodeRateLimited),
		sentinelHandler(domain.ErrPromptQuotaExceeded,
			http.StatusPaymentRequired, ErrorResponseCodePromptQuotaExceeded),
		sentinelHandler(domain.ErrPromptProviderError,
			http.StatusBadGateway, ErrorResponseCodePromptProviderError),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, ErrorResponseCodeNotImplemented),
	}
	return s
}

// WithLimits overrides the JSON body and photo upload limits. Zero keeps the
// current value.
func (s *Server) WithLimits(maxBodyBytes, maxPhotoBytes int64) *Server {
	if maxBodyBytes > 0 {
		s.maxBodyBytes = maxBodyBytes
	}
	if maxPhotoBytes > 0 {
		s.maxPhotoBytes = maxPhotoBytes
	}
	return s
}

// decodeJSON reads a size-limited JSON body into v and writes the error
// response itself. It returns false when the request is rejected.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorResponseCodePayloadTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// readPhoto reads at most one byte more than the photo limit so the size
// check downstream sees oversize uploads without buffering them whole.
func (s *Server) readPhoto(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, s.maxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read photo body: %w", err)
	}
	return data, nil
}

func setPromptHeaders(w http.ResponseWriter, usage *domain.PromptUsage) {
	if usage == nil {
		return
	}
	w.Header().Set("X-Prompt-Tokens", strconv.Itoa(usage.TotalTokens))
	if usage.Cached {
		w.Header().Set("X-Prompt-Cache", "hit")
	} else {
		w.Header().Set("X-Prompt-Cache", "miss")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message without exposing internals.
// Field errors carry only the field name and the rule it broke.
func safeDomainMessage(err error) string {
	var fe *domain.FieldError
	if errors.As(err, &fe) {
		return fe.Error()
	}
	sentinels := []error{
		domain.ErrUserNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidRequest,
		domain.ErrInvalidProfile,
		domain.ErrInvalidMessage,
		domain.ErrInvalidPromptInput,
		domain.ErrUnsupportedMedia,
		domain.ErrPayloadTooLarge,
		domain.ErrRateLimited,
		domain.ErrPromptQuotaExceeded,
		domain.ErrPromptProviderError,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func invalidGender(raw string) error {
	return domain.InvalidField(domain.ErrInvalidProfile, "gender", fmt.Sprintf("unknown value %q", raw))
}
