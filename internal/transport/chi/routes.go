package chi

import (
	"fmt"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface is the set of HTTP operations the API serves.
//
//nolint:interfacebloat // one method per route
type ServerInterface interface {
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
	// (POST /users)
	CreateUser(w http.ResponseWriter, r *http.Request)
	// (GET /users/{id})
	GetUser(w http.ResponseWriter, r *http.Request, id string)
	// (PUT /users/{id})
	UpdateUser(w http.ResponseWriter, r *http.Request, id string)
	// (DELETE /users/{id})
	DeleteUser(w http.ResponseWriter, r *http.Request, id string)
	// (PUT /users/{id}/photo)
	UploadPhoto(w http.ResponseWriter, r *http.Request, id string)
	// (GET /search/suggestions)
	SuggestUsers(w http.ResponseWriter, r *http.Request, params SuggestUsersParams)
	// (POST /ai/enhance/{kind})
	Enhance(w http.ResponseWriter, r *http.Request, kind string)
	// (POST /ai/horoscope/extract)
	ExtractHoroscope(w http.ResponseWriter, r *http.Request)
	// (POST /ai/horoscope/compatibility)
	HoroscopeCompatibility(w http.ResponseWriter, r *http.Request)
	// (POST /ai/matches)
	SuggestMatches(w http.ResponseWriter, r *http.Request)
	// (GET /usage)
	GetUsage(w http.ResponseWriter, r *http.Request, params GetUsageParams)
	// (POST /users/{id}/conversations/{peer}/messages)
	SendMessage(w http.ResponseWriter, r *http.Request, id, peer string)
	// (GET /users/{id}/conversations/{peer}/messages)
	ListMessages(w http.ResponseWriter, r *http.Request, id, peer string, params ListMessagesParams)
	// (POST /users/{id}/conversations/{peer}/read)
	MarkConversationRead(w http.ResponseWriter, r *http.Request, id, peer string)
	// (GET /users/{id}/conversations)
	ListConversations(w http.ResponseWriter, r *http.Request, id string, params ListConversationsParams)
	// (GET /admin/users)
	AdminListUsers(w http.ResponseWriter, r *http.Request, params AdminListUsersParams)
	// (DELETE /admin/users/{id})
	AdminDeleteUser(w http.ResponseWriter, r *http.Request, id string)
	// (POST /admin/reindex)
	AdminReindex(w http.ResponseWriter, r *http.Request)
}

// SuggestUsersParams defines parameters for SuggestUsers.
type SuggestUsersParams struct {
	Q *string `form:"q,omitempty" json:"q,omitempty"`
}

// GetUsageParams defines parameters for GetUsage.
type GetUsageParams struct {
	Period *string `form:"period,omitempty" json:"period,omitempty"`
}

// ListMessagesParams defines parameters for ListMessages.
type ListMessagesParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// ListConversationsParams defines parameters for ListConversations.
type ListConversationsParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// AdminListUsersParams defines parameters for AdminListUsers.
type AdminListUsersParams struct {
	Cursor *string `form:"cursor,omitempty" json:"cursor,omitempty"`
	Limit  *int    `form:"limit,omitempty" json:"limit,omitempty"`
	Gender *string `form:"gender,omitempty" json:"gender,omitempty"`
	MinAge *int    `form:"min_age,omitempty" json:"min_age,omitempty"`
	MaxAge *int    `form:"max_age,omitempty" json:"max_age,omitempty"`
}

// InvalidParamFormatError reports a path or query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// MiddlewareFunc wraps a single route handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL    string
	BaseRouter gochi.Router
	// AdminMiddlewares guard the /admin routes.
	AdminMiddlewares []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// ServerInterfaceWrapper binds request parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, gochi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return "", false
	}
	return v, true
}

func (siw *ServerInterfaceWrapper) queryParam(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

// HealthCheck operation middleware.
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.Handler.HealthCheck(w, r)
}

// Metrics operation middleware.
func (siw *ServerInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.Handler.Metrics(w, r)
}

// CreateUser operation middleware.
func (siw *ServerInterfaceWrapper) CreateUser(w http.ResponseWriter, r *http.Request) {
	siw.Handler.CreateUser(w, r)
}

// GetUser operation middleware.
func (siw *ServerInterfaceWrapper) GetUser(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathParam(w, r, "id"); ok {
		siw.Handler.GetUser(w, r, id)
	}
}

// UpdateUser operation middleware.
func (siw *ServerInterfaceWrapper) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathParam(w, r, "id"); ok {
		siw.Handler.UpdateUser(w, r, id)
	}
}

// DeleteUser operation middleware.
func (siw *ServerInterfaceWrapper) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathParam(w, r, "id"); ok {
		siw.Handler.DeleteUser(w, r, id)
	}
}

// UploadPhoto operation middleware.
func (siw *ServerInterfaceWrapper) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathParam(w, r, "id"); ok {
		siw.Handler.UploadPhoto(w, r, id)
	}
}

// SuggestUsers operation middleware.
func (siw *ServerInterfaceWrapper) SuggestUsers(w http.ResponseWriter, r *http.Request) {
	var params SuggestUsersParams
	if !siw.queryParam(w, r, "q", &params.Q) {
		return
	}
	siw.Handler.SuggestUsers(w, r, params)
}

// Enhance operation middleware.
func (siw *ServerInterfaceWrapper) Enhance(w http.ResponseWriter, r *http.Request) {
	if kind, ok := siw.pathParam(w, r, "kind"); ok {
		siw.Handler.Enhance(w, r, kind)
	}
}

// ExtractHoroscope operation middleware.
func (siw *ServerInterfaceWrapper) ExtractHoroscope(w http.ResponseWriter, r *http.Request) {
	siw.Handler.ExtractHoroscope(w, r)
}

// HoroscopeCompatibility operation middleware.
func (siw *ServerInterfaceWrapper) HoroscopeCompatibility(w http.ResponseWriter, r *http.Request) {
	siw.Handler.HoroscopeCompatibility(w, r)
}

// SuggestMatches operation middleware.
func (siw *ServerInterfaceWrapper) SuggestMatches(w http.ResponseWriter, r *http.Request) {
	siw.Handler.SuggestMatches(w, r)
}

// GetUsage operation middleware.
func (siw *ServerInterfaceWrapper) GetUsage(w http.ResponseWriter, r *http.Request) {
	var params GetUsageParams
	if !siw.queryParam(w, r, "period", &params.Period) {
		return
	}
	siw.Handler.GetUsage(w, r, params)
}

// SendMessage operation middleware.
func (siw *ServerInterfaceWrapper) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.pathParam(w, r, "id")
	if !ok {
		return
	}
	peer, ok := siw.pathParam(w, r, "peer")
	if !ok {
		return
	}
	siw.Handler.SendMessage(w, r, id, peer)
}

// ListMessages operation middleware.
func (siw *ServerInterfaceWrapper) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.pathParam(w, r, "id")
	if !ok {
		return
	}
	peer, ok := siw.pathParam(w, r, "peer")
	if !ok {
		return
	}
	var params ListMessagesParams
	if !siw.queryParam(w, r, "limit", &params.Limit) {
		return
	}
	siw.Handler.ListMessages(w, r, id, peer, params)
}

// MarkConversationRead operation middleware.
func (siw *ServerInterfaceWrapper) MarkConversationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.pathParam(w, r, "id")
	if !ok {
		return
	}
	peer, ok := siw.pathParam(w, r, "peer")
	if !ok {
		return
	}
	siw.Handler.MarkConversationRead(w, r, id, peer)
}

// ListConversations operation middleware.
func (siw *ServerInterfaceWrapper) ListConversations(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.pathParam(w, r, "id")
	if !ok {
		return
	}
	var params ListConversationsParams
	if !siw.queryParam(w, r, "limit", &params.Limit) {
		return
	}
	siw.Handler.ListConversations(w, r, id, params)
}

// AdminListUsers operation middleware.
func (siw *ServerInterfaceWrapper) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	var params AdminListUsersParams
	if !siw.queryParam(w, r, "cursor", &params.Cursor) ||
		!siw.queryParam(w, r, "limit", &params.Limit) ||
		!siw.queryParam(w, r, "gender", &params.Gender) ||
		!siw.queryParam(w, r, "min_age", &params.MinAge) ||
		!siw.queryParam(w, r, "max_age", &params.MaxAge) {
		return
	}
	siw.Handler.AdminListUsers(w, r, params)
}

// AdminDeleteUser operation middleware.
func (siw *ServerInterfaceWrapper) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathParam(w, r, "id"); ok {
		siw.Handler.AdminDeleteUser(w, r, id)
	}
}

// AdminReindex operation middleware.
func (siw *ServerInterfaceWrapper) AdminReindex(w http.ResponseWriter, r *http.Request) {
	siw.Handler.AdminReindex(w, r)
}

// HandlerWithOptions mounts every route of si on the configured router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = gochi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = defaultParamErrorHandler
	}
	w := &ServerInterfaceWrapper{Handler: si, ErrorHandlerFunc: options.ErrorHandlerFunc}
	base := options.BaseURL

	r.Group(func(r gochi.Router) {
		r.Get(base+"/health", w.HealthCheck)
		r.Get(base+"/metrics", w.Metrics)

		r.Post(base+"/users", w.CreateUser)
		r.Get(base+"/users/{id}", w.GetUser)
		r.Put(base+"/users/{id}", w.UpdateUser)
		r.Delete(base+"/users/{id}", w.DeleteUser)
		r.Put(base+"/users/{id}/photo", w.UploadPhoto)

		r.Get(base+"/users/{id}/conversations", w.ListConversations)
		r.Post(base+"/users/{id}/conversations/{peer}/messages", w.SendMessage)
		r.Get(base+"/users/{id}/conversations/{peer}/messages", w.ListMessages)
		r.Post(base+"/users/{id}/conversations/{peer}/read", w.MarkConversationRead)

		r.Get(base+"/search/suggestions", w.SuggestUsers)

		r.Post(base+"/ai/enhance/{kind}", w.Enhance)
		r.Post(base+"/ai/horoscope/extract", w.ExtractHoroscope)
		r.Post(base+"/ai/horoscope/compatibility", w.HoroscopeCompatibility)
		r.Post(base+"/ai/matches", w.SuggestMatches)

		r.Get(base+"/usage", w.GetUsage)
	})

	r.Group(func(r gochi.Router) {
		for _, mw := range options.AdminMiddlewares {
			r.Use(mw)
		}
		r.Get(base+"/admin/users", w.AdminListUsers)
		r.Delete(base+"/admin/users/{id}", w.AdminDeleteUser)
		r.Post(base+"/admin/reindex", w.AdminReindex)
	})

	return r
}

func defaultParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
}
