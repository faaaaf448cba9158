package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Start a session
	// (POST /sessions)
	StartSession(w http.ResponseWriter, r *http.Request)
	// Get the current view of a session
	// (GET /sessions/{session})
	GetSession(w http.ResponseWriter, r *http.Request, session SessionID)
	// Abandon a session
	// (DELETE /sessions/{session})
	AbandonSession(w http.ResponseWriter, r *http.Request, session SessionID)
	// Require a tag
	// (POST /sessions/{session}/tags)
	AddTag(w http.ResponseWriter, r *http.Request, session SessionID)
	// Drop every required tag
	// (DELETE /sessions/{session}/tags)
	ClearTags(w http.ResponseWriter, r *http.Request, session SessionID)
	// Stop requiring a tag
	// (DELETE /sessions/{session}/tags/{tag})
	RemoveTag(w http.ResponseWriter, r *http.Request, session SessionID, tag TagName)
	// Commit a choice
	// (POST /sessions/{session}/commit)
	Commit(w http.ResponseWriter, r *http.Request, session SessionID)
	// Tag vocabulary of a session
	// (GET /sessions/{session}/vocabulary)
	GetVocabulary(w http.ResponseWriter, r *http.Request, session SessionID, params GetVocabularyParams)
	// Tags close to a misspelled tag
	// (GET /sessions/{session}/suggestions)
	GetSuggestions(w http.ResponseWriter, r *http.Request, session SessionID, params GetSuggestionsParams)
	// Health check
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Prometheus metrics
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// MiddlewareFunc wraps a single handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper binds request parameters and calls the ServerInterface.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

// StartSession operation middleware
func (siw *ServerInterfaceWrapper) StartSession(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.StartSession(w, r)
	})
}

// GetSession operation middleware
func (siw *ServerInterfaceWrapper) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := siw.bindSession(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetSession(w, r, session)
	})
}

// AbandonSession operation middleware
func (siw *ServerInterfaceWrapper) AbandonSession(w http.ResponseWriter, r *http.Request) {
	session, ok := siw.bindSession(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.AbandonSession(w, r, session)
	})
}

// AddTag operation middleware
func (siw *ServerInterfaceWrapper) AddTag(w http.ResponseWriter, r *http.Request) {
	session, ok := siw.bindSession(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.AddTag(w, r, session)
	})
}

// ClearTags operation middleware
func (siw *ServerInterfaceWrapper) ClearTags(w http.ResponseWriter, r *http.Request) {
	session, ok := siw.bindSession(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ClearTags(w, r, session)
	})
}

// RemoveTag operation middleware
func (siw *ServerInterfaceWrapper) RemoveTag(w http.ResponseWriter, r *http.Request) {
	session, ok := siw.bindSession(w, r)
	if !ok {
		return
	}

	var tag TagName
	err := runtime.BindStyledParameterWithOptions("simple", "tag", chi.URLParam(r, "tag"), &tag,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "tag", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.RemoveTag(w, r, session, tag)
	})
}

// Commit operation middleware
func (siw *ServerInterfaceWrapper) Commit(w http.ResponseWriter, r *http.Request) {
	session, ok := siw.bindSession(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.Commit(w, r, session)
	})
}

// GetVocabulary operation middleware
func (siw *ServerInterfaceWrapper) GetVocabulary(w http.ResponseWriter, r *http.Request) {
	session, ok := siw.bindSession(w, r)
	if !ok {
		return
	}

	var params GetVocabularyParams
	err := runtime.BindQueryParameter("form", true, false, "prefix", r.URL.Query(), &params.Prefix)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "prefix", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetVocabulary(w, r, session, params)
	})
}

// GetSuggestions operation middleware
func (siw *ServerInterfaceWrapper) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	session, ok := siw.bindSession(w, r)
	if !ok {
		return
	}

	var params GetSuggestionsParams
	if paramValue := r.URL.Query().Get("tag"); paramValue == "" {
		siw.ErrorHandlerFunc(w, r, &RequiredParamError{ParamName: "tag"})
		return
	}
	err := runtime.BindQueryParameter("form", true, true, "tag", r.URL.Query(), &params.Tag)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "tag", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetSuggestions(w, r, session, params)
	})
}

// HealthCheck operation middleware
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.HealthCheck)
}

// Metrics operation middleware
func (siw *ServerInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.Metrics)
}

func (siw *ServerInterfaceWrapper) bindSession(w http.ResponseWriter, r *http.Request) (SessionID, bool) {
	var session SessionID
	err := runtime.BindStyledParameterWithOptions("simple", "session", chi.URLParam(r, "session"), &session,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "session", Err: err})
		return "", false
	}
	return session, true
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	handler := http.Handler(fn)
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

// RequiredParamError reports a missing required parameter.
type RequiredParamError struct {
	ParamName string
}

func (e *RequiredParamError) Error() string {
	return fmt.Sprintf("Query argument %s is required, but not found", e.ParamName)
}

// InvalidParamFormatError reports a parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// EscapedPath makes chi route on the escaped path. Without a RawPath chi
// matches the decoded Path, and a tag like "50%" would be unescaped twice.
func EscapedPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawPath == "" {
			u := *r.URL
			u.RawPath = u.EscapedPath()
			r2 := *r
			r2.URL = &u
			r = &r2
		}
		next.ServeHTTP(w, r)
	})
}

// Handler creates http.Handler with routing matching the API.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	// Path parameters are unescaped once, at binding.
	r.Use(EscapedPath)

	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	base := options.BaseURL
	r.Group(func(r chi.Router) {
		r.Post(base+"/sessions", wrapper.StartSession)
		r.Get(base+"/sessions/{session}", wrapper.GetSession)
		r.Delete(base+"/sessions/{session}", wrapper.AbandonSession)
		r.Post(base+"/sessions/{session}/tags", wrapper.AddTag)
		r.Delete(base+"/sessions/{session}/tags", wrapper.ClearTags)
		r.Delete(base+"/sessions/{session}/tags/{tag}", wrapper.RemoveTag)
		r.Post(base+"/sessions/{session}/commit", wrapper.Commit)
		r.Get(base+"/sessions/{session}/vocabulary", wrapper.GetVocabulary)
		r.Get(base+"/sessions/{session}/suggestions", wrapper.GetSuggestions)
		r.Get(base+"/health", wrapper.HealthCheck)
		r.Get(base+"/metrics", wrapper.Metrics)
	})
	return r
}
