package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tagfind/internal/domain"
	domsession "github.com/kailas-cloud/tagfind/internal/domain/session"
	"github.com/kailas-cloud/tagfind/internal/transport/api"
	healthuc "github.com/kailas-cloud/tagfind/internal/usecase/health"
	sessionuc "github.com/kailas-cloud/tagfind/internal/usecase/session"
)

// maxBodyBytes bounds request bodies; a full candidate list is the largest.
const maxBodyBytes = 8 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements api.ServerInterface.
type Server struct {
	sessions      *sessionuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ api.ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(sessions *sessionuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		sessions: sessions,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, api.ErrorResponseCodeSessionNotFound),
		sentinelHandler(domain.ErrInvalidCandidates, http.StatusBadRequest, api.ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidTag, http.StatusBadRequest, api.ErrorResponseCodeInvalidTag),
		sentinelHandler(domain.ErrTooManyTags, http.StatusUnprocessableEntity, api.ErrorResponseCodeTooManyTags),
	}
	return s
}

// StartSession handles POST /sessions.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var req api.StartSessionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	items := make([]sessionuc.CandidateInput, len(req.Candidates))
	for i, c := range req.Candidates {
		items[i] = sessionuc.CandidateInput{Ref: deref(c.Ref), Name: deref(c.Name), Tags: c.Tags}
	}
	var overrideNames []string
	if req.OverrideNames != nil {
		overrideNames = *req.OverrideNames
	}

	sess, err := s.sessions.Start(r.Context(), items, overrideNames)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/sessions/"+sess.ID())
	writeSession(w, http.StatusCreated, sess)
}

// GetSession handles GET /sessions/{session}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, session api.SessionID) {
	sess, err := s.sessions.Get(r.Context(), session)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSession(w, http.StatusOK, sess)
}

// AbandonSession handles DELETE /sessions/{session}.
func (s *Server) AbandonSession(w http.ResponseWriter, r *http.Request, session api.SessionID) {
	if err := s.sessions.Abandon(r.Context(), session); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTag handles POST /sessions/{session}/tags.
func (s *Server) AddTag(w http.ResponseWriter, r *http.Request, session api.SessionID) {
	var req api.AddTagRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sess, err := s.sessions.AddTag(r.Context(), session, req.Tag)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSession(w, http.StatusOK, sess)
}

// RemoveTag handles DELETE /sessions/{session}/tags/{tag}.
func (s *Server) RemoveTag(w http.ResponseWriter, r *http.Request, session api.SessionID, tag api.TagName) {
	sess, err := s.sessions.RemoveTag(r.Context(), session, tag)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSession(w, http.StatusOK, sess)
}

// ClearTags handles DELETE /sessions/{session}/tags.
func (s *Server) ClearTags(w http.ResponseWriter, r *http.Request, session api.SessionID) {
	sess, err := s.sessions.ClearTags(r.Context(), session)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSession(w, http.StatusOK, sess)
}

// Commit handles POST /sessions/{session}/commit. An empty body or a body
// without index commits the first visible candidate.
func (s *Server) Commit(w http.ResponseWriter, r *http.Request, session api.SessionID) {
	var req api.CommitRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var (
		res sessionuc.CommitResult
		err error
	)
	if req.Index != nil {
		res, err = s.sessions.CommitExplicit(r.Context(), session, *req.Index)
	} else {
		res, err = s.sessions.CommitFirstVisible(r.Context(), session)
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := api.CommitResponse{
		SessionView: sessionToAPI(res.Session),
		Committed:   res.Committed,
	}
	if res.Reason != nil {
		reason := safeDomainMessage(res.Reason)
		resp.Reason = &reason
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetVocabulary handles GET /sessions/{session}/vocabulary.
func (s *Server) GetVocabulary(
	w http.ResponseWriter, r *http.Request, session api.SessionID, params api.GetVocabularyParams,
) {
	entries, err := s.sessions.Vocabulary(r.Context(), session, deref(params.Prefix))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]api.VocabularyEntry, len(entries))
	for i, e := range entries {
		items[i] = api.VocabularyEntry{Tag: e.Tag, Count: e.Count}
	}
	writeJSON(w, http.StatusOK, api.VocabularyResponse{Items: items, Total: len(items)})
}

// GetSuggestions handles GET /sessions/{session}/suggestions.
func (s *Server) GetSuggestions(
	w http.ResponseWriter, r *http.Request, session api.SessionID, params api.GetSuggestionsParams,
) {
	sugg, err := s.sessions.Suggest(r.Context(), session, params.Tag)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]api.Suggestion, len(sugg))
	for i, sg := range sugg {
		items[i] = api.Suggestion{Tag: sg.Tag, Count: sg.Count, Distance: sg.Distance}
	}
	writeJSON(w, http.StatusOK, api.SuggestionListResponse{Items: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]api.HealthResponseChecks)
	for k, v := range report.Checks {
		checks[k] = api.HealthResponseChecks(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, api.HealthResponse{
		Status: api.HealthResponseStatus(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ParamErrorHandler renders binding failures of the api router.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v) //nolint:wrapcheck // reported to the client as is
}

func writeSession(w http.ResponseWriter, status int, sess *domsession.Session) {
	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(sess.Revision())))
	writeJSON(w, status, sessionToAPI(sess))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code api.ErrorResponseCode, message string) {
	writeJSON(w, status, api.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrInvalidIndex,
		domain.ErrCandidateHidden,
		domain.ErrNoVisibleCandidates,
		domain.ErrInvalidCandidates,
		domain.ErrInvalidTag,
		domain.ErrTooManyTags,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code api.ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, api.ErrorResponseCodeInternalError, "internal error")
}

func sessionToAPI(sess *domsession.Session) api.SessionView {
	vis := sess.Visibility()
	cands := make([]api.CandidateView, sess.Len())
	for i := range cands {
		c := sess.At(i)
		cands[i] = api.CandidateView{Index: i, Ref: c.Ref(), Name: c.Name(), Visible: vis.Visible(i)}
	}

	var choice *api.Choice
	if ch := sess.Choice(); !ch.IsNone() {
		choice = &api.Choice{Index: ch.Index(), Ref: ch.Ref(), Name: sess.At(ch.Index()).Name()}
	}

	required := sess.RequiredTags()
	if required == nil {
		required = []string{}
	}

	return api.SessionView{
		Id:           sess.ID(),
		State:        api.SessionState(sess.State().String()),
		RequiredTags: required,
		Candidates:   cands,
		VisibleCount: vis.Count(),
		CanCommit:    sess.CanCommit(),
		Choice:       choice,
		Revision:     sess.Revision(),
		CreatedAt:    time.Unix(sess.CreatedAt(), 0).UTC(),
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
