// Package api defines the HTTP contract of the tagfind service: wire types,
// the ServerInterface implemented by the transport and its chi router.
package api

import "time"

// SessionID is the session path parameter.
type SessionID = string

// TagName is the tag path parameter.
type TagName = string

// ErrorResponseCode is a machine readable error code.
type ErrorResponseCode string

// Defines values for ErrorResponseCode.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeInvalidTag       ErrorResponseCode = "invalid_tag"
	ErrorResponseCodeTooManyTags      ErrorResponseCode = "too_many_tags"
	ErrorResponseCodeSessionNotFound  ErrorResponseCode = "session_not_found"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SessionState is the selection state of a session.
type SessionState string

// Defines values for SessionState.
const (
	SessionStateIdle      SessionState = "idle"
	SessionStateFiltering SessionState = "filtering"
	SessionStateResolved  SessionState = "resolved"
)

// CandidateInput is one candidate of a StartSessionRequest.
type CandidateInput struct {
	Ref  *string  `json:"ref,omitempty"`
	Name *string  `json:"name,omitempty"`
	Tags []string `json:"tags"`
}

// StartSessionRequest is the body of POST /sessions.
type StartSessionRequest struct {
	Candidates    []CandidateInput `json:"candidates"`
	OverrideNames *[]string        `json:"override_names,omitempty"`
}

// AddTagRequest is the body of POST /sessions/{session}/tags.
type AddTagRequest struct {
	Tag string `json:"tag"`
}

// CommitRequest is the body of POST /sessions/{session}/commit.
// A missing index commits the first visible candidate.
type CommitRequest struct {
	Index *int `json:"index,omitempty"`
}

// CandidateView is one row of a session view.
type CandidateView struct {
	Index   int    `json:"index"`
	Ref     string `json:"ref"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

// Choice is the resolved candidate.
type Choice struct {
	Index int    `json:"index"`
	Ref   string `json:"ref"`
	Name  string `json:"name"`
}

// SessionView is the state a presentation layer renders.
type SessionView struct {
	Id           string          `json:"id"` //nolint:revive // matches the wire name
	State        SessionState    `json:"state"`
	RequiredTags []string        `json:"required_tags"`
	Candidates   []CandidateView `json:"candidates"`
	VisibleCount int             `json:"visible_count"`
	CanCommit    bool            `json:"can_commit"`
	Choice       *Choice         `json:"choice"`
	Revision     int             `json:"revision"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CommitResponse is a session view plus the commit outcome.
type CommitResponse struct {
	SessionView
	Committed bool    `json:"committed"`
	Reason    *string `json:"reason,omitempty"`
}

// VocabularyEntry is a tag with its occurrence count.
type VocabularyEntry struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// VocabularyResponse lists the tags of a session.
type VocabularyResponse struct {
	Items []VocabularyEntry `json:"items"`
	Total int               `json:"total"`
}

// Suggestion is a vocabulary tag close to the requested one.
type Suggestion struct {
	Tag      string `json:"tag"`
	Count    int    `json:"count"`
	Distance int    `json:"distance"`
}

// SuggestionListResponse lists suggestions, closest first.
type SuggestionListResponse struct {
	Items []Suggestion `json:"items"`
}

// GetVocabularyParams defines parameters for GetVocabulary.
type GetVocabularyParams struct {
	Prefix *string `form:"prefix,omitempty" json:"prefix,omitempty"`
}

// GetSuggestionsParams defines parameters for GetSuggestions.
type GetSuggestionsParams struct {
	Tag string `form:"tag" json:"tag"`
}

// HealthResponseStatus is the aggregated health status.
type HealthResponseStatus string

// HealthResponseChecks is the outcome of one component check.
type HealthResponseChecks string

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status HealthResponseStatus            `json:"status"`
	Checks map[string]HealthResponseChecks `json:"checks"`
}
