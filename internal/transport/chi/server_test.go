package chi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tagfind/internal/domain/tagfilter"
	sessionrepo "github.com/kailas-cloud/tagfind/internal/repository/session"
	"github.com/kailas-cloud/tagfind/internal/transport/api"
	healthuc "github.com/kailas-cloud/tagfind/internal/usecase/health"
	sessionuc "github.com/kailas-cloud/tagfind/internal/usecase/session"
)

func newTestHandler(t *testing.T, policy tagfilter.EmptyPolicy) http.Handler {
	t.Helper()
	repo := sessionrepo.NewMemory(time.Minute)
	svc := sessionuc.New(repo, sessionuc.Config{
		EmptyFilter: policy,
		Limits:      sessionuc.Limits{MaxCandidates: 5, MaxRequiredTags: 3},
	})
	srv := NewServer(svc, healthuc.New(repo, "memory"), zap.NewNop())
	return api.HandlerWithOptions(srv, api.ChiServerOptions{ErrorHandlerFunc: ParamErrorHandler})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func strPtr(s string) *string { return &s }

func startOutlines(t *testing.T, h http.Handler) api.SessionView {
	t.Helper()
	rr := do(t, h, "POST", "/sessions", api.StartSessionRequest{
		Candidates: []api.CandidateInput{
			{Ref: strPtr("alpha"), Name: strPtr("Alpha"), Tags: []string{"x", "y"}},
			{Ref: strPtr("beta"), Name: strPtr("Beta"), Tags: []string{"x"}},
			{Ref: strPtr("gamma"), Name: strPtr("Gamma"), Tags: []string{"y", "z"}},
		},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("start: status %d body %s", rr.Code, rr.Body.String())
	}
	return decode[api.SessionView](t, rr)
}

func TestStartSession(t *testing.T) {
	h := newTestHandler(t, tagfilter.HideAll)
	view := startOutlines(t, h)

	if view.Id == "" || view.State != api.SessionStateIdle {
		t.Errorf("unexpected view: %+v", view)
	}
	if len(view.Candidates) != 3 || view.VisibleCount != 0 || view.CanCommit {
		t.Errorf("fresh session must hide everything: %+v", view)
	}
	if view.Choice != nil {
		t.Errorf("choice must be null, got %+v", view.Choice)
	}
	if len(view.RequiredTags) != 0 || view.RequiredTags == nil {
		t.Errorf("required_tags must be an empty list, got %v", view.RequiredTags)
	}
}

func TestStartSession_OverrideNames(t *testing.T) {
	h := newTestHandler(t, tagfilter.ShowAll)
	names := []string{"First"}
	rr := do(t, h, "POST", "/sessions", api.StartSessionRequest{
		Candidates:    []api.CandidateInput{{Name: strPtr("a")}, {Name: strPtr("b")}},
		OverrideNames: &names,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status %d", rr.Code)
	}
	view := decode[api.SessionView](t, rr)
	if view.Candidates[0].Name != "First" || view.Candidates[1].Name != "b" {
		t.Errorf("unexpected names: %+v", view.Candidates)
	}
	if view.VisibleCount != 2 || !view.CanCommit {
		t.Errorf("show_all must show every candidate: %+v", view)
	}
}

func TestStartSession_Errors(t *testing.T) {
	h := newTestHandler(t, tagfilter.HideAll)

	req := httptest.NewRequest("POST", "/sessions", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad json: status %d", rr.Code)
	}

	rr = do(t, h, "POST", "/sessions", api.StartSessionRequest{Candidates: make([]api.CandidateInput, 6)})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("too many candidates: status %d", rr.Code)
	}
	if e := decode[api.ErrorResponse](t, rr); e.Code != api.ErrorResponseCodeValidationFailed {
		t.Errorf("code = %s", e.Code)
	}
}

func TestTagsAndCommit(t *testing.T) {
	h := newTestHandler(t, tagfilter.HideAll)
	view := startOutlines(t, h)
	base := "/sessions/" + view.Id

	rr := do(t, h, "POST", base+"/tags", api.AddTagRequest{Tag: "x"})
	if rr.Code != http.StatusOK {
		t.Fatalf("add tag: status %d", rr.Code)
	}
	view = decode[api.SessionView](t, rr)
	if view.VisibleCount != 2 || view.State != api.SessionStateFiltering || !view.CanCommit {
		t.Errorf("after x: %+v", view)
	}

	rr = do(t, h, "POST", base+"/commit", api.CommitRequest{Index: intPtr(2)})
	if rr.Code != http.StatusOK {
		t.Fatalf("hidden commit: status %d", rr.Code)
	}
	cr := decode[api.CommitResponse](t, rr)
	if cr.Committed || cr.Reason == nil || *cr.Reason != "candidate is hidden" {
		t.Errorf("hidden commit must be rejected: %+v", cr)
	}

	rr = do(t, h, "POST", base+"/commit", nil)
	cr = decode[api.CommitResponse](t, rr)
	if !cr.Committed || cr.Choice == nil || cr.Choice.Ref != "alpha" || cr.State != api.SessionStateResolved {
		t.Errorf("first visible commit: %+v", cr)
	}
	if cr.CanCommit {
		t.Error("resolved session must not allow commits")
	}

	rr = do(t, h, "POST", base+"/tags", api.AddTagRequest{Tag: "z"})
	view = decode[api.SessionView](t, rr)
	if len(view.RequiredTags) != 1 || view.Choice == nil || view.Choice.Index != 0 {
		t.Errorf("resolved session must ignore edits: %+v", view)
	}
}

func TestRemoveAndClearTags(t *testing.T) {
	h := newTestHandler(t, tagfilter.HideAll)
	view := startOutlines(t, h)
	base := "/sessions/" + view.Id

	do(t, h, "POST", base+"/tags", api.AddTagRequest{Tag: "x"})
	do(t, h, "POST", base+"/tags", api.AddTagRequest{Tag: "y"})

	rr := do(t, h, "DELETE", base+"/tags/y", nil)
	view = decode[api.SessionView](t, rr)
	if view.VisibleCount != 2 {
		t.Errorf("after removing y: visible=%d", view.VisibleCount)
	}

	rr = do(t, h, "DELETE", base+"/tags", nil)
	view = decode[api.SessionView](t, rr)
	if view.VisibleCount != 0 || len(view.RequiredTags) != 0 {
		t.Errorf("after clear: %+v", view)
	}
}

func TestAddTag_Errors(t *testing.T) {
	h := newTestHandler(t, tagfilter.HideAll)
	view := startOutlines(t, h)
	base := "/sessions/" + view.Id

	rr := do(t, h, "POST", base+"/tags", api.AddTagRequest{Tag: "a\tb"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("control char tag: status %d", rr.Code)
	}
	if e := decode[api.ErrorResponse](t, rr); e.Code != api.ErrorResponseCodeInvalidTag {
		t.Errorf("code = %s", e.Code)
	}

	rr = do(t, h, "POST", base+"/tags", api.AddTagRequest{Tag: ""})
	if rr.Code != http.StatusOK {
		t.Errorf("empty tag: status %d", rr.Code)
	}
	if v := decode[api.SessionView](t, rr); len(v.RequiredTags) != 0 || v.State != api.SessionStateIdle {
		t.Errorf("empty tag must change nothing: %+v", v)
	}

	for _, tag := range []string{"a", "b", "c"} {
		do(t, h, "POST", base+"/tags", api.AddTagRequest{Tag: tag})
	}
	rr = do(t, h, "POST", base+"/tags", api.AddTagRequest{Tag: "d"})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("too many tags: status %d", rr.Code)
	}
}

func TestSessionNotFound(t *testing.T) {
	h := newTestHandler(t, tagfilter.HideAll)

	for _, tc := range []struct{ method, path string }{
		{"GET", "/sessions/nope"},
		{"DELETE", "/sessions/nope"},
		{"POST", "/sessions/nope/commit"},
		{"GET", "/sessions/nope/vocabulary"},
	} {
		rr := do(t, h, tc.method, tc.path, nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("%s %s: status %d", tc.method, tc.path, rr.Code)
			continue
		}
		if e := decode[api.ErrorResponse](t, rr); e.Code != api.ErrorResponseCodeSessionNotFound {
			t.Errorf("%s %s: code %s", tc.method, tc.path, e.Code)
		}
	}
}

func TestAbandonSession(t *testing.T) {
	h := newTestHandler(t, tagfilter.HideAll)
	view := startOutlines(t, h)

	rr := do(t, h, "DELETE", "/sessions/"+view.Id, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("abandon: status %d", rr.Code)
	}
	rr = do(t, h, "GET", "/sessions/"+view.Id, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("after abandon: status %d", rr.Code)
	}
}

func TestVocabularyAndSuggestions(t *testing.T) {
	h := newTestHandler(t, tagfilter.HideAll)
	view := startOutlines(t, h)
	base := "/sessions/" + view.Id

	rr := do(t, h, "GET", base+"/vocabulary", nil)
	voc := decode[api.VocabularyResponse](t, rr)
	if voc.Total != 3 || voc.Items[0].Tag != "x" || voc.Items[0].Count != 2 {
		t.Errorf("unexpected vocabulary: %+v", voc)
	}

	rr = do(t, h, "GET", base+"/vocabulary?prefix=Z", nil)
	voc = decode[api.VocabularyResponse](t, rr)
	if voc.Total != 1 || voc.Items[0].Tag != "z" {
		t.Errorf("prefix Z: %+v", voc)
	}

	rr = do(t, h, "GET", base+"/suggestions?tag=xy", nil)
	sugg := decode[api.SuggestionListResponse](t, rr)
	if len(sugg.Items) == 0 || sugg.Items[0].Distance != 1 {
		t.Errorf("unexpected suggestions: %+v", sugg)
	}

	rr = do(t, h, "GET", base+"/suggestions", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing tag: status %d", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandler(t, tagfilter.HideAll)
	rr := do(t, h, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("health: status %d", rr.Code)
	}
	resp := decode[api.HealthResponse](t, rr)
	if resp.Status != "ok" || resp.Checks["memory"] != "ok" {
		t.Errorf("unexpected health: %+v", resp)
	}
}

func intPtr(i int) *int { return &i }

func TestRemoveTag_PercentInTag(t *testing.T) {
	h := newTestHandler(t, tagfilter.HideAll)
	rr := do(t, h, "POST", "/sessions", api.StartSessionRequest{
		Candidates: []api.CandidateInput{
			{Name: strPtr("Escapes"), Tags: []string{"a%41", "aA", "50%"}},
		},
	})
	view := decode[api.SessionView](t, rr)
	base := "/sessions/" + view.Id

	for _, tag := range []string{"a%41", "aA", "50%"} {
		do(t, h, "POST", base+"/tags", api.AddTagRequest{Tag: tag})
	}

	rr = do(t, h, "DELETE", base+"/tags/"+url.PathEscape("a%41"), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("remove a%%41: status %d body %s", rr.Code, rr.Body.String())
	}
	view = decode[api.SessionView](t, rr)
	if !reflect.DeepEqual(view.RequiredTags, []string{"aA", "50%"}) {
		t.Errorf("after removing a%%41: %v", view.RequiredTags)
	}

	rr = do(t, h, "DELETE", base+"/tags/"+url.PathEscape("50%"), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("remove 50%%: status %d body %s", rr.Code, rr.Body.String())
	}
	view = decode[api.SessionView](t, rr)
	if !reflect.DeepEqual(view.RequiredTags, []string{"aA"}) {
		t.Errorf("after removing 50%%: %v", view.RequiredTags)
	}
}
