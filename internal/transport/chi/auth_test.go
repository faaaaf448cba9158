package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/tagfind/internal/transport/api"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func authRequest(handler http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, http.NoBody)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestBearerAuth_DisabledWithoutKeys(t *testing.T) {
	for name, keys := range map[string][]string{"nil": nil, "blank": {"", ""}} {
		t.Run(name, func(t *testing.T) {
			handler := BearerAuthMiddleware(keys)(okHandler())
			if rr := authRequest(handler, "/sessions/s1", ""); rr.Code != http.StatusOK {
				t.Errorf("got %d, want %d", rr.Code, http.StatusOK)
			}
		})
	}
}

func TestBearerAuth_Rejections(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"secret"})(okHandler())

	tests := []struct {
		name          string
		authorization string
		message       string
	}{
		{"missing header", "", "missing authorization header"},
		{"basic scheme", "Basic dXNlcjpwYXNz", "authorization header must use Bearer scheme"},
		{"scheme only", "Bearer", "authorization header must use Bearer scheme"},
		{"blank token", "Bearer   ", "empty bearer token"},
		{"wrong key", "Bearer wrong-key", "invalid api key"},
		{"key prefix", "Bearer secre", "invalid api key"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := authRequest(handler, "/sessions/s1", tc.authorization)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("got %d, want %d", rr.Code, http.StatusUnauthorized)
			}
			if got := rr.Header().Get("WWW-Authenticate"); got != `Bearer realm="tagfind"` {
				t.Errorf("WWW-Authenticate: got %q", got)
			}

			var errResp api.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != api.ErrorResponseCodeUnauthorized {
				t.Errorf("error code: got %s, want %s", errResp.Code, api.ErrorResponseCodeUnauthorized)
			}
			if errResp.Message != tc.message {
				t.Errorf("message: got %q, want %q", errResp.Message, tc.message)
			}
		})
	}
}

func TestBearerAuth_AcceptsAnyConfiguredKey(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"key1", "key2"})(okHandler())

	for _, authorization := range []string{"Bearer key1", "Bearer key2", "bearer key1", "Bearer  key2 "} {
		if rr := authRequest(handler, "/sessions/s1", authorization); rr.Code != http.StatusOK {
			t.Errorf("%q: got %d, want %d", authorization, rr.Code, http.StatusOK)
		}
	}
}

func TestBearerAuth_PublicPaths(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"secret"}, PublicPaths...)(okHandler())

	for _, path := range PublicPaths {
		if rr := authRequest(handler, path, ""); rr.Code != http.StatusOK {
			t.Errorf("public path %s: got %d, want %d", path, rr.Code, http.StatusOK)
		}
	}
	if rr := authRequest(handler, "/sessions/s1", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("private path: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestBearerAuth_NoPublicPathsByDefault(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"secret"})(okHandler())

	if rr := authRequest(handler, "/health", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
