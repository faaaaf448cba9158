package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tagfind/internal/logger"
	"github.com/kailas-cloud/tagfind/internal/transport/api"
)

// PublicPaths are reachable without a key: probes and the scrape endpoint.
var PublicPaths = []string{"/health", "/metrics"}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens
// against apiKeys. Requests for publicPaths skip the check. An empty key
// list disables authentication.
func BearerAuthMiddleware(apiKeys []string, publicPaths ...string) func(http.Handler) http.Handler {
	keys := newKeyring(apiKeys)
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		if keys.empty() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := public[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, reason := bearerToken(r.Header.Get("Authorization"))
			if reason == "" && !keys.match(token) {
				reason = "invalid api key"
			}
			if reason != "" {
				logger.FromContext(r.Context()).Debug("Request rejected by auth",
					zap.String("path", r.URL.Path),
					zap.String("reason", reason),
				)
				unauthorized(w, reason)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token of an Authorization header. A non-empty
// reason means the header is unusable.
func bearerToken(header string) (token, reason string) {
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "authorization header must use Bearer scheme"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "empty bearer token"
	}
	return token, ""
}

// keyring holds digests of the accepted keys; lookups compare every
// digest in constant time.
type keyring struct {
	digests [][sha256.Size]byte
}

func newKeyring(apiKeys []string) keyring {
	var k keyring
	for _, key := range apiKeys {
		if key != "" {
			k.digests = append(k.digests, sha256.Sum256([]byte(key)))
		}
	}
	return k
}

func (k keyring) empty() bool { return len(k.digests) == 0 }

func (k keyring) match(token string) bool {
	d := sha256.Sum256([]byte(token))
	found := 0
	for i := range k.digests {
		found |= subtle.ConstantTimeCompare(d[:], k.digests[i][:])
	}
	return found == 1
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="tagfind"`)
	writeError(w, http.StatusUnauthorized, api.ErrorResponseCodeUnauthorized, message)
}
