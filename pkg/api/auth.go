package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/reelworks/reelit/pkg/httputil"
	"github.com/reelworks/reelit/pkg/observability"
)

// RequireBearerToken guards a route group with a static admin token. The
// comparison is constant time so the token cannot be probed byte by byte.
func RequireBearerToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				httputil.WriteUnauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httputil.WriteUnauthorized(w, "invalid authorization header format")
				return
			}

			if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
				observability.FromContext(r.Context()).Warn("rejected admin request with bad token")
				httputil.WriteUnauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
