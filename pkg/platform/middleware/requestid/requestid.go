// Package requestid tags every request with an ID so log lines from the
// lookup pipeline can be correlated.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"dossier/pkg/requestcontext"
)

// Header is the canonical request ID header, honored when the caller
// supplies one and echoed on every response.
const Header = "X-Request-ID"

// Middleware reuses an incoming request ID or mints a fresh UUID, storing it
// in the context and the response header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
