package middleware

import (
	"net/http"

	"github.com/cloo-solutions/storelens/internal/api"
)

// BodyLimit caps request bodies at limit bytes. A declared Content-Length over
// the limit is refused up front; chunked bodies fail when the handler decodes
// past the limit. A non-positive limit disables the check.
func BodyLimit(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > limit {
				api.TooLarge(w, limit)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
