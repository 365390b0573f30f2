package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxRequestIDLength = 128

// requestInfo is shared by every middleware of one request. It is created by
// RequestID, filled in by APIKeyAuth once the workspace is known, and read
// back by the outer AccessLog and Tracing after the handler ran.
type requestInfo struct {
	id          string
	workspaceID string
}

const requestInfoKey contextKey = "request_info"

// RequestID injects a request ID into context and response headers. A
// client-supplied X-Request-ID is kept only when it is short and made of
// log-safe characters.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestInfoKey, &requestInfo{id: requestID})
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID from context.
func GetRequestID(ctx context.Context) string {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		return info.id
	}
	return ""
}

func setRequestWorkspace(ctx context.Context, workspaceID string) {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		info.workspaceID = workspaceID
	}
}

func requestWorkspace(ctx context.Context) string {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		return info.workspaceID
	}
	return ""
}

// routeName is "METHOD /pattern" once chi has matched a route, e.g.
// "GET /snapshots/{id}", and falls back to the raw path.
func routeName(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return r.Method + " " + pattern
		}
	}
	return r.Method + " " + r.URL.Path
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}
