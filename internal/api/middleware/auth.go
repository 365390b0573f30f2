package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cloo-solutions/storelens/internal/api"
)

type contextKey string

const WorkspaceIDKey contextKey = "workspace_id"

// AuthValidator resolves a bearer token to its workspace ID.
type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (string, error)
}

var (
	errMissingAuth = errors.New("missing authorization header")
	errBadScheme   = errors.New("invalid authorization format")
)

// bearerToken extracts the credentials of an "Authorization: Bearer" header.
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingAuth
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errBadScheme
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", errBadScheme
	}
	return token, nil
}

// APIKeyAuth admits requests carrying a valid workspace API key. Unknown and
// revoked keys get 401; a failing key store is answered like any other
// internal error.
func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="storelens"`)
				api.Error(w, http.StatusUnauthorized, err.Error())
				return
			}

			workspaceID, err := validator.ValidateAPIKey(r.Context(), token)
			if err != nil {
				if api.DomainErrorToHTTP(err) == http.StatusUnauthorized {
					w.Header().Set("WWW-Authenticate", `Bearer realm="storelens", error="invalid_token"`)
				}
				api.HandleError(w, err)
				return
			}

			setRequestWorkspace(r.Context(), workspaceID)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), WorkspaceIDKey, workspaceID)))
		})
	}
}

// GetWorkspaceID returns the workspace resolved from the API key.
func GetWorkspaceID(ctx context.Context) string {
	workspaceID, _ := ctx.Value(WorkspaceIDKey).(string)
	return workspaceID
}
