package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/cloo-solutions/storelens/internal/api"
	"github.com/cloo-solutions/storelens/internal/api/middleware"
	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/go-chi/chi/v5"
)

type AuthService interface {
	CreateWorkspace(ctx context.Context, name string) (*domain.Workspace, error)
	CreateAPIKey(ctx context.Context, workspaceID, name string) (string, error)
	ListAPIKeys(ctx context.Context, workspaceID string) ([]*domain.APIKey, error)
	RevokeWorkspaceAPIKey(ctx context.Context, workspaceID, keyID string) error
}

// AuthHandler serves workspace bootstrap and API key management.
// Creation is public; listing and revoking act on the caller's workspace.
type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type CreateWorkspaceRequest struct {
	Name string `json:"name"`
}

type WorkspaceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type CreateAPIKeyRequest struct {
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
}

// APIKeyResponse carries the plaintext token, returned only at creation.
type APIKeyResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

type APIKeySummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	RevokedAt string `json:"revoked_at,omitempty"`
}

func apiKeyToSummary(k *domain.APIKey) APIKeySummary {
	summary := APIKeySummary{
		ID:        k.ID,
		Name:      k.Name,
		CreatedAt: formatTime(k.CreatedAt),
	}
	if k.RevokedAt != nil {
		summary.RevokedAt = formatTime(*k.RevokedAt)
	}
	return summary
}

func (h *AuthHandler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkspaceRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	ws, err := h.svc.CreateWorkspace(r.Context(), name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, WorkspaceResponse{
		ID:        ws.ID,
		Name:      ws.Name,
		CreatedAt: formatTime(ws.CreatedAt),
	})
}

func (h *AuthHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req CreateAPIKeyRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	switch {
	case req.WorkspaceID == "":
		api.Error(w, http.StatusBadRequest, "workspace_id is required")
		return
	case name == "":
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	token, err := h.svc.CreateAPIKey(r.Context(), req.WorkspaceID, name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, APIKeyResponse{
		Token: token,
		Name:  name,
	})
}

// ListAPIKeys returns the caller's keys, revoked ones included. Hashes never
// leave the server.
func (h *AuthHandler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	keys, err := h.svc.ListAPIKeys(r.Context(), workspaceID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]APIKeySummary, len(keys))
	for i, k := range keys {
		items[i] = apiKeyToSummary(k)
	}

	api.Success(w, http.StatusOK, items)
}

func (h *AuthHandler) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.svc.RevokeWorkspaceAPIKey(r.Context(), workspaceID, chi.URLParam(r, "id")); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
