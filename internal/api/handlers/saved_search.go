package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/storelens/internal/api"
	"github.com/cloo-solutions/storelens/internal/api/middleware"
	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/service"
	"github.com/go-chi/chi/v5"
)

type SavedSearchService interface {
	Save(ctx context.Context, input service.SaveSearchInput) (*domain.SavedSearch, error)
	Get(ctx context.Context, workspaceID, name string) (*domain.SavedSearch, error)
	List(ctx context.Context, input service.ListSavedSearchesInput) (*service.ListSavedSearchesOutput, error)
	Delete(ctx context.Context, workspaceID, name string) error
	Run(ctx context.Context, input service.RunSavedSearchInput) (*service.SearchOutput, error)
}

type SavedSearchHandler struct {
	svc SavedSearchService
}

func NewSavedSearchHandler(svc SavedSearchService) *SavedSearchHandler {
	return &SavedSearchHandler{svc: svc}
}

type SaveSearchRequest struct {
	Name   string        `json:"name"`
	Filter FilterRequest `json:"filter"`
}

type SavedSearchResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Filter    FilterRequest `json:"filter"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

type SavedSearchListResponse struct {
	Items   []*SavedSearchResponse `json:"items"`
	Cursor  string                 `json:"cursor,omitempty"`
	HasMore bool                   `json:"has_more"`
}

// RunSavedSearchRequest supplies the records a saved filter is applied to
type RunSavedSearchRequest struct {
	SnapshotID string          `json:"snapshot_id,omitempty"`
	Records    []RecordRequest `json:"records,omitempty"`
	SortBy     string          `json:"sort_by,omitempty"`
	SortOrder  string          `json:"sort_order,omitempty"`
	Limit      int             `json:"limit,omitempty"`
}

func savedSearchToResponse(s *domain.SavedSearch) *SavedSearchResponse {
	return &SavedSearchResponse{
		ID:        s.ID,
		Name:      s.Name,
		Filter:    filterToResponse(s.Filter),
		CreatedAt: formatTime(s.CreatedAt),
		UpdatedAt: formatTime(s.UpdatedAt),
	}
}

func (h *SavedSearchHandler) Save(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SaveSearchRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	saved, err := h.svc.Save(r.Context(), service.SaveSearchInput{
		WorkspaceID: workspaceID,
		Name:        req.Name,
		Filter:      req.Filter.toDomain(),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, savedSearchToResponse(saved))
}

func (h *SavedSearchHandler) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	saved, err := h.svc.Get(r.Context(), workspaceID, chi.URLParam(r, "name"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, savedSearchToResponse(saved))
}

func (h *SavedSearchHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	output, err := h.svc.List(r.Context(), service.ListSavedSearchesInput{
		WorkspaceID: workspaceID,
		Cursor:      r.URL.Query().Get("cursor"),
		Limit:       pageLimit(r),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*SavedSearchResponse, len(output.Items))
	for i, s := range output.Items {
		items[i] = savedSearchToResponse(s)
	}

	api.Success(w, http.StatusOK, SavedSearchListResponse{
		Items:   items,
		Cursor:  output.Cursor,
		HasMore: output.HasMore,
	})
}

func (h *SavedSearchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.svc.Delete(r.Context(), workspaceID, chi.URLParam(r, "name")); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SavedSearchHandler) Run(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req RunSavedSearchRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	records, err := toRecords(req.Records)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	output, err := h.svc.Run(r.Context(), service.RunSavedSearchInput{
		WorkspaceID: workspaceID,
		Name:        chi.URLParam(r, "name"),
		SnapshotID:  req.SnapshotID,
		Records:     records,
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
		Limit:       req.Limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SearchResponse{
		SearchID: output.SearchID,
		Results:  resultsToResponse(output.Results),
		Total:    output.Total,
	})
}
