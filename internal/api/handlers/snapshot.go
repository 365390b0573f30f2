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

type SnapshotService interface {
	Create(ctx context.Context, input service.CreateSnapshotInput) (*domain.Snapshot, error)
	Get(ctx context.Context, workspaceID, id string) (*domain.Snapshot, error)
	List(ctx context.Context, input service.ListSnapshotsInput) (*service.ListSnapshotsOutput, error)
	Delete(ctx context.Context, workspaceID, id string) error
}

type SnapshotHandler struct {
	svc SnapshotService
}

func NewSnapshotHandler(svc SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{svc: svc}
}

type CreateSnapshotRequest struct {
	Name      string          `json:"name"`
	SourceURL string          `json:"source_url,omitempty"`
	Records   []RecordRequest `json:"records"`
}

type SnapshotResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	SourceURL   string           `json:"source_url,omitempty"`
	RecordCount int              `json:"record_count"`
	Records     []RecordResponse `json:"records,omitempty"`
	CreatedAt   string           `json:"created_at"`
}

type SnapshotListResponse struct {
	Items   []*SnapshotResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

func snapshotToResponse(s *domain.Snapshot, withRecords bool) *SnapshotResponse {
	resp := &SnapshotResponse{
		ID:          s.ID,
		Name:        s.Name,
		SourceURL:   s.SourceURL,
		RecordCount: s.RecordCount,
		CreatedAt:   formatTime(s.CreatedAt),
	}
	if withRecords {
		resp.Records = make([]RecordResponse, len(s.Records))
		for i, r := range s.Records {
			resp.Records[i] = recordToResponse(r)
		}
	}
	return resp
}

func (h *SnapshotHandler) Create(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateSnapshotRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	records, err := toRecords(req.Records)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	snapshot, err := h.svc.Create(r.Context(), service.CreateSnapshotInput{
		WorkspaceID: workspaceID,
		Name:        req.Name,
		SourceURL:   req.SourceURL,
		Records:     records,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, snapshotToResponse(snapshot, false))
}

func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	snapshot, err := h.svc.Get(r.Context(), workspaceID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, snapshotToResponse(snapshot, true))
}

func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	output, err := h.svc.List(r.Context(), service.ListSnapshotsInput{
		WorkspaceID: workspaceID,
		Cursor:      r.URL.Query().Get("cursor"),
		Limit:       pageLimit(r),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*SnapshotResponse, len(output.Items))
	for i, s := range output.Items {
		items[i] = snapshotToResponse(s, false)
	}

	api.Success(w, http.StatusOK, SnapshotListResponse{
		Items:   items,
		Cursor:  output.Cursor,
		HasMore: output.HasMore,
	})
}

func (h *SnapshotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), workspaceID, id); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
