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

type ExportService interface {
	Request(ctx context.Context, input service.RequestExportInput) (*domain.ExportJob, error)
	Get(ctx context.Context, workspaceID, id string) (*domain.ExportJob, error)
	DownloadURL(ctx context.Context, workspaceID, id string) (*service.Download, error)
}

type ExportHandler struct {
	svc ExportService
}

func NewExportHandler(svc ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

type RequestExportRequest struct {
	SnapshotID string        `json:"snapshot_id"`
	Filter     FilterRequest `json:"filter"`
	Format     string        `json:"format"`
}

type ExportJobResponse struct {
	ID          string  `json:"id"`
	SnapshotID  string  `json:"snapshot_id"`
	Format      string  `json:"format"`
	Status      string  `json:"status"`
	Error       string  `json:"error,omitempty"`
	ResultCount int     `json:"result_count"`
	CreatedAt   string  `json:"created_at"`
	ProcessedAt *string `json:"processed_at,omitempty"`
}

type DownloadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

func exportJobToResponse(j *domain.ExportJob) *ExportJobResponse {
	resp := &ExportJobResponse{
		ID:          j.ID,
		SnapshotID:  j.SnapshotID,
		Format:      string(j.Format),
		Status:      string(j.Status),
		Error:       j.Error,
		ResultCount: j.ResultCount,
		CreatedAt:   formatTime(j.CreatedAt),
	}
	if j.ProcessedAt != nil {
		processed := formatTime(*j.ProcessedAt)
		resp.ProcessedAt = &processed
	}
	return resp
}

func (h *ExportHandler) Request(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req RequestExportRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	if req.SnapshotID == "" {
		api.Error(w, http.StatusBadRequest, "snapshot_id is required")
		return
	}
	if req.Format == "" {
		req.Format = string(domain.ExportFormatJSON)
	}

	job, err := h.svc.Request(r.Context(), service.RequestExportInput{
		WorkspaceID: workspaceID,
		SnapshotID:  req.SnapshotID,
		Filter:      req.Filter.toDomain(),
		Format:      req.Format,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, exportJobToResponse(job))
}

func (h *ExportHandler) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	job, err := h.svc.Get(r.Context(), workspaceID, chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, exportJobToResponse(job))
}

func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	download, err := h.svc.DownloadURL(r.Context(), workspaceID, chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DownloadResponse{URL: download.URL, Filename: download.Filename})
}
