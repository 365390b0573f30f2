package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/storelens/internal/api"
	"github.com/cloo-solutions/storelens/internal/api/middleware"
	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/scanner"
)

type SnapshotGetter interface {
	Get(ctx context.Context, workspaceID, id string) (*domain.Snapshot, error)
}

type ScanHandler struct {
	snapshots SnapshotGetter
}

func NewScanHandler(snapshots SnapshotGetter) *ScanHandler {
	return &ScanHandler{snapshots: snapshots}
}

// ScanRequest scans either free text or every value of a snapshot
type ScanRequest struct {
	Text       string `json:"text,omitempty"`
	SnapshotID string `json:"snapshot_id,omitempty"`
}

func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ScanRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	var contacts scanner.Contacts
	switch {
	case req.SnapshotID != "":
		snapshot, err := h.snapshots.Get(r.Context(), workspaceID, req.SnapshotID)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		contacts = scanner.ScanRecords(snapshot.Records)
	case req.Text != "":
		contacts = scanner.ScanContacts(req.Text)
	default:
		api.Error(w, http.StatusBadRequest, "text or snapshot_id is required")
		return
	}

	api.Success(w, http.StatusOK, contacts)
}
