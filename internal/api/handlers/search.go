package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/storelens/internal/api"
	"github.com/cloo-solutions/storelens/internal/api/middleware"
	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/search"
	"github.com/cloo-solutions/storelens/internal/service"
)

type SearchService interface {
	Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error)
	Stats(ctx context.Context, input service.SearchInput) (domain.SearchStats, error)
	Suggest(ctx context.Context, input service.SuggestInput) ([]string, error)
	Validate(pattern string) search.PatternValidation
	History(ctx context.Context, workspaceID string) ([]*domain.HistoryEntry, error)
	ClearHistory(ctx context.Context, workspaceID string) error
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// SearchRequest targets either a stored snapshot or inline records
type SearchRequest struct {
	SnapshotID string          `json:"snapshot_id,omitempty"`
	Records    []RecordRequest `json:"records,omitempty"`
	Filter     FilterRequest   `json:"filter"`
	SortBy     string          `json:"sort_by,omitempty"`
	SortOrder  string          `json:"sort_order,omitempty"`
	Limit      int             `json:"limit,omitempty"`
}

// StatsRequest aggregates results the client already holds, or runs a search
// like SearchRequest when results is absent.
type StatsRequest struct {
	SearchRequest
	Results []ResultResponse `json:"results"`
}

type SearchResponse struct {
	SearchID string           `json:"search_id,omitempty"`
	Results  []ResultResponse `json:"results"`
	Total    int              `json:"total"`
}

type ValidateRequest struct {
	Pattern string `json:"pattern"`
}

type ValidateResponse struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
}

type SuggestRequest struct {
	SnapshotID string          `json:"snapshot_id,omitempty"`
	Records    []RecordRequest `json:"records,omitempty"`
	Query      string          `json:"query"`
}

type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

type HistoryEntryResponse struct {
	Text   string `json:"text"`
	UsedAt string `json:"used_at"`
}

type HistoryResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
}

func (req SearchRequest) toInput(workspaceID string) (service.SearchInput, error) {
	records, err := toRecords(req.Records)
	if err != nil {
		return service.SearchInput{}, err
	}
	return service.SearchInput{
		WorkspaceID: workspaceID,
		SnapshotID:  req.SnapshotID,
		Records:     records,
		Filter:      req.Filter.toDomain(),
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
		Limit:       req.Limit,
	}, nil
}

func (h *SearchHandler) decodeSearch(w http.ResponseWriter, r *http.Request) (service.SearchInput, bool) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return service.SearchInput{}, false
	}

	var req SearchRequest
	if !api.DecodeJSON(w, r, &req) {
		return service.SearchInput{}, false
	}
	return searchInput(w, workspaceID, req)
}

func searchInput(w http.ResponseWriter, workspaceID string, req SearchRequest) (service.SearchInput, bool) {
	if req.Limit < 0 {
		api.Error(w, http.StatusBadRequest, "limit cannot be negative")
		return service.SearchInput{}, false
	}

	input, err := req.toInput(workspaceID)
	if err != nil {
		api.HandleError(w, err)
		return service.SearchInput{}, false
	}
	return input, true
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeSearch(w, r)
	if !ok {
		return
	}

	output, err := h.svc.Search(r.Context(), input)
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

func (h *SearchHandler) Stats(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req StatsRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	if req.Results != nil {
		results, err := resultsFromResponse(req.Results)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		api.Success(w, http.StatusOK, search.Stats(results))
		return
	}

	input, ok := searchInput(w, workspaceID, req.SearchRequest)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, stats)
}

func (h *SearchHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	result := h.svc.Validate(req.Pattern)
	api.Success(w, http.StatusOK, ValidateResponse{IsValid: result.Valid, Error: result.Message})
}

func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SuggestRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	records, err := toRecords(req.Records)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	suggestions, err := h.svc.Suggest(r.Context(), service.SuggestInput{
		WorkspaceID: workspaceID,
		SnapshotID:  req.SnapshotID,
		Records:     records,
		Partial:     req.Query,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SuggestResponse{Suggestions: suggestions})
}

func (h *SearchHandler) History(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entries, err := h.svc.History(r.Context(), workspaceID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := HistoryResponse{Entries: make([]HistoryEntryResponse, len(entries))}
	for i, e := range entries {
		resp.Entries[i] = HistoryEntryResponse{Text: e.Text, UsedAt: formatTime(e.UsedAt)}
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *SearchHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.svc.ClearHistory(r.Context(), workspaceID); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
