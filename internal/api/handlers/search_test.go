package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/search"
	"github.com/cloo-solutions/storelens/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SearchOutput), args.Error(1)
}

func (m *MockSearchService) Stats(ctx context.Context, input service.SearchInput) (domain.SearchStats, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(domain.SearchStats), args.Error(1)
}

func (m *MockSearchService) Suggest(ctx context.Context, input service.SuggestInput) ([]string, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSearchService) Validate(pattern string) search.PatternValidation {
	args := m.Called(pattern)
	return args.Get(0).(search.PatternValidation)
}

func (m *MockSearchService) History(ctx context.Context, workspaceID string) ([]*domain.HistoryEntry, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HistoryEntry), args.Error(1)
}

func (m *MockSearchService) ClearHistory(ctx context.Context, workspaceID string) error {
	args := m.Called(ctx, workspaceID)
	return args.Error(0)
}

func TestSearchHandler_Search_Success(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	record := domain.NewStorageRecord("user_token", "abc123", domain.StoreKindLocal)
	output := &service.SearchOutput{
		SearchID: "log-1",
		Results: []domain.SearchResult{{
			Record:           record,
			MatchLocation:    domain.MatchLocationKey,
			MatchScore:       1,
			HighlightedKey:   []domain.Fragment{{Text: "user_"}, {Text: "tok", Matched: true}, {Text: "en"}},
			HighlightedValue: []domain.Fragment{{Text: "abc123"}},
			InferredType:     domain.DataTypeString,
			SizeBytes:        6,
			SizeCategory:     domain.SizeSmall,
		}},
		Total: 1,
	}
	mockSvc.On("Search", mock.Anything, mock.MatchedBy(func(input service.SearchInput) bool {
		return input.WorkspaceID == testWorkspaceID &&
			input.Filter.Text == "tok" &&
			input.Filter.MatchMode == domain.MatchModeExact &&
			input.Filter.Scope == domain.ScopeBoth &&
			len(input.Records) == 1 &&
			input.Records[0].StoreKind == domain.StoreKindLocal
	})).Return(output, nil)

	body := `{"records":[{"key":"user_token","value":"abc123","store_kind":"localStorage"}],"filter":{"text":"tok","match_mode":"exact"}}`
	req := requestWithWorkspaceID(http.MethodPost, "/search", []byte(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "log-1", data["search_id"])
	assert.Equal(t, float64(1), data["total"])
	results := data["results"].([]interface{})
	require.Len(t, results, 1)
	first := results[0].(map[string]interface{})
	assert.Equal(t, "key", first["match_type"])
	assert.Equal(t, "small", first["size_category"])
	highlighted := first["highlighted_key"].([]interface{})
	assert.Len(t, highlighted, 3)
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_Search_Unauthorized(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/search", nil)
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSearchHandler_Search_InvalidJSON(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	req := requestWithWorkspaceID(http.MethodPost, "/search", []byte(`{invalid`))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestSearchHandler_Search_InvalidStoreKind(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	body := `{"records":[{"key":"a","value":"b","store_kind":"indexeddb"}],"filter":{"text":"a"}}`
	req := requestWithWorkspaceID(http.MethodPost, "/search", []byte(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid store kind")
	mockSvc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestSearchHandler_Search_NegativeLimit(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	req := requestWithWorkspaceID(http.MethodPost, "/search", []byte(`{"filter":{"text":"a"},"limit":-1}`))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHandler_Search_SnapshotNotFound(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("Search", mock.Anything, mock.Anything).Return(nil, domain.ErrSnapshotNotFound)

	req := requestWithWorkspaceID(http.MethodPost, "/search", []byte(`{"snapshot_id":"snap-9","filter":{"text":"a"}}`))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_Stats(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	stats := domain.SearchStats{
		Total:           2,
		ByStoreKind:     map[domain.StoreKind]int{domain.StoreKindCookie: 2},
		ByDataType:      map[domain.DataType]int{domain.DataTypeString: 2},
		BySizeCategory:  map[domain.SizeCategory]int{domain.SizeSmall: 2},
		ByMatchLocation: map[domain.MatchLocation]int{domain.MatchLocationValue: 2},
	}
	mockSvc.On("Stats", mock.Anything, mock.MatchedBy(func(input service.SearchInput) bool {
		return input.SnapshotID == "snap-1"
	})).Return(stats, nil)

	req := requestWithWorkspaceID(http.MethodPost, "/search/stats", []byte(`{"snapshot_id":"snap-1","filter":{"text":"x"}}`))
	w := httptest.NewRecorder()

	handler.Stats(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(2), data["total"])
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_Stats_FromResults(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	body := []byte(`{"results":[
		{"record":{"key":"a","value":"1","store_kind":"local"},"match_type":"key","data_type":"number","size":1,"size_category":"small"},
		{"record":{"key":"b","value":"x","store_kind":"cookie"},"match_type":"value","data_type":"string","size":1,"size_category":"small"}
	]}`)
	req := requestWithWorkspaceID(http.MethodPost, "/search/stats", body)
	w := httptest.NewRecorder()

	handler.Stats(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(2), data["total"])
	assert.Equal(t, map[string]interface{}{"local": float64(1), "cookie": float64(1)}, data["byStorageType"])
	assert.Equal(t, map[string]interface{}{"key": float64(1), "value": float64(1)}, data["byMatchType"])
	mockSvc.AssertNotCalled(t, "Stats", mock.Anything, mock.Anything)
}

func TestSearchHandler_Stats_EmptyResults(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	req := requestWithWorkspaceID(http.MethodPost, "/search/stats", []byte(`{"results":[]}`))
	w := httptest.NewRecorder()

	handler.Stats(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeData(t, w)["total"])
	mockSvc.AssertNotCalled(t, "Stats", mock.Anything, mock.Anything)
}

func TestSearchHandler_Stats_BadStoreKind(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	req := requestWithWorkspaceID(http.MethodPost, "/search/stats", []byte(`{"results":[{"record":{"key":"a","store_kind":"indexeddb"}}]}`))
	w := httptest.NewRecorder()

	handler.Stats(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHandler_Validate(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("Validate", "(").Return(search.PatternValidation{Valid: false, Message: "missing closing )"})

	req := requestWithWorkspaceID(http.MethodPost, "/search/validate", []byte(`{"pattern":"("}`))
	w := httptest.NewRecorder()

	handler.Validate(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, false, data["is_valid"])
	assert.Equal(t, "missing closing )", data["error"])
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_Suggest(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("Suggest", mock.Anything, mock.MatchedBy(func(input service.SuggestInput) bool {
		return input.Partial == "us" && input.SnapshotID == "snap-1" && input.WorkspaceID == testWorkspaceID
	})).Return([]string{"user_token", "username"}, nil)

	req := requestWithWorkspaceID(http.MethodPost, "/search/suggest", []byte(`{"snapshot_id":"snap-1","query":"us"}`))
	w := httptest.NewRecorder()

	handler.Suggest(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, []interface{}{"user_token", "username"}, data["suggestions"])
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_History(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	usedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockSvc.On("History", mock.Anything, testWorkspaceID).Return([]*domain.HistoryEntry{
		{WorkspaceID: testWorkspaceID, Text: "token", UsedAt: usedAt},
	}, nil)

	req := requestWithWorkspaceID(http.MethodGet, "/search/history", nil)
	w := httptest.NewRecorder()

	handler.History(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	entries := data["entries"].([]interface{})
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]interface{})
	assert.Equal(t, "token", entry["text"])
	assert.Equal(t, "2026-03-01T12:00:00Z", entry["used_at"])
	mockSvc.AssertExpectations(t)
}

func TestSearchHandler_ClearHistory(t *testing.T) {
	mockSvc := new(MockSearchService)
	handler := NewSearchHandler(mockSvc)

	mockSvc.On("ClearHistory", mock.Anything, testWorkspaceID).Return(nil)

	req := requestWithWorkspaceID(http.MethodDelete, "/search/history", nil)
	w := httptest.NewRecorder()

	handler.ClearHistory(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockSvc.AssertExpectations(t)
}
