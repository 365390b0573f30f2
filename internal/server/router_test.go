package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/storelens/internal/api/handlers"
	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/search"
	"github.com/cloo-solutions/storelens/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validToken = "slk_0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

type MockAuthValidator struct {
	mock.Mock
}

func (m *MockAuthValidator) ValidateAPIKey(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) CreateWorkspace(ctx context.Context, name string) (*domain.Workspace, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workspace), args.Error(1)
}

func (m *MockAuthService) CreateAPIKey(ctx context.Context, workspaceID, name string) (string, error) {
	args := m.Called(ctx, workspaceID, name)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ListAPIKeys(ctx context.Context, workspaceID string) ([]*domain.APIKey, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

func (m *MockAuthService) RevokeWorkspaceAPIKey(ctx context.Context, workspaceID, keyID string) error {
	args := m.Called(ctx, workspaceID, keyID)
	return args.Error(0)
}

type MockSnapshotService struct {
	mock.Mock
}

func (m *MockSnapshotService) Create(ctx context.Context, input service.CreateSnapshotInput) (*domain.Snapshot, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockSnapshotService) Get(ctx context.Context, workspaceID, id string) (*domain.Snapshot, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockSnapshotService) List(ctx context.Context, input service.ListSnapshotsInput) (*service.ListSnapshotsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListSnapshotsOutput), args.Error(1)
}

func (m *MockSnapshotService) Delete(ctx context.Context, workspaceID, id string) error {
	args := m.Called(ctx, workspaceID, id)
	return args.Error(0)
}

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
	return search.ValidatePattern(pattern)
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

type testRouter struct {
	handler       http.Handler
	authValidator *MockAuthValidator
	authSvc       *MockAuthService
	snapshotSvc   *MockSnapshotService
	searchSvc     *MockSearchService
}

func setupRouter() *testRouter {
	tr := &testRouter{
		authValidator: new(MockAuthValidator),
		authSvc:       new(MockAuthService),
		snapshotSvc:   new(MockSnapshotService),
		searchSvc:     new(MockSearchService),
	}

	// saved-search and export routes are only exercised up to the auth check
	cfg := RouterConfig{
		AuthValidator:      tr.authValidator,
		AuthHandler:        handlers.NewAuthHandler(tr.authSvc),
		SearchHandler:      handlers.NewSearchHandler(tr.searchSvc),
		ScanHandler:        handlers.NewScanHandler(tr.snapshotSvc),
		SnapshotHandler:    handlers.NewSnapshotHandler(tr.snapshotSvc),
		SavedSearchHandler: handlers.NewSavedSearchHandler(nil),
		ExportHandler:      handlers.NewExportHandler(nil),
	}

	tr.handler = NewRouter(cfg)
	return tr
}

func TestRouter_HealthEndpoint(t *testing.T) {
	tr := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	tr.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_AuthenticatedRoutes_RequireAuth(t *testing.T) {
	tr := setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/search"},
		{http.MethodPost, "/search/validate"},
		{http.MethodPost, "/search/suggest"},
		{http.MethodPost, "/search/stats"},
		{http.MethodGet, "/history"},
		{http.MethodDelete, "/history"},
		{http.MethodPost, "/scan"},
		{http.MethodPost, "/saved-searches"},
		{http.MethodGet, "/saved-searches"},
		{http.MethodGet, "/saved-searches/tokens"},
		{http.MethodDelete, "/saved-searches/tokens"},
		{http.MethodPost, "/saved-searches/tokens/run"},
		{http.MethodPost, "/snapshots"},
		{http.MethodGet, "/snapshots"},
		{http.MethodGet, "/snapshots/123"},
		{http.MethodDelete, "/snapshots/123"},
		{http.MethodPost, "/exports"},
		{http.MethodGet, "/exports/123"},
		{http.MethodGet, "/exports/123/download"},
		{http.MethodGet, "/apikeys"},
		{http.MethodDelete, "/apikeys/key-1"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			tr.handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	tr.authValidator.AssertExpectations(t)
}

func TestRouter_AuthenticatedRoutes_WithValidAuth(t *testing.T) {
	tr := setupRouter()

	tr.authValidator.On("ValidateAPIKey", mock.Anything, validToken).Return("ws-789", nil)

	snap := domain.NewSnapshot("snap-1", "ws-789", "checkout", "", []domain.StorageRecord{
		domain.NewStorageRecord("theme", "dark", domain.StoreKindLocal),
	}, time.Now().UTC())
	tr.snapshotSvc.On("Get", mock.Anything, "ws-789", "snap-1").Return(snap, nil)

	req := httptest.NewRequest(http.MethodGet, "/snapshots/snap-1", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	w := httptest.NewRecorder()

	tr.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	tr.authValidator.AssertExpectations(t)
	tr.snapshotSvc.AssertExpectations(t)
}

func TestRouter_SearchValidate(t *testing.T) {
	tr := setupRouter()

	tr.authValidator.On("ValidateAPIKey", mock.Anything, validToken).Return("ws-789", nil)

	req := httptest.NewRequest(http.MethodPost, "/search/validate", strings.NewReader(`{"pattern":"(?<=a)b"}`))
	req.Header.Set("Authorization", "Bearer "+validToken)
	w := httptest.NewRecorder()

	tr.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["data"]["is_valid"])
	assert.NotEmpty(t, resp["data"]["error"])
}

func TestRouter_History(t *testing.T) {
	tr := setupRouter()

	tr.authValidator.On("ValidateAPIKey", mock.Anything, validToken).Return("ws-789", nil)
	tr.searchSvc.On("ClearHistory", mock.Anything, "ws-789").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/history", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	w := httptest.NewRecorder()

	tr.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	tr.searchSvc.AssertExpectations(t)
}

func TestRouter_BootstrapRoutes_NoAuthRequired(t *testing.T) {
	tr := setupRouter()

	expectedWS := &domain.Workspace{
		ID:        "ws-123",
		Name:      "Test Workspace",
		CreatedAt: time.Now().UTC(),
	}
	tr.authSvc.On("CreateWorkspace", mock.Anything, "Test Workspace").Return(expectedWS, nil)

	req := httptest.NewRequest(http.MethodPost, "/workspaces", strings.NewReader(`{"name":"Test Workspace"}`))
	w := httptest.NewRecorder()

	tr.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	tr.authSvc.AssertExpectations(t)
}

func TestRouter_APIKeyRoutesShareMethodsAcrossAuth(t *testing.T) {
	tr := setupRouter()

	tr.authValidator.On("ValidateAPIKey", mock.Anything, validToken).Return("ws-789", nil)
	tr.authSvc.On("ListAPIKeys", mock.Anything, "ws-789").Return([]*domain.APIKey{}, nil)
	tr.authSvc.On("CreateAPIKey", mock.Anything, "ws-789", "ci").Return("slk_token", nil)

	list := httptest.NewRequest(http.MethodGet, "/apikeys", nil)
	list.Header.Set("Authorization", "Bearer "+validToken)
	w := httptest.NewRecorder()
	tr.handler.ServeHTTP(w, list)
	assert.Equal(t, http.StatusOK, w.Code)

	create := httptest.NewRequest(http.MethodPost, "/apikeys", strings.NewReader(`{"workspace_id":"ws-789","name":"ci"}`))
	w = httptest.NewRecorder()
	tr.handler.ServeHTTP(w, create)
	assert.Equal(t, http.StatusCreated, w.Code)

	tr.authSvc.AssertExpectations(t)
}

func TestRouter_BootstrapRoutes_InvalidBody(t *testing.T) {
	tr := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/apikeys", nil)
	w := httptest.NewRecorder()

	tr.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_BodyTooLarge(t *testing.T) {
	tr := setupRouter()

	body := `{"name":"` + strings.Repeat("x", 2*1024*1024) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/workspaces", strings.NewReader(body))
	w := httptest.NewRecorder()

	tr.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "PAYLOAD_TOO_LARGE")
	tr.authSvc.AssertNotCalled(t, "CreateWorkspace", mock.Anything, mock.Anything)
}

func TestRouter_SnapshotRoutesAllowLargerBodies(t *testing.T) {
	tr := setupRouter()
	tr.authValidator.On("ValidateAPIKey", mock.Anything, validToken).Return("ws-1", nil)

	// over the default request limit, under the snapshot limit
	value := strings.Repeat("x", 2*1024*1024)
	body := `{"name":"big","records":[{"key":"blob","value":"` + value + `","store_kind":"local"}]}`

	tr.snapshotSvc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateSnapshotInput) bool {
		return in.WorkspaceID == "ws-1" && len(in.Records) == 1
	})).Return(&domain.Snapshot{ID: "snap-big", WorkspaceID: "ws-1", Name: "big"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/snapshots", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+validToken)
	w := httptest.NewRecorder()

	tr.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	search := httptest.NewRequest(http.MethodPost, "/search/validate", strings.NewReader(`{"pattern":"`+value+`"}`))
	search.Header.Set("Authorization", "Bearer "+validToken)
	w = httptest.NewRecorder()

	tr.handler.ServeHTTP(w, search)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
