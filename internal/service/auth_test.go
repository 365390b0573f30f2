package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUUIDGenerator struct {
	uuids     []string
	callCount int
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.callCount < len(m.uuids) {
		uuid := m.uuids[m.callCount]
		m.callCount++
		return uuid
	}
	return "default-uuid"
}

type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) Create(ctx context.Context, ws *domain.Workspace) error {
	args := m.Called(ctx, ws)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) GetByName(ctx context.Context, name string) (*domain.Workspace, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) List(ctx context.Context) ([]*domain.Workspace, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAPIKeyRepository struct {
	mock.Mock
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) GetByID(ctx context.Context, id string) (*domain.APIKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) GetByHash(ctx context.Context, hash string) (*domain.APIKey, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) GetByWorkspaceID(ctx context.Context, workspaceID string) ([]*domain.APIKey, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) Revoke(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestAuthService_CreateWorkspace(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator("ws-123")

	mockWorkspaceRepo.On("Create", ctx, mock.MatchedBy(func(ws *domain.Workspace) bool {
		return ws.Name == "QA Team" && ws.ID == "ws-123"
	})).Return(nil)

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	ws, err := service.CreateWorkspace(ctx, "  QA Team ")

	require.NoError(t, err)
	assert.Equal(t, "ws-123", ws.ID)
	assert.Equal(t, "QA Team", ws.Name)
	mockWorkspaceRepo.AssertExpectations(t)
}

func TestAuthService_CreateWorkspace_EmptyName(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator()

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	_, err := service.CreateWorkspace(ctx, "")

	assert.Error(t, err)
	mockWorkspaceRepo.AssertNotCalled(t, "Create")
}

func TestAuthService_CreateAPIKey_GeneratesPrefixedToken(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator("key-123")

	mockWorkspaceRepo.On("GetByID", ctx, "ws-123").Return(domain.NewWorkspace("ws-123", "QA Team", time.Now().UTC()), nil)

	mockAPIKeyRepo.On("Create", ctx, mock.MatchedBy(func(key *domain.APIKey) bool {
		return key.ID == "key-123" && key.KeyHash != "" && len(key.KeyHash) == 64
	})).Return(nil)

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	token, err := service.CreateAPIKey(ctx, "ws-123", "test-key")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "slk_"), "token should start with slk_")
	assert.Equal(t, 68, len(token), "token should be slk_ + 64 hex chars")
	mockAPIKeyRepo.AssertExpectations(t)
}

func TestAuthService_CreateAPIKey_StoresSHA256Hash(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator("key-123")

	mockWorkspaceRepo.On("GetByID", ctx, "ws-123").Return(domain.NewWorkspace("ws-123", "QA Team", time.Now().UTC()), nil)

	var capturedKey *domain.APIKey
	mockAPIKeyRepo.On("Create", ctx, mock.MatchedBy(func(key *domain.APIKey) bool {
		capturedKey = key
		return true
	})).Return(nil)

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	token, err := service.CreateAPIKey(ctx, "ws-123", "test-key")

	require.NoError(t, err)
	require.NotNil(t, capturedKey)
	assert.NotEqual(t, token, capturedKey.KeyHash)
	assert.Equal(t, 64, len(capturedKey.KeyHash), "SHA256 hash should be 64 hex chars")
}

func TestAuthService_ValidateAPIKey_ValidToken(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator("key-123")

	mockWorkspaceRepo.On("GetByID", ctx, "ws-123").Return(domain.NewWorkspace("ws-123", "QA Team", time.Now().UTC()), nil)

	var storedHash string
	mockAPIKeyRepo.On("Create", ctx, mock.MatchedBy(func(key *domain.APIKey) bool {
		storedHash = key.KeyHash
		return true
	})).Return(nil)

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	token, _ := service.CreateAPIKey(ctx, "ws-123", "test-key")

	mockAPIKeyRepo.On("GetByHash", ctx, storedHash).Return(&domain.APIKey{
		ID:          "key-123",
		WorkspaceID: "ws-123",
		Name:        "test-key",
		KeyHash:     storedHash,
		CreatedAt:   time.Now().UTC(),
		RevokedAt:   nil,
	}, nil)

	workspaceID, err := service.ValidateAPIKey(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "ws-123", workspaceID)
}

func TestAuthService_ValidateAPIKey_InvalidToken(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator()

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	_, err := service.ValidateAPIKey(ctx, "invalid-token")

	assert.ErrorIs(t, err, domain.ErrInvalidAPIKey)
}

func TestAuthService_ValidateAPIKey_NotFound(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator()

	mockAPIKeyRepo.On("GetByHash", ctx, mock.Anything).Return(nil, domain.ErrAPIKeyNotFound)

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	_, err := service.ValidateAPIKey(ctx, "slk_0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")

	assert.ErrorIs(t, err, domain.ErrInvalidAPIKey)
}

func TestAuthService_ValidateAPIKey_RevokedKey(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator()

	revokedAt := time.Now().UTC()
	mockAPIKeyRepo.On("GetByHash", ctx, mock.Anything).Return(&domain.APIKey{
		ID:          "key-123",
		WorkspaceID: "ws-123",
		Name:        "test-key",
		KeyHash:     domain.HashAPIToken("slk_0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
		CreatedAt:   time.Now().UTC(),
		RevokedAt:   &revokedAt,
	}, nil)

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	_, err := service.ValidateAPIKey(ctx, "slk_0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")

	assert.ErrorIs(t, err, domain.ErrAPIKeyRevoked)
}

func TestAuthService_RevokeAPIKey(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator()

	mockAPIKeyRepo.On("Revoke", ctx, "key-123").Return(nil)

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	err := service.RevokeAPIKey(ctx, "key-123")

	require.NoError(t, err)
	mockAPIKeyRepo.AssertExpectations(t)
}

func TestAuthService_RevokeAPIKey_NotFound(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator()

	mockAPIKeyRepo.On("Revoke", ctx, "key-123").Return(domain.ErrAPIKeyNotFound)

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	err := service.RevokeAPIKey(ctx, "key-123")

	assert.ErrorIs(t, err, domain.ErrAPIKeyNotFound)
}

func TestAuthService_ListAPIKeys(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator()

	keys := []*domain.APIKey{
		{ID: "key-1", WorkspaceID: "ws-123", Name: "key1", KeyHash: "hash1", CreatedAt: time.Now().UTC()},
		{ID: "key-2", WorkspaceID: "ws-123", Name: "key2", KeyHash: "hash2", CreatedAt: time.Now().UTC()},
	}

	mockAPIKeyRepo.On("GetByWorkspaceID", ctx, "ws-123").Return(keys, nil)

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	result, err := service.ListAPIKeys(ctx, "ws-123")

	require.NoError(t, err)
	assert.Len(t, result, 2)
	mockAPIKeyRepo.AssertExpectations(t)
}

func TestAuthService_CreateAPIKey_EmptyWorkspaceID(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator()

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	_, err := service.CreateAPIKey(ctx, "", "test-key")

	assert.Error(t, err)
}

func TestAuthService_CreateAPIKey_EmptyName(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator()

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	_, err := service.CreateAPIKey(ctx, "ws-123", "")

	assert.Error(t, err)
}

func TestAuthService_RevokeAPIKey_EmptyID(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator()

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	err := service.RevokeAPIKey(ctx, "")

	assert.Error(t, err)
}

func TestAuthService_ListAPIKeys_EmptyWorkspaceID(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator()

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	_, err := service.ListAPIKeys(ctx, "")

	assert.Error(t, err)
}

func TestAuthService_CreateAPIKeyWithToken(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator("key-123")

	mockWorkspaceRepo.On("GetByID", ctx, "ws-123").Return(domain.NewWorkspace("ws-123", "QA Team", time.Now().UTC()), nil)

	mockAPIKeyRepo.On("Create", ctx, mock.MatchedBy(func(key *domain.APIKey) bool {
		return key.WorkspaceID == "ws-123" && key.Name == "test-key"
	})).Return(nil)

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	err := service.CreateAPIKeyWithToken(ctx, "ws-123", "test-key", "slk_0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")

	require.NoError(t, err)
	mockAPIKeyRepo.AssertExpectations(t)
}

func TestAuthService_CreateAPIKeyWithToken_InvalidFormat(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator()

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	err := service.CreateAPIKeyWithToken(ctx, "ws-123", "test-key", "invalid-token")

	assert.Error(t, err)
}

func TestAuthService_CreateAPIKey_UnknownWorkspace(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator()

	mockWorkspaceRepo.On("GetByID", ctx, "missing").Return(nil, domain.ErrWorkspaceNotFound)

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	_, err := service.CreateAPIKey(ctx, "missing", "test-key")

	assert.ErrorIs(t, err, domain.ErrWorkspaceNotFound)
	mockAPIKeyRepo.AssertNotCalled(t, "Create")
}

func TestAuthService_CreateAPIKey_TrimsName(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	mockUUIDGen := NewMockUUIDGenerator("key-123")

	mockWorkspaceRepo.On("GetByID", ctx, "ws-123").Return(domain.NewWorkspace("ws-123", "QA Team", time.Now().UTC()), nil)
	mockAPIKeyRepo.On("Create", ctx, mock.MatchedBy(func(key *domain.APIKey) bool {
		return key.Name == "ci"
	})).Return(nil)

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, mockUUIDGen)
	_, err := service.CreateAPIKey(ctx, "ws-123", "  ci  ")

	require.NoError(t, err)

	_, err = service.CreateAPIKey(ctx, "ws-123", "   ")
	assert.Equal(t, domain.ErrCodeValidation, domain.CodeOf(err))
	mockAPIKeyRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestAuthService_FindAPIKeyByToken(t *testing.T) {
	ctx := context.Background()
	mockWorkspaceRepo := new(MockWorkspaceRepository)
	mockAPIKeyRepo := new(MockAPIKeyRepository)
	token := "slk_" + strings.Repeat("ab", 32)

	stored := domain.NewAPIKey("key-1", "ws-123", "ci", domain.HashAPIToken(token), time.Now().UTC(), nil)
	mockAPIKeyRepo.On("GetByHash", ctx, domain.HashAPIToken(token)).Return(stored, nil)

	service := NewAuthService(mockWorkspaceRepo, mockAPIKeyRepo, NewMockUUIDGenerator())

	key, err := service.FindAPIKeyByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "key-1", key.ID)

	_, err = service.FindAPIKeyByToken(ctx, "slk_short")
	assert.ErrorIs(t, err, domain.ErrInvalidAPIKey)
	mockAPIKeyRepo.AssertNumberOfCalls(t, "GetByHash", 1)
}

func TestAuthService_RevokeWorkspaceAPIKey(t *testing.T) {
	ctx := context.Background()
	key := domain.NewAPIKey("key-1", "ws-123", "ci", domain.HashAPIToken("slk_"+strings.Repeat("0", 64)), time.Now().UTC(), nil)

	t.Run("own key", func(t *testing.T) {
		mockAPIKeyRepo := new(MockAPIKeyRepository)
		mockAPIKeyRepo.On("GetByID", ctx, "key-1").Return(key, nil)
		mockAPIKeyRepo.On("Revoke", ctx, "key-1").Return(nil)

		service := NewAuthService(new(MockWorkspaceRepository), mockAPIKeyRepo, NewMockUUIDGenerator())

		require.NoError(t, service.RevokeWorkspaceAPIKey(ctx, "ws-123", "key-1"))
		mockAPIKeyRepo.AssertExpectations(t)
	})

	t.Run("other workspace", func(t *testing.T) {
		mockAPIKeyRepo := new(MockAPIKeyRepository)
		mockAPIKeyRepo.On("GetByID", ctx, "key-1").Return(key, nil)

		service := NewAuthService(new(MockWorkspaceRepository), mockAPIKeyRepo, NewMockUUIDGenerator())

		err := service.RevokeWorkspaceAPIKey(ctx, "ws-other", "key-1")
		assert.ErrorIs(t, err, domain.ErrAPIKeyNotFound)
		mockAPIKeyRepo.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
	})

	t.Run("missing id", func(t *testing.T) {
		service := NewAuthService(new(MockWorkspaceRepository), new(MockAPIKeyRepository), NewMockUUIDGenerator())

		err := service.RevokeWorkspaceAPIKey(ctx, "ws-123", "")
		assert.Equal(t, domain.ErrCodeValidation, domain.CodeOf(err))
	})
}
