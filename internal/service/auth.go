package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloo-solutions/storelens/internal/domain"
)

type WorkspaceRepository interface {
	Create(ctx context.Context, ws *domain.Workspace) error
	GetByID(ctx context.Context, id string) (*domain.Workspace, error)
	GetByName(ctx context.Context, name string) (*domain.Workspace, error)
	List(ctx context.Context) ([]*domain.Workspace, error)
	Delete(ctx context.Context, id string) error
}

type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByID(ctx context.Context, id string) (*domain.APIKey, error)
	GetByHash(ctx context.Context, hash string) (*domain.APIKey, error)
	GetByWorkspaceID(ctx context.Context, workspaceID string) ([]*domain.APIKey, error)
	Revoke(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// AuthService manages workspaces and the API keys that act on their behalf
type AuthService struct {
	workspaceRepo WorkspaceRepository
	keyRepo       APIKeyRepository
	uuidGen       UUIDGenerator
}

func NewAuthService(workspaceRepo WorkspaceRepository, keyRepo APIKeyRepository, uuidGen UUIDGenerator) *AuthService {
	return &AuthService{
		workspaceRepo: workspaceRepo,
		keyRepo:       keyRepo,
		uuidGen:       uuidGen,
	}
}

func (s *AuthService) CreateWorkspace(ctx context.Context, name string) (*domain.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "workspace name is required")
	}

	ws := domain.NewWorkspace(s.uuidGen.NewString(), name, time.Now().UTC())
	if err := domain.ValidateWorkspace(ws); err != nil {
		return nil, asValidationError(err)
	}

	if err := s.workspaceRepo.Create(ctx, ws); err != nil {
		return nil, err
	}

	return ws, nil
}

func (s *AuthService) GetWorkspace(ctx context.Context, id string) (*domain.Workspace, error) {
	return s.workspaceRepo.GetByID(ctx, id)
}

func (s *AuthService) GetWorkspaceByName(ctx context.Context, name string) (*domain.Workspace, error) {
	return s.workspaceRepo.GetByName(ctx, name)
}

func (s *AuthService) ListWorkspaces(ctx context.Context) ([]*domain.Workspace, error) {
	return s.workspaceRepo.List(ctx)
}

// CreateAPIKey issues a new token for the workspace. The plaintext is
// returned once; only its hash is stored.
func (s *AuthService) CreateAPIKey(ctx context.Context, workspaceID, name string) (string, error) {
	token, err := domain.GenerateAPIToken()
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate API key", err)
	}

	if err := s.registerToken(ctx, workspaceID, name, token); err != nil {
		return "", err
	}

	return token, nil
}

// CreateAPIKeyWithToken registers a caller-chosen token, used to bootstrap
// a deployment with a known key.
func (s *AuthService) CreateAPIKeyWithToken(ctx context.Context, workspaceID, name, token string) error {
	if !domain.IsValidAPIToken(token) {
		return domain.Validationf("invalid API key format (expected %s<64 hex chars>)", domain.APITokenPrefix)
	}

	return s.registerToken(ctx, workspaceID, name, token)
}

func (s *AuthService) registerToken(ctx context.Context, workspaceID, name, token string) error {
	if workspaceID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "workspace ID is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}

	if _, err := s.workspaceRepo.GetByID(ctx, workspaceID); err != nil {
		return err
	}

	key := domain.NewAPIKey(s.uuidGen.NewString(), workspaceID, name, domain.HashAPIToken(token), time.Now().UTC(), nil)
	if err := domain.ValidateAPIKey(key); err != nil {
		return asValidationError(err)
	}

	return s.keyRepo.Create(ctx, key)
}

// ValidateAPIKey resolves a bearer token to its workspace ID
func (s *AuthService) ValidateAPIKey(ctx context.Context, token string) (string, error) {
	key, err := s.FindAPIKeyByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrAPIKeyNotFound) {
			return "", domain.ErrInvalidAPIKey
		}
		return "", err
	}

	if key.IsRevoked() {
		return "", domain.ErrAPIKeyRevoked
	}

	return key.WorkspaceID, nil
}

func (s *AuthService) RevokeAPIKey(ctx context.Context, keyID string) error {
	if keyID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key ID is required")
	}

	return s.keyRepo.Revoke(ctx, keyID)
}

// RevokeWorkspaceAPIKey revokes a key only if it belongs to the workspace.
// Keys of other workspaces are reported as not found.
func (s *AuthService) RevokeWorkspaceAPIKey(ctx context.Context, workspaceID, keyID string) error {
	if keyID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key ID is required")
	}

	key, err := s.keyRepo.GetByID(ctx, keyID)
	if err != nil {
		return err
	}
	if key.WorkspaceID != workspaceID {
		return domain.ErrAPIKeyNotFound
	}

	return s.keyRepo.Revoke(ctx, keyID)
}

func (s *AuthService) ListAPIKeys(ctx context.Context, workspaceID string) ([]*domain.APIKey, error) {
	if workspaceID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "workspace ID is required")
	}

	return s.keyRepo.GetByWorkspaceID(ctx, workspaceID)
}

// FindAPIKeyByToken looks a key up by the hash of its plaintext token.
// Malformed tokens fail without touching the store.
func (s *AuthService) FindAPIKeyByToken(ctx context.Context, token string) (*domain.APIKey, error) {
	if !domain.IsValidAPIToken(token) {
		return nil, domain.ErrInvalidAPIKey
	}
	return s.keyRepo.GetByHash(ctx, domain.HashAPIToken(token))
}
