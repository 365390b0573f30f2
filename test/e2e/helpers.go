//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloo-solutions/storelens/internal/api/handlers"
	"github.com/cloo-solutions/storelens/internal/jobs"
	"github.com/cloo-solutions/storelens/internal/repository"
	"github.com/cloo-solutions/storelens/internal/server"
	"github.com/cloo-solutions/storelens/internal/service"
	"github.com/cloo-solutions/storelens/internal/storage"
	"github.com/cloo-solutions/storelens/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
)

// E2ETestEnv is a storelens server backed by real Postgres and RustFS
// containers. Everything it starts is released by t.Cleanup.
type E2ETestEnv struct {
	T   *testing.T
	Ctx context.Context

	ServerURL    string
	ExportWorker *jobs.ExportWorker
	BinaryDir    string
	HTTPClient   *http.Client

	WorkspaceID string
	APIKeyToken string
}

func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	t.Helper()
	ctx := context.Background()

	pool := testutil.NewTestPool(ctx, t, testutil.NewPostgresContainer(ctx, t))
	s3C := testutil.NewRustFSContainer(ctx, t)

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          "test-exports",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}

	srv := httptest.NewServer(env.newRouter(pool, s3Client))
	t.Cleanup(srv.Close)
	env.ServerURL = srv.URL

	return env
}

// newRouter wires the handler stack the way storelensd serve does, minus the
// background worker; tests drive exports with ProcessExports.
func (e *E2ETestEnv) newRouter(pool *pgxpool.Pool, s3Client *storage.S3Client) http.Handler {
	snapshotRepo := repository.NewSnapshotRepository(pool)
	exportJobRepo := repository.NewExportJobRepository(pool)

	authSvc := service.NewAuthService(repository.NewWorkspaceRepository(pool), repository.NewAPIKeyRepository(pool), &service.DefaultUUIDGenerator{})
	snapshotSvc := service.NewSnapshotService(snapshotRepo, repository.NewTxRunner(pool))
	searchSvc := service.NewSearchService(snapshotRepo, repository.NewHistoryRepository(pool), repository.NewSearchLogRepository(pool))
	savedSvc := service.NewSavedSearchService(repository.NewSavedSearchRepository(pool), searchSvc)
	exportSvc := service.NewExportService(exportJobRepo, snapshotRepo, s3Client)

	e.ExportWorker = jobs.NewExportWorker(exportJobRepo, exportSvc)

	return server.NewRouter(server.RouterConfig{
		AuthValidator:      authSvc,
		AuthHandler:        handlers.NewAuthHandler(authSvc),
		SearchHandler:      handlers.NewSearchHandler(searchSvc),
		ScanHandler:        handlers.NewScanHandler(snapshotSvc),
		SnapshotHandler:    handlers.NewSnapshotHandler(snapshotSvc),
		SavedSearchHandler: handlers.NewSavedSearchHandler(savedSvc),
		ExportHandler:      handlers.NewExportHandler(exportSvc),
	})
}

// Bootstrap creates a workspace and an API key through the public endpoints.
func (e *E2ETestEnv) Bootstrap() {
	e.T.Helper()

	var ws struct {
		ID string `json:"id"`
	}
	e.mustDecode(e.Post("/workspaces", map[string]string{"name": "E2E Workspace"}, ""))(&ws)
	e.WorkspaceID = ws.ID

	var key struct {
		Token string `json:"token"`
	}
	e.mustDecode(e.Post("/apikeys", map[string]string{
		"workspace_id": e.WorkspaceID,
		"name":         "e2e-test-key",
	}, ""))(&key)
	e.APIKeyToken = key.Token
}

func (e *E2ETestEnv) mustDecode(resp *APIResponse, err error) func(v interface{}) {
	e.T.Helper()
	if err != nil {
		e.T.Fatalf("bootstrap request failed: %v", err)
	}
	return func(v interface{}) {
		e.T.Helper()
		if err := json.Unmarshal(resp.Data, v); err != nil {
			e.T.Fatalf("failed to parse bootstrap response: %v", err)
		}
	}
}

// ProcessExports runs one export worker pass synchronously.
func (e *E2ETestEnv) ProcessExports() {
	e.T.Helper()
	if err := e.ExportWorker.ProcessJobs(e.Ctx); err != nil {
		e.T.Fatalf("failed to process exports: %v", err)
	}
}

// BuildBinaries builds storelens and storelensd into a temp dir.
func (e *E2ETestEnv) BuildBinaries() {
	e.T.Helper()
	e.BinaryDir = e.T.TempDir()

	for _, name := range []string{"storelensd", "storelens"} {
		cmd := exec.Command("go", "build", "-o", filepath.Join(e.BinaryDir, name), "./cmd/"+name)
		cmd.Dir = "../.."
		if out, err := cmd.CombinedOutput(); err != nil {
			e.T.Fatalf("failed to build %s: %v\n%s", name, err, out)
		}
	}
}

// RunCLI runs the storelens CLI with the test credentials in its environment.
func (e *E2ETestEnv) RunCLI(workDir string, args ...string) (string, error) {
	return e.RunCLIWithInput(workDir, "", args...)
}

func (e *E2ETestEnv) RunCLIWithInput(workDir string, input string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "storelens"), args...)
	cmd.Dir = workDir
	cmd.Stdin = bytes.NewReader([]byte(input))
	// HOME keeps the CLI config file inside workDir
	cmd.Env = append(os.Environ(),
		"HOME="+workDir,
		"STORELENS_API_KEY="+e.APIKeyToken,
		"STORELENS_API_URL="+e.ServerURL,
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse is the decoded response envelope.
type APIResponse struct {
	StatusCode int
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error,omitempty"`
	Code       string          `json:"code,omitempty"`
}

func (e *E2ETestEnv) Get(path, authToken string) (*APIResponse, error) {
	return e.doRequest(http.MethodGet, path, nil, authToken)
}

func (e *E2ETestEnv) Post(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest(http.MethodPost, path, body, authToken)
}

func (e *E2ETestEnv) Delete(path, authToken string) (*APIResponse, error) {
	return e.doRequest(http.MethodDelete, path, nil, authToken)
}

// doRequest returns an error for any status >= 400, carrying the status and
// the error code from the envelope.
func (e *E2ETestEnv) doRequest(method, path string, body interface{}, authToken string) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(e.Ctx, method, e.ServerURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	apiResp := APIResponse{StatusCode: resp.StatusCode}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, respBody)
		}
	}
	if resp.StatusCode >= 400 {
		if apiResp.Code != "" {
			return nil, fmt.Errorf("HTTP %d %s: %s", resp.StatusCode, apiResp.Code, apiResp.Error)
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// DownloadFile fetches a presigned export URL.
func (e *E2ETestEnv) DownloadFile(downloadURL string) ([]byte, error) {
	resp, err := e.HTTPClient.Get(downloadURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
