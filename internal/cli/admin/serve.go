package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/storelens/internal/api/handlers"
	"github.com/cloo-solutions/storelens/internal/config"
	"github.com/cloo-solutions/storelens/internal/database"
	"github.com/cloo-solutions/storelens/internal/domain"
	"github.com/cloo-solutions/storelens/internal/jobs"
	"github.com/cloo-solutions/storelens/internal/repository"
	"github.com/cloo-solutions/storelens/internal/server"
	"github.com/cloo-solutions/storelens/internal/service"
	"github.com/cloo-solutions/storelens/internal/storage"
	"github.com/cloo-solutions/storelens/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the storelens API server and the export worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides STORELENS_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.HasSentry() {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "storelens@" + cmd.Root().Version,
			TracesSampleRate: cfg.TracesSampleRate(),
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	pool, err := database.NewPool(ctx, database.Config{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		ApplicationName: "storelensd",
		PingAttempts:    cfg.DBConnectAttempts,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
		if err := database.MigrateUp(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	workspaceRepo := repository.NewWorkspaceRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	snapshotRepo := repository.NewSnapshotRepository(pool)
	exportJobRepo := repository.NewExportJobRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	authSvc := service.NewAuthService(workspaceRepo, apiKeyRepo, &service.DefaultUUIDGenerator{})

	if cfg.InitWorkspaceName != "" {
		if err := bootstrapInitialWorkspace(ctx, cfg, authSvc); err != nil {
			return fmt.Errorf("failed to bootstrap initial workspace: %w", err)
		}
	}

	var objectStore service.ObjectStorage
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		objectStore = s3Client
	} else {
		log.Println("S3 not configured: exports are disabled")
	}

	snapshotSvc := service.NewSnapshotService(snapshotRepo, txRunner)
	searchSvc := service.NewSearchService(snapshotRepo, repository.NewHistoryRepository(pool), repository.NewSearchLogRepository(pool))
	savedSvc := service.NewSavedSearchService(repository.NewSavedSearchRepository(pool), searchSvc)
	exportSvc := service.NewExportService(exportJobRepo, snapshotRepo, objectStore)

	var exportWorker *jobs.Worker
	if objectStore != nil {
		exportWorker = jobs.NewWorker("export worker", jobs.NewExportWorker(exportJobRepo, exportSvc), cfg.ExportPollInterval)
		exportSvc.OnRequested(exportWorker.Trigger)
		go exportWorker.Start(ctx)
	}

	router := server.NewRouter(server.RouterConfig{
		BodyLimits: server.BodyLimits{
			Request:  cfg.MaxRequestBytes,
			Snapshot: cfg.MaxSnapshotBytes,
		},
		AuthValidator:      authSvc,
		AuthHandler:        handlers.NewAuthHandler(authSvc),
		SearchHandler:      handlers.NewSearchHandler(searchSvc),
		ScanHandler:        handlers.NewScanHandler(snapshotSvc),
		SnapshotHandler:    handlers.NewSnapshotHandler(snapshotSvc),
		SavedSearchHandler: handlers.NewSavedSearchHandler(savedSvc),
		ExportHandler:      handlers.NewExportHandler(exportSvc),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if exportWorker != nil {
		exportWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func bootstrapInitialWorkspace(ctx context.Context, cfg *config.Config, authSvc *service.AuthService) error {
	ws, err := authSvc.GetWorkspaceByName(ctx, cfg.InitWorkspaceName)
	if err != nil && !errors.Is(err, domain.ErrWorkspaceNotFound) {
		return fmt.Errorf("failed to check existing workspace: %w", err)
	}

	if ws == nil {
		ws, err = authSvc.CreateWorkspace(ctx, cfg.InitWorkspaceName)
		if err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}
		log.Printf("bootstrap: created workspace '%s' (id: %s)", ws.Name, ws.ID)
	} else {
		log.Printf("bootstrap: workspace '%s' already exists (id: %s)", ws.Name, ws.ID)
	}

	if cfg.InitAPIKey == "" {
		return nil
	}
	if !domain.IsValidAPIToken(cfg.InitAPIKey) {
		return fmt.Errorf("invalid STORELENS_INIT_API_KEY format (expected %q)", domain.APITokenPrefix+"<64 hex chars>")
	}

	if existing, err := authSvc.FindAPIKeyByToken(ctx, cfg.InitAPIKey); err == nil && existing != nil {
		log.Printf("bootstrap: API key already exists (id: %s)", existing.ID)
		return nil
	}

	if err := authSvc.CreateAPIKeyWithToken(ctx, ws.ID, "bootstrap", cfg.InitAPIKey); err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}
	log.Printf("bootstrap: created API key")
	return nil
}
