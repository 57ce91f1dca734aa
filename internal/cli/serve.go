package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/pledgewatch/pledgewatch/internal/api"
	"github.com/pledgewatch/pledgewatch/internal/api/handlers"
	"github.com/pledgewatch/pledgewatch/internal/config"
	"github.com/pledgewatch/pledgewatch/internal/gateway"
	"github.com/pledgewatch/pledgewatch/internal/index"
	"github.com/pledgewatch/pledgewatch/internal/jobs"
	"github.com/pledgewatch/pledgewatch/internal/openai"
	"github.com/pledgewatch/pledgewatch/internal/realtime"
	"github.com/pledgewatch/pledgewatch/internal/repository"
	"github.com/pledgewatch/pledgewatch/internal/server"
	"github.com/pledgewatch/pledgewatch/internal/service"
	"github.com/pledgewatch/pledgewatch/internal/storage"
	"github.com/pledgewatch/pledgewatch/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the pledgewatch API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("no-sweep", false, "Disable the periodic news sweep worker")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetString("port")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	companyRepo := repository.NewCompanyRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	newsRepo := repository.NewNewsRepository(pool)
	analysisRepo := repository.NewAnalysisRepository(pool)
	alertRepo := repository.NewAlertRepository(pool)

	var archiver service.Archiver
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
		log.Printf("S3 bucket '%s' ready for document archives", cfg.S3Bucket)
		archiver = s3Client
	}

	// Without an OpenAI key the pipeline stays functional: hashing
	// embeddings for retrieval and the heuristic scorer for assessment.
	var embedder service.EmbeddingClient
	var reasoner gateway.Reasoner
	var dim int
	if cfg.HasOpenAI() {
		client := openai.NewClient(cfg.OpenAIAPIKey)
		embedder = client
		reasoner = client
		dim = openai.DefaultEmbeddingDimensions
		log.Println("using OpenAI embeddings and reasoning")
	} else {
		hashing := service.NewHashingEmbedder(0)
		embedder = hashing
		dim = hashing.Dimension()
		log.Println("OPENAI_API_KEY not set, using hashing embeddings and the heuristic scorer")
	}

	passageIndex := index.New(dim)

	hub := realtime.NewHub(realtime.HubConfig{ReplaySize: cfg.AlertReplaySize}, nil)
	go hub.Run(ctx)

	alertSvc := service.NewAlertService(alertRepo, hub, service.AlertConfig{
		Cooldown: cfg.AlertCooldown,
	})
	companySvc := service.NewCompanyService(companyRepo)
	documentSvc := service.NewDocumentService(companyRepo, documentRepo, embedder, passageIndex, archiver)
	newsSvc := service.NewNewsService(newsRepo, companyRepo, alertSvc, hub, nil)
	assessor := gateway.New(reasoner, gateway.Config{Timeout: cfg.GatewayTimeout})
	analysisSvc := service.NewAnalysisService(
		companyRepo, documentRepo, newsRepo, analysisRepo,
		embedder, passageIndex, assessor, alertSvc, hub,
		service.AnalysisConfig{
			TopKPassages:   cfg.TopKPassages,
			RecentArticles: cfg.RecentArticles,
		}, nil,
	)

	if n, err := documentSvc.RebuildIndex(ctx); err != nil {
		log.Printf("index rebuild failed (continuing with vector search only): %v", err)
	} else {
		log.Printf("indexed %d passages", n)
	}

	if err := rehydrateCooldowns(ctx, companyRepo, alertSvc); err != nil {
		log.Printf("cool-down rehydration failed (continuing): %v", err)
	}

	var sweepWorker *jobs.Worker
	noSweep, _ := cmd.Flags().GetBool("no-sweep")
	if !noSweep {
		sweeper := jobs.NewNewsSweeper(companyRepo, newsRepo, alertSvc, cfg.SweepInterval)
		sweepWorker = jobs.NewWorker(sweeper, cfg.SweepInterval)
		go sweepWorker.Start(ctx)
		log.Println("news sweep worker started")
	}

	router := server.NewRouter(server.RouterConfig{
		CompanyHandler:  handlers.NewCompanyHandler(companySvc),
		DocumentHandler: handlers.NewDocumentHandler(documentSvc),
		NewsHandler:     handlers.NewNewsHandler(newsSvc),
		AnalysisHandler: handlers.NewAnalysisHandler(analysisSvc),
		AlertHandler:    handlers.NewAlertHandler(alertSvc),
		WebSocket:       hub.Handle,
		Health:          healthHandler(pool, passageIndex, reasoner != nil),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if sweepWorker != nil {
		sweepWorker.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// healthHandler reports subsystem readiness. The reasoner being absent is
// not a failure; the fallback scorer keeps assessments available.
func healthHandler(pool *pgxpool.Pool, passageIndex *index.Index, reasonerConfigured bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		dbStatus := "ok"
		if err := pool.Ping(r.Context()); err != nil {
			status = "degraded"
			dbStatus = "unreachable"
		}
		reasonerStatus := "fallback"
		if reasonerConfigured {
			reasonerStatus = "ok"
		}
		api.Success(w, http.StatusOK, map[string]any{
			"status":        status,
			"database":      dbStatus,
			"reasoner":      reasonerStatus,
			"indexed_count": passageIndex.Len(),
		})
	}
}

// rehydrateCooldowns restores alert cool-down windows from the database
// so a restart does not re-alert inside an active window.
func rehydrateCooldowns(ctx context.Context, companyRepo *repository.CompanyRepository, alertSvc *service.AlertService) error {
	companies, err := companyRepo.List(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, len(companies))
	for i, c := range companies {
		ids[i] = c.ID
	}
	return alertSvc.RehydrateCooldown(ctx, ids)
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err == migrate.ErrNoChange {
		log.Println("database schema up to date")
	} else {
		log.Println("database migrations applied")
	}
	return nil
}
