package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/newsflash/backend/internal/newsflash"
	"github.com/anonto42/newsflash/backend/internal/notify"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/anonto42/newsflash/backend/internal/repositories/memory"
	"github.com/anonto42/newsflash/backend/internal/router"
	"github.com/anonto42/newsflash/backend/pkg/config"
	"github.com/anonto42/newsflash/backend/pkg/firebase"
	"github.com/anonto42/newsflash/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment(), ServiceName: "newsflash-api"})
	l := logger.L()
	if err := cfg.Validate(); err != nil {
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	// Initialize storage
	var repos router.Repositories
	if cfg.Storage == config.StorageMemory {
		repos = router.MemoryRepositories(memory.NewStore())
		l.Warn().Msg("using in-memory storage, data is lost on restart")
	} else {
		db, err := config.InitDB(cfg)
		if err != nil {
			l.Fatal().Err(err).Msg("failed to initialize databases")
		}
		defer db.CloseDB() // Ensure database connections are closed when main exits

		if err := repositories.AutoMigrate(db.Postgres); err != nil {
			l.Fatal().Err(err).Msg("failed to migrate PostgreSQL")
		}
		posts := repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase))
		if err := posts.EnsureIndexes(ctx); err != nil {
			l.Fatal().Err(err).Msg("failed to create MongoDB indexes")
		}
		repos = router.PersistentRepositories(db.Postgres, db.Mongo.Database(cfg.MongoDatabase))
	}

	// Firebase is optional: without it pushes are only logged and
	// /auth/firebase-login is disabled.
	var (
		firebaseAuth *auth.Client
		sender       notify.Sender = notify.LogSender{}
	)
	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			l.Fatal().Err(err).Msg("failed to initialize Firebase")
		}
		firebaseAuth = app.AuthClient
		sender = notify.NewFCMSender(app.Messaging)
	} else {
		l.Warn().Msg("FIREBASE_CREDENTIALS_PATH not set, push notifications are logged only")
	}

	var generator newsflash.Generator = newsflash.Fallback{}
	if cfg.NewsflashURL != "" {
		remote := newsflash.NewRemote(cfg.NewsflashURL, 5*time.Second)
		defer remote.Close()
		generator = remote
	}

	queue := notify.NewQueue(repos.Notifications, notify.NewDispatcher(sender), notify.QueueConfig{
		Workers: cfg.NotifyWorkers,
		Size:    cfg.NotifyQueueSize,
		Timeout: cfg.NotifyTimeout,
	})
	queue.Start()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	config.SetupMiddleware(e)
	router.SetupRoutes(e, repos, router.Options{
		RelationshipModel: cfg.RelationshipModel,
		JWTSecret:         cfg.JWTSecret,
		RequireAuth:       cfg.RequireAuth,
		ExposeInternal:    cfg.IsDevelopment(),
		FirebaseAuth:      firebaseAuth,
		Generator:         generator,
		Newsflash:         newsflash.Options{MaxLength: cfg.NewsflashMaxLength},
		Notifier:          queue,
	})

	go func() {
		l.Info().Str("port", cfg.Port).Str("storage", cfg.Storage).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	l.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("server shutdown failed")
	}
	// Requests are done; flush what they enqueued before the stores close.
	queue.Close()
}
