package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tabletop-tournaments/brackets"
	"github.com/Dosada05/tabletop-tournaments/config"
	"github.com/Dosada05/tabletop-tournaments/db"
	"github.com/Dosada05/tabletop-tournaments/handlers"
	"github.com/Dosada05/tabletop-tournaments/live"
	"github.com/Dosada05/tabletop-tournaments/repositories"
	api "github.com/Dosada05/tabletop-tournaments/routes"
	"github.com/Dosada05/tabletop-tournaments/services"
	"github.com/Dosada05/tabletop-tournaments/storage"
	"github.com/Dosada05/tabletop-tournaments/utils"
)

// @title Tabletop Tournaments API
// @version 1.0
// @description Score entry and standings for tabletop game tournaments.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("driver", cfg.DatabaseDriver))

	dialect, err := repositories.ParseDialect(cfg.DatabaseDriver)
	if err != nil {
		logger.Error("unsupported database driver", slog.Any("error", err))
		os.Exit(1)
	}
	dsn := cfg.DatabaseURL
	if dialect == repositories.DialectSQLite && !strings.HasPrefix(dsn, "file:") {
		dsn = db.SQLiteDSN(dsn)
	}

	// Миграции
	if err := db.Migrate(dialect, dsn); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// Подключение к базе данных
	dbConn, err := db.Connect(dialect, dsn, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Инициализация загрузчика файлов (Cloudflare R2), если настроен
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("Cloudflare R2 not configured, results export disabled")
	}

	// Инициализация WebSocket Hub
	hub := live.NewHub(logger)
	go hub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewUserRepository(dbConn, dialect)
	tournamentRepo := repositories.NewTournamentRepository(dbConn, dialect)
	roundRepo := repositories.NewRoundRepository(dbConn, dialect)
	categoryRepo := repositories.NewScoreCategoryRepository(dbConn, dialect)
	entryRepo := repositories.NewEntryRepository(dbConn, dialect)
	gameRepo := repositories.NewGameRepository(dbConn, dialect)
	scoreRepo := repositories.NewScoreRepository(dbConn, dialect)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	tokens := utils.NewTokenManager(cfg.JWTSecretKey, cfg.TokenTTL)
	authorizer := services.NewAuthorizer(tournamentRepo, entryRepo)
	authService := services.NewAuthService(userRepo, tokens, logger)
	tournamentService := services.NewTournamentService(
		dbConn,
		tournamentRepo,
		roundRepo,
		categoryRepo,
		entryRepo,
		gameRepo,
		authorizer,
		cfg.DefaultMission,
		logger,
	)
	entryService := services.NewEntryService(dbConn, tournamentRepo, entryRepo, userRepo, logger)
	gameService := services.NewGameService(
		dbConn,
		tournamentRepo,
		roundRepo,
		entryRepo,
		gameRepo,
		authorizer,
		brackets.NewRoundRobinPairer(),
		logger,
	)
	ledger := services.NewScoreLedger(scoreRepo, categoryRepo, gameRepo, logger)
	scoreService := services.NewScoreService(
		dbConn,
		services.NewScoreResolver(tournamentRepo, categoryRepo, gameRepo, entryRepo),
		services.NewScoreValidator(scoreRepo),
		ledger,
		tournamentRepo,
		categoryRepo,
		gameRepo,
		scoreRepo,
		hub,
		logger,
	)
	resultsService := services.NewResultsService(
		tournamentRepo,
		categoryRepo,
		entryRepo,
		gameRepo,
		scoreRepo,
		authorizer,
		uploader,
		logger,
	)
	logger.Info("Services initialized")

	// Периодическая проверка завершенности игр
	sched, err := services.StartCompletionSweep(ctx, services.NewCompletionSweeper(ledger, gameRepo, logger), cfg.CompletionSweepInterval)
	if err != nil {
		logger.Error("failed to start completion sweep", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sched.Shutdown(); err != nil {
			logger.Error("scheduler shutdown failed", slog.Any("error", err))
		}
	}()
	logger.Info("Completion sweep scheduled", slog.Duration("interval", cfg.CompletionSweepInterval))

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Entry:      handlers.NewEntryHandler(entryService),
		Game:       handlers.NewGameHandler(gameService, scoreService),
		Score:      handlers.NewScoreHandler(scoreService, authorizer),
		Results:    handlers.NewResultsHandler(resultsService),
		WebSocket:  handlers.NewWebSocketHandler(hub, cfg.CORSAllowedOrigins, logger),
	}, tokens, cfg.CORSAllowedOrigins, logger)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
			return
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}
	stop()
	logger.Info("application exited")
}
