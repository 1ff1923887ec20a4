package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // Calendar days are computed in a configured zone

	"cebuano/internal/api"
	"cebuano/internal/catalog"
	"cebuano/internal/config"
	"cebuano/internal/domain"
	"cebuano/internal/handler"
	"cebuano/internal/metrics"
	"cebuano/internal/middleware"
	"cebuano/internal/repository"
	"cebuano/internal/repository/postgres"
	"cebuano/internal/repository/sqlite"
	"cebuano/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

var kinds = []domain.ItemKind{domain.KindFlashcard, domain.KindPhrase}

// stores holds the repositories of the selected store driver
type stores struct {
	db      *sql.DB
	users   repository.UserRepository
	reviews func(kind domain.ItemKind) repository.ReviewRepository
}

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Cebuano study bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("Failed to load timezone", zap.Error(err))
	}
	clock := service.SystemClock(loc)

	logger.Info("Configuration loaded successfully",
		zap.String("store", cfg.Store.Driver),
		zap.String("catalog", cfg.Catalog.Source),
		zap.String("timezone", loc.String()),
	)

	st, err := openStores(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer st.db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.MustNewMetrics(reg)

	// Initialize services
	decks := make([]*service.Deck, 0, len(kinds))
	catalogs := make([]*catalog.Cached, 0, len(kinds))
	for _, kind := range kinds {
		items, err := openCatalog(ctx, cfg, st.db, kind, logger)
		if err != nil {
			logger.Fatal("Failed to load catalog", zap.String("kind", string(kind)), zap.Error(err))
		}
		catalogs = append(catalogs, items)
		decks = append(decks, service.NewDeck(kind, st.reviews(kind), items, clock, logger, m))
	}
	settingsService := service.NewSettingsService(st.users)
	studyService := service.NewStudyService(settingsService, clock, logger, decks...)

	// HTTP API
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.RouterConfig{
		Study:    studyService,
		Metrics:  m,
		Gatherer: reg,
		Logger:   logger,
	})
	server := api.NewServer(cfg.HTTPAddr, router, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Initialize Telegram bot
	var bot *tele.Bot
	if cfg.BotDisabled {
		logger.Info("Telegram bot disabled")
	} else {
		bot, err = tele.NewBot(tele.Settings{
			Token:  cfg.BotToken,
			Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		})
		if err != nil {
			logger.Fatal("Failed to create bot", zap.Error(err))
		}
		bot.Use(middleware.EnsureLearner(settingsService, logger))

		h := handler.NewHandler(bot, studyService, logger)
		h.RegisterHandlers()

		logger.Info("Handlers registered")

		// Start bot in background
		go func() {
			logger.Info("Bot started successfully")
			bot.Start()
		}()
	}

	// SIGHUP drops cached catalog entries so edits to the items table are picked up
	reloadChan := make(chan os.Signal, 1)
	signal.Notify(reloadChan, syscall.SIGHUP)
	go func() {
		for range reloadChan {
			for _, c := range catalogs {
				c.Purge()
			}
			logger.Info("Catalog caches purged")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	signal.Stop(reloadChan)

	logger.Info("Shutdown signal received, stopping...")

	// Graceful shutdown
	if bot != nil {
		bot.Stop()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}
	cancel()

	logger.Info("Stopped gracefully")
}

// openStores connects the configured store and returns its repositories
func openStores(cfg *config.Config, logger *zap.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("SQLite store opened", zap.String("path", cfg.Store.SQLitePath))
		return &stores{
			db:    db,
			users: sqlite.NewUserRepo(db),
			reviews: func(kind domain.ItemKind) repository.ReviewRepository {
				return sqlite.NewReviewRepo(db, kind)
			},
		}, nil
	default:
		// Connect to database with retries
		db, err := connectDatabase(cfg.DSN(), logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Database connection established")

		// Run migrations
		if err := runMigrations(db, logger); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Database migrations completed")

		return &stores{
			db:    db,
			users: postgres.NewUserRepo(db),
			reviews: func(kind domain.ItemKind) repository.ReviewRepository {
				return postgres.NewReviewRepo(db, kind)
			},
		}, nil
	}
}

// openCatalog returns the cached item catalog for kind
func openCatalog(ctx context.Context, cfg *config.Config, db *sql.DB, kind domain.ItemKind, logger *zap.Logger) (*catalog.Cached, error) {
	var items repository.ItemRepository

	switch cfg.Catalog.Source {
	case config.CatalogDatabase:
		repo := postgres.NewItemRepo(db, kind)
		if cfg.Catalog.Seed {
			fixture, err := catalog.New(kind)
			if err != nil {
				return nil, err
			}
			if err := repo.Upsert(ctx, fixture.Items()); err != nil {
				return nil, fmt.Errorf("failed to seed %s catalog: %w", kind, err)
			}
			logger.Info("Catalog seeded", zap.String("kind", string(fixture.Kind())), zap.Int("items", len(fixture.Items())))
		}
		items = repo
	default:
		fixture, err := catalog.New(kind)
		if err != nil {
			return nil, err
		}
		logger.Info("Fixture catalog loaded", zap.String("kind", string(fixture.Kind())), zap.Int("items", len(fixture.Items())))
		items = fixture
	}

	return catalog.NewCached(items, cfg.Catalog.CacheSize)
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		// Test connection
		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		// Connection successful
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	// Run migrations
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Migrations applied successfully")
	}

	return nil
}
