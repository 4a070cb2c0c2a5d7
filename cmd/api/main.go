package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brikomag/pricewatch/internal/cache"
	"github.com/brikomag/pricewatch/internal/config"
	"github.com/brikomag/pricewatch/internal/database"
	"github.com/brikomag/pricewatch/internal/export"
	"github.com/brikomag/pricewatch/internal/handler"
	"github.com/brikomag/pricewatch/internal/mailer"
	"github.com/brikomag/pricewatch/internal/middleware"
	"github.com/brikomag/pricewatch/internal/repository"
	"github.com/brikomag/pricewatch/internal/service"
	"github.com/brikomag/pricewatch/internal/worker"
	"github.com/brikomag/pricewatch/pkg/praktiker"
)

// main is the application entrypoint for the PriceWatch API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting pricewatch api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 4. Initialize repositories
	itemRepo := repository.NewItemRepository(db)
	competitorRepo := repository.NewCompetitorRepository(db)
	productRepo := repository.NewCompetitorProductRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	tagRepo := repository.NewTagRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	// 4a. Seed the competitor idempotently
	competitor, err := competitorRepo.Upsert(cfg.Competitor.Code, cfg.Competitor.Name, cfg.Competitor.BaseURL)
	if err != nil {
		log.Error().Err(err).Msg("competitor seed failed")
		fmt.Fprintf(os.Stderr, "competitor seed failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Str("code", competitor.Code).Msg("competitor seeded")

	// 5. Initialize the lookup provider with its Redis cache in front
	scraper := praktiker.NewClient(cfg.Competitor.BaseURL, cfg.Scraper.UserAgent, cfg.Scraper.Timeout)
	lookup := cache.NewLookupCache(redisClient, scraper, cfg.Scraper.CacheTTL)

	// 6. Initialize services
	matchSvc := service.NewMatchService(
		itemRepo, competitorRepo, productRepo, matchRepo,
		lookup, cfg.Scraper.Timeout, cfg.Worker.MatchConcurrency,
	)
	viewSvc := service.NewViewService(itemRepo, competitorRepo, matchRepo)
	exporter := export.NewWriter()
	notifier := mailer.New(cfg.SMTP)
	reportSvc := service.NewReportService(viewSvc, tagRepo, exporter, notifier, cfg.Report.OutputDir)

	// 6a. Dispatcher: load schedules and start firing
	dispatcher := service.NewDispatcher(scheduleRepo, reportSvc, competitor.ID)
	if err := dispatcher.Refresh(); err != nil {
		// Keep the API up even when the schedule load fails; the refresh
		// worker retries on its next tick.
		log.Error().Err(err).Msg("initial dispatcher refresh failed")
	}
	dispatcher.Start()
	defer dispatcher.Stop()

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:   handler.NewHealthHandler(db),
		Item:     handler.NewItemHandler(itemRepo),
		Match:    handler.NewMatchHandler(matchSvc, viewSvc),
		Compare:  handler.NewCompareHandler(viewSvc, exporter, cfg.Report.OutputDir),
		Tag:      handler.NewTagHandler(tagRepo, itemRepo),
		Schedule: handler.NewScheduleHandler(scheduleRepo, tagRepo, dispatcher),
	}

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers)

	// 9. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 10. Start workers
	go worker.NewScheduleRefreshWorker(dispatcher, cfg.Worker.ScheduleRefreshInterval).Start(ctx)

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health   *handler.HealthHandler
	Item     *handler.ItemHandler
	Match    *handler.MatchHandler
	Compare  *handler.CompareHandler
	Tag      *handler.TagHandler
	Schedule *handler.ScheduleHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers) {
	router.GET("/health", handlers.Health.GetHealth)

	items := router.Group("/items")
	{
		items.POST("/upsert", handlers.Item.UpsertItems)
		items.GET("", handlers.Item.ListItems)
	}

	match := router.Group("/match")
	{
		match.POST("/auto/:competitor_code", handlers.Match.AutoMatchAll)
		match.GET("/view/:competitor_code", handlers.Match.GetView)
		match.POST("/manual_by_barcode/:competitor_code", handlers.Match.ManualMatch)
	}

	compare := router.Group("/compare")
	{
		compare.GET("/:competitor_code", handlers.Compare.GetComparison)
		compare.GET("/:competitor_code/export", handlers.Compare.ExportComparison)
	}

	tags := router.Group("/tags")
	{
		tags.POST("", handlers.Tag.CreateTag)
		tags.GET("", handlers.Tag.ListTags)
		tags.POST("/:id/items", handlers.Tag.AddItems)
	}

	schedules := router.Group("/schedules")
	{
		schedules.POST("", handlers.Schedule.CreateSchedule)
		schedules.GET("", handlers.Schedule.ListSchedules)
		schedules.PATCH("/:id/active", handlers.Schedule.SetActive)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
