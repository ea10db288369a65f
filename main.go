package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"greendrake/commentguard/internal/api"
	"greendrake/commentguard/internal/cache"
	"greendrake/commentguard/internal/captcha"
	"greendrake/commentguard/internal/config"
	"greendrake/commentguard/internal/db"
	"greendrake/commentguard/internal/logging"
	"greendrake/commentguard/internal/services"
	"greendrake/commentguard/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'all' (default)")

func main() {
	flag.Parse()
	logging.Setup(os.Getenv("LOG_LEVEL"))

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(cfg.LogLevel)

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Error().Err(err).Msg("Error disconnecting from Redis")
		}
	}()

	// Initialize Services needed by handlers and/or task processor
	commentService := services.NewCommentService(mongoDb)
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 10*time.Second)
	if err := commentService.EnsureIndexes(indexCtx); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure comment indexes")
	}
	cancelIndex()
	policyService := services.NewPolicyService(services.NewOptionStore(mongoDb), redisClient)

	// Initialize Task Client
	taskClient := tasks.NewClient(redisClient)
	defer taskClient.Close()

	var wg sync.WaitGroup

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1)

	// Start Service API (always runs)
	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: api.SetupServiceRouter(policyService, taskClient, shutdownChan),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Str("port", cfg.ServiceApiPort).Msg("Service API listening")
		if err := serviceSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Service API ListenAndServe error")
		}
		log.Info().Msg("Service API server stopped.")
	}()

	// --- Mode-specific servers ---
	var mainApiSrv *http.Server
	var backgroundTaskSrv *asynq.Server
	var scheduler *asynq.Scheduler

	log.Info().Str("mode", cfg.RunMode).Msg("Starting application")

	apiMode := func() {
		mainApiRouter, err := api.SetupRouter(cfg, policyService, commentService, captcha.NewRecaptchaVerifier(cfg))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to set up main API router")
		}
		mainApiSrv = &http.Server{
			Addr:              ":" + cfg.ApiPort,
			Handler:           mainApiRouter,
			ReadHeaderTimeout: 10 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info().Str("port", cfg.ApiPort).Msg("Main API listening")
			if err := mainApiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("Main API ListenAndServe error")
			}
			log.Info().Msg("Main API server stopped.")
		}()
	}

	bgMode := func() {
		processor := tasks.NewTaskProcessor(cfg, commentService)
		var mux *asynq.ServeMux
		backgroundTaskSrv, mux = tasks.SetupServer(redisClient, processor)
		// not Run: Run waits for OS signals only, and the Service API can also stop us
		if err := backgroundTaskSrv.Start(mux); err != nil {
			log.Fatal().Err(err).Msg("Background task server error")
		}
		log.Info().Msg("Background task server started.")

		scheduler, err = tasks.SetupScheduler(redisClient, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to set up task scheduler")
		}
		if err := scheduler.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start task scheduler")
		}
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	default:
		log.Fatal().Str("mode", cfg.RunMode).Msg("Invalid run mode specified in config")
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")
	case <-shutdownChan:
		log.Info().Msg("Shutdown requested via Service API. Shutting down gracefully...")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("Service API server shutdown error")
	}
	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Main API server shutdown error")
		}
	}
	if scheduler != nil {
		scheduler.Shutdown()
	}
	if backgroundTaskSrv != nil {
		backgroundTaskSrv.Shutdown()
	}

	log.Info().Msg("Waiting for servers to stop...")
	wg.Wait()

	log.Info().Msg("Server gracefully stopped")
}
