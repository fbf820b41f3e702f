package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobx/internal/auth"
	"github.com/justsurfingit/jobx/internal/config"
	"github.com/justsurfingit/jobx/internal/database"
	"github.com/justsurfingit/jobx/internal/handlers"
	"github.com/justsurfingit/jobx/internal/logger"
	"github.com/justsurfingit/jobx/internal/middleware"
	"github.com/justsurfingit/jobx/internal/resume"
	"github.com/justsurfingit/jobx/internal/router"
	"github.com/justsurfingit/jobx/internal/services"
)

func main() {
	configPath := flag.String("config", os.Getenv("JOBX_CONFIG"), "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "jobx: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// 1. Load Configuration (.env, file, environment)
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.JSON)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database Connection
	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	// 3. Initialize Core Services (Dependencies)
	cache := listingCache(cfg, log)
	quota := services.NewQuotaPolicy(cfg.Applications.FreeQuota, cfg.Applications.QuotaWindow)
	userService := services.NewUserService(db, log)
	companyService := services.NewCompanyService(db, log)
	jobService := services.NewJobService(db, cache, log)
	applicationService := services.NewApplicationService(db, quota, cache, cfg.Applications.StrictTransitions, log)
	subscriptionService := services.NewSubscriptionService(db, quota, userService, log)

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn("No JWT secret configured, using a random one. Tokens will not survive a restart.")
	}

	resumes, err := resume.Open(cfg)
	if err != nil {
		return err
	}
	var uploadsDir, uploadsPath string
	if disk, ok := resumes.Backend.(*resume.DiskBackend); ok {
		uploadsDir, uploadsPath = disk.Dir, disk.PublicPath
	}
	log.Infow("Resume storage ready", "backend", cfg.Uploads.Backend)

	// 4. Optional Gemini job extraction
	var extractor services.JobExtractor
	if llm, err := services.NewLLMService(ctx, cfg.LLM.GeminiAPIKey, cfg.LLM.Model, log); err != nil {
		log.Warnw("Job extraction disabled", logger.FieldError, err)
	} else {
		extractor = llm
		log.Infow("Gemini client ready", "model", cfg.LLM.Model)
	}

	// 5. Start the expiry sweeper
	sweeper := services.NewSweeperService(jobService, cfg.Sweeper.Interval, log)
	sweeperDone := sweeper.Start(ctx)

	// 6. Initialize Handlers
	var limiter *middleware.IPRateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// 7. Setup Router, CORS and Routes
	r := router.New(router.Deps{
		Log:           log,
		Tokens:        tokens,
		Companies:     companyService,
		RateLimiter:   limiter,
		CORSOrigins:   cfg.Server.CORSOrigins,
		UploadsDir:    uploadsDir,
		UploadsPath:   uploadsPath,
		Jobs:          handlers.NewJobHandler(extractor, jobService, log),
		Applications:  handlers.NewApplicationHandler(applicationService, companyService, resumes, log),
		Auth:          handlers.NewAuthHandler(userService, tokens, log),
		Company:       handlers.NewCompanyHandler(companyService, log),
		Subscriptions: handlers.NewSubscriptionHandler(subscriptionService, log),
		Health:        handlers.NewHealthHandler(db, log),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Server starting", logger.FieldAddress, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stop()
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Graceful shutdown failed", logger.FieldError, err)
	}
	<-sweeperDone
	return nil
}

func listingCache(cfg *config.Config, log *zap.SugaredLogger) services.ListingCache {
	if cfg.Redis.URL == "" {
		return services.NopCache{}
	}
	cache, err := services.NewRedisCache(cfg.Redis.URL, cfg.Redis.TTL)
	if err != nil {
		log.Warnw("Listing cache disabled", logger.FieldError, err)
		return services.NopCache{}
	}
	log.Info("Listing cache enabled (redis)")
	return cache
}
