package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchcraft/internal/config"
	"github.com/kailas-cloud/matchcraft/internal/db"
	"github.com/kailas-cloud/matchcraft/internal/db/memory"
	dbRedis "github.com/kailas-cloud/matchcraft/internal/db/redis"
	"github.com/kailas-cloud/matchcraft/internal/domain"
	logpkg "github.com/kailas-cloud/matchcraft/internal/logger"
	"github.com/kailas-cloud/matchcraft/internal/metrics"
	budgetrepo "github.com/kailas-cloud/matchcraft/internal/repository/budget"
	msgrepo "github.com/kailas-cloud/matchcraft/internal/repository/message"
	photorepo "github.com/kailas-cloud/matchcraft/internal/repository/photo"
	profilerepo "github.com/kailas-cloud/matchcraft/internal/repository/profile"
	"github.com/kailas-cloud/matchcraft/internal/repository/promptcache"
	searchrepo "github.com/kailas-cloud/matchcraft/internal/repository/search"
	chiTransport "github.com/kailas-cloud/matchcraft/internal/transport/chi"
	"github.com/kailas-cloud/matchcraft/internal/transport/gemini"
	"github.com/kailas-cloud/matchcraft/internal/transport/openai"
	healthuc "github.com/kailas-cloud/matchcraft/internal/usecase/health"
	messageuc "github.com/kailas-cloud/matchcraft/internal/usecase/message"
	profileuc "github.com/kailas-cloud/matchcraft/internal/usecase/profile"
	promptuc "github.com/kailas-cloud/matchcraft/internal/usecase/prompt"
	suggestuc "github.com/kailas-cloud/matchcraft/internal/usecase/suggest"
	usageuc "github.com/kailas-cloud/matchcraft/internal/usecase/usage"
	"github.com/kailas-cloud/matchcraft/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting matchcraft API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterPromptMetrics()
	metrics.RegisterSuggestMetrics()

	profileRepo := profilerepo.New(store)
	if err := profileRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create profile index", zap.Error(err))
	}

	profileSvc := profileuc.New(profileRepo, logger)
	healthSvc := healthuc.New(store, logger)

	if cfg.Photos.Enabled() {
		photos, err := buildPhotoStore(ctx, cfg.Photos)
		if err != nil {
			logger.Fatal("Failed to set up photo storage", zap.Error(err))
		}
		profileSvc.WithPhotos(photos, cfg.Photos.MaxBytes)
		healthSvc.WithCheck(healthuc.ComponentPhotoStorage, photos)
		logger.Info("Photo storage enabled",
			zap.String("endpoint", cfg.Photos.Endpoint),
			zap.String("bucket", cfg.Photos.Bucket),
		)
	}

	promptSvc, budget := buildPromptService(ctx, cfg.Prompt, store, healthSvc, logger)
	promptSvc.WithProfiles(profileRepo)

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}

	server := chiTransport.NewServer(chiTransport.Services{
		Profiles: profileSvc,
		Suggest:  suggestuc.New(searchrepo.New(store), logger),
		Prompt:   promptSvc,
		Messages: messageuc.New(msgrepo.New(store), profileRepo, logger),
		Usage:    usageuc.New(budgetReader),
		Health:   healthSvc,
	}, logger).WithLimits(cfg.HTTP.MaxBodyBytes, cfg.Photos.MaxBytes)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys, cfg.Auth.AdminAPIKeys))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter: r,
		AdminMiddlewares: []chiTransport.MiddlewareFunc{
			chiTransport.AdminAuthMiddleware(cfg.Auth.AdminAPIKeys),
		},
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore creates the database store for the configured driver. valkey
// speaks the same protocol and shares the redis client.
func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis, config.DriverValkey:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func buildPhotoStore(ctx context.Context, cfg config.PhotosConfig) (*photorepo.Store, error) {
	pc := photorepo.Config{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		UseSSL:    cfg.UseSSL,
		PublicURL: cfg.PublicURL,
	}
	client, err := photorepo.Connect(pc)
	if err != nil {
		return nil, err
	}
	photos := photorepo.New(client, pc)
	if err := photos.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return photos, nil
}

// buildPromptService assembles the generator chain:
// provider -> Instrumented (rate limit + budget) -> Service (cache).
// Without a configured provider the service runs disabled.
func buildPromptService(
	ctx context.Context,
	cfg config.PromptConfig,
	store db.Store,
	health *healthuc.Service,
	logger *zap.Logger,
) (*promptuc.Service, *promptuc.BudgetTracker) {
	provCfg, ok := cfg.Selected()
	if !ok {
		logger.Info("No prompt provider configured, AI features disabled")
		return promptuc.New(nil, "", cfg.MaxTokens, logger), nil
	}
	provName := cfg.Provider

	var (
		base  domain.Generator
		model = provCfg.Model
	)
	switch provCfg.Kind {
	case config.ProviderGemini:
		if model == "" {
			model = gemini.DefaultModel
		}
		g, err := gemini.NewGenerator(ctx, &gemini.Config{
			APIKey:      provCfg.APIKey,
			BaseURL:     provCfg.BaseURL,
			Model:       model,
			Temperature: provCfg.Temperature,
			Provider:    provName,
			Logger:      logger,
		})
		if err != nil {
			logger.Fatal("Failed to create gemini provider", zap.Error(err))
		}
		base = g
	default:
		base = openai.NewGenerator(&openai.Config{
			APIKey:      provCfg.APIKey,
			BaseURL:     provCfg.BaseURL,
			Model:       model,
			Temperature: provCfg.Temperature,
			User:        "matchcraft",
			Provider:    provName,
			Logger:      logger,
		})
	}
	if hc, ok := base.(domain.HealthChecker); ok {
		health.WithCheck(healthuc.ComponentPromptProvider, hc)
	}

	// Single BudgetTracker shared by the generator chain and usage service.
	var budget *promptuc.BudgetTracker
	budgetCfg := provCfg.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := promptuc.BudgetActionWarn
		if budgetCfg.Action == string(promptuc.BudgetActionReject) {
			action = promptuc.BudgetActionReject
		}
		budget = promptuc.NewBudgetTracker(
			provName, budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger,
		)
		// Connect persistence store, loads current counters from DB.
		budget.WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
	}

	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetChecker != nil.
	var budgetChecker promptuc.BudgetChecker
	if budget != nil {
		budgetChecker = budget
	}

	gen := promptuc.NewInstrumentedGenerator(
		base, provName, model, budgetChecker,
		promptuc.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst), logger,
	)

	svc := promptuc.New(gen, model, cfg.MaxTokens, logger).
		WithCache(promptcache.New(store, time.Duration(cfg.CacheTTLSec)*time.Second, metrics.PromptCacheTotal, logger))
	if budget != nil {
		svc.WithCacheHitRecorder(budget)
	}

	logger.Info("Prompt provider configured",
		zap.String("provider", provName),
		zap.String("kind", provCfg.Kind),
		zap.String("model", model),
		zap.Float64("rate_limit_rps", cfg.RateLimit.RPS),
	)
	return svc, budget
}
