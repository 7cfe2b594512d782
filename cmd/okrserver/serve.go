package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"okrproject/auth"
	"okrproject/database"
	"okrproject/handlers"
	"okrproject/metrics"
	"okrproject/middlewares"
	repository "okrproject/repositories"
	"okrproject/routes"
	"okrproject/services"
	"okrproject/tracing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg, log := rt.cfg, rt.log

	shutdownTracing, err := tracing.Init(ctx, log, cfg.OTLPEndpoint, "okr-api", cfg.Environment)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	if err := database.CreateIndexes(ctx, rt.db, log); err != nil {
		log.Warn("failed to create indexes", zap.Error(err))
	}

	revoker, closeRevoker, err := newRevoker(ctx, cfg.RedisURL, log)
	if err != nil {
		return err
	}
	defer closeRevoker()

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		return err
	}

	// Repositories
	objectiveRepo := repository.NewObjectiveRepository(rt.db)
	userRepo := repository.NewUserRepository(rt.db)
	avatarStore, err := repository.NewAvatarStore(rt.db)
	if err != nil {
		return err
	}

	prom := metrics.NewPrometheus(prometheus.DefaultRegisterer)

	// Services
	cascade := services.NewCascadeDeleter(objectiveRepo, userRepo, avatarStore, prom, log)
	objectiveService := services.NewObjectiveService(objectiveRepo, userRepo, prom, log)
	authService := services.NewAuthService(userRepo, avatarStore, tokens, revoker, log)
	userService := services.NewUserService(userRepo, cascade, prom, log, cfg.BulkConcurrency)
	reportService := services.NewReportService(objectiveRepo, userRepo)

	mux := routes.SetupRoutes(routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, log),
		Objectives: handlers.NewObjectiveHandler(objectiveService, log),
		Users:      handlers.NewUserHandler(userService, log),
		Reports:    handlers.NewReportHandler(reportService, log),
		Health:     handlers.NewHealthHandler(database.NewPinger(rt.client), log),
		Metrics:    promhttp.Handler(),
	}, middlewares.NewAuthenticator(tokens, userRepo, revoker, log))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.Wrap(mux, log, prom, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", zap.String("addr", server.Addr), zap.String("environment", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info("server shutting down")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newRevoker uses Redis when configured so logouts hold across instances.
func newRevoker(ctx context.Context, redisURL string, log *zap.Logger) (auth.Revoker, func(), error) {
	if redisURL == "" {
		log.Info("token revocation kept in memory: REDIS_URL not set")
		return auth.NewMemoryRevoker(), func() {}, nil
	}
	r, err := auth.NewRedisRevoker(ctx, redisURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info("token revocation backed by Redis")
	return r, func() {
		if err := r.Close(); err != nil {
			log.Warn("failed to close Redis client", zap.Error(err))
		}
	}, nil
}
