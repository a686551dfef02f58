package main

import (
	"context"
	"log/slog"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avelasq/authgate/internal/accounts"
	"github.com/avelasq/authgate/internal/config"
	"github.com/avelasq/authgate/internal/db"
	httpx "github.com/avelasq/authgate/internal/http"
	"github.com/avelasq/authgate/internal/media"
	"github.com/avelasq/authgate/internal/observability"
	"github.com/avelasq/authgate/internal/queue/redisclient"
	"github.com/avelasq/authgate/internal/queue/redisqueue"
	"github.com/avelasq/authgate/internal/repo/postgres"
	"github.com/avelasq/authgate/internal/security"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, "authgate-api", cfg.OTLPEndpoint)

	if err != nil {
		log.Warn("tracing disabled", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	if err := db.RunMigrations(ctx, cfg.DBURL); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	redisClient := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	queue := redisqueue.New(redisClient.Raw(), cfg.QueueKey)

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	usersRepo := postgres.NewUsersRepo(pool, prom)
	mediaRepo := postgres.NewUserMediaRepo(pool, prom)

	presigner, err := media.NewPresigner(ctx, cfg)

	if err != nil {
		log.Error("s3 presigner init failed", "err", err)
		os.Exit(1)
	}

	service := accounts.NewService(usersRepo, security.NewHasher(cfg.BcryptCost))

	router := httpx.NewRouter(httpx.Deps{
		Config: cfg,
		Logger: log,
		Prom:   prom,

		Accounts: service,
		Queue:    queue,
		Users:    usersRepo,
		Media:    mediaRepo,
		Presign:  presigner,

		PingDB: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
		PingRedis: func(ctx context.Context) error {
			return redisClient.Raw().Ping(ctx).Err()
		},
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}

	log.Info("shutdown complete")
}
