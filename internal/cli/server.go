package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizhub/internal/app"
	"quizhub/internal/config"
	"quizhub/internal/infra/memory"
	infrapg "quizhub/internal/infra/postgres"
	infraredis "quizhub/internal/infra/redis"
	"quizhub/internal/logger"
	transport "quizhub/internal/transport/http"
	"quizhub/internal/verification"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz platform server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.File)
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}
	origin := cfg.Server.Origin
	if origin == "" {
		origin = "http://localhost:" + finalPort
	}

	var store app.DocumentStore
	switch {
	case cfg.Redis.Addr != "":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = infraredis.NewStore(client)
		log.Info("using redis document store", zap.String("addr", cfg.Redis.Addr))
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = infrapg.NewStore(pool)
		log.Info("using postgres document store")
	default:
		store = memory.NewStore()
		log.Warn("no store configured, using volatile in-memory store")
	}

	identity := app.NewIdentity(store, log)
	quizzes := app.NewQuizRepository(store, origin, log)
	attempts := app.NewAttemptRecorder(store, log)
	ranker := app.NewLeaderboard(attempts)
	feed := app.NewLeaderboardFeed(ranker)
	verifier := verification.NewDispatcher(verification.Config{
		APIURL:     cfg.Email.APIURL,
		ServiceID:  cfg.Email.ServiceID,
		TemplateID: cfg.Email.TemplateID,
		PublicKey:  cfg.Email.PublicKey,
	}, log)

	srv := transport.NewServer(identity, quizzes, attempts, ranker, feed, verifier, cfg.Auth.JWTSecret, log)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quizhub", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
