package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/infra/opentdb"
	"trivia-quiz-service/internal/infra/postgres"
	redissession "trivia-quiz-service/internal/infra/redis"
	transport "trivia-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := migrateDSN(ctx, cfg.Postgres.URL); err != nil {
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

	var registry app.SessionRegistry = memory.NewSessionRegistry()
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		registry = redissession.NewSessionRegistry(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	}

	var recorder app.EventRecorder = app.NopRecorder{}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		recorder = postgres.NewEventRecorder(pool)
	}

	source := newQuestionSource(cfg)
	quizCfg := quizConfig(cfg)
	factory := func(id string) *app.Controller {
		return app.NewController(id, quizCfg, source)
	}

	wsHandler := transport.NewWSHandler(registry, factory, recorder)
	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(wsHandler, registry, cfg.Server.AllowedOrigins),
		ReadTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting quiz service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newQuestionSource(cfg config.Config) *opentdb.Client {
	return opentdb.NewClient(cfg.Trivia.BaseURL,
		opentdb.WithBatch(cfg.Trivia.Amount, cfg.Trivia.Category),
		opentdb.WithTimeout(config.TTLDuration(cfg.Trivia.Timeout, opentdb.DefaultTimeout)),
		opentdb.WithMaxConcurrent(cfg.Trivia.MaxConcurrent),
	)
}

func quizConfig(cfg config.Config) app.Config {
	def := app.DefaultConfig()
	return app.Config{
		TimeLimit: config.TTLDuration(cfg.Quiz.TimeLimit, def.TimeLimit),
		Tick:      config.TTLDuration(cfg.Quiz.Tick, def.Tick),
	}
}
