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
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"trivia-party-service/internal/app"
	"trivia-party-service/internal/config"
	"trivia-party-service/internal/infra/memory"
	pgarchive "trivia-party-service/internal/infra/postgres"
	redisstore "trivia-party-service/internal/infra/redis"
	"trivia-party-service/internal/quizgen"
	transport "trivia-party-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env", "err", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(verbose, cfg.Log.Level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := quizgen.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model,
		config.TTLDuration(cfg.Gemini.Timeout, 60*time.Second))
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg); err != nil {
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	gameTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	var archive memory.QuizArchive = memory.NewQuizArchive()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		archive = pgarchive.NewQuizArchive(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 30*time.Minute)
	var quizzes app.QuizRepository
	var games app.GameDirectory
	if redisClient != nil {
		quizzes = redisstore.NewQuizRepository(redisClient, archive, quizTTL)
		games = redisstore.NewGameStore(redisClient, gameTTL)
	} else {
		quizzes = memory.NewQuizRepository(archive, quizTTL)
		games = memory.NewGameStore()
	}

	service := app.NewGameService(games, quizzes, source, app.Config{
		LeaderboardDwell: config.TTLDuration(cfg.Game.LeaderboardDwell, app.DefaultLeaderboardDwell),
		JoinDelay:        config.TTLDuration(cfg.Game.JoinDelay, app.DefaultJoinDelay),
		Logger:           logger,
	})
	wsHandler := transport.NewWSHandler(service, logger)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(service, wsHandler, cfg.Server.PublicURL),
		ReadTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting trivia service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
