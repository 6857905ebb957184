package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/myrsky/passo/internal/envstruct"
	"github.com/myrsky/passo/internal/exercise"
	"github.com/myrsky/passo/internal/logging"
	"github.com/myrsky/passo/internal/plan"
	"github.com/myrsky/passo/internal/profile"
	"github.com/myrsky/passo/internal/session"
	"github.com/myrsky/passo/internal/sqlite"
	"github.com/myrsky/passo/internal/weather"
	"golang.org/x/sync/errgroup"
)

type application struct {
	logger    *slog.Logger
	profiles  *profile.Repository
	exercises *exercise.Repository
	plans     *plan.Repository
	sessions  *session.Repository
	walk      *session.WalkRecorder
	circuit   *session.CircuitRecorder
	weather   *weather.Client
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"PASSO_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"PASSO_SQLITE_URL" envDefault:"./passo.sqlite3"`
	// WeatherURL is the base URL of the Open-Meteo compatible forecast API.
	WeatherURL string `env:"PASSO_WEATHER_URL" envDefault:"https://api.open-meteo.com/v1"`
	// CORSOrigins is a comma-separated list of allowed origins for the app frontends.
	CORSOrigins string `env:"PASSO_CORS_ORIGINS" envDefault:"*"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return fmt.Errorf("populate config: %w", err)
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return fmt.Errorf("open db (%s): %w", cfg.SqliteURL, err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close db", slog.Any("error", closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	sessions := session.NewRepository(db, logger)
	app := application{
		logger:    logger,
		profiles:  profile.NewRepository(db),
		exercises: exercise.NewRepository(db),
		plans:     plan.NewRepository(db, logger),
		sessions:  sessions,
		walk:      session.NewWalkRecorder(sessions, logger),
		circuit:   session.NewCircuitRecorder(sessions, logger),
		weather:   weather.NewClient(cfg.WeatherURL, nil, logger),
	}

	runner := session.NewRunner(time.Second, app.walk, app.circuit)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("session runner: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := app.configureAndStartServer(ctx, cfg.Addr, app.routes(cfg.CORSOrigins)); err != nil {
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	})
	if err = g.Wait(); err != nil {
		return err
	}
	return nil
}

func main() {
	ctx := context.Background()

	// Missing .env is fine, the defaults cover local development.
	_ = godotenv.Load()

	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", slog.Any("error", err))
		os.Exit(1)
	}
}
