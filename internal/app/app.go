// Package app wires configuration, storage, cache, use cases and the HTTP
// server together and runs the server until ctx is done.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/gorilla/securecookie"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/adapter/repository/sqldb"
	"github.com/vadimbarashkov/shortlink/internal/config"
	"github.com/vadimbarashkov/shortlink/internal/slug"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
	"github.com/vadimbarashkov/shortlink/migrations"
	"github.com/vadimbarashkov/shortlink/pkg/postgres"
	"github.com/vadimbarashkov/shortlink/pkg/sqlite"
	"golang.org/x/sync/errgroup"

	rediscache "github.com/vadimbarashkov/shortlink/internal/adapter/cache/redis"
	delivery "github.com/vadimbarashkov/shortlink/internal/adapter/delivery/http"
)

const shutdownTimeout = 10 * time.Second

func Run(ctx context.Context, cfg *config.Config, version string) error {
	const op = "app.Run"

	logger := NewLogger(cfg.Env)

	db, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer db.Close()

	var linkOpts []usecase.LinkOption

	if cfg.Redis.Addr != "" {
		client, err := rediscache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("link cache disabled", slog.String("addr", cfg.Redis.Addr), slog.Any("err", err))
		} else {
			defer client.Close()

			cache := rediscache.NewLinkCache(client, rediscache.WithTTL(cfg.Redis.TTL))
			linkOpts = append(linkOpts, usecase.WithLinkCache(cache))
		}
	}

	style, err := slug.ParseStyle(cfg.Slug.Style)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	linkUseCase := usecase.NewLinkUseCase(
		sqldb.NewLinkRepository(db),
		slug.NewGenerator(style, cfg.Slug.Length),
		linkOpts...,
	)
	authUseCase := usecase.NewAuthUseCase(cfg.Password, cfg.APIKeySize, sqldb.NewAPIKeyRepository(db))

	hashKey, blockKey, err := sessionKeys(cfg.Session)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	router := delivery.NewRouter(
		logger,
		delivery.Options{
			APIPrefix:          cfg.APIPrefix,
			PublicMode:         cfg.PublicMode,
			TemporaryRedirect:  cfg.TemporaryRedirect(),
			SiteURL:            cfg.SiteURL,
			Version:            version,
			CacheControlHeader: cfg.CacheControlHeader,
			AllowedOrigins:     cfg.CORS.AllowedOrigins,
		},
		delivery.NewSessions(hashKey, blockKey, cfg.Session.Secure),
		linkUseCase,
		authUseCase,
	)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server",
			slog.String("addr", server.Addr),
			slog.String("version", version),
			slog.String("storage", cfg.Storage.Driver),
			slog.Bool("password", authUseCase.PasswordRequired()),
			slog.Bool("public_mode", cfg.PublicMode),
		)

		var err error

		if cfg.HTTPServer.TLS() {
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		logger.Info("server stopped")

		return nil
	})

	return g.Wait()
}

// NewLogger returns the request logger. Production logs are JSON, the rest
// concise text.
func NewLogger(env string) *httplog.Logger {
	level := slog.LevelDebug
	if env == config.EnvProd {
		level = slog.LevelInfo
	}

	return httplog.NewLogger("shortlink", httplog.Options{
		JSON:     env == config.EnvProd,
		Concise:  env != config.EnvProd,
		LogLevel: level,
	})
}

func openStore(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	const op = "app.openStore"

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pg := cfg.Storage.Postgres

		db, err := postgres.New(
			ctx,
			pg.DSN(),
			postgres.WithConnMaxIdleTime(pg.ConnMaxIdleTime),
			postgres.WithConnMaxLifetime(pg.ConnMaxLifetime),
			postgres.WithMaxIdleConns(pg.MaxIdleConns),
			postgres.WithMaxOpenConns(pg.MaxOpenConns),
			postgres.WithConnectRetry(pg.ConnectAttempts, time.Second),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
		}

		src, err := migrations.Source(migrations.Postgres)
		if err == nil {
			err = postgres.RunMigrations(src, pg.DSN())
		}
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: failed to run migrations: %w", op, err)
		}

		return db, nil

	case config.DriverSQLite:
		path := cfg.Storage.SQLite.Path

		db, err := sqlite.New(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to open database: %w", op, err)
		}

		src, err := migrations.Source(migrations.SQLite)
		if err == nil {
			err = sqlite.RunMigrations(src, path)
		}
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: failed to run migrations: %w", op, err)
		}

		return db, nil

	default:
		return nil, fmt.Errorf("%s: unknown storage driver %q", op, cfg.Storage.Driver)
	}
}

// sessionKeys decodes the configured cookie keys. Missing keys are generated,
// so sessions do not survive a restart unless both are set.
func sessionKeys(s config.Session) (hashKey, blockKey []byte, err error) {
	const op = "app.sessionKeys"

	hashKey = []byte(s.HashKey)
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(64)
	}

	blockKey = []byte(s.BlockKey)
	if len(blockKey) == 0 {
		blockKey = securecookie.GenerateRandomKey(32)
	}

	switch len(blockKey) {
	case 16, 24, 32:
	default:
		return nil, nil, fmt.Errorf("%s: block key must be 16, 24 or 32 bytes, got %d", op, len(blockKey))
	}

	if hashKey == nil || blockKey == nil {
		return nil, nil, fmt.Errorf("%s: failed to generate random keys", op)
	}

	return hashKey, blockKey, nil
}
