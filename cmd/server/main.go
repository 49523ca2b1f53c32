package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alexedwards/scs/pgxstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/sidhushesank/ethical-dowry-analyser/internal/auth"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/charts"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/config"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/core"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/logging"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/web"
)

// createSessionsTable is the schema expected by pgxstore.
const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
	token  TEXT PRIMARY KEY,
	data   BYTEA NOT NULL,
	expiry TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions (expiry);`

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		os.Exit(hashPassword(os.Args[2:]))
	}

	// Values already in the environment win over .env.
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file")
	}

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users, err := auth.ParseUsers(cfg.Auth.Users)
	if err != nil {
		return fmt.Errorf("AUTH_USERS: %w", err)
	}
	provider, err := auth.NewStaticProvider(users)
	if err != nil {
		return fmt.Errorf("auth provider: %w", err)
	}
	slog.Info("accounts loaded", "count", len(provider.Usernames()))

	sessions := scs.New()
	sessions.Lifetime = cfg.Session.Lifetime
	sessions.IdleTimeout = cfg.Session.IdleTimeout
	sessions.Cookie.Name = cfg.Session.CookieName
	sessions.Cookie.Secure = cfg.Session.Secure
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.SameSite = http.SameSiteLaxMode

	var activity core.ActivityLog
	if cfg.Database.Enabled() {
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		if _, err := pool.Exec(ctx, createSessionsTable); err != nil {
			return fmt.Errorf("create sessions table: %w", err)
		}
		store := pgxstore.New(pool)
		defer store.StopCleanup()
		sessions.Store = store

		if activity, err = core.NewPGActivityLog(ctx, pool); err != nil {
			return err
		}
	} else {
		sessions.Store = memstore.New()
		activity = core.NewMemoryActivityLog(core.DefaultActivityCapacity)
		slog.Info("no database configured, sessions and activity are kept in memory")
	}

	maxSize := int64(cfg.Upload.MaxFileSize)
	loader := core.NewLoader(maxSize)
	limiter := core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	uploads, err := core.NewUploadStore(cfg.Data.UploadDir, maxSize, loader, limiter)
	if err != nil {
		return err
	}

	if ds, err := loader.Load(ctx, cfg.Data.DefaultPath); err != nil {
		slog.Warn("sample dataset unavailable", "path", cfg.Data.DefaultPath, "error", err)
	} else {
		slog.Info("sample dataset loaded", "path", cfg.Data.DefaultPath, "rows", ds.Len())
	}

	server, err := web.NewServer(web.Deps{
		Config:   cfg,
		Sessions: sessions,
		Auth:     provider,
		Resolver: core.NewResolver(cfg.Data.UploadDir, cfg.Data.DefaultPath),
		Loader:   loader,
		Uploads:  uploads,
		Activity: activity,
		Charts:   charts.NewRenderer(cfg.Charts.Width, cfg.Charts.Height),
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if st := limiter.Status(); st.Active > 0 {
		slog.Info("waiting for uploads to complete", "active", st.Active)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// openPool connects to PostgreSQL with the configured pool limits.
func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}

// hashPassword prints a bcrypt hash for an AUTH_USERS entry. The password is
// read from the first argument or, if absent, from one line of stdin.
func hashPassword(args []string) int {
	var password string
	if len(args) > 0 {
		password = args[0]
	} else {
		fmt.Fprint(os.Stderr, "password: ")
		sc := bufio.NewScanner(os.Stdin)
		if sc.Scan() {
			password = strings.TrimRight(sc.Text(), "\r\n")
		}
	}
	if password == "" {
		fmt.Fprintln(os.Stderr, "usage: server hash-password [password]")
		return 2
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		return 1
	}
	fmt.Println(hash)
	return 0
}
