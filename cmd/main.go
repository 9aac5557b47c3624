/*
Package main runs the SeaSnap API server.

Configuration comes from the environment (optionally seeded from .env). The server
stores accounts in PostgreSQL, or in process when DATABASE_URL=memory in development,
and mirrors avatars to S3 when a bucket is configured. SIGINT and SIGTERM trigger a
graceful shutdown.
*/
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

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"seasnap/internal/app/account"
	"seasnap/internal/app/db"
	"seasnap/internal/app/memstore"
	"seasnap/internal/app/season"
	"seasnap/internal/app/storage"
	"seasnap/internal/configs"
	"seasnap/internal/handler"
	"seasnap/internal/pkg/auth/jwt"
	"seasnap/internal/pkg/limiter"
	"seasnap/internal/pkg/logx"
)

const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 10 * time.Second
	idleTimeout     = 2 * time.Minute
	shutdownTimeout = 5 * time.Second
)

type stores struct {
	accounts account.Store
	seasons  season.Store
	close    func()
}

func main() {
	if err := configs.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	logx.InitServerLogger(cfg.IsDevelopment(), cfg.LogLevel)
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Float64("provision_rate", cfg.ProvisionRate).
		Int("provision_burst", cfg.ProvisionBurst).
		Bool("avatar_storage", cfg.StorageEnabled()).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logx.Fatal(err, "Server exited with error")
	}
	logx.Info("Server stopped")
}

// run wires the server and blocks until ctx is cancelled or the listener fails.
func run(ctx context.Context, cfg *configs.AppConfig) error {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open account store: %w", err)
	}
	defer st.close()

	deps, err := buildDeps(ctx, cfg, st)
	if err != nil {
		return err
	}
	defer deps.ProvisionLimiter.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler.Router(deps),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logx.Info("SeaSnap server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logx.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildDeps assembles the services behind the router.
func buildDeps(ctx context.Context, cfg *configs.AppConfig, st *stores) (*handler.AppDeps, error) {
	tokens := jwt.NewIssuer(cfg.JWTSecret, jwt.AccessTokenTTL)
	opts := []account.Option{
		account.WithTokenIssuer(func(a *account.Account) (string, error) {
			return tokens.Issue(a.ID, a.DeviceID)
		}),
	}

	deps := &handler.AppDeps{Config: cfg, Tokens: tokens}

	if cfg.StorageEnabled() {
		avatars, err := storage.New(ctx, storage.Config{
			Bucket:          cfg.S3BucketName,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("connect avatar storage: %w", err)
		}
		deps.Avatars = avatars
		opts = append(opts, account.WithAvatarMirror(avatars))
	}

	deps.Accounts = account.NewService(st.accounts, opts...)
	deps.Seasons = season.NewService(st.seasons)
	deps.ProvisionLimiter = limiter.NewPerIP(rate.Limit(cfg.ProvisionRate), cfg.ProvisionBurst)
	return deps, nil
}

// openStores connects the configured backing store. The "memory" DSN keeps all
// accounts in process and is only accepted in development.
func openStores(ctx context.Context, cfg *configs.AppConfig) (*stores, error) {
	if cfg.DatabaseDSN == memstore.DSN {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("in-memory store is not allowed in %s environment", cfg.Environment)
		}
		logx.Warn("Using in-memory account store; all accounts are lost on restart")
		m := memstore.New()
		return &stores{accounts: m, seasons: m, close: func() {}}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	return &stores{
		accounts: db.NewAccountStore(pool, db.PoolTx(pool)),
		seasons:  db.NewSeasonStore(pool),
		close:    pool.Close,
	}, nil
}
