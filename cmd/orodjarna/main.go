package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/orodjarna/internal/api"
	"github.com/erazemk/orodjarna/internal/auth"
	"github.com/erazemk/orodjarna/internal/blob"
	"github.com/erazemk/orodjarna/internal/config"
	"github.com/erazemk/orodjarna/internal/db"
	"github.com/erazemk/orodjarna/internal/imaging"
	"github.com/erazemk/orodjarna/internal/lifecycle"
	"github.com/erazemk/orodjarna/internal/metrics"
	"github.com/erazemk/orodjarna/internal/model"
	"github.com/erazemk/orodjarna/internal/store"
)

func main() {
	fs := flag.NewFlagSet("orodjarna", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: orodjarna [flags]

Flags:
  -c, -config <path>      YAML config file (default: config.yaml if present,
                          otherwise environment variables and defaults)
  -h, -help               show this help and exit
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := newLogger(cfg.Log, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	closeLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Idempotent.
	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	if err := bootstrapAdmin(ctx, database, cfg.Auth.AdminUsername); err != nil {
		return err
	}

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	blobs, err := blob.Open(ctx, cfg.Blob.BlobStore())
	if err != nil {
		return fmt.Errorf("opening blob store: %w", err)
	}
	log.Info("blob store ready", "driver", blobs.Driver())

	reg := metrics.NewRegistry()
	deps := api.Deps{
		DB: database,
		Lifecycle: lifecycle.NewService(log, database, metrics.NewLifecycle(reg), lifecycle.Config{
			MaxAttempts: cfg.Lifecycle.MaxAttempts,
		}),
		Tokens: auth.NewIssuer(jwtSecret, cfg.Auth.TokenTTL),
		Images: imaging.NewStore(blobs, cfg.Image.Options()),
		Log:    log,
	}
	if !cfg.Metrics.Disabled {
		deps.Metrics = metrics.Handler(reg)
		deps.MetricsPath = cfg.Metrics.Path
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server started", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	log.Info("server stopped, closing database")
	return err
}

// bootstrapAdmin creates the admin account on first run and prints its
// generated password once.
func bootstrapAdmin(ctx context.Context, database *sql.DB, username string) error {
	existing, err := store.GetUserByUsername(ctx, database, username)
	if err != nil {
		return fmt.Errorf("looking up admin user: %w", err)
	}
	if existing != nil {
		return nil
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := store.CreateUser(ctx, database, username, hash, model.RoleAdmin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println()
	return nil
}
