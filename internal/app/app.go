package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sophialabs/scenarioadmin/internal/infrastructure/outbound/logging"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/wiring"
)

// App is the thin lifecycle manager that delegates dependency construction to wiring.Container.
type App struct {
	cfg        Config
	container  *wiring.Container
	httpServer *http.Server
}

// New validates cfg, creates the logger, wires infrastructure components via
// the container, and sets up the HTTP server.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})))

	container, err := wiring.New(wiring.Params{
		Backend: cfg.Backend,
		GitHub: wiring.GitHubParams{
			BaseURL:       cfg.GitHub.BaseURL,
			Owner:         cfg.GitHub.Owner,
			Repo:          cfg.GitHub.Repo,
			Branch:        cfg.GitHub.Branch,
			Token:         cfg.GitHub.Token,
			TokenFile:     cfg.GitHub.TokenFile,
			TokenDebounce: cfg.GitHub.TokenDebounce,
			Timeout:       cfg.UpstreamTimeout,
		},
		RootDir:        cfg.RootDir,
		Directory:      cfg.Directory,
		CommitEngine:   cfg.Commit.Engine,
		SaveMessage:    cfg.Commit.SaveMessage,
		DeleteMessage:  cfg.Commit.DeleteMessage,
		TraceSize:      cfg.TraceSize,
		RateLimit:      cfg.RateLimit.Rate,
		RateBurst:      cfg.RateLimit.Burst,
		RateLimiterTTL: cfg.RateLimit.TTL,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to wire infrastructure: %w", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      container.Server(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		container:  container,
		httpServer: httpServer,
	}, nil
}

// Run serves HTTP until SIGINT/SIGTERM or context cancellation, then shuts
// down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		a.container.Close()
		return fmt.Errorf("failed to listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	defer a.container.Close()

	logger := a.container.Logger()
	if tokens := a.container.Tokens(); tokens != nil && tokens.Token() == "" {
		logger.Warn("no GitHub token configured; catalog requests will fail until one is provided")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting scenario admin server",
			"addr", ln.Addr().String(), "backend", a.cfg.Backend, "directory", a.cfg.Directory)
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// Close releases the resources of an App that is never run.
func (a *App) Close() {
	a.container.Close()
}
