// ABOUTME: Gateway orchestrator that runs the admin console HTTP server
// ABOUTME: Owns the backend client, session store, console routes and the session sweeper

package gateway

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/bmi-ci/chatbot360-admin/internal/backend"
	"github.com/bmi-ci/chatbot360-admin/internal/chatconsole"
	"github.com/bmi-ci/chatbot360-admin/internal/config"
	"github.com/bmi-ci/chatbot360-admin/internal/session"
	"github.com/bmi-ci/chatbot360-admin/internal/store"
	"github.com/bmi-ci/chatbot360-admin/internal/webadmin"
)

// Gateway sits between operators' browsers and the ChatBot360 backends.
type Gateway struct {
	config     *config.Config
	store      store.Store
	backend    *backend.Client
	sessions   *session.Manager
	httpServer *http.Server
	logger     *slog.Logger
}

// New wires the console from configuration. The caller must call Run or Shutdown.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	secret, err := sessionSecret(cfg.Session.Secret, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	client := backend.New(cfg.Backend.APIBaseURL, cfg.Backend.ChatBaseURL, cfg.Backend.Timeout)
	sessions := session.NewManager(s, secret, cfg.Session.TTL)
	console := chatconsole.New(s, client)

	mux := http.NewServeMux()
	webadmin.New(client, sessions, console).RegisterRoutes(mux)

	gw := &Gateway{
		config:   cfg,
		store:    s,
		backend:  client,
		sessions: sessions,
		logger:   logger.With("component", "gateway"),
	}
	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           gw.logRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// sessionSecret returns the configured secret or a random one.
// A random secret signs out every operator when the process restarts.
func sessionSecret(configured string, logger *slog.Logger) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generating session secret: %w", err)
	}
	logger.Warn("session.secret not configured, using a random secret; sessions will not survive a restart")
	return secret, nil
}

// Handler returns the console's HTTP handler.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// Run serves the console and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		_ = g.store.Close()
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go g.sessions.Sweep(sweepCtx, g.config.Session.SweepInterval)

	errCh := g.startServer(ln)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	stopSweep()
	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// startServer starts the HTTP server in a goroutine, returning its error channel.
func (g *Gateway) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String(), "api_base_url", g.config.Backend.APIBaseURL)
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// The original context is already canceled at this point.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the HTTP server and closes the store.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))
	errs = appendCloseError(errs, "store close", g.store.Close())

	return errors.Join(errs...)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests logs every request at debug level with its status and duration.
func (g *Gateway) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		g.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
