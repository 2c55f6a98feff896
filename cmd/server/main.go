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

	"github.com/charmbracelet/log"

	"dmchat/internal/config"
	"dmchat/internal/httpserver"
	"dmchat/internal/security"
	"dmchat/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal("server stopped", "err", err)
	}
}

// run serves until ctx is cancelled or the listener fails. Resources opened
// here are released before it returns.
func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportCaller(true)
	}
	log.SetReportTimestamp(true)

	// Initialize storage
	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	repos, err := store.Open(openCtx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repos.Close(ctx); err != nil {
			log.Error("closing store", "err", err)
		}
	}()

	// Security components
	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	passwordHasher := security.NewPasswordHasher(0)

	var encryptor *security.Encryptor
	if cfg.EncryptKey != "" {
		encryptor, err = security.NewEncryptor([]byte(cfg.EncryptKey))
		if err != nil {
			return fmt.Errorf("initialize encryptor: %w", err)
		}
	}

	// Build HTTP router
	router := httpserver.NewRouter(cfg, repos.Users, repos.Messages, tokenSvc, passwordHasher, encryptor)
	srv := newServer(cfg.HTTPAddr(), router)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server",
			"app", cfg.AppName,
			"env", cfg.Env,
			"addr", cfg.HTTPAddr(),
			"store", cfg.StoreDriver,
			"encryption", encryptor != nil,
		)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// newServer builds the HTTP server. The write timeout leaves room for the
// router's per-request timeout to answer first.
func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: httpserver.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
