package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gudapepratik/tictactoe-online/internal/broadcast"
	"github.com/gudapepratik/tictactoe-online/internal/config"
	"github.com/gudapepratik/tictactoe-online/internal/registry"
	"github.com/gudapepratik/tictactoe-online/internal/service"
	"github.com/gudapepratik/tictactoe-online/transport/rest"
	"github.com/gudapepratik/tictactoe-online/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	matches := registry.NewMatchRegistry()
	codes := registry.NewCodeRegistry(conf.ClaimTTL)
	sessions := registry.NewSessionRegistry()
	hub := broadcast.NewHub(logger)

	authService := service.NewAuthService(conf.JWTSecretKey, conf.TokenTTL)
	coordinator := service.NewCoordinator(logger, matches, codes, sessions, hub, conf.FrontendURL)

	go coordinator.RunJanitor(ctx, conf.Lifecycle.SweepInterval, conf.Lifecycle.MatchIdleTTL, conf.Lifecycle.FinishedLinger)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, conf, authService)
		if httpErr := restServer.Start(conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run WebSocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, coordinator, authService, hub)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err := <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
