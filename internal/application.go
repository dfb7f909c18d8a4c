package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/yogu-code/chess-backend/internal/chessengine"
	"github.com/yogu-code/chess-backend/internal/config"
	"github.com/yogu-code/chess-backend/internal/registry"
	"github.com/yogu-code/chess-backend/internal/repository"
	"github.com/yogu-code/chess-backend/internal/scheduler"
	"github.com/yogu-code/chess-backend/internal/service"
	"github.com/yogu-code/chess-backend/transport/rest"
	"github.com/yogu-code/chess-backend/transport/websocket"
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

	hub := websocket.NewHub(logger)
	sched := scheduler.New()
	defer sched.Stop()

	gridRepo := repository.NewGridRoomRepository()
	chessRepo := repository.NewChessRoomRepository()

	gridService := service.NewGridService(logger, gridRepo, hub)
	chessService := service.NewChessService(
		logger,
		chessRepo,
		hub,
		sched,
		chessengine.New,
		service.EndGameDelay,
	)

	connRegistry := registry.New()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run WebSocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, hub, connRegistry, gridService, chessService)
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
