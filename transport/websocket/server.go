package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yogu-code/chess-backend/internal/pkg"
	"github.com/yogu-code/chess-backend/internal/registry"
	"github.com/yogu-code/chess-backend/internal/service"
)

// EventConnected is sent once per connection so the client learns the
// identity the server will use for it.
const EventConnected = "connected"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

type handlerFunc func(ctx context.Context, client *Client, msg *Message) error

// Server owns the WebSocket endpoint: it upgrades connections, binds them to
// user identities and dispatches inbound actions to the game services.
type Server struct {
	logger   *slog.Logger
	hub      *Hub
	registry *registry.Registry
	grid     *service.GridService
	chess    *service.ChessService
	handlers map[string]handlerFunc
}

func New(
	logger *slog.Logger,
	hub *Hub,
	reg *registry.Registry,
	grid *service.GridService,
	chess *service.ChessService,
) *Server {
	server := &Server{
		logger:   logger,
		hub:      hub,
		registry: reg,
		grid:     grid,
		chess:    chess,
		handlers: make(map[string]handlerFunc),
	}

	server.handlers["grid:join"] = server.handleGridJoin
	server.handlers["grid:move"] = server.handleGridMove
	server.handlers["grid:reset"] = server.handleGridReset
	server.handlers["chess:create"] = server.handleChessCreate
	server.handlers["chess:join"] = server.handleChessJoin
	server.handlers["chess:move"] = server.handleChessMove
	server.handlers["chess:reset"] = server.handleChessReset
	server.handlers["chess:chat"] = server.handleChessChat

	return server
}

// Start - starts the WebSocket server and shuts it down when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection and runs it until the client goes away.
func (that *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		playerID = pkg.GenerateSessionID()
	}
	connID := uuid.NewString()

	client := newClient(conn, playerID, connID)
	that.registry.Bind(playerID, connID)
	that.hub.register(client)

	log.Info("connection established", "playerID", playerID, "connID", connID)

	go client.writePump()
	that.hub.ToPlayer(playerID, EventConnected, ConnectedPayload{Player: playerID})

	client.readPump(func(c *Client, data []byte) {
		that.dispatch(ctx, c, data)
	})

	that.hub.unregister(client)

	// A reconnect may already have rebound the identity; only the connection
	// that still owns it sweeps the player out of their rooms.
	if !that.registry.IsCurrent(playerID, connID) {
		log.Info("stale connection closed", "playerID", playerID, "connID", connID)
		return
	}

	that.registry.Unbind(playerID)
	that.grid.HandleDisconnect(ctx, playerID)
	that.chess.HandleDisconnect(ctx, playerID)

	log.Info("player disconnected", "playerID", playerID)
}
