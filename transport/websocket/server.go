package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gudapepratik/tictactoe-online/internal/broadcast"
	"github.com/gudapepratik/tictactoe-online/internal/entity"
	"github.com/gudapepratik/tictactoe-online/internal/service"
)

type coordinator interface {
	CreateMatch(username, mark, avatar string) (*service.CreateResult, error)
	CheckCode(code, claimant string) (*service.CheckResult, error)
	JoinMatch(username, code, matchID, mark, avatar string) error
	Connect(matchID, username string) (*entity.MatchSnapshot, error)
	Start(matchID, username string, totalRounds int) error
	Move(matchID, username string, cell int) (*entity.MoveResult, error)
	Disconnect(username string)
}

type authService interface {
	VerifyToken(token string) (string, error)
}

// connState is the explicit per-connection session context threaded through
// every handler: identity is set exactly once by player:authenticate and
// never read from request payloads.
type connState struct {
	client   *broadcast.Client
	username string
	matchID  string
}

type handlerFunc func(state *connState, payload json.RawMessage) Ack

type Server struct {
	logger      *slog.Logger
	coordinator coordinator
	auth        authService
	hub         *broadcast.Hub

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc

	// connections maps a username to its current client so a stale
	// connection closing after a reconnect does not tear down the new
	// session.
	connectionsMutex sync.RWMutex
	connections      map[string]*broadcast.Client
}

func New(logger *slog.Logger, coordinator coordinator, auth authService, hub *broadcast.Hub) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		coordinator: coordinator,
		auth:        auth,
		hub:         hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handlers:    make(map[string]handlerFunc),
		connections: make(map[string]*broadcast.Client),
	}

	server.handlers["player:authenticate"] = server.handleAuthenticate
	server.handlers["game:create"] = server.handleCreate
	server.handlers["game:check"] = server.handleCheck
	server.handlers["game:join"] = server.handleJoin
	server.handlers["game:connect"] = server.handleConnect
	server.handlers["game:start"] = server.handleStart
	server.handlers["game:move"] = server.handleMove

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 0, // connections are long-lived
		IdleTimeout: 30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	state := &connState{client: broadcast.NewClient(conn)}
	defer that.teardown(state)

	log.Info("WebSocket connection established")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		that.dispatch(state, &message)
	}
}

func (that *Server) dispatch(state *connState, message *Message) {
	log := that.logger.With("method", "dispatch", "action", message.Action)

	handler, ok := that.handlers[message.Action]
	if !ok {
		that.reply(state, message.Action, Ack{Message: "unknown action"})
		return
	}

	if message.Action != "player:authenticate" && state.username == "" {
		that.reply(state, message.Action, Ack{Message: "authenticate first"})
		return
	}

	ack := handler(state, message.Payload)
	if !ack.OK {
		log.Info("request rejected", "reason", ack.Message)
	}

	that.reply(state, message.Action, ack)
}

func (that *Server) reply(state *connState, action string, ack Ack) {
	response := Message{Action: action}

	payload, err := json.Marshal(ack)
	if err != nil {
		that.logger.Error("failed to marshal ack", "action", action, "error", err)
		return
	}
	response.Payload = payload

	if err = state.client.Send(response); err != nil {
		that.logger.Error("failed to send response", "action", action, "error", err)
	}
}

// teardown runs when the read loop exits for any reason. Disconnection is a
// state transition, not an error: the connection leaves its broadcast group
// first so the player-offline event only reaches the rest of the match.
func (that *Server) teardown(state *connState) {
	if state.matchID != "" {
		that.hub.Unregister(state.matchID, state.client)
	}

	if state.username == "" {
		return
	}

	that.connectionsMutex.Lock()
	current := that.connections[state.username]
	if current == state.client {
		delete(that.connections, state.username)
	}
	that.connectionsMutex.Unlock()

	// A stale connection that was already replaced by a reconnect must not
	// tear down the live session.
	if current != state.client {
		return
	}

	that.coordinator.Disconnect(state.username)
}
