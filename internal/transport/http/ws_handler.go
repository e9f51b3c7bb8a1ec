package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"trivia-party-service/internal/app"
	"trivia-party-service/internal/domain"
)

type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewWSHandler(service *app.GameService, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type createQuizPayload struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type joinRoomPayload struct {
	PIN string `json:"pin"`
}

type addPlayerPayload struct {
	Name      string           `json:"name"`
	Character domain.Character `json:"character"`
}

type answerPayload struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and gives the connection its own game on the
// Home screen. Every change of the game the client looks at is pushed as a
// state message.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &client{
		service: h.service,
		logger:  h.logger.With("conn", uuid.NewString()),
		send:    make(chan outboundMessage[any], 16),
		done:    make(chan struct{}),
		own:     h.service.NewGame(),
	}
	c.logger.Debug("client connected", "remote", r.RemoteAddr)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range c.send {
			if err := conn.WriteJSON(msg); err != nil {
				c.logger.Debug("ws write error", "err", err)
				return
			}
		}
	}()

	c.attach(c.own)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		c.handle(ctx, inbound)
	}

	cancel()
	close(c.done)
	c.service.Close(context.Background(), c.own)
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
	close(c.send)
	<-writerDone
	c.logger.Debug("client disconnected")
}

// client is one WebSocket connection. It owns a game and shows either that
// game or, after a successful join, the game of another connection.
type client struct {
	service *app.GameService
	logger  *slog.Logger
	send    chan outboundMessage[any]
	done    chan struct{}
	own     *app.Game
	wg      sync.WaitGroup

	mu      sync.Mutex
	current *app.Game
	cancel  func()
}

func (c *client) handle(ctx context.Context, inbound inboundMessage) {
	switch inbound.Type {
	case "openSetup", "openJoinRoom", "createQuiz", "joinRoom":
		// These drive the own game, which is hidden while another game is shown.
		if c.game() != c.own {
			c.reply(domain.ErrInvalidTransition)
			return
		}
	}

	switch inbound.Type {
	case "openSetup":
		c.reply(c.service.OpenSetup(ctx, c.own))
	case "openJoinRoom":
		c.reply(c.service.OpenJoinRoom(ctx, c.own))
	case "back":
		g := c.game()
		if g != c.own && g.Phase() == domain.PhaseLobby {
			c.detach(g)
			return
		}
		c.reply(c.service.Back(ctx, g))
	case "createQuiz":
		var payload createQuizPayload
		if !c.decode(inbound, &payload) {
			return
		}
		c.async(func() {
			c.reply(c.service.CreateQuiz(ctx, c.own, payload.Topic, payload.Count))
		})
	case "joinRoom":
		var payload joinRoomPayload
		if !c.decode(inbound, &payload) {
			return
		}
		c.async(func() {
			target, err := c.service.JoinRoom(ctx, c.own, payload.PIN)
			if err != nil {
				c.reply(err)
				return
			}
			if target == c.own {
				return
			}
			c.attach(target)
			// Park the own game on Home for when the client comes back to it.
			_ = c.service.Back(ctx, c.own)
			c.logger.Info("client joined game", "pin", target.PIN())
		})
	case "addPlayer":
		var payload addPlayerPayload
		if !c.decode(inbound, &payload) {
			return
		}
		c.reply(c.service.AddPlayer(ctx, c.game(), payload.Name, payload.Character))
	case "startGame":
		c.reply(c.service.StartGame(ctx, c.game()))
	case "answer":
		var payload answerPayload
		if !c.decode(inbound, &payload) {
			return
		}
		_, err := c.service.SubmitAnswer(ctx, c.game(), payload.Index)
		c.reply(err)
	case "playAgain":
		c.reply(c.service.PlayAgain(ctx, c.game()))
	default:
		c.push("error", errorPayload{Message: "unsupported message type"})
	}
}

func (c *client) decode(inbound inboundMessage, v any) bool {
	if err := json.Unmarshal(inbound.Payload, v); err != nil {
		c.push("error", errorPayload{Message: "invalid " + inbound.Type + " payload"})
		return false
	}
	return true
}

// async runs a slow request off the read loop so the connection keeps
// receiving state updates meanwhile.
func (c *client) async(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

func (c *client) reply(err error) {
	if err == nil {
		return
	}
	c.logger.Debug("request rejected", "err", err)
	c.push("error", errorPayload{Message: domain.UserMessage(err)})
}

func (c *client) push(typ string, payload any) {
	select {
	case c.send <- outboundMessage[any]{Type: typ, Payload: payload}:
	case <-c.done:
	}
}

func (c *client) game() *app.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// attach switches the client over to g and starts forwarding its views.
func (c *client) attach(g *app.Game) {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.done:
		return
	default:
	}
	if c.cancel != nil {
		c.cancel()
	}
	updates, cancel := c.service.Subscribe(g)
	c.current = g
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.forward(g, updates)
	}()
}

// detach returns a client that joined g back to its own game.
func (c *client) detach(g *app.Game) {
	c.mu.Lock()
	joined := c.current == g && g != c.own
	c.mu.Unlock()
	if joined {
		c.attach(c.own)
	}
}

func (c *client) forward(g *app.Game, updates <-chan domain.View) {
	for view := range updates {
		// The joined game was reset by its owner; the own game's Home replaces it.
		if view.Phase == domain.PhaseHome && g != c.own {
			c.detach(g)
			return
		}
		select {
		case c.send <- outboundMessage[any]{Type: "state", Payload: view}:
		case <-c.done:
			return
		}
	}
}
