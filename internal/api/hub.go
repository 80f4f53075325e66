package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// FeedMessage is the envelope pushed to websocket subscribers of a game.
type FeedMessage struct {
	Type    string `json:"type"`
	GameID  string `json:"game_id"`
	Payload any    `json:"payload"`
}

type outbound struct {
	gameID string
	data   []byte
}

type client struct {
	hub    *Hub
	gameID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans period results out to the sockets watching each game. Run owns
// the client set; everything else talks to it over channels.
type Hub struct {
	log        *slog.Logger
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan outbound
	done       chan struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		log:        logger,
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan outbound, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			if hello, err := json.Marshal(FeedMessage{Type: feedSubscribed, GameID: c.gameID}); err == nil {
				c.send <- hello
			}
			h.log.Debug("feed subscriber joined", "game_id", c.gameID)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				if c.gameID != msg.gameID {
					continue
				}
				select {
				case c.send <- msg.data:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// Publish queues a message for every subscriber of gameID. It never blocks
// the caller; a full queue drops the message.
func (h *Hub) Publish(gameID, typ string, payload any) {
	data, err := json.Marshal(FeedMessage{Type: typ, GameID: gameID, Payload: payload})
	if err != nil {
		h.log.Error("encode feed message", "game_id", gameID, "err", err)
		return
	}
	select {
	case h.broadcast <- outbound{gameID: gameID, data: data}:
	default:
		h.log.Warn("feed queue full, dropping message", "game_id", gameID, "type", typ)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request, gameID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "game_id", gameID, "err", err)
		return
	}
	c := &client{hub: h, gameID: gameID, conn: conn, send: make(chan []byte, 16)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// readPump only services control frames; subscribers never send data.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("feed subscriber dropped", "game_id", c.gameID, "err", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
