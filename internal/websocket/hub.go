package websocket

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for dev simplicity
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client represents a single connected WebSocket subscriber. Each client is
// bound to exactly one pickup thread for its whole lifetime; switching
// threads means closing the socket and opening a new one.
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	PickupID string
}

// event carries a payload to every subscriber of one pickup thread.
type event struct {
	pickupID string
	payload  []byte
}

// Hub maintains per-pickup rooms and fans published messages out to the
// room's subscribers, preserving publish order.
type Hub struct {
	rooms      map[string]map[*Client]bool
	events     chan event
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex // lock just in case if doing manual iter
}

// NewHub initializes a new WS Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		events:     make(chan event),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Publish delivers payload to every subscriber of the pickup thread.
func (h *Hub) Publish(pickupID string, payload []byte) {
	h.events <- event{pickupID: pickupID, payload: payload}
}

// Run starts the core dispatch loop for WebSocket events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			room := h.rooms[client.PickupID]
			if room == nil {
				room = make(map[*Client]bool)
				h.rooms[client.PickupID] = room
			}
			room[client] = true
			h.mu.Unlock()
			log.Debug().Str("pickup_request_id", client.PickupID).Msg("chat subscriber connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.PickupID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.Send)
					if len(room) == 0 {
						delete(h.rooms, client.PickupID)
					}
					log.Debug().Str("pickup_request_id", client.PickupID).Msg("chat subscriber disconnected")
				}
			}
			h.mu.Unlock()
		case ev := <-h.events:
			h.mu.Lock()
			for client := range h.rooms[ev.pickupID] {
				select {
				case client.Send <- ev.payload:
				default:
					close(client.Send)
					delete(h.rooms[ev.pickupID], client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	defer func() {
		_ = c.Conn.Close()
	}()
	for message := range c.Send {
		w, err := c.Conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		_, _ = w.Write(message)

		// Fast track writing queued messages
		n := len(c.Send)
		for i := 0; i < n; i++ {
			_, _ = w.Write([]byte{'\n'})
			_, _ = w.Write(<-c.Send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		_ = c.Conn.Close()
	}()
	for {
		// Just reading to keep connection alive or handle client messages if necessary
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("websocket read error")
			}
			break
		}
	}
}

// AuthorizeFunc reports whether the authenticated user may subscribe to the
// given pickup thread.
type AuthorizeFunc func(ctx context.Context, userID, role, pickupID string) bool

// ServeWs handles websocket requests from the peer. The subscription is
// scoped to one pickup_request_id; the caller must be a thread participant.
func ServeWs(hub *Hub, c *gin.Context, secret []byte, authorize AuthorizeFunc) {
	// 1. Authenticate via token query param
	tokenString := c.Query("token")
	if tokenString == "" {
		log.Warn().Msg("websocket connection rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})

	if err != nil || !token.Valid {
		log.Warn().Err(err).Msg("websocket connection rejected: invalid token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		log.Warn().Msg("websocket connection rejected: invalid claims")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	userID, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)

	// 2. Scope the subscription to one pickup thread
	pickupID := c.Query("pickup_request_id")
	if pickupID == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	if authorize != nil && !authorize(c.Request.Context(), userID, role, pickupID) {
		log.Warn().Str("pickup_request_id", pickupID).Msg("websocket connection rejected: not a thread participant")
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := &Client{Hub: hub, Conn: conn, Send: make(chan []byte, 256), PickupID: pickupID}
	client.Hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}
