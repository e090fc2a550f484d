package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/metrics"
)

const (
	writeWait       = 10 * time.Second
	broadcastBuffer = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketManager fans slot events out to every connected client.
type WebSocketManager struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	done       chan struct{}
	mutex      sync.RWMutex
	log        *zerolog.Logger
}

func NewWebSocketManager(log *zerolog.Logger) *WebSocketManager {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then closes
// every client.
func (wsm *WebSocketManager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(wsm.done)
			wsm.mutex.Lock()
			for client := range wsm.clients {
				_ = client.Close()
				delete(wsm.clients, client)
			}
			wsm.mutex.Unlock()
			metrics.SetWebsocketClients(0)
			return

		case client := <-wsm.register:
			wsm.mutex.Lock()
			wsm.clients[client] = true
			n := len(wsm.clients)
			wsm.mutex.Unlock()
			metrics.SetWebsocketClients(n)
			wsm.log.Debug().Int("clients", n).Msg("WebSocket client connected")

		case client := <-wsm.unregister:
			wsm.mutex.Lock()
			if _, ok := wsm.clients[client]; ok {
				delete(wsm.clients, client)
				_ = client.Close()
			}
			n := len(wsm.clients)
			wsm.mutex.Unlock()
			metrics.SetWebsocketClients(n)
			wsm.log.Debug().Int("clients", n).Msg("WebSocket client disconnected")

		case message := <-wsm.broadcast:
			wsm.mutex.Lock()
			for client := range wsm.clients {
				_ = client.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					wsm.log.Warn().Err(err).Msg("Error writing to WebSocket client")
					_ = client.Close()
					delete(wsm.clients, client)
				}
			}
			n := len(wsm.clients)
			wsm.mutex.Unlock()
			metrics.SetWebsocketClients(n)
		}
	}
}

// ClientCount returns the number of connected clients.
func (wsm *WebSocketManager) ClientCount() int {
	wsm.mutex.RLock()
	defer wsm.mutex.RUnlock()
	return len(wsm.clients)
}

// BroadcastSlotEvent queues ev for every client. Events are dropped when the
// queue is full.
func (wsm *WebSocketManager) BroadcastSlotEvent(ev domain.SlotEvent) {
	message, err := json.Marshal(ev)
	if err != nil {
		wsm.log.Error().Err(err).Msg("Error marshaling slot event")
		return
	}

	select {
	case wsm.broadcast <- message:
	default:
		wsm.log.Warn().Str("event_id", ev.EventID).Msg("Broadcast channel is full, dropping message")
	}
}

type WebSocketHandler struct {
	wsManager *WebSocketManager
}

func NewWebSocketHandler(wsManager *WebSocketManager) *WebSocketHandler {
	return &WebSocketHandler{wsManager: wsManager}
}

// GET /ws
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.wsManager.log.Warn().Err(err).Msg("Failed to upgrade to WebSocket")
		return
	}

	select {
	case h.wsManager.register <- conn:
	case <-h.wsManager.done:
		_ = conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.wsManager.unregister <- conn:
			case <-h.wsManager.done:
			}
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.wsManager.log.Warn().Err(err).Msg("WebSocket error")
				}
				return
			}
		}
	}()
}
