package services

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"goaltracker/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 64
)

// WebSocketServiceInterface defines the operations provided by the WebSocket service
type WebSocketServiceInterface interface {
	Start()
	Stop()
	HandleConnection(w http.ResponseWriter, r *http.Request, identity Identity)
	SendToUser(userID uint, message []byte)
	ClientCount(userID uint) int
}

// Client represents a connected WebSocket client
type Client struct {
	ID     string
	UserID uint
	Hub    *WebSocketService
	Conn   *websocket.Conn
	Send   chan []byte

	stop <-chan struct{}
}

// ServerMessage represents a message to the client
type ServerMessage struct {
	Type    string      `json:"type"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type userMessage struct {
	userID  uint
	message []byte
}

// WebSocketService keeps the live connections of each user and fans
// messages out to them. Browsers use the messages as a hint to refresh.
type WebSocketService struct {
	clients      map[uint]map[*Client]bool
	clientsMutex sync.RWMutex

	register   chan *Client
	unregister chan *Client
	direct     chan userMessage

	upgrader websocket.Upgrader

	runMutex  sync.Mutex
	isRunning bool
	stopChan  chan struct{}
}

// NewWebSocketService creates a new WebSocket service. checkOrigin may be nil,
// in which case the upgrader only accepts same-host origins.
func NewWebSocketService(checkOrigin func(r *http.Request) bool) *WebSocketService {
	return &WebSocketService{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan userMessage, 256),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (ws *WebSocketService) Start() {
	ws.runMutex.Lock()
	defer ws.runMutex.Unlock()
	if ws.isRunning {
		return
	}
	ws.isRunning = true
	ws.stopChan = make(chan struct{})
	go ws.run(ws.stopChan)
	logger.Info("WebSocket hub started")
}

func (ws *WebSocketService) Stop() {
	ws.runMutex.Lock()
	defer ws.runMutex.Unlock()
	if !ws.isRunning {
		return
	}
	ws.isRunning = false
	close(ws.stopChan)

	ws.clientsMutex.Lock()
	for userID, clients := range ws.clients {
		for client := range clients {
			close(client.Send)
		}
		delete(ws.clients, userID)
	}
	ws.clientsMutex.Unlock()
	logger.Info("WebSocket hub stopped")
}

func (ws *WebSocketService) run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return

		case client := <-ws.register:
			ws.clientsMutex.Lock()
			if ws.clients[client.UserID] == nil {
				ws.clients[client.UserID] = make(map[*Client]bool)
			}
			ws.clients[client.UserID][client] = true
			ws.clientsMutex.Unlock()
			logger.Debug("Client connected", "client_id", client.ID, "user_id", client.UserID)

		case client := <-ws.unregister:
			ws.removeClient(client)

		case msg := <-ws.direct:
			ws.deliver(msg)
		}
	}
}

func (ws *WebSocketService) removeClient(client *Client) {
	ws.clientsMutex.Lock()
	defer ws.clientsMutex.Unlock()
	clients, ok := ws.clients[client.UserID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(ws.clients, client.UserID)
	}
	logger.Debug("Client disconnected", "client_id", client.ID, "user_id", client.UserID)
}

func (ws *WebSocketService) deliver(msg userMessage) {
	ws.clientsMutex.Lock()
	defer ws.clientsMutex.Unlock()
	clients := ws.clients[msg.userID]
	for client := range clients {
		select {
		case client.Send <- msg.message:
		default:
			// Slow consumer; drop it rather than block the hub.
			delete(clients, client)
			close(client.Send)
		}
	}
	if len(clients) == 0 {
		delete(ws.clients, msg.userID)
	}
}

// SendToUser queues message for every connection of userID. Messages are
// dropped when the hub is not running or its queue is full.
func (ws *WebSocketService) SendToUser(userID uint, message []byte) {
	ws.runMutex.Lock()
	running := ws.isRunning
	ws.runMutex.Unlock()
	if !running {
		return
	}
	select {
	case ws.direct <- userMessage{userID: userID, message: message}:
	default:
		logger.Warn("WebSocket queue full, dropping message", "user_id", userID)
	}
}

func (ws *WebSocketService) ClientCount(userID uint) int {
	ws.clientsMutex.RLock()
	defer ws.clientsMutex.RUnlock()
	return len(ws.clients[userID])
}

// HandleConnection upgrades the request and attaches the connection to identity.
func (ws *WebSocketService) HandleConnection(w http.ResponseWriter, r *http.Request, identity Identity) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(r.Context(), "Error upgrading to WebSocket", "error", err)
		return
	}

	ws.runMutex.Lock()
	running, stop := ws.isRunning, ws.stopChan
	ws.runMutex.Unlock()
	if !running {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server shutting down"))
		conn.Close()
		return
	}

	client := &Client{
		ID:     uuid.New().String(),
		UserID: identity.UserID,
		Hub:    ws,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
		stop:   stop,
	}

	welcome, _ := json.Marshal(ServerMessage{
		Type:    "connected",
		Event:   "connected",
		Payload: map[string]interface{}{"client_id": client.ID},
	})
	client.Send <- welcome

	select {
	case ws.register <- client:
	case <-stop:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only drains the socket; clients never send commands.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.stop:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug("Error reading from WebSocket", "client_id", c.ID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
