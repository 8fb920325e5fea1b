package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ErrManagerStopped is returned for connections arriving after shutdown.
var ErrManagerStopped = errors.New("connection manager stopped")

// ConnectionManager manages WebSocket connections watching the raffle
type ConnectionManager struct {
	connections map[*Connection]bool
	mu          sync.RWMutex

	// Upgrader for WebSocket connections
	upgrader websocket.Upgrader

	// Connection configuration
	config ConnectionConfig

	// Event broadcasting
	broadcastCh chan *RaffleEvent
	registerCh  chan *Connection
	done        chan struct{}

	// latest is the last state sent, delivered first to new connections.
	// Only the Start goroutine touches it once Start runs.
	latest []byte
}

// Connection represents a WebSocket connection to a browser
type Connection struct {
	ID         string
	RemoteAddr string
	Conn       *websocket.Conn
	Send       chan []byte
	Manager    *ConnectionManager

	// Connection metadata
	ConnectedAt time.Time
	lastPong    atomic.Int64
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	CheckOrigin     func(r *http.Request) bool
}

// ConnectionStats summarizes the active connections
type ConnectionStats struct {
	TotalConnections int              `json:"total_connections"`
	Connections      []ConnectionInfo `json:"connections"`
}

// ConnectionInfo describes one active connection
type ConnectionInfo struct {
	ID          string    `json:"id"`
	RemoteAddr  string    `json:"remote_addr"`
	ConnectedAt time.Time `json:"connected_at"`
	LastPong    time.Time `json:"last_pong"`
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024, // browsers only send control frames
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		SendBufferSize:  256,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	if config.SendBufferSize <= 0 {
		config.SendBufferSize = 256
	}
	return &ConnectionManager{
		connections: make(map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan *RaffleEvent, 1000),
		registerCh:  make(chan *Connection, 64),
		done:        make(chan struct{}),
	}
}

// Seed sets the state delivered to connections before the first broadcast.
// It must be called before Start.
func (cm *ConnectionManager) Seed(event *RaffleEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal seed event: %w", err)
	}
	cm.latest = data
	return nil
}

// Start begins processing broadcast messages
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	defer close(cm.done)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			cm.closeAll()
			return
		case event := <-cm.broadcastCh:
			cm.handleBroadcast(event)
		case conn := <-cm.registerCh:
			cm.handleRegister(conn)
		}
	}
}

// handleRegister queues the latest state for conn and adds it to the
// broadcast set. Running on the Start goroutine orders it with broadcasts.
func (cm *ConnectionManager) handleRegister(conn *Connection) {
	if cm.latest != nil {
		conn.Send <- cm.latest
	}
	cm.registerConnection(conn)

	go conn.writePump()
	go conn.readPump()
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and hands it to
// the broadcaster, which sends the latest state before any later broadcast.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) (*Connection, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	now := time.Now()
	connection := &Connection{
		ID:          uuid.New().String(),
		RemoteAddr:  r.RemoteAddr,
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBufferSize),
		Manager:     cm,
		ConnectedAt: now,
	}
	connection.lastPong.Store(now.UnixNano())

	select {
	case cm.registerCh <- connection:
	case <-cm.done:
		conn.Close()
		return nil, ErrManagerStopped
	case <-r.Context().Done():
		conn.Close()
		return nil, fmt.Errorf("register connection: %w", r.Context().Err())
	}

	log.Info().
		Str("connection_id", connection.ID).
		Str("remote_addr", connection.RemoteAddr).
		Msg("WebSocket connection established")

	return connection, nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.unregisterLocked(conn)
}

// unregisterLocked removes conn and closes its send channel. cm.mu must be
// held for writing.
func (cm *ConnectionManager) unregisterLocked(conn *Connection) {
	if _, exists := cm.connections[conn]; !exists {
		return
	}
	delete(cm.connections, conn)
	close(conn.Send)

	log.Info().
		Str("connection_id", conn.ID).
		Str("remote_addr", conn.RemoteAddr).
		Msg("connection unregistered")
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for conn := range cm.connections {
		cm.unregisterLocked(conn)
	}
}

// Broadcast sends an event to every connection
func (cm *ConnectionManager) Broadcast(event *RaffleEvent) {
	select {
	case cm.broadcastCh <- event:
	default:
		log.Warn().Str("event_type", string(event.Type)).Msg("broadcast channel full, dropping message")
	}
}

// handleBroadcast processes a broadcast message
func (cm *ConnectionManager) handleBroadcast(event *RaffleEvent) {
	eventData, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}
	cm.latest = eventData

	// Sends happen under the read lock so no send channel is closed meanwhile.
	var slow []*Connection
	cm.mu.RLock()
	for conn := range cm.connections {
		select {
		case conn.Send <- eventData:
		default:
			slow = append(slow, conn)
		}
	}
	total := len(cm.connections)
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}

	log.Debug().
		Str("event_type", string(event.Type)).
		Int("connections", total-len(slow)).
		Msg("event broadcasted")
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{
		TotalConnections: len(cm.connections),
		Connections:      make([]ConnectionInfo, 0, len(cm.connections)),
	}
	for conn := range cm.connections {
		stats.Connections = append(stats.Connections, ConnectionInfo{
			ID:          conn.ID,
			RemoteAddr:  conn.RemoteAddr,
			ConnectedAt: conn.ConnectedAt,
			LastPong:    time.Unix(0, conn.lastPong.Load()),
		})
	}
	return stats
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				// Channel was closed
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.lastPong.Store(time.Now().UnixNano())
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		// Commands go through the HTTP endpoints; anything sent here is only logged.
		log.Debug().
			Str("connection_id", c.ID).
			Int("bytes", len(message)).
			Msg("received client message")
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
