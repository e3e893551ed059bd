// Package ws pushes server-initiated notifications to connected dashboard
// clients, scoped per organization.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rizeos/workforce/internal/auth"
	"github.com/rizeos/workforce/internal/domain/model"
	"github.com/rizeos/workforce/internal/events"
	"github.com/rizeos/workforce/pkg/logger"
	"github.com/rizeos/workforce/pkg/metrics"
)

// Close codes for rejected handshakes.
const (
	CloseNoToken      = 4001
	CloseInvalidToken = 4003
)

// Dashboard event names pushed over the socket.
const (
	EventTaskCompleted = "dashboard.task_completed"
	EventTaskCreated   = "dashboard.task_created"
)

const defaultWriteTimeout = 5 * time.Second

// pushMessage is the wire shape of every broadcast.
type pushMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Gateway maintains one room of live connections per organization and fans
// completion/creation events out to them.
type Gateway struct {
	secret       []byte
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
	logger       logger.Logger

	mu    sync.Mutex
	rooms map[string]map[*websocket.Conn]struct{}
}

// Option applies a configuration option to the Gateway.
type Option func(*Gateway)

// WithWriteTimeout bounds a single broadcast write to one client.
func WithWriteTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.writeTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the gateway.
func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGateway creates a gateway verifying handshakes against secret.
func NewGateway(secret []byte, opts ...Option) *Gateway {
	g := &Gateway{
		secret:       secret,
		writeTimeout: defaultWriteTimeout,
		upgrader: websocket.Upgrader{
			// The dashboard is served from another origin in development.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.Get().Named("ws"),
		rooms:  make(map[string]map[*websocket.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register subscribes the gateway to the bus events it forwards.
func (g *Gateway) Register(bus *events.Bus) error {
	if err := bus.Subscribe(events.TaskCompleted, func(_ context.Context, payload any) {
		if p, ok := payload.(model.TaskCompletedPayload); ok {
			g.BroadcastToOrg(p.OrgID, EventTaskCompleted, p)
		}
	}); err != nil {
		return err
	}
	return bus.Subscribe(events.TaskCreated, func(_ context.Context, payload any) {
		if p, ok := payload.(model.TaskCreatedPayload); ok {
			g.BroadcastToOrg(p.OrgID, EventTaskCreated, p)
		}
	})
}

// HandleConnection upgrades the request and parks the connection in its
// organization's room until the client disconnects. The bearer token comes
// as a query parameter; a missing token closes with 4001 and an invalid or
// expired one with 4003, in both cases before any room registration.
func (g *Gateway) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		g.reject(conn, CloseNoToken, "unauthorized: no token provided")
		return
	}

	claims, err := auth.Verify(token, g.secret)
	if err != nil {
		g.reject(conn, CloseInvalidToken, "unauthorized: invalid token")
		return
	}

	g.join(claims.OrgID, conn)
	g.logger.Info(r.Context(), "client connected",
		logger.String("org_id", claims.OrgID),
		logger.String("subject", claims.Subject),
	)

	// Hold the connection open; the read loop only exists to observe the
	// close frame. Leaving is guaranteed to tear down room membership.
	defer func() {
		g.leave(claims.OrgID, conn)
		_ = conn.Close()
		g.logger.Info(r.Context(), "client disconnected", logger.String("org_id", claims.OrgID))
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (g *Gateway) reject(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(g.writeTimeout)
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
	_ = conn.Close()
	metrics.RecordWSAuthFailure(strconv.Itoa(code))
}

func (g *Gateway) join(orgID string, conn *websocket.Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[orgID]
	if !ok {
		room = make(map[*websocket.Conn]struct{})
		g.rooms[orgID] = room
	}
	room[conn] = struct{}{}
	g.updateGauges()
}

func (g *Gateway) leave(orgID string, conn *websocket.Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if room, ok := g.rooms[orgID]; ok {
		delete(room, conn)
		if len(room) == 0 {
			delete(g.rooms, orgID)
		}
	}
	g.updateGauges()
}

// updateGauges must run with mu held.
func (g *Gateway) updateGauges() {
	total := 0
	for _, room := range g.rooms {
		total += len(room)
	}
	metrics.UpdateWSConnections(total)
	metrics.UpdateWSRooms(len(g.rooms))
}

// BroadcastToOrg serializes {"event": name, "data": payload} and sends it
// to every open connection in the organization's room. Closed or erroring
// connections are skipped, not retried.
func (g *Gateway) BroadcastToOrg(orgID, eventName string, payload any) {
	data, err := json.Marshal(pushMessage{Event: eventName, Data: payload})
	if err != nil {
		g.logger.Error(context.Background(), "encode broadcast failed", logger.Error(err))
		return
	}

	// The lock is held through the sends: gorilla connections allow only
	// one concurrent writer, and publishes can arrive from any request
	// goroutine. Writes are bounded by the write deadline.
	g.mu.Lock()
	defer g.mu.Unlock()

	for conn := range g.rooms[orgID] {
		_ = conn.SetWriteDeadline(time.Now().Add(g.writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			metrics.RecordWSSendSkipped()
			continue
		}
		metrics.RecordWSBroadcast()
	}
}

// RoomSize reports the live connections for an organization.
func (g *Gateway) RoomSize(orgID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms[orgID])
}

// RoomCount reports the number of organizations with live connections.
func (g *Gateway) RoomCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// Close tears down every live connection. Used on shutdown.
func (g *Gateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for orgID, room := range g.rooms {
		for conn := range room {
			_ = conn.Close()
		}
		delete(g.rooms, orgID)
	}
	g.updateGauges()
}
