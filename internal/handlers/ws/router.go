// Package ws is the single entry point for session traffic: it validates
// the session identifier in the request path, upgrades the connection and
// hands it to the coordinator for that identifier.
package ws

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/dicechamber/dicechamber/internal/services/session"
	"github.com/dicechamber/dicechamber/internal/sessionid"
	"github.com/gorilla/websocket"
)

// DefaultPathPrefix is the route prefix ahead of the session identifier
const DefaultPathPrefix = "/api/session"

// Failure bodies are exact strings; clients match on them and must not
// retry without correcting the request.
const (
	msgInvalidSessionURL = "Invalid session URL"
	msgInvalidSessionID  = "Invalid session ID format"
	msgExpectedWebSocket = "Expected WebSocket"
)

// Config holds configuration for the connection router
type Config struct {
	// Registry resolves session identifiers to coordinators
	Registry *session.Registry

	// PathPrefix overrides DefaultPathPrefix
	PathPrefix string

	// CheckOrigin overrides the upgrader's origin policy; by default any
	// origin is accepted, the session identifier is the only credential
	CheckOrigin func(r *http.Request) bool
}

// Router accepts inbound session connections
type Router struct {
	registry *session.Registry
	prefix   string
	upgrader websocket.Upgrader
}

// New creates a new connection router
func New(cfg *Config) (*Router, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Registry == nil {
		return nil, errors.New("registry cannot be nil")
	}

	prefix := cfg.PathPrefix
	if prefix == "" {
		prefix = DefaultPathPrefix
	}
	prefix = strings.TrimSuffix(prefix, "/")

	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	return &Router{
		registry: cfg.Registry,
		prefix:   prefix,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}, nil
}

// PathPrefix returns the route prefix this router expects, with a trailing
// slash for mux registration
func (rt *Router) PathPrefix() string {
	return rt.prefix + "/"
}

// ServeHTTP validates the request and hands the upgraded connection to the
// session's coordinator. The identifier is validated before any coordinator
// is resolved or created.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.sessionIDFromPath(r.URL.Path)
	if !ok {
		http.Error(w, msgInvalidSessionURL, http.StatusBadRequest)
		return
	}

	if !sessionid.Valid(id) {
		http.Error(w, msgInvalidSessionID, http.StatusBadRequest)
		return
	}

	if !websocket.IsWebSocketUpgrade(r) {
		http.Error(w, msgExpectedWebSocket, http.StatusBadRequest)
		return
	}

	wsc, err := rt.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own response
		log.Printf("ws: upgrade failed for session %s: %v", id, err)
		return
	}

	conn := newWSConn(wsc)
	go conn.writePump()

	coord, err := rt.registry.Attach(r.Context(), id, conn)
	if err != nil {
		log.Printf("ws: failed to attach to session %s: %v", id, err)
		conn.Close()
		return
	}

	rt.readPump(coord, conn)
}

// sessionIDFromPath extracts the identifier segment from <prefix>/<id>
func (rt *Router) sessionIDFromPath(path string) (string, bool) {
	rest, found := strings.CutPrefix(path, rt.prefix+"/")
	if !found || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

// readPump forwards inbound frames to the coordinator until the transport
// closes, then reports the disconnect
func (rt *Router) readPump(coord *session.Coordinator, conn *wsConn) {
	defer func() {
		if err := coord.Detach(conn); err != nil && err != session.ErrCoordinatorStopped {
			log.Printf("ws: detach from session %s failed: %v", coord.SessionID(), err)
		}
		conn.Close()
	}()

	conn.ws.SetReadLimit(maxMessageSize)

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			return
		}
		if err := coord.HandleMessage(conn, data); err != nil {
			return
		}
	}
}
