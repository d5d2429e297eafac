package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wheelsup-backend-go/internal/core"
	"wheelsup-backend-go/internal/identity"
	"wheelsup-backend-go/internal/models"
)

// Frame types exchanged on /ws/rides.
const (
	FrameAuth     = "auth"
	FrameSignOut  = "signout"
	FrameNavigate = "navigate"
	FrameRides    = "rides"
	FrameIdentity = "identity"
	FrameRedirect = "redirect"
	FrameAllowed  = "allowed"
	FrameError    = "error"
)

// SessionVerifier turns an ID token into a session.
type SessionVerifier interface {
	VerifySession(ctx context.Context, idToken string) (*identity.Session, error)
}

// ClientFrame is a message sent by the browser.
type ClientFrame struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
	Path  string `json:"path,omitempty"`
}

// ServerFrame is a message pushed to the browser.
type ServerFrame struct {
	Type     string          `json:"type"`
	Rides    *[]models.Ride  `json:"rides,omitempty"`
	Identity *identity.State `json:"identity,omitempty"`
	Path     string          `json:"path,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// safeConn wraps a websocket.Conn with a write mutex.
// gorilla/websocket allows one concurrent writer; this enforces that.
type safeConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *safeConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *safeConn) close() { c.ws.Close() }

// LiveHandler streams the ride list and the connection's identity state over
// a WebSocket. Each connection owns one identity bridge and one ride
// subscription, both released on disconnect.
type LiveHandler struct {
	rides     core.RideService
	sessions  SessionVerifier
	directory identity.Directory
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

// NewLiveHandler creates a LiveHandler. allowedOrigins empty accepts any origin.
func NewLiveHandler(rides core.RideService, sessions SessionVerifier, directory identity.Directory, allowedOrigins []string, logger *zap.Logger) *LiveHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &LiveHandler{
		rides:     rides,
		sessions:  sessions,
		directory: directory,
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// Serve handles GET /ws/rides. An initial token may be passed as ?token=.
func (h *LiveHandler) Serve(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	conn := &safeConn{ws: ws}
	defer conn.close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	bridge := identity.NewBridge(h.directory, identity.WithLogger(h.logger))
	unsubscribeIdentity := bridge.Subscribe(func(st identity.State) {
		if err := conn.writeJSON(ServerFrame{Type: FrameIdentity, Identity: &st}); err != nil {
			h.logger.Debug("Identity push failed", zap.Error(err))
		}
	})
	defer unsubscribeIdentity()

	h.authenticate(ctx, conn, bridge, c.Query("token"))

	snapshots, unsubscribeRides := h.rides.Subscribe(ctx)
	defer unsubscribeRides()
	pushDone := make(chan struct{})
	go func() {
		defer close(pushDone)
		for rides := range snapshots {
			list := nonNilRides(rides)
			if err := conn.writeJSON(ServerFrame{Type: FrameRides, Rides: &list}); err != nil {
				h.logger.Debug("Ride push failed", zap.Error(err))
				cancel()
				return
			}
		}
	}()

	h.logger.Info("Live client connected")
	for {
		var frame ClientFrame
		if err := ws.ReadJSON(&frame); err != nil {
			break
		}
		switch frame.Type {
		case FrameAuth:
			h.authenticate(ctx, conn, bridge, frame.Token)
		case FrameSignOut:
			bridge.Apply(nil)
		case FrameNavigate:
			if target, redirect := identity.RedirectTarget(frame.Path, bridge.Current()); redirect {
				_ = conn.writeJSON(ServerFrame{Type: FrameRedirect, Path: target})
			} else {
				_ = conn.writeJSON(ServerFrame{Type: FrameAllowed, Path: frame.Path})
			}
		default:
			_ = conn.writeJSON(ServerFrame{Type: FrameError, Error: "unknown frame type: " + frame.Type})
		}
	}

	unsubscribeRides()
	<-pushDone
	h.logger.Info("Live client disconnected")
}

// authenticate applies the session behind token, or signs out when token is
// empty or invalid.
func (h *LiveHandler) authenticate(ctx context.Context, conn *safeConn, bridge *identity.Bridge, token string) {
	if token == "" {
		bridge.Apply(nil)
		return
	}
	session, err := h.sessions.VerifySession(ctx, token)
	if err != nil {
		h.logger.Warn("Live session token rejected", zap.Error(err))
		_ = conn.writeJSON(ServerFrame{Type: FrameError, Error: "Invalid or expired authentication token"})
		bridge.Apply(nil)
		return
	}
	bridge.Apply(session)
}

func nonNilRides(rides []models.Ride) []models.Ride {
	if rides == nil {
		return []models.Ride{}
	}
	return rides
}
