package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rallyhq/rally/internal/app/orch"
	"github.com/rallyhq/rally/internal/config"
	"github.com/rallyhq/rally/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// EventWSController terminates the client event channel and translates
// frames into coordinator calls.
type EventWSController struct {
	Orch *orch.Orchestrator
	Cfg  *config.Config
}

func NewEventWSController(o *orch.Orchestrator, cfg *config.Config) *EventWSController {
	return &EventWSController{Orch: o, Cfg: cfg}
}

// wsEventConn implements core.EventConn over a websocket with a bounded
// send queue; a full queue drops the frame rather than blocking the
// coordinator.
type wsEventConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsEventConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsEventConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleEvents upgrades the request and runs the connection's pumps.
// Each connection gets a fresh session id for its lifetime.
func (ctl *EventWSController) HandleEvents(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	conn := &wsEventConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctl.Orch.Connect(sid, c.ClientIP(), conn)
	ctl.sendJSON(conn, core.NewRoomsUpdateEvent(ctl.Orch.PublicRooms()))

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
