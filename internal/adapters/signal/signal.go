package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/config"
	"github.com/dkeye/Relay/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type SignalWSController struct {
	Orch    *orch.Orchestrator
	limiter *RateLimiter

	readLimit  int64
	pingPeriod time.Duration
	writeWait  time.Duration
	sendBuffer int
}

func NewSignalWSController(o *orch.Orchestrator, cfg *config.Config) *SignalWSController {
	return &SignalWSController{
		Orch:       o,
		limiter:    NewRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.Interval),
		readLimit:  cfg.ReadLimit,
		pingPeriod: cfg.PingPeriod,
		writeWait:  cfg.WriteWait,
		sendBuffer: cfg.SendBuffer,
	}
}

// pongWait must stay above pingPeriod so a healthy peer is never timed out.
func (ctl *SignalWSController) pongWait() time.Duration {
	return ctl.pingPeriod * 10 / 9
}

// WsSignalConn is the transport endpoint of one client. It implements
// core.SignalConnection. writePump owns the socket: Close only ends the
// queue, and the pump flushes it, sends a close frame and closes the socket.
type WsSignalConn struct {
	id   core.ConnID
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(id core.ConnID, ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{id: id, conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	id := core.ConnID(uuid.NewString())

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.readLimit)
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("client", c.GetString(ClientTokenKey)).Msg("new WS connection")

	conn := newWsSignalConn(id, ws, ctl.sendBuffer)
	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, conn)
}
