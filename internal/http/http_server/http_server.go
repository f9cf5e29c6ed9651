package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planningpoker/internal/http/roomhandler"
	"planningpoker/internal/services/rooms"
	"planningpoker/internal/ws"
)

// LiveStats reports the live connection index for /healthz.
type LiveStats interface {
	Rooms() int
	Connections() int
}

type httpServer struct {
	listenPort  uint16
	srv         http.Server
	ln          net.Listener
	roomService rooms.IRoomService
	wsSrv       *ws.WsServer
	live        LiveStats
	ctx         context.Context
}

func NewHttpServer(ctx context.Context, listenPort uint16, wsSrv *ws.WsServer, live LiveStats, roomService rooms.IRoomService) *httpServer {
	h := &httpServer{
		listenPort:  listenPort,
		wsSrv:       wsSrv,
		live:        live,
		roomService: roomService,
		ctx:         ctx,
	}
	h.srv.Handler = h.Routes()
	h.srv.ReadHeaderTimeout = 10 * time.Second
	return h
}

// Routes builds the gin engine.
func (h *httpServer) Routes() *gin.Engine {
	routerEngine := gin.New()

	// API specs generated by `go tool swag init -o api_specs`
	routerEngine.Static("/api-specs", "api_specs")

	// routerEngine.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))
	routerEngine.Use(ginzap.RecoveryWithZap(zap.L(), true))

	routerEngine.GET("/healthz", h.healthz)

	// websocket endpoint
	routerEngine.GET("/ws", h.wsSrv.Handle)

	// REST API
	rh := roomhandler.New(h.roomService)
	rh.Register(routerEngine)

	return routerEngine
}

func (h *httpServer) Start() error {
	var err error
	listenAddr := fmt.Sprintf(":%d", h.listenPort)
	h.ln, err = net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	zap.L().Info("http.listen", zap.String("addr", h.ln.Addr().String()))

	err = h.srv.Serve(h.ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// @Summary		Health check
// @Description	Liveness plus the number of rooms and sockets held by this process.
// @Tags			Ops
// @Success		200	{object}	map[string]any
// @Router			/healthz [get]
func (h *httpServer) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"rooms":       h.live.Rooms(),
		"connections": h.live.Connections(),
	})
}

// Dispose gracefully shuts the HTTP server down.
// It waits up to 10 s for in‑flight requests to finish.
func (h *httpServer) Dispose() error {
	// A fresh context: h.ctx is usually already cancelled by the signal.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(h.ctx), 10*time.Second)
	defer cancel()

	// Sockets are hijacked, so http.Server.Shutdown does not see them.
	h.wsSrv.Shutdown(ctx)

	// Ask the server to shut down.
	if err := h.srv.Shutdown(ctx); err != nil {
		zap.L().Error("http_dispose", zap.Error(err))
		return err // e.g. active conns didn’t finish in time
	}

	// If the context’s deadline expired, log it for observability.
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		zap.L().Error("http_dispose", zap.Error(errors.New("shutdown timed out")))
	}

	return nil
}
