package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"planningpoker/internal/room"
	"planningpoker/internal/services/rooms"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second // must be < pongWait
	readLimit      = 8 << 10
	handlerTimeout = 5 * time.Second
)

// ConnContext is handed to every event handler.
type ConnContext struct {
	conn   *clientConn
	Server *WsServer
}

// Binding reports the room and session this connection joined as.
func (cc *ConnContext) Binding() (Binding, bool) { return cc.Server.hub.Lookup(cc.conn) }

type WsServer struct {
	hub      *Hub
	router   *Router
	roomSvc  rooms.IRoomService
	upgrader websocket.Upgrader
	closing  atomic.Bool
	wg       sync.WaitGroup
}

func NewWsServer(h *Hub, roomSvc rooms.IRoomService) *WsServer {
	srv := &WsServer{
		hub:     h,
		router:  NewRouter(),
		roomSvc: roomSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	srv.registerHandlers() // ← all WS events configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry‑point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	if s.closing.Load() {
		ginCtx.JSON(http.StatusServiceUnavailable, gin.H{"error": "server is shutting down"})
		return
	}

	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.upgrade", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(readLimit)

	conn := newClientConn(rawConn)
	s.hub.register(conn)

	s.wg.Add(1)
	go s.reader(conn)
	go s.pinger(conn)
}

// Shutdown flags every bound participant as disconnected, keeping their
// seats and votes, and closes all sockets. The reaper drops those seats on
// its first pass after a restart.
func (s *WsServer) Shutdown(ctx context.Context) {
	s.closing.Store(true)

	for c, b := range s.hub.bound() {
		if err := s.roomSvc.Disconnect(ctx, b.Slug, b.SessionID); err != nil {
			zap.L().Warn("ws.shutdown_disconnect", zap.String("slug", b.Slug), zap.Error(err))
		}
		c.close(websocket.CloseGoingAway, "server shutting down")
	}
	for _, c := range s.hub.all() {
		c.close(websocket.CloseGoingAway, "server shutting down")
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		zap.L().Warn("ws.shutdown_timeout", zap.Error(ctx.Err()))
	}
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	// 🔹 join_room -----------------------------------------------------------
	Register(
		s.router,
		TypeJoinRoom,
		func(ctx context.Context, cc *ConnContext, req JoinRoomRequest) error {
			slug := strings.TrimSpace(req.RoomSlug)
			prev, wasBound := cc.Binding()

			sessionID := strings.TrimSpace(req.SessionID)
			if sessionID == "" && wasBound && prev.Slug == slug {
				sessionID = prev.SessionID
			}

			joined, err := s.roomSvc.Join(ctx, rooms.JoinParams{
				Slug:       slug,
				Name:       req.Name,
				Avatar:     req.Avatar,
				SessionID:  sessionID,
				AccessCode: req.AccessCode,
			}, func(id string) {
				s.hub.Bind(cc.conn, Binding{Slug: slug, SessionID: id})
			})
			if err != nil {
				return err
			}

			if wasBound && (prev.Slug != slug || prev.SessionID != joined) {
				// the socket moved on; its old seat goes away like a leave
				if err := s.roomSvc.Leave(ctx, prev.Slug, prev.SessionID); err != nil {
					zap.L().Warn("ws.rebind_leave", zap.String("slug", prev.Slug), zap.Error(err))
				}
			}
			zap.L().Debug("ws.joined", zap.String("slug", slug), zap.String("session_id", joined))
			return nil
		},
	)

	// 🔹 leave_room ----------------------------------------------------------
	Register(
		s.router,
		TypeLeaveRoom,
		func(ctx context.Context, cc *ConnContext, _ EmptyRequest) error {
			return s.leave(ctx, cc.conn)
		},
	)

	// 🔹 new_vote ------------------------------------------------------------
	Register(
		s.router,
		TypeNewVote,
		func(ctx context.Context, cc *ConnContext, req VoteRequest) error {
			b, ok := cc.Binding()
			if !ok {
				return errNotInRoom
			}
			v, err := room.ParseVote(req.Value)
			if err != nil {
				return rooms.ErrInvalidVote
			}
			return s.roomSvc.Vote(ctx, b.Slug, b.SessionID, v)
		},
	)

	// 🔹 reveal_votes / reset_votes ------------------------------------------
	Register(
		s.router,
		TypeRevealVotes,
		func(ctx context.Context, cc *ConnContext, _ EmptyRequest) error {
			b, ok := cc.Binding()
			if !ok {
				return errNotInRoom
			}
			return s.roomSvc.Reveal(ctx, b.Slug, b.SessionID)
		},
	)
	Register(
		s.router,
		TypeResetVotes,
		func(ctx context.Context, cc *ConnContext, _ EmptyRequest) error {
			b, ok := cc.Binding()
			if !ok {
				return errNotInRoom
			}
			return s.roomSvc.Reset(ctx, b.Slug, b.SessionID)
		},
	)
}

// leave removes the connection's participant while it is still bound, so
// the leaver receives the resulting broadcast, then unbinds it.
func (s *WsServer) leave(ctx context.Context, conn *clientConn) error {
	b, ok := s.hub.Lookup(conn)
	if !ok {
		return nil
	}
	err := s.roomSvc.Leave(ctx, b.Slug, b.SessionID)
	s.hub.Unbind(conn)
	return err
}

func (s *WsServer) reader(conn *clientConn) {
	defer s.wg.Done()
	defer func() {
		if !s.closing.Load() {
			ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
			if err := s.leave(ctx, conn); err != nil {
				zap.L().Warn("ws.leave_on_close", zap.Error(err))
			}
			cancel()
		}
		s.hub.unregister(conn)
		conn.close(websocket.CloseNormalClosure, "")
	}()

	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	cc := &ConnContext{conn: conn, Server: s}

	for {
		_, data, err := conn.rawConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				zap.L().Debug("ws.read", zap.Error(err))
			}
			return // client closed or errored
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.sendError(conn, errInvalidMessage)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		err = s.router.dispatch(ctx, cc, env)
		cancel()

		// ---- error -> {"type":"error", "payload":{code, message}} ----------
		if err != nil {
			s.sendError(conn, err)
		}
	}
}

func (s *WsServer) sendError(conn *clientConn, err error) {
	body, ok := errorBody(err)
	if !ok {
		if !errors.Is(err, rooms.ErrPersistence) {
			zap.L().Warn("ws.handler", zap.Error(err))
		}
		return
	}
	if werr := conn.writeJSON(outFrame{Type: TypeError, Payload: body}); werr != nil {
		zap.L().Debug("ws.write_error", zap.Error(werr))
	}
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-conn.done:
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				conn.close(websocket.CloseGoingAway, "ping timeout")
				return
			}
		}
	}
}
