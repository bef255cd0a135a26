// Package server exposes the lounge over HTTP: the embedded chat page, a
// health endpoint, a WebSocket info route, and the WebSocket upgrade
// itself. The core treats all of this as opaque transport.
package server

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/loungelabs/lounge/config"
	"github.com/loungelabs/lounge/src/hub"
	"github.com/loungelabs/lounge/src/service"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

//go:embed index.html
var chatPage string

// Server hosts the fiber app and the raw WebSocket upgrade endpoint.
type Server struct {
	cfg      *config.Config
	hub      *hub.Hub
	svc      *service.Service
	app      *fiber.App
	srv      *fasthttp.Server
	upgrader websocket.FastHTTPUpgrader
	logger   zerolog.Logger
}

// New creates the HTTP server around an already-wired hub and service.
func New(cfg *config.Config, h *hub.Hub, svc *service.Service, logger zerolog.Logger) *Server {
	s := &Server{
		cfg: cfg,
		hub: h,
		svc: svc,
		upgrader: websocket.FastHTTPUpgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
		},
		logger: logger.With().Str("component", "server").Logger(),
	}
	s.app = fiber.New()
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/", func(c fiber.Ctx) error {
		c.Type("html")
		return c.SendString(chatPage)
	})
	s.app.Get("/healthz", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})
	s.app.Get("/ws/info", s.handleInfo)
}

func (s *Server) handleInfo(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"websocket": true,
		"endpoint":  "/ws",
		"clients":   s.hub.ClientCount(),
		"online":    len(s.svc.OnlineUsers()),
		"rooms":     s.hub.Rooms(),
	})
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

// Start listens and serves until Stop is called. The WebSocket upgrade is
// handled on the raw fasthttp server since Fiber v3 does not expose
// *fasthttp.RequestCtx.
func (s *Server) Start() error {
	fiberHandler := s.app.Handler()
	s.srv = &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			if string(ctx.Path()) == "/ws" {
				s.handleWebSocket(ctx)
				return
			}
			fiberHandler(ctx)
		},
	}
	s.logger.Info().Str("addr", s.Addr()).Msg("lounge server listening")
	return s.srv.ListenAndServe(s.Addr())
}

// Stop shuts down the HTTP listener. Hub shutdown is the caller's job.
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown()
}

func (s *Server) handleWebSocket(ctx *fasthttp.RequestCtx) {
	upgrade := string(ctx.Request.Header.Peek("Upgrade"))
	if !strings.EqualFold(upgrade, "websocket") {
		ctx.SetStatusCode(fasthttp.StatusUpgradeRequired)
		ctx.SetBodyString(`{"error":"upgrade_required","message":"WebSocket upgrade required"}`)
		return
	}

	clientID := uuid.New().String()

	err := s.upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
		client := hub.NewClientBuffered(clientID, &fasthttpConn{conn}, s.hub, s.cfg.SendBuffer)
		s.hub.Register(client)
		go client.WritePump()
		client.ReadPump()
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade failed")
	}
}

// fasthttpConn wraps fasthttp/websocket.Conn to satisfy types.Conn.
type fasthttpConn struct {
	conn *websocket.Conn
}

func (f *fasthttpConn) WriteJSON(v any) error { return f.conn.WriteJSON(v) }
func (f *fasthttpConn) ReadJSON(v any) error  { return f.conn.ReadJSON(v) }
func (f *fasthttpConn) Close() error          { return f.conn.Close() }
