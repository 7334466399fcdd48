// Package server exposes the command registry to the GUI over a WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gitly.dev/gitly/internal/commands"
	"gitly.dev/gitly/internal/config"
	gitlyerrors "gitly.dev/gitly/internal/errors"
	"gitly.dev/gitly/internal/output"
)

const (
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
	maxMessageSize  = 1 << 20
)

// Server serves /ws and /healthz
type Server struct {
	addr           string
	allowedOrigins map[string]bool
	registry       *commands.Registry
	splog          *output.Splog
	log            *slog.Logger
	upgrader       websocket.Upgrader
}

// New creates a server for cfg that dispatches into registry
func New(cfg config.ServeConfig, registry *commands.Registry, splog *output.Splog) *Server {
	s := &Server{
		addr:           cfg.Addr,
		allowedOrigins: make(map[string]bool, len(cfg.AllowedOrigins)),
		registry:       registry,
		splog:          splog,
		log:            splog.FileLogger().With("component", "server"),
	}
	for _, origin := range cfg.AllowedOrigins {
		s.allowedOrigins[origin] = true
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return s.isAllowedOrigin(r.Header.Get("Origin"))
		},
	}
	return s
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// ListenAndServe serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.splog.Info("Listening on %s", ln.Addr())
	s.log.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		s.log.Info("stopped")
		return nil
	}
}

// isAllowedOrigin accepts requests without an Origin (native clients),
// loopback origins and the configured list.
func (s *Server) isAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	if s.allowedOrigins[origin] {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"commands": s.registry.Names(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "origin", r.Header.Get("Origin"), "err", err)
		return
	}
	connID := uuid.NewString()
	log := s.log.With("conn", connID)
	log.Info("connection opened", "remote", r.RemoteAddr)
	defer func() {
		_ = conn.Close()
		log.Info("connection closed")
	}()

	conn.SetReadLimit(maxMessageSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		// unblock ReadMessage when the server shuts down
		<-ctx.Done()
		_ = conn.SetReadDeadline(time.Now())
	}()

	// requests on one connection are handled in arrival order
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
				log.Debug("read failed", "err", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		resp := s.handleMessage(ctx, log, data)
		if err := s.writeResponse(conn, resp); err != nil {
			log.Debug("write failed", "err", err)
			return
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, log *slog.Logger, data []byte) commands.Response {
	var req commands.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return commands.Response{Error: &commands.ErrorPayload{
			Kind:    string(gitlyerrors.KindInvalidArgument),
			Message: fmt.Sprintf("malformed request: %v", err),
		}}
	}

	start := time.Now()
	resp := s.registry.Dispatch(ctx, req)
	attrs := []any{"id", req.ID, "command", req.Command, "ok", resp.OK, "duration", time.Since(start)}
	if resp.Error != nil {
		attrs = append(attrs, "kind", resp.Error.Kind, "err", resp.Error.Message)
	}
	log.Debug("dispatch", attrs...)
	return resp
}

func (s *Server) writeResponse(conn *websocket.Conn, resp commands.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		data, _ = json.Marshal(commands.Response{ID: resp.ID, Error: &commands.ErrorPayload{
			Kind:    string(gitlyerrors.KindStoreError),
			Message: fmt.Sprintf("failed to encode response: %v", err),
		}})
	}
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
