package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lguibr/tetris/bollywood"
	"github.com/lguibr/tetris/logging"
	"github.com/lguibr/tetris/utils"
	"golang.org/x/net/websocket"
)

// Server exposes sessions over HTTP and WebSocket.
type Server struct {
	engine            *bollywood.Engine
	sessionManagerPID *bollywood.PID
	cfg               utils.Config
}

func New(engine *bollywood.Engine, sessionManagerPID *bollywood.PID, cfg utils.Config) *Server {
	return &Server{
		engine:            engine,
		sessionManagerPID: sessionManagerPID,
		cfg:               cfg,
	}
}

func (s *Server) GetEngine() *bollywood.Engine         { return s.engine }
func (s *Server) GetSessionManagerPID() *bollywood.PID { return s.sessionManagerPID }

// Routes registers "/" (session list) and "/subscribe" (one game per connection).
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.HandleGetSessions())
	mux.Handle("/subscribe", websocket.Handler(s.HandleSubscribe()))
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.ServerAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Infof("Server listening on %s", s.cfg.ServerAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", s.cfg.ServerAddr, err)
	case <-ctx.Done():
		logging.Infof("Server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
