// File: server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/lguibr/tetris/bollywood"
	"github.com/lguibr/tetris/game"
	"github.com/lguibr/tetris/logging"
	"golang.org/x/net/websocket"
)

// HandleSubscribe hands the connection to a ConnectionHandlerActor and blocks
// until it stops; websocket.Handler closes the connection when this returns.
func (s *Server) HandleSubscribe() func(ws *websocket.Conn) {
	return func(ws *websocket.Conn) {
		connectionAddr := ws.Request().RemoteAddr
		logging.Infof("HandleSubscribe: New connection from %s", connectionAddr)

		defer func() {
			if r := recover(); r != nil {
				logging.Errorf("PANIC recovered in HandleSubscribe for %s: %v\nStack trace:\n%s", connectionAddr, r, string(debug.Stack()))
			}
			_ = ws.Close()
		}()

		if s.engine == nil || s.sessionManagerPID == nil {
			logging.Errorf("HandleSubscribe: Server engine or SessionManagerPID is nil. Closing connection %s.", connectionAddr)
			return
		}

		done := make(chan struct{})
		pid := s.engine.Spawn(bollywood.NewProps(NewConnectionHandlerProducer(ConnectionHandlerArgs{
			Conn:              ws,
			Engine:            s.engine,
			SessionManagerPID: s.sessionManagerPID,
			ReadTimeout:       s.cfg.ReadTimeout,
			Done:              done,
		})))
		if pid == nil {
			logging.Errorf("HandleSubscribe: Failed to spawn connection handler for %s.", connectionAddr)
			return
		}
		<-done
		logging.Infof("HandleSubscribe: Handler finished for %s.", connectionAddr)
	}
}

// HandleGetSessions lists running sessions as JSON.
func (s *Server) HandleGetSessions() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.Errorf("PANIC recovered in HandleGetSessions: %v\nStack trace:\n%s", rec, string(debug.Stack()))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.engine == nil || s.sessionManagerPID == nil {
			http.Error(w, "Session manager unavailable", http.StatusServiceUnavailable)
			return
		}

		reply, err := s.engine.Ask(s.sessionManagerPID, game.GetSessionListRequest{}, s.cfg.AskTimeout)
		if err != nil {
			logging.Warnf("HandleGetSessions: Ask failed: %v", err)
			status := http.StatusInternalServerError
			if errors.Is(err, bollywood.ErrAskTimeout) || errors.Is(err, bollywood.ErrActorNotFound) {
				status = http.StatusServiceUnavailable
			}
			http.Error(w, "Session list unavailable", status)
			return
		}
		list, ok := reply.(game.SessionListResponse)
		if !ok {
			logging.Errorf("HandleGetSessions: Unexpected reply type %T", reply)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(list); err != nil {
			logging.Warnf("HandleGetSessions: Error writing response: %v", err)
		}
	}
}
