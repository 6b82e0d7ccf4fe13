package observers

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JaimeStill/tally/internal/classification"
)

// StateFunc returns the current survey state sent to observers on connect.
type StateFunc func() classification.State

// Handler upgrades observer connections and streams state updates.
type Handler struct {
	hub          *Hub
	state        StateFunc
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	pingInterval time.Duration
	logger       *slog.Logger
}

// NewHandler creates a Handler streaming updates from hub.
func NewHandler(hub *Hub, state StateFunc, cfg *Config, logger *slog.Logger) *Handler {
	return &Handler{
		hub:   hub,
		state: state,
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin(cfg.AllowedOrigins),
		},
		writeTimeout: cfg.WriteTimeoutDuration(),
		pingInterval: cfg.PingIntervalDuration(),
		logger:       logger.With("handler", "observers"),
	}
}

// Observe streams state_update messages over a WebSocket connection. The
// current state is sent immediately after the upgrade, then every published
// update follows until the client disconnects or the hub closes.
func (h *Handler) Observe(w http.ResponseWriter, r *http.Request) {
	sub, err := h.hub.Subscribe()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer h.hub.Unsubscribe(sub)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.logger.Info("observer connected", "addr", r.RemoteAddr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	initial := classification.Update{
		Event: classification.EventStateUpdate,
		State: h.state(),
	}
	if err := h.write(conn, initial); err != nil {
		return
	}

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-done:
			h.logger.Info("observer disconnected", "addr", r.RemoteAddr)
			return
		case update, ok := <-sub.Updates():
			if !ok {
				h.closeConn(conn)
				<-done
				return
			}
			if err := h.write(conn, update); err != nil {
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(h.writeTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, update classification.Update) error {
	conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	if err := conn.WriteJSON(update); err != nil {
		h.logger.Warn("observer write failed", "error", err)
		return err
	}
	return nil
}

func (h *Handler) closeConn(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.writeTimeout))
	conn.SetReadDeadline(time.Now().Add(h.writeTimeout))
}

func checkOrigin(origins []string) func(*http.Request) bool {
	if len(origins) == 0 {
		return nil
	}
	if slices.Contains(origins, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		return slices.Contains(origins, r.Header.Get("Origin"))
	}
}
