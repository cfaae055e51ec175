package api

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"ghostconf/logging"
	"ghostconf/session"
)

// upgrader keeps gorilla's default origin check: a browser may only attach
// from a page served by this host. Clients that send no Origin pass.
var upgrader = websocket.Upgrader{}

// Stream message types. The server sends ready, output and closed; the
// client sends input and resize.
const (
	msgReady  = "ready"
	msgOutput = "output"
	msgClosed = "closed"
	msgInput  = "input"
	msgResize = "resize"
)

type wsMessage struct {
	Type   string          `json:"type"`
	Data   string          `json:"data,omitempty"`
	Cols   uint16          `json:"cols,omitempty"`
	Rows   uint16          `json:"rows,omitempty"`
	Launch *session.Launch `json:"launch,omitempty"`
}

// stream is one WebSocket attached to a try-out shell.
type stream struct {
	conn *websocket.Conn
	s    *session.Session
	log  *slog.Logger

	// gorilla/websocket allows one concurrent writer
	mu sync.Mutex
}

func (st *stream) send(msg wsMessage) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.conn.WriteJSON(msg)
}

func (st *stream) sendOutput(data []byte) error {
	return st.send(wsMessage{Type: msgOutput, Data: base64.StdEncoding.EncodeToString(data)})
}

// pump forwards live output until ClearClient closes out.
func (st *stream) pump(out <-chan []byte) {
	for data := range out {
		if err := st.sendOutput(data); err != nil {
			return
		}
	}
}

// watch closes the connection when the shell exits or a newer client takes
// the session over, so the read loop unblocks.
func (st *stream) watch(kick <-chan struct{}, done <-chan struct{}) {
	select {
	case <-st.s.Done():
		st.send(wsMessage{Type: msgClosed}) //nolint:errcheck
		st.conn.Close()
	case <-kick:
		// the session keeps running, so no closed message
		st.conn.Close()
	case <-done:
	}
}

// read handles client messages until the connection drops. The session
// outlives the connection either way.
func (st *stream) read() {
	for {
		var msg wsMessage
		if err := st.conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case msgInput:
			data, err := base64.StdEncoding.DecodeString(msg.Data)
			if err != nil {
				continue
			}
			if _, err := st.s.WriteToPTY(data); err != nil {
				st.log.Warn("PTY write failed", "err", err)
				return
			}
		case msgResize:
			if msg.Cols == 0 || msg.Rows == 0 {
				continue
			}
			if err := st.s.Resize(msg.Cols, msg.Rows); err != nil {
				st.log.Debug("PTY resize failed", "err", err)
			}
		}
	}
}

// handleWS attaches a client to a session: a ready message describing the
// launch, the scrollback replay, then live output.
func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, ok := h.sessions.Get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Debug("session upgrade failed", "id", id, "err", err)
		return
	}
	defer conn.Close()

	st := &stream{conn: conn, s: s, log: logging.With("session", id)}
	out := make(chan []byte, 256)
	kick := s.SetClient(out)
	defer s.ClearClient(out)

	launch := s.Launch
	if err := st.send(wsMessage{Type: msgReady, Launch: &launch}); err != nil {
		return
	}
	if snap := s.ScrollbackSnapshot(); len(snap) > 0 {
		if err := st.sendOutput(snap); err != nil {
			st.log.Debug("scrollback replay failed", "err", err)
			return
		}
	}

	go st.pump(out)
	done := make(chan struct{})
	defer close(done)
	go st.watch(kick, done)

	st.read()
}
