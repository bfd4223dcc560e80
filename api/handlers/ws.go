package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/linesmerrill/radio-santana-api/config"
	"github.com/linesmerrill/radio-santana-api/models"
	"github.com/linesmerrill/radio-santana-api/requests"
	"github.com/linesmerrill/radio-santana-api/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Frame types pushed over the live sockets
const (
	FrameSession  = "session"
	FrameRequests = "requests"
	FrameError    = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Frame is one message pushed to a live socket
type Frame struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Live pushes snapshots to WebSocket clients as the collections change
type Live struct {
	Sessions *session.Registry
	Queue    *requests.Queue
}

// ChatSocketHandler streams the caller's session state, chat window included,
// every time it changes
func (l Live) ChatSocketHandler(w http.ResponseWriter, r *http.Request) {
	gate, ok := currentGate(l.Sessions, r)
	if !ok {
		config.ErrorStatus(NoSessionMessage, http.StatusNotFound, w, nil)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "path", r.URL.Path, "error", err)
		return
	}

	frames := make(chan Frame, 1)
	stop := gate.Watch(func(state models.SessionState) {
		offer(frames, Frame{Type: FrameSession, Data: state})
	})
	offer(frames, Frame{Type: FrameSession, Data: gate.State()})
	pump(conn, frames, stop)
}

// RequestsSocketHandler streams the retained music requests every time the
// queue changes
func (l Live) RequestsSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "path", r.URL.Path, "error", err)
		return
	}

	frames := make(chan Frame, 1)
	sub := l.Queue.Subscribe(func(list []models.MusicRequest) {
		offer(frames, Frame{Type: FrameRequests, Data: list})
	}, func(error) {
		offer(frames, Frame{Type: FrameError, Error: requests.ConnectionMessage})
	})
	pump(conn, frames, sub.Cancel)
}

// offer replaces whatever frame is still pending, a slow client only ever
// gets the latest snapshot
func offer(frames chan Frame, f Frame) {
	for {
		select {
		case frames <- f:
			return
		default:
		}
		select {
		case <-frames:
		default:
		}
	}
}

// pump serves conn until either side gives up, then calls stop
func pump(conn *websocket.Conn, frames <-chan Frame, stop func()) {
	defer stop()
	closed := make(chan struct{})
	go readPump(conn, closed)
	writePump(conn, frames, closed)
}

// readPump drains client frames so pongs and close messages are processed
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.S().Debugw("websocket closed", "error", err)
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, frames <-chan Frame, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-closed:
			return
		case f := <-frames:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
