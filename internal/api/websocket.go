package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tokenlens/tokenlens/internal/logging"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
	wsMaxMessage = maxInputBytes
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The API carries no credentials and mutates nothing; any
		// origin may connect.
		return true
	},
}

// wsRequest is one message from the client. Each request is answered
// with exactly one wsResponse; the connection is a stateless
// request/response stream.
type wsRequest struct {
	Input         string   `json:"input"`
	Allow         []string `json:"allow,omitempty"`
	MinConfidence float64  `json:"min_confidence,omitempty"`
}

// wsResponse is one interpretation result or error.
type wsResponse struct {
	Type      string           `json:"type"` // "result" or "error"
	Result    *InterpretResult `json:"result,omitempty"`
	Message   string           `json:"message,omitempty"`
	Timestamp string           `json:"timestamp"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", "error", err)
		return
	}
	logging.WebSocketEvent("client_connected", 1, "remote", r.RemoteAddr)

	out := make(chan wsResponse, 16)
	writerDone := make(chan struct{})
	go writePump(conn, out, writerDone)
	s.readPump(conn, out, writerDone)
	logging.WebSocketEvent("client_disconnected", 0, "remote", r.RemoteAddr)
}

// readPump reads requests and runs them through the engine. Closing
// out stops the write pump.
func (s *Server) readPump(conn *websocket.Conn, out chan<- wsResponse, writerDone <-chan struct{}) {
	defer func() {
		close(out)
		conn.Close()
	}()

	// send queues a response unless the writer has already exited;
	// without the guard a full buffer would block this pump forever
	// on a dead connection.
	send := func(resp wsResponse) bool {
		select {
		case out <- resp:
			return true
		case <-writerDone:
			return false
		}
	}

	conn.SetReadLimit(wsMaxMessage)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error("websocket unexpected close", "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))

		var req wsRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if !send(errorResponse("invalid request: " + err.Error())) {
				return
			}
			continue
		}
		if req.Input == "" {
			if !send(errorResponse("input is required")) {
				return
			}
			continue
		}

		result := s.interpret(InterpretRequest{
			Input:         req.Input,
			Allow:         req.Allow,
			MinConfidence: req.MinConfidence,
		})
		if !send(wsResponse{
			Type:      "result",
			Result:    &result,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}) {
			return
		}
	}
}

// writePump serializes responses and keeps the connection alive with
// pings. done is closed on exit so the read pump never queues into a
// channel nobody drains.
func writePump(conn *websocket.Conn, out <-chan wsResponse, done chan<- struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		close(done)
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case resp, ok := <-out:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(resp); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func errorResponse(msg string) wsResponse {
	return wsResponse{
		Type:      "error",
		Message:   msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
