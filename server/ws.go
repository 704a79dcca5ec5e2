package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teranos/syntaxis/logger"
)

// WebSocket timeouts, as in the gorilla chat example
// See: https://github.com/gorilla/websocket/blob/master/examples/chat/client.go
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = maxRequestBody
)

// wsSession is one /ws/generate connection. Writes come from the read
// loop and the pinger, so they share a lock.
type wsSession struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsSession) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

func (c *wsSession) writeJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, data)
}

// HandleGenerateWebSocket answers every {template, count} message with a
// generate response or an error object, in order, until the client
// disconnects or the server stops. Rate limiting applies per message.
func (s *Server) HandleGenerateWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		s.logger.Debugw("WebSocket upgrade failed", "error", err)
		return
	}

	log := logger.LoggerFromContext(r.Context(), s.logger)
	session := &wsSession{conn: conn}
	s.wsClients.Add(1)
	s.wg.Add(1)
	log.Debugw("WebSocket client connected", "clients", s.wsClients.Load())

	done := make(chan struct{})
	defer func() {
		close(done)
		conn.Close()
		s.wsClients.Add(-1)
		s.wg.Done()
		log.Debugw("WebSocket client disconnected")
	}()

	go s.pingLoop(session, done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var req GenerateRequest
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnw("WebSocket read error", "error", err)
			}
			return
		}

		var reply interface{}
		switch {
		case json.Unmarshal(data, &req) != nil:
			reply = ErrorResponse{Error: "Invalid message: expected {\"template\": ...}"}
		case s.getLimiter() != nil && !s.getLimiter().Allow():
			reply = ErrorResponse{Error: "Rate limit exceeded"}
		default:
			resp, err := s.generate(s.ctx, req.Template, req.Count)
			if err != nil {
				status, body := errorResponse(err)
				if status >= http.StatusInternalServerError {
					log.Errorw("WebSocket generation failed", "error", err)
				}
				reply = body
			} else {
				reply = resp
			}
		}

		if err := session.writeJSON(reply); err != nil {
			log.Debugw("WebSocket write failed", "error", err)
			return
		}
	}
}

// pingLoop keeps the connection alive and closes it on server shutdown
func (s *Server) pingLoop(session *wsSession, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-s.ctx.Done():
			session.write(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			session.conn.Close()
			return
		case <-ticker.C:
			if err := session.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
