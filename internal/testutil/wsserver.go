package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Session is the server side of one accepted socket connection.
type Session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	// Request is the upgrade request, for header/query assertions.
	Request *http.Request
}

// SendJSON writes one JSON frame.
func (s *Session) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// SendBinaryJSON writes one JSON frame as a binary message.
func (s *Session) SendBinaryJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

// CloseNormal performs a clean close handshake.
func (s *Session) CloseNormal() {
	s.writeMu.Lock()
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.writeMu.Unlock()
	_ = s.conn.Close()
}

// Abort drops the underlying TCP connection without a close handshake.
func (s *Session) Abort() {
	_ = s.conn.Close()
}

// Handler scripts the fake service: invoked once per inbound request frame.
type Handler func(s *Session, request []byte)

// WSServer is a scripted websocket service for transport tests. Its BaseURL
// is a plain http URL; clients derive the socket URL from it the same way
// they would in production.
type WSServer struct {
	Server  *httptest.Server
	BaseURL string

	handler  Handler
	dials    atomic.Int32
	mu       sync.Mutex
	sessions []*Session
}

// NewWSServer starts a fake service that upgrades every request and feeds
// inbound frames to handler. Call Close when done.
func NewWSServer(handler Handler) *WSServer {
	ws := &WSServer{handler: handler}
	upgrader := websocket.Upgrader{}
	ws.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ws.dials.Add(1)
		sess := &Session{conn: conn, Request: r}
		ws.mu.Lock()
		ws.sessions = append(ws.sessions, sess)
		ws.mu.Unlock()
		go ws.serve(sess)
	}))
	ws.BaseURL = ws.Server.URL
	return ws
}

func (w *WSServer) serve(sess *Session) {
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			return
		}
		if w.handler != nil {
			w.handler(sess, data)
		}
	}
}

// Dials reports how many socket connections were accepted.
func (w *WSServer) Dials() int { return int(w.dials.Load()) }

// LastSession returns the most recently accepted session, or nil.
func (w *WSServer) LastSession() *Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.sessions) == 0 {
		return nil
	}
	return w.sessions[len(w.sessions)-1]
}

// Close shuts the fake service down.
func (w *WSServer) Close() {
	w.mu.Lock()
	for _, s := range w.sessions {
		_ = s.conn.Close()
	}
	w.mu.Unlock()
	w.Server.Close()
}
