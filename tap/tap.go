// Package tap streams JSON snapshots of a running participant to WebSocket
// observers. It is read-only: nothing sent by an observer reaches the
// datalink.
package tap

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = time.Second

var errSubscriberClosed = errors.New("subscriber closed")

type subscriber struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

// write sends one message guarded by the subscriber's mutex and write deadline.
func (s *subscriber) write(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSubscriberClosed
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, data)
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.conn.Close()
	}
}

// Server is an http.Handler that upgrades every request to a WebSocket and
// adds it to the set receiving Publish calls.
type Server struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func New(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
		subs:   make(map[*subscriber]struct{}),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("[Tap] upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}

	sub := &subscriber{conn: conn}
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()
	s.logger.Printf("[Tap] observer %s connected", r.RemoteAddr)

	// Drain until the peer goes away so control frames get handled.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		s.remove(sub)
		s.logger.Printf("[Tap] observer %s disconnected", r.RemoteAddr)
	}()
}

func (s *Server) remove(sub *subscriber) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
	sub.close()
}

// Publish sends v as JSON to every observer. Observers that cannot keep up
// are dropped.
func (s *Server) Publish(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		if err := sub.write(websocket.TextMessage, data); err != nil {
			s.logger.Printf("[Tap] dropping observer: %v", err)
			s.remove(sub)
		}
	}
	return nil
}

// Subscribers returns the number of connected observers.
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close disconnects every observer.
func (s *Server) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[*subscriber]struct{})
	s.mu.Unlock()

	for sub := range subs {
		sub.close()
	}
}
