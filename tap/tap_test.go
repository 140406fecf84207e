package tap

import (
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	return conn
}

func TestPublish(t *testing.T) {
	s := New(log.New(io.Discard, "", 0))
	srv := httptest.NewServer(s)
	defer srv.Close()
	defer s.Close()

	a, b := dial(t, srv), dial(t, srv)
	defer a.Close()
	defer b.Close()
	waitFor(t, "two observers", func() bool { return s.Subscribers() == 2 })

	type picture struct {
		Tick uint32 `json:"tick"`
		ID   uint8  `json:"id"`
	}
	if err := s.Publish(picture{Tick: 42, ID: 3}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	for i, c := range []*websocket.Conn{a, b} {
		var got picture
		c.SetReadDeadline(time.Now().Add(2 * time.Second))
		if err := c.ReadJSON(&got); err != nil {
			t.Fatalf("observer %d: ReadJSON() error = %v", i, err)
		}
		if got != (picture{Tick: 42, ID: 3}) {
			t.Errorf("observer %d got %+v", i, got)
		}
	}
}

func TestObserverDisconnect(t *testing.T) {
	s := New(log.New(io.Discard, "", 0))
	srv := httptest.NewServer(s)
	defer srv.Close()

	c := dial(t, srv)
	waitFor(t, "observer", func() bool { return s.Subscribers() == 1 })

	c.Close()
	waitFor(t, "observer removal", func() bool { return s.Subscribers() == 0 })

	if err := s.Publish(map[string]int{"tick": 1}); err != nil {
		t.Errorf("Publish() with no observers error = %v", err)
	}
}

func TestPublishUnencodable(t *testing.T) {
	s := New(log.New(io.Discard, "", 0))
	if err := s.Publish(make(chan int)); err == nil {
		t.Error("Publish() accepted a value JSON cannot encode")
	}
}

func TestRejectsPlainHTTP(t *testing.T) {
	s := New(log.New(io.Discard, "", 0))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code < 400 {
		t.Errorf("plain GET status = %d, want an error", rec.Code)
	}
	if s.Subscribers() != 0 {
		t.Error("plain GET registered an observer")
	}
}
