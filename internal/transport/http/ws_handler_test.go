package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ieee-quiz/internal/app"
	"ieee-quiz/internal/domain"
	"ieee-quiz/internal/infra/memory"
)

func TestWebSocketQuizFlow(t *testing.T) {
	service := newTestService()
	conn, cleanup := dialQuiz(t, service)
	defer cleanup()

	typ, payload := readNext(conn, t, "session")
	if typ != "session" || payload["sessionId"] == "" {
		t.Fatalf("expected session id, got %v", payload)
	}

	readState(conn, t, func(p map[string]any) bool { return p["status"] == "ready" })

	send(conn, t, map[string]any{"type": "start"})
	readState(conn, t, func(p map[string]any) bool { return p["status"] == "active" })

	send(conn, t, map[string]any{"type": "newAnswer", "payload": 1})
	state := readState(conn, t, func(p map[string]any) bool { return p["locked"] == true })
	if state["points"] != float64(10) {
		t.Fatalf("expected 10 points, got %v", state["points"])
	}

	send(conn, t, map[string]any{"type": "finish"})
	state = readState(conn, t, func(p map[string]any) bool { return p["status"] == "finished" })
	if state["highscore"] != float64(10) {
		t.Fatalf("expected highscore 10, got %v", state["highscore"])
	}
}

func TestWebSocketRejectsInternalAndUnknownEvents(t *testing.T) {
	service := newTestService()
	conn, cleanup := dialQuiz(t, service)
	defer cleanup()

	readNext(conn, t, "session")
	readState(conn, t, func(p map[string]any) bool { return p["status"] == "ready" })

	for _, msg := range []map[string]any{
		{"type": "tick"},
		{"type": "dataReceived", "payload": []any{}},
		{"type": "explode"},
		{"type": "newAnswer", "payload": "first"},
		{"type": "newAnswer", "payload": 9},
	} {
		send(conn, t, msg)
		_, payload := readNext(conn, t, "error")
		if payload["message"] == "" {
			t.Fatalf("expected error message for %v", msg)
		}
	}
}

func TestWebSocketRejectsEventsOutsideTheirScreen(t *testing.T) {
	service := newTestService()
	conn, cleanup := dialQuiz(t, service)
	defer cleanup()

	readNext(conn, t, "session")
	readState(conn, t, func(p map[string]any) bool { return p["status"] == "ready" })

	for _, msg := range []map[string]any{
		{"type": "newAnswer", "payload": 1},
		{"type": "nextQuestion"},
		{"type": "nextQuestion"},
		{"type": "nextQuestion"},
		{"type": "finish"},
		{"type": "restart"},
	} {
		send(conn, t, msg)
		readNext(conn, t, "error")
	}

	send(conn, t, map[string]any{"type": "start"})
	state := readState(conn, t, func(p map[string]any) bool { return p["status"] == "active" })
	if state["points"] != float64(0) || state["questionNumber"] != float64(1) {
		t.Fatalf("expected a clean first question, got %v", state)
	}

	send(conn, t, map[string]any{"type": "newAnswer", "payload": 1})
	state = readState(conn, t, func(p map[string]any) bool { return p["locked"] == true })
	if state["points"] != float64(10) {
		t.Fatalf("expected the first question to score once, got %v", state["points"])
	}

	send(conn, t, map[string]any{"type": "start"})
	readNext(conn, t, "error")
}

func TestQueueErrorStopsWhenWriterGone(t *testing.T) {
	send := make(chan outboundMessage[any], 1)
	writerDone := make(chan struct{})

	if !queueError(send, writerDone, errUnsupportedType) {
		t.Fatalf("expected reply queued while the writer runs")
	}

	close(writerDone)
	done := make(chan bool, 1)
	go func() { done <- queueError(send, writerDone, errUnsupportedType) }()
	select {
	case ok := <-done:
		if ok {
			t.Fatalf("expected reply dropped once the writer stopped")
		}
	case <-time.After(time.Second):
		t.Fatalf("queueError blocked on a full buffer")
	}
}

func TestWebSocketClosesSessionOnDisconnect(t *testing.T) {
	service := newTestService()
	conn, cleanup := dialQuiz(t, service)
	defer cleanup()

	readNext(conn, t, "session")
	if service.ActiveSessions() != 1 {
		t.Fatalf("expected 1 active session, got %d", service.ActiveSessions())
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for service.ActiveSessions() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("session not closed after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDecodeEvent(t *testing.T) {
	ev, err := decodeEvent(inboundMessage{Type: "newAnswer", Payload: []byte("2")})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev != (domain.NewAnswer{Option: 2}) {
		t.Fatalf("unexpected event %#v", ev)
	}
	if _, err := decodeEvent(inboundMessage{Type: "tick"}); err != errUnsupportedType {
		t.Fatalf("expected unsupported type, got %v", err)
	}
}

func dialQuiz(t *testing.T, service *app.QuizService) (*websocket.Conn, func()) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(service, nil).ServeWS)
	server := httptest.NewServer(mux)

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		server.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func send(conn *websocket.Conn, t *testing.T, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %v: %v", msg, err)
	}
}

// readState skips state messages until one satisfies cond.
func readState(conn *websocket.Conn, t *testing.T, cond func(map[string]any) bool) map[string]any {
	t.Helper()
	for i := 0; i < 20; i++ {
		_, payload := readNext(conn, t, "state")
		if cond(payload) {
			return payload
		}
	}
	t.Fatalf("no matching state message")
	return nil
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func newTestService() *app.QuizService {
	bank := memory.NewQuestionBank([]byte(`
- question: What is 2 + 2?
  options: ["3", "4", "5", "6"]
  correct_option: 1
  points: 10
- question: What is 3 + 3?
  options: ["6", "7", "8", "9"]
  correct_option: 0
  points: 10
`))
	return app.NewQuizService(memory.NewSessionStore(), bank, app.Settings{
		SecondsPerQuestion: 1000,
		TickInterval:       time.Hour,
	})
}
