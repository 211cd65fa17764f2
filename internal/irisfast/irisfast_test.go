package irisfast

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func TestClientSendsReplies(t *testing.T) {
	got := make(chan ReplyRequest, 2)
	var userHeader atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != pathReply || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		userHeader.Store(r.Header.Get("X-User-Id"))
		var req ReplyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		got <- req
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithHeaderProvider(func() map[string]string {
		return map[string]string{"X-User-Id": "bot", "X-Empty": " "}
	}))
	ctx := context.Background()
	if err := c.SendText(ctx, "room-1", "hello"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if err := c.SendImage(ctx, "room-1", []byte{0x89, 'P', 'N', 'G'}); err != nil {
		t.Fatalf("SendImage: %v", err)
	}

	text := <-got
	if text.Type != "text" || text.Room != "room-1" || text.Data != "hello" {
		t.Fatalf("text reply %+v", text)
	}
	img := <-got
	raw, err := base64.StdEncoding.DecodeString(img.Data)
	if img.Type != "image" || err != nil || string(raw) != "\x89PNG" {
		t.Fatalf("image reply %+v (%v)", img, err)
	}
	if userHeader.Load() != "bot" {
		t.Fatalf("header not forwarded: %v", userHeader.Load())
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetry(3))
	if err := c.SendText(context.Background(), "r", "x"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls=%d", calls.Load())
	}

	calls.Store(0)
	c = NewClient(srv.URL, WithRetry(1))
	if err := c.SendText(context.Background(), "r", "x"); err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected 503 error, got %v", err)
	}
}

// wsServer pushes one message to each client, then records reply frames.
func wsServer(t *testing.T, push Message, replies chan<- ReplyRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		ctx := r.Context()
		if err := wsjson.Write(ctx, conn, push); err != nil {
			return
		}
		for {
			var req ReplyRequest
			if err := wsjson.Read(ctx, conn, &req); err != nil {
				return
			}
			replies <- req
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketReceivesAndReplies(t *testing.T) {
	sender := "alice"
	replies := make(chan ReplyRequest, 4)
	srv := wsServer(t, Message{Room: "lobby", Msg: "!othello start", Sender: &sender}, replies)

	ws := NewWebSocket(wsURL(srv), 0, nil)
	inbound := make(chan *Message, 1)
	ws.OnMessage(func(m *Message) { inbound <- m })
	states := make(chan WebSocketState, 8)
	ws.OnStateChange(func(s WebSocketState) { states <- s })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ws.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer ws.Close(context.Background())

	select {
	case m := <-inbound:
		if m.Room != "lobby" || m.Msg != "!othello start" || m.UserID() != "alice" {
			t.Fatalf("unexpected message %+v", m)
		}
	case <-ctx.Done():
		t.Fatalf("no inbound message")
	}
	if s := <-states; s != WSStateConnecting {
		t.Fatalf("first state %s", s)
	}
	if s := <-states; s != WSStateConnected {
		t.Fatalf("second state %s", s)
	}

	if err := ws.SendText(ctx, "lobby", "ok"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	select {
	case r := <-replies:
		if r.Type != "text" || r.Room != "lobby" || r.Data != "ok" {
			t.Fatalf("reply %+v", r)
		}
	case <-ctx.Done():
		t.Fatalf("no reply frame")
	}
}

func TestWebSocketConnectFailure(t *testing.T) {
	ws := NewWebSocket("ws://127.0.0.1:1/ws", 0, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ws.Connect(ctx); err == nil {
		t.Fatalf("expected dial error")
	}
	if ws.State() != WSStateFailed {
		t.Fatalf("state=%s", ws.State())
	}
	if err := ws.SendText(ctx, "r", "x"); err != errNotConnected {
		t.Fatalf("SendText on failed socket: %v", err)
	}
}

func TestAutoEgressFallsBackToHTTP(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ws := NewWebSocket("ws://127.0.0.1:1/ws", 0, nil)
	e, err := NewEgress(TransportAuto, false, NewClient(srv.URL), ws, nil)
	if err != nil {
		t.Fatalf("NewEgress: %v", err)
	}
	if err := e.SendText(context.Background(), "r", "hi"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("http not used, hits=%d", hits.Load())
	}
}

func TestNewEgressModes(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	ws := NewWebSocket("ws://127.0.0.1:1/ws", 0, nil)

	if e, err := NewEgress("", false, c, ws, nil); err != nil || e != Egress(c) {
		t.Fatalf("default egress %T %v", e, err)
	}
	if e, err := NewEgress(TransportWS, false, c, ws, nil); err != nil || e != Egress(ws) {
		t.Fatalf("ws egress %T %v", e, err)
	}
	if _, err := NewEgress("smoke", false, c, ws, nil); err == nil {
		t.Fatalf("unknown mode accepted")
	}
	if _, err := NewEgress(TransportAuto, false, nil, ws, nil); err == nil {
		t.Fatalf("auto without http accepted")
	}
	e, err := NewEgress(TransportHTTP, true, c, ws, nil)
	if err != nil {
		t.Fatalf("dryrun: %v", err)
	}
	if err := e.SendText(context.Background(), "r", "x"); err != nil {
		t.Fatalf("dryrun send: %v", err)
	}
}
