package obs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// fakeOBS speaks enough obs-websocket v5 to exercise the client.
type fakeOBS struct {
	t        *testing.T
	password string
	server   *httptest.Server

	mu       sync.Mutex
	conns    []*websocket.Conn
	scene    string
	requests []string
	silent   bool
}

func newFakeOBS(t *testing.T, password string) *fakeOBS {
	t.Helper()

	f := &fakeOBS{t: t, password: password, scene: "Intro"}
	upgrader := websocket.Upgrader{Subprotocols: []string{Subprotocol}}

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		f.mu.Lock()
		f.conns = append(f.conns, ws)
		f.mu.Unlock()
		f.serve(ws)
	}))
	t.Cleanup(f.server.Close)

	return f
}

func (f *fakeOBS) url() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http")
}

func (f *fakeOBS) send(ws *websocket.Conn, op int, d any) {
	frame, _ := encode(op, d)
	_ = ws.WriteMessage(websocket.TextMessage, frame)
}

func (f *fakeOBS) serve(ws *websocket.Conn) {
	defer ws.Close()

	h := hello{OBSWebSocketVersion: "5.5.0", RPCVersion: 1}
	if f.password != "" {
		h.Authentication = &authentication{Challenge: "chal", Salt: "salt"}
	}
	f.send(ws, OpHello, h)

	var id identify
	if err := readOp(ws, OpIdentify, &id); err != nil {
		return
	}
	if f.password != "" && id.Authentication != AuthResponse(f.password, "salt", "chal") {
		_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(4009, "Authentication failed."))
		return
	}
	f.send(ws, OpIdentified, identified{NegotiatedRPCVersion: 1})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var msg message
		_ = json.Unmarshal(data, &msg)
		if msg.Op != OpRequest {
			continue
		}
		var req struct {
			RequestType string          `json:"requestType"`
			RequestID   string          `json:"requestId"`
			RequestData json.RawMessage `json:"requestData"`
		}
		_ = json.Unmarshal(msg.D, &req)

		f.mu.Lock()
		f.requests = append(f.requests, req.RequestType)
		silent := f.silent
		f.mu.Unlock()
		if silent {
			continue
		}

		resp := requestResponse{
			RequestType:   req.RequestType,
			RequestID:     req.RequestID,
			RequestStatus: requestStatus{Result: true, Code: StatusSuccess},
		}

		switch req.RequestType {
		case "GetSceneList":
			f.mu.Lock()
			current := f.scene
			f.mu.Unlock()
			resp.ResponseData, _ = json.Marshal(SceneList{
				CurrentProgramSceneName: current,
				Scenes:                  []Scene{{SceneName: "Intro", SceneIndex: 0}, {SceneName: "Main", SceneIndex: 1}},
			})
		case "SetCurrentProgramScene":
			var d struct {
				SceneName string `json:"sceneName"`
			}
			_ = json.Unmarshal(req.RequestData, &d)
			if d.SceneName != "Intro" && d.SceneName != "Main" {
				resp.RequestStatus = requestStatus{Result: false, Code: 600, Comment: "No source was found"}
				break
			}
			f.mu.Lock()
			f.scene = d.SceneName
			f.mu.Unlock()
			f.send(ws, OpEvent, Event{
				EventType: "CurrentProgramSceneChanged",
				EventData: json.RawMessage(`{"sceneName":"` + d.SceneName + `"}`),
			})
		}

		f.send(ws, OpRequestResponse, resp)
	}
}

func (f *fakeOBS) dropAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		_ = c.Close()
	}
	f.conns = nil
}

func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	logger := zerolog.Nop()
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = time.Second
	}
	c := NewClient(opts, &logger)
	t.Cleanup(c.Close)
	return c
}

func TestAuthResponseIsDeterministic(t *testing.T) {
	a := AuthResponse("secret", "salt", "challenge")
	if a != AuthResponse("secret", "salt", "challenge") {
		t.Fatalf("auth response not deterministic")
	}
	if a == AuthResponse("other", "salt", "challenge") {
		t.Fatalf("auth response ignores password")
	}
}

func TestConnectWithAuthAndRequest(t *testing.T) {
	fake := newFakeOBS(t, "hunter2")
	c := newTestClient(t, Options{URL: fake.url(), Password: "hunter2"})

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	status := c.Status()
	if !status.Connected || status.OBSWebSocketVersion != "5.5.0" || status.RPCVersion != 1 {
		t.Fatalf("status = %+v", status)
	}

	scenes, err := c.GetSceneList(context.Background())
	if err != nil {
		t.Fatalf("GetSceneList: %v", err)
	}
	if scenes.CurrentProgramSceneName != "Intro" || len(scenes.Scenes) != 2 {
		t.Fatalf("scenes = %+v", scenes)
	}
}

func TestConnectWrongPassword(t *testing.T) {
	fake := newFakeOBS(t, "hunter2")
	c := newTestClient(t, Options{URL: fake.url(), Password: "wrong"})

	if err := c.Connect(context.Background()); err == nil {
		t.Fatalf("expected authentication failure")
	}
	if c.Connected() {
		t.Fatalf("client should not be connected")
	}
	if c.Status().LastError == "" {
		t.Fatalf("last error not recorded")
	}
}

func TestConnectMissingPassword(t *testing.T) {
	fake := newFakeOBS(t, "hunter2")
	c := newTestClient(t, Options{URL: fake.url()})

	if err := c.Connect(context.Background()); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("err = %v, want ErrAuthRequired", err)
	}
}

func TestRequestFailureStatus(t *testing.T) {
	fake := newFakeOBS(t, "")
	c := newTestClient(t, Options{URL: fake.url()})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	err := c.SetCurrentProgramScene(context.Background(), "Nope")

	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Code != 600 {
		t.Fatalf("err = %v, want RequestError code 600", err)
	}
}

func TestEventsAreForwarded(t *testing.T) {
	fake := newFakeOBS(t, "")
	events := make(chan Event, 4)
	c := newTestClient(t, Options{URL: fake.url(), OnEvent: func(e Event) { events <- e }})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := c.SetCurrentProgramScene(context.Background(), "Main"); err != nil {
		t.Fatalf("SetCurrentProgramScene: %v", err)
	}

	select {
	case e := <-events:
		if e.EventType != "CurrentProgramSceneChanged" {
			t.Fatalf("event = %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event received")
	}
}

func TestRequestNotConnected(t *testing.T) {
	c := newTestClient(t, Options{URL: "ws://127.0.0.1:1"})
	if err := c.StartStream(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
}

func TestRequestTimeout(t *testing.T) {
	fake := newFakeOBS(t, "")
	fake.mu.Lock()
	fake.silent = true
	fake.mu.Unlock()
	c := newTestClient(t, Options{URL: fake.url(), RequestTimeout: 100 * time.Millisecond})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := c.StartRecord(context.Background()); !errors.Is(err, ErrRequestTimeout) {
		t.Fatalf("err = %v, want ErrRequestTimeout", err)
	}
}

func TestRunReconnects(t *testing.T) {
	fake := newFakeOBS(t, "")

	statuses := make(chan Status, 16)
	c := newTestClient(t, Options{
		URL:               fake.url(),
		ReconnectInterval: 50 * time.Millisecond,
		OnStatus:          func(s Status) { statuses <- s },
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	waitFor := func(connected bool) {
		t.Helper()
		timeout := time.After(2 * time.Second)
		for {
			select {
			case s := <-statuses:
				if s.Connected == connected {
					return
				}
			case <-timeout:
				t.Fatalf("timed out waiting for connected=%v", connected)
			}
		}
	}

	waitFor(true)
	fake.dropAll()
	waitFor(false)
	waitFor(true)

	if _, err := c.GetSceneList(context.Background()); err != nil {
		t.Fatalf("request after reconnect: %v", err)
	}
}
