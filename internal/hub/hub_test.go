package hub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestHub(t *testing.T, rdb *redis.Client) (*Hub, *httptest.Server) {
	t.Helper()

	logger := zerolog.Nop()
	h := New(rdb, Options{}, &logger)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.ServeWS(w, r); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}))
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})

	return h, srv
}

func dial(t *testing.T, srv *httptest.Server, channels string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if channels != "" {
		url += "?channels=" + channels
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func send(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// roundTrip pings and returns every envelope received before the pong,
// which proves the server processed everything sent earlier.
func roundTrip(t *testing.T, conn *websocket.Conn) []Envelope {
	t.Helper()

	send(t, conn, map[string]string{"type": MsgPing})

	var got []Envelope
	for {
		env := read(t, conn)
		if env.Channel == ChannelSystem && env.Type == ReplyPong {
			return got
		}
		got = append(got, env)
	}
}

func TestClientOnlyReceivesSubscribedChannels(t *testing.T) {
	h, srv := newTestHub(t, nil)
	conn := dial(t, srv, "lower")
	roundTrip(t, conn)

	ctx := context.Background()
	if err := h.Publish(ctx, ChannelPoster, "poster.show", map[string]string{"title": "ignored"}); err != nil {
		t.Fatalf("Publish poster: %v", err)
	}
	if err := h.Publish(ctx, ChannelLower, "lower.show", map[string]string{"title": "Ada"}); err != nil {
		t.Fatalf("Publish lower: %v", err)
	}

	env := read(t, conn)
	if env.Channel != ChannelLower || env.Type != "lower.show" {
		t.Fatalf("got %s/%s, want lower/lower.show", env.Channel, env.Type)
	}

	var payload map[string]string
	if err := json.Unmarshal(env.Payload, &payload); err != nil || payload["title"] != "Ada" {
		t.Fatalf("payload = %s", env.Payload)
	}
}

func TestLateSubscriberGetsRetainedEnvelope(t *testing.T) {
	h, srv := newTestHub(t, nil)

	if err := h.Publish(context.Background(), ChannelCountdown, "countdown.started", map[string]int{"remaining": 60}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	conn := dial(t, srv, "countdown")
	got := roundTrip(t, conn)

	if len(got) != 1 || got[0].Type != "countdown.started" {
		t.Fatalf("replayed = %+v", got)
	}
}

func TestLateSystemSubscriberGetsLatestOfEachType(t *testing.T) {
	h, srv := newTestHub(t, nil)
	ctx := context.Background()

	publish := func(typ string, payload any) {
		t.Helper()
		if err := h.Publish(ctx, ChannelSystem, typ, payload); err != nil {
			t.Fatalf("Publish %s: %v", typ, err)
		}
	}
	publish("theme.changed", map[string]string{"name": "Old"})
	publish("theme.changed", map[string]string{"name": "Night"})
	publish("obs.event", map[string]string{"eventType": "SceneChanged"})

	conn := dial(t, srv, "system")
	got := roundTrip(t, conn)

	if len(got) != 2 || got[0].Type != "theme.changed" || got[1].Type != "obs.event" {
		t.Fatalf("replayed = %+v", got)
	}
	var theme map[string]string
	if err := json.Unmarshal(got[0].Payload, &theme); err != nil || theme["name"] != "Night" {
		t.Fatalf("theme payload = %s", got[0].Payload)
	}

	if last, ok := h.Last(ChannelSystem); !ok || last.Type != "obs.event" {
		t.Fatalf("Last(system) = %+v", last)
	}
}

func TestOverlayChannelRetainsOnlyLastEnvelope(t *testing.T) {
	h, srv := newTestHub(t, nil)
	ctx := context.Background()

	if err := h.Publish(ctx, ChannelLower, "lower.show", map[string]string{"title": "Ada"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := h.Publish(ctx, ChannelLower, "lower.hide", nil); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	got := roundTrip(t, dial(t, srv, "lower"))
	if len(got) != 1 || got[0].Type != "lower.hide" {
		t.Fatalf("replayed = %+v", got)
	}
}

func TestSubscribeAndUnsubscribeMessages(t *testing.T) {
	h, srv := newTestHub(t, nil)
	conn := dial(t, srv, "")

	send(t, conn, clientMessage{Type: MsgSubscribe, Channels: []Channel{ChannelQuiz}})
	reply := read(t, conn)
	if reply.Type != ReplySubscribed {
		t.Fatalf("reply = %s", reply.Type)
	}

	_ = h.Publish(context.Background(), ChannelQuiz, "quiz.phase", nil)
	if env := read(t, conn); env.Type != "quiz.phase" {
		t.Fatalf("got %s, want quiz.phase", env.Type)
	}

	send(t, conn, clientMessage{Type: MsgUnsubscribe, Channels: []Channel{ChannelQuiz}})
	if reply := read(t, conn); reply.Type != ReplySubscribed {
		t.Fatalf("reply = %s", reply.Type)
	}

	_ = h.Publish(context.Background(), ChannelQuiz, "quiz.phase", nil)
	if got := roundTrip(t, conn); len(got) != 0 {
		t.Fatalf("received %d envelopes after unsubscribe", len(got))
	}
}

func TestSubscribeUnknownChannelReplies(t *testing.T) {
	_, srv := newTestHub(t, nil)
	conn := dial(t, srv, "")

	send(t, conn, map[string]any{"type": MsgSubscribe, "channels": []string{"weather"}})

	if env := read(t, conn); env.Type != ReplyError {
		t.Fatalf("got %s, want error", env.Type)
	}
}

func TestUnknownChannelInQueryIsRejected(t *testing.T) {
	_, srv := newTestHub(t, nil)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?channels=weather"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("expected dial failure")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("response = %+v", resp)
	}
}

func TestPublishUnknownChannel(t *testing.T) {
	h, _ := newTestHub(t, nil)
	if err := h.Publish(context.Background(), Channel("weather"), "x", nil); !errors.Is(err, ErrUnknownChannel) {
		t.Fatalf("err = %v, want ErrUnknownChannel", err)
	}
}

func TestAckIsCounted(t *testing.T) {
	h, srv := newTestHub(t, nil)
	conn := dial(t, srv, "media")
	roundTrip(t, conn)

	_ = h.Publish(context.Background(), ChannelMedia, "media.state", nil)
	env := read(t, conn)

	send(t, conn, clientMessage{Type: MsgAck, ID: env.ID})
	roundTrip(t, conn)

	if n := h.AckCount(env.ID); n != 1 {
		t.Fatalf("acks = %d, want 1", n)
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	logger := zerolog.Nop()
	h := New(nil, Options{SendBuffer: 1}, &logger)

	c := &client{id: uuid.New(), send: make(chan []byte, 1), subs: map[Channel]bool{ChannelLower: true}}
	h.clients[c] = struct{}{}

	_ = h.Publish(context.Background(), ChannelLower, "lower.show", nil)
	_ = h.Publish(context.Background(), ChannelLower, "lower.hide", nil)

	if _, ok := h.clients[c]; ok {
		t.Fatalf("slow client was not dropped")
	}

	<-c.send
	if _, open := <-c.send; open {
		t.Fatalf("send channel should be closed")
	}
}

func TestRedisFailureFallsBackToLocalDelivery(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	h, srv := newTestHub(t, rdb)
	conn := dial(t, srv, "system")
	roundTrip(t, conn)

	if err := h.Publish(context.Background(), ChannelSystem, "theme.changed", nil); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if env := read(t, conn); env.Type != "theme.changed" {
		t.Fatalf("got %s, want theme.changed", env.Type)
	}
}

func TestStats(t *testing.T) {
	h, srv := newTestHub(t, nil)
	conn := dial(t, srv, "lower,poster")
	roundTrip(t, conn)

	_ = h.Publish(context.Background(), ChannelPoster, "poster.show", nil)

	s := h.Stats()
	if s.Clients != 1 || s.Subscribers[ChannelLower] != 1 || s.Subscribers[ChannelPoster] != 1 {
		t.Fatalf("stats = %+v", s)
	}
	if len(s.Retained) != 1 || s.Retained[0] != ChannelPoster {
		t.Fatalf("retained = %v", s.Retained)
	}
	if s.Distributed {
		t.Fatalf("hub without redis reported distributed")
	}
}

func TestParseChannels(t *testing.T) {
	got, err := ParseChannels(" lower, ,quiz ")
	if err != nil {
		t.Fatalf("ParseChannels: %v", err)
	}
	if len(got) != 2 || got[0] != ChannelLower || got[1] != ChannelQuiz {
		t.Fatalf("got %v", got)
	}

	if _, err := ParseChannels("lower,weather"); !errors.Is(err, ErrUnknownChannel) {
		t.Fatalf("err = %v, want ErrUnknownChannel", err)
	}
}
