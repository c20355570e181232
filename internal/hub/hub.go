// Package hub is the WebSocket fan-out that keeps overlays in sync.
//
// Services publish envelopes on a channel; every connected overlay subscribed
// to that channel receives them. The last envelope of each channel is retained
// and replayed on subscribe so an overlay loaded mid-show renders the current
// state immediately.
//
// With Redis configured, publishing goes through a Redis pub/sub channel and
// every backend instance delivers what it receives, so overlays connected to
// different instances stay in sync.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrUnknownChannel is returned for channel names outside Channels.
var ErrUnknownChannel = errors.New("unknown channel")

// RedisChannel is the pub/sub channel shared by every instance.
const RedisChannel = "obs-live-suite:hub"

// Broadcaster is what services need from the hub.
type Broadcaster interface {
	Publish(ctx context.Context, channel Channel, typ string, payload any) error
}

// Options tunes connection handling. Zero values take the defaults.
type Options struct {
	// PingInterval is how often the server pings each connection.
	PingInterval time.Duration
	// ReadTimeout closes a connection that sent nothing (not even a pong)
	// for this long.
	ReadTimeout time.Duration
	// WriteTimeout bounds a single write.
	WriteTimeout time.Duration
	// SendBuffer is the per-connection queue; a full queue drops the client.
	SendBuffer int
}

func (o Options) withDefaults() Options {
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 60 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	return o
}

const maxTrackedAcks = 512

// Hub fans envelopes out to overlay WebSocket clients, through Redis when
// it is configured.
type Hub struct {
	opts   Options
	redis  *redis.Client
	logger zerolog.Logger

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	// retained is replayed on subscribe, oldest first. Overlay channels
	// keep their last envelope; system keeps the last one of each type.
	retained map[Channel][]Envelope

	ackMu    sync.Mutex
	acks     map[uuid.UUID]int
	ackOrder []uuid.UUID
}

var _ Broadcaster = (*Hub)(nil)

// New builds a hub. rdb may be nil, in which case delivery is local only.
func New(rdb *redis.Client, opts Options, logger *zerolog.Logger) *Hub {
	return &Hub{
		opts:   opts.withDefaults(),
		redis:  rdb,
		logger: logger.With().Str("component", "hub").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// OBS browser sources load overlays from file:// or another
			// port, so the origin is not checked.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[*client]struct{}),
		retained: make(map[Channel][]Envelope),
		acks:     make(map[uuid.UUID]int),
	}
}

// Publish builds an envelope and fans it out.
func (h *Hub) Publish(ctx context.Context, channel Channel, typ string, payload any) error {
	if !channel.Valid() {
		return ErrUnknownChannel
	}

	env, err := NewEnvelope(channel, typ, payload)
	if err != nil {
		return err
	}

	return h.PublishEnvelope(ctx, env)
}

// PublishEnvelope fans out a prebuilt envelope. When the Redis publish fails
// the envelope is still delivered to local clients.
func (h *Hub) PublishEnvelope(ctx context.Context, env Envelope) error {
	if !env.Channel.Valid() {
		return ErrUnknownChannel
	}

	if h.redis == nil {
		h.deliver(env)
		return nil
	}

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	if err := h.redis.Publish(ctx, RedisChannel, data).Err(); err != nil {
		h.logger.Warn().Err(err).Str("channel", string(env.Channel)).Msg("redis publish failed, delivering locally")
		h.deliver(env)
	}

	return nil
}

// Run relays envelopes from Redis to local clients until ctx is done.
// Without Redis it only waits for ctx.
func (h *Hub) Run(ctx context.Context) error {
	if h.redis == nil {
		<-ctx.Done()
		return nil
	}

	sub := h.redis.Subscribe(ctx, RedisChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	h.logger.Info().Str("redis_channel", RedisChannel).Msg("hub subscribed to redis")

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn().Err(err).Msg("discarding malformed hub message")
				continue
			}
			h.deliver(env)
		}
	}
}

// deliver retains env and queues it for every subscribed client.
func (h *Hub) deliver(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal envelope")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.retainLocked(env)

	for c := range h.clients {
		if !c.subs[env.Channel] {
			continue
		}
		h.enqueueLocked(c, data)
	}
}

func (h *Hub) retainLocked(env Envelope) {
	if env.Channel != ChannelSystem {
		h.retained[env.Channel] = []Envelope{env}
		return
	}

	prev := h.retained[env.Channel]
	kept := make([]Envelope, 0, len(prev)+1)
	for _, e := range prev {
		if e.Type != env.Type {
			kept = append(kept, e)
		}
	}
	h.retained[env.Channel] = append(kept, env)
}

// enqueueLocked queues data for c, dropping c when its buffer is full.
// h.mu must be held for writing.
func (h *Hub) enqueueLocked(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		h.logger.Warn().Str("client", c.id.String()).Msg("dropping slow client")
		h.removeLocked(c)
	}
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// subscribe adds channels to c and replays their retained envelopes.
func (h *Hub) subscribe(c *client, channels []Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}

	for _, ch := range channels {
		if c.subs[ch] {
			continue
		}
		c.subs[ch] = true

		for _, env := range h.retained[ch] {
			data, err := json.Marshal(env)
			if err != nil {
				continue
			}
			h.enqueueLocked(c, data)
		}
	}
}

func (h *Hub) unsubscribe(c *client, channels []Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range channels {
		delete(c.subs, ch)
	}
}

// reply queues a system envelope for c only.
func (h *Hub) reply(c *client, typ string, payload any) {
	env, err := NewEnvelope(ChannelSystem, typ, payload)
	if err != nil {
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		h.enqueueLocked(c, data)
	}
}

func (h *Hub) recordAck(id uuid.UUID) int {
	h.ackMu.Lock()
	defer h.ackMu.Unlock()

	if _, ok := h.acks[id]; !ok {
		h.ackOrder = append(h.ackOrder, id)
		if len(h.ackOrder) > maxTrackedAcks {
			delete(h.acks, h.ackOrder[0])
			h.ackOrder = h.ackOrder[1:]
		}
	}
	h.acks[id]++
	return h.acks[id]
}

// AckCount returns how many clients acknowledged envelope id.
func (h *Hub) AckCount(id uuid.UUID) int {
	h.ackMu.Lock()
	defer h.ackMu.Unlock()
	return h.acks[id]
}

// Last returns the most recent retained envelope of channel.
func (h *Hub) Last(channel Channel) (Envelope, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	kept := h.retained[channel]
	if len(kept) == 0 {
		return Envelope{}, false
	}
	return kept[len(kept)-1], true
}

// Stats is a point-in-time view for the status endpoint.
type Stats struct {
	Clients     int             `json:"clients"`
	Subscribers map[Channel]int `json:"subscribers"`
	Retained    []Channel       `json:"retained"`
	Distributed bool            `json:"distributed"`
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s := Stats{
		Clients:     len(h.clients),
		Subscribers: make(map[Channel]int, len(Channels)),
		Retained:    []Channel{},
		Distributed: h.redis != nil,
	}
	for c := range h.clients {
		for ch := range c.subs {
			s.Subscribers[ch]++
		}
	}
	for _, ch := range Channels {
		if len(h.retained[ch]) > 0 {
			s.Retained = append(s.Retained, ch)
		}
	}
	return s
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		h.removeLocked(c)
	}
}
