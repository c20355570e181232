package hub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const maxMessageSize = 4096

// client is one overlay connection. subs is guarded by Hub.mu.
type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
	subs map[Channel]bool
}

// ServeWS upgrades the request and serves the connection until it closes.
// The optional ?channels=lower,poster query subscribes immediately.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	initial, err := ParseChannels(r.URL.Query().Get("channels"))
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return nil
	}

	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, h.opts.SendBuffer),
		subs: make(map[Channel]bool),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	log := h.logger.With().Str("client", c.id.String()).Str("remote", r.RemoteAddr).Logger()
	log.Debug().Msg("overlay connected")

	h.subscribe(c, initial)

	go h.writePump(c)
	h.readPump(c)

	log.Debug().Msg("overlay disconnected")
	return nil
}

// writePump is the only goroutine writing to c.conn.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.opts.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		h.removeLocked(c)
		h.mu.Unlock()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.opts.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.opts.ReadTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Str("client", c.id.String()).Msg("unexpected close")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(h.opts.ReadTimeout))

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.reply(c, ReplyError, map[string]string{"message": "malformed message"})
			continue
		}

		h.handleMessage(c, msg)
	}
}

func (h *Hub) handleMessage(c *client, msg clientMessage) {
	switch msg.Type {
	case MsgSubscribe, MsgUnsubscribe:
		for _, ch := range msg.Channels {
			if !ch.Valid() {
				h.reply(c, ReplyError, map[string]string{
					"message": fmt.Sprintf("%s: %q", ErrUnknownChannel, ch),
				})
				return
			}
		}
		if msg.Type == MsgSubscribe {
			h.subscribe(c, msg.Channels)
		} else {
			h.unsubscribe(c, msg.Channels)
		}
		h.reply(c, ReplySubscribed, map[string][]Channel{"channels": h.subscriptions(c)})

	case MsgPing:
		h.reply(c, ReplyPong, nil)

	case MsgAck:
		n := h.recordAck(msg.ID)
		h.logger.Debug().Str("client", c.id.String()).Str("envelope", msg.ID.String()).Int("acks", n).Msg("ack")

	default:
		h.reply(c, ReplyError, map[string]string{"message": "unknown message type " + msg.Type})
	}
}

func (h *Hub) subscriptions(c *client) []Channel {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := []Channel{}
	for _, ch := range Channels {
		if c.subs[ch] {
			out = append(out, ch)
		}
	}
	return out
}
