package hub

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Channel is a hub topic. Each overlay subscribes to the channel it renders.
type Channel string

const (
	ChannelLower     Channel = "lower"
	ChannelPoster    Channel = "poster"
	ChannelCountdown Channel = "countdown"
	ChannelQuiz      Channel = "quiz"
	ChannelMedia     Channel = "media"
	ChannelSystem    Channel = "system"
)

// Channels lists every valid channel.
var Channels = []Channel{
	ChannelLower,
	ChannelPoster,
	ChannelCountdown,
	ChannelQuiz,
	ChannelMedia,
	ChannelSystem,
}

func (c Channel) Valid() bool {
	for _, known := range Channels {
		if c == known {
			return true
		}
	}
	return false
}

// ParseChannels parses a comma separated channel list ("lower,poster").
// Blank items are skipped; unknown names are an error.
func ParseChannels(list string) ([]Channel, error) {
	var out []Channel
	for _, part := range strings.Split(list, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		ch := Channel(name)
		if !ch.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
		}
		out = append(out, ch)
	}
	return out, nil
}

// Envelope is the JSON message delivered to overlays.
type Envelope struct {
	ID        uuid.UUID       `json:"id"`
	Channel   Channel         `json:"channel"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEnvelope marshals payload and stamps the envelope.
func NewEnvelope(channel Channel, typ string, payload any) (Envelope, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("marshal %s payload: %w", typ, err)
		}
		raw = data
	}

	return Envelope{
		ID:        uuid.New(),
		Channel:   channel,
		Type:      typ,
		Payload:   raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Client -> server message types.
const (
	MsgSubscribe   = "subscribe"
	MsgUnsubscribe = "unsubscribe"
	MsgPing        = "ping"
	MsgAck         = "ack"
)

// Server -> client reply types, sent on the system channel to the requesting
// connection only.
const (
	ReplyPong       = "pong"
	ReplySubscribed = "subscribed"
	ReplyError      = "error"
)

// clientMessage is what overlays send to the hub.
type clientMessage struct {
	Type     string    `json:"type"`
	Channels []Channel `json:"channels,omitempty"`
	ID       uuid.UUID `json:"id,omitempty"`
}
