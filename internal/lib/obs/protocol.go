package obs

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
)

// obs-websocket v5 opcodes.
const (
	OpHello           = 0
	OpIdentify        = 1
	OpIdentified      = 2
	OpReidentify      = 3
	OpEvent           = 5
	OpRequest         = 6
	OpRequestResponse = 7
)

// RPCVersion is the obs-websocket RPC version this client speaks.
const RPCVersion = 1

// EventSubscriptionAll subscribes to every non high-volume event category.
const EventSubscriptionAll = 1<<11 - 1

// Subprotocol is negotiated during the websocket handshake.
const Subprotocol = "obswebsocket.json"

// Request status code for success.
const StatusSuccess = 100

// message is the outer frame of every obs-websocket message.
type message struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

type hello struct {
	OBSWebSocketVersion string          `json:"obsWebSocketVersion"`
	RPCVersion          int             `json:"rpcVersion"`
	Authentication      *authentication `json:"authentication,omitempty"`
}

type authentication struct {
	Challenge string `json:"challenge"`
	Salt      string `json:"salt"`
}

type identify struct {
	RPCVersion         int    `json:"rpcVersion"`
	Authentication     string `json:"authentication,omitempty"`
	EventSubscriptions int    `json:"eventSubscriptions"`
}

type identified struct {
	NegotiatedRPCVersion int `json:"negotiatedRpcVersion"`
}

type request struct {
	RequestType string `json:"requestType"`
	RequestID   string `json:"requestId"`
	RequestData any    `json:"requestData,omitempty"`
}

type requestStatus struct {
	Result  bool   `json:"result"`
	Code    int    `json:"code"`
	Comment string `json:"comment,omitempty"`
}

type requestResponse struct {
	RequestType   string          `json:"requestType"`
	RequestID     string          `json:"requestId"`
	RequestStatus requestStatus   `json:"requestStatus"`
	ResponseData  json.RawMessage `json:"responseData,omitempty"`
}

// Event is an obs-websocket event as received from OBS.
type Event struct {
	EventType   string          `json:"eventType"`
	EventIntent int             `json:"eventIntent"`
	EventData   json.RawMessage `json:"eventData,omitempty"`
}

// AuthResponse computes the Identify authentication string:
//
//	secret = base64(sha256(password + salt))
//	auth   = base64(sha256(secret + challenge))
func AuthResponse(password, salt, challenge string) string {
	secret := sha256.Sum256([]byte(password + salt))
	secretB64 := base64.StdEncoding.EncodeToString(secret[:])

	auth := sha256.Sum256([]byte(secretB64 + challenge))
	return base64.StdEncoding.EncodeToString(auth[:])
}

func encode(op int, d any) ([]byte, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(message{Op: op, D: raw})
}
