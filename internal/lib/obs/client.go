// Package obs is a client for obs-websocket v5, the remote control protocol
// built into OBS Studio 28+.
//
// A Client owns one connection at a time. Run keeps it connected, redialling
// on a fixed interval; Request sends a request and waits for the matching
// response by request id.
package obs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	// ErrNotConnected is returned by Request while no session is identified.
	ErrNotConnected = errors.New("obs: not connected")
	// ErrRequestTimeout is returned when OBS does not answer in time.
	ErrRequestTimeout = errors.New("obs: request timed out")
	// ErrAuthRequired is returned when OBS asks for a password and none is set.
	ErrAuthRequired = errors.New("obs: authentication required")
)

// RequestError is a request OBS answered with a failure status.
type RequestError struct {
	RequestType string
	Code        int
	Comment     string
}

func (e *RequestError) Error() string {
	if e.Comment == "" {
		return fmt.Sprintf("obs: %s failed with code %d", e.RequestType, e.Code)
	}
	return fmt.Sprintf("obs: %s failed with code %d: %s", e.RequestType, e.Code, e.Comment)
}

// Options configures a Client.
type Options struct {
	URL               string
	Password          string
	RequestTimeout    time.Duration
	ReconnectInterval time.Duration
	// OnEvent is called from the read goroutine for every event; it must not block.
	OnEvent func(Event)
	// OnStatus is called after every connect and disconnect.
	OnStatus func(Status)
}

// Status describes the current connection.
type Status struct {
	Connected           bool       `json:"connected"`
	URL                 string     `json:"url"`
	OBSWebSocketVersion string     `json:"obs_websocket_version,omitempty"`
	RPCVersion          int        `json:"rpc_version,omitempty"`
	ConnectedAt         *time.Time `json:"connected_at,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
}

type session struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	done    chan struct{}
}

// Client is an obs-websocket v5 client that keeps itself connected.
type Client struct {
	mu      sync.Mutex
	opts    Options
	sess    *session
	pending map[string]chan *requestResponse
	status  Status
	kick    chan struct{}
	logger  zerolog.Logger
}

// NewClient builds a disconnected client. Run connects it.
func NewClient(opts Options, logger *zerolog.Logger) *Client {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = 5 * time.Second
	}

	return &Client{
		opts:    opts,
		pending: make(map[string]chan *requestResponse),
		status:  Status{URL: opts.URL},
		kick:    make(chan struct{}, 1),
		logger:  logger.With().Str("component", "obs").Logger(),
	}
}

// Status returns a copy of the connection status.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Connected reports whether a session is identified.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess != nil
}

// Connect dials OBS and completes the Hello/Identify handshake.
// It is a no-op when already connected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.sess != nil {
		c.mu.Unlock()
		return nil
	}
	opts := c.opts
	c.mu.Unlock()

	sess, version, rpc, err := c.handshake(ctx, opts)
	if err != nil {
		c.setStatus(func(s *Status) {
			s.Connected = false
			s.URL = opts.URL
			s.LastError = err.Error()
		})
		return err
	}

	now := time.Now().UTC()

	c.mu.Lock()
	c.sess = sess
	c.status = Status{
		Connected:           true,
		URL:                 opts.URL,
		OBSWebSocketVersion: version,
		RPCVersion:          rpc,
		ConnectedAt:         &now,
	}
	status := c.status
	c.mu.Unlock()

	c.logger.Info().Str("url", opts.URL).Str("version", version).Msg("connected to OBS")
	c.notifyStatus(status)

	go c.readLoop(sess)

	return nil
}

func (c *Client) handshake(ctx context.Context, opts Options) (*session, string, int, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: opts.RequestTimeout,
		Subprotocols:     []string{Subprotocol},
	}

	ws, _, err := dialer.DialContext(ctx, opts.URL, nil)
	if err != nil {
		return nil, "", 0, errors.Wrapf(err, "dial %s", opts.URL)
	}

	fail := func(err error) (*session, string, int, error) {
		_ = ws.Close()
		return nil, "", 0, err
	}

	deadline := time.Now().Add(opts.RequestTimeout)
	_ = ws.SetReadDeadline(deadline)

	var h hello
	if err := readOp(ws, OpHello, &h); err != nil {
		return fail(errors.Wrap(err, "read hello"))
	}

	id := identify{RPCVersion: RPCVersion, EventSubscriptions: EventSubscriptionAll}
	if h.Authentication != nil {
		if opts.Password == "" {
			return fail(ErrAuthRequired)
		}
		id.Authentication = AuthResponse(opts.Password, h.Authentication.Salt, h.Authentication.Challenge)
	}

	frame, err := encode(OpIdentify, id)
	if err != nil {
		return fail(err)
	}
	_ = ws.SetWriteDeadline(deadline)
	if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fail(errors.Wrap(err, "send identify"))
	}

	var ack identified
	if err := readOp(ws, OpIdentified, &ack); err != nil {
		// OBS closes with 4009 on a bad password.
		if websocket.IsCloseError(err, 4009) {
			return fail(errors.New("obs: authentication failed"))
		}
		return fail(errors.Wrap(err, "read identified"))
	}

	_ = ws.SetReadDeadline(time.Time{})
	_ = ws.SetWriteDeadline(time.Time{})

	return &session{ws: ws, done: make(chan struct{})}, h.OBSWebSocketVersion, ack.NegotiatedRPCVersion, nil
}

func readOp(ws *websocket.Conn, op int, out any) error {
	_, data, err := ws.ReadMessage()
	if err != nil {
		return err
	}

	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	if msg.Op != op {
		return fmt.Errorf("expected op %d, got %d", op, msg.Op)
	}
	return json.Unmarshal(msg.D, out)
}

func (c *Client) readLoop(sess *session) {
	var readErr error
	defer func() { c.drop(sess, readErr) }()

	for {
		_, data, err := sess.ws.ReadMessage()
		if err != nil {
			readErr = err
			return
		}

		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("discarding malformed OBS message")
			continue
		}

		switch msg.Op {
		case OpEvent:
			var ev Event
			if err := json.Unmarshal(msg.D, &ev); err != nil {
				c.logger.Warn().Err(err).Msg("discarding malformed OBS event")
				continue
			}
			if c.opts.OnEvent != nil {
				c.opts.OnEvent(ev)
			}

		case OpRequestResponse:
			var resp requestResponse
			if err := json.Unmarshal(msg.D, &resp); err != nil {
				c.logger.Warn().Err(err).Msg("discarding malformed OBS response")
				continue
			}
			c.mu.Lock()
			ch, ok := c.pending[resp.RequestID]
			delete(c.pending, resp.RequestID)
			c.mu.Unlock()
			if ok {
				ch <- &resp
			}
		}
	}
}

// drop tears down sess and fails every pending request.
func (c *Client) drop(sess *session, cause error) {
	c.mu.Lock()
	if c.sess != sess {
		c.mu.Unlock()
		return
	}
	c.sess = nil
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.status.Connected = false
	c.status.ConnectedAt = nil
	if cause != nil {
		c.status.LastError = cause.Error()
	}
	status := c.status
	c.mu.Unlock()

	_ = sess.ws.Close()
	close(sess.done)

	c.logger.Warn().Err(cause).Msg("disconnected from OBS")
	c.notifyStatus(status)
}

// Request sends requestType with data and decodes responseData into out.
// out may be nil.
func (c *Client) Request(ctx context.Context, requestType string, data any, out any) error {
	c.mu.Lock()
	sess := c.sess
	timeout := c.opts.RequestTimeout
	if sess == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	id := uuid.NewString()
	ch := make(chan *requestResponse, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	cleanup := func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}

	frame, err := encode(OpRequest, request{RequestType: requestType, RequestID: id, RequestData: data})
	if err != nil {
		cleanup()
		return errors.Wrapf(err, "encode %s", requestType)
	}

	sess.writeMu.Lock()
	_ = sess.ws.SetWriteDeadline(time.Now().Add(timeout))
	err = sess.ws.WriteMessage(websocket.TextMessage, frame)
	sess.writeMu.Unlock()
	if err != nil {
		cleanup()
		return errors.Wrapf(err, "send %s", requestType)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-ch:
		if !ok {
			return ErrNotConnected
		}
		if !resp.RequestStatus.Result {
			return &RequestError{
				RequestType: requestType,
				Code:        resp.RequestStatus.Code,
				Comment:     resp.RequestStatus.Comment,
			}
		}
		if out != nil && len(resp.ResponseData) > 0 {
			if err := json.Unmarshal(resp.ResponseData, out); err != nil {
				return errors.Wrapf(err, "decode %s response", requestType)
			}
		}
		return nil

	case <-timer.C:
		cleanup()
		return ErrRequestTimeout

	case <-ctx.Done():
		cleanup()
		return ctx.Err()
	}
}

// Run keeps the client connected until ctx is cancelled.
func (c *Client) Run(ctx context.Context) {
	for {
		if err := c.Connect(ctx); err != nil {
			c.logger.Debug().Err(err).Msg("OBS connect failed")
		}

		c.mu.Lock()
		sess := c.sess
		interval := c.opts.ReconnectInterval
		c.mu.Unlock()

		if sess != nil {
			select {
			case <-sess.done:
			case <-ctx.Done():
				c.Close()
				return
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-c.kick:
		case <-time.After(interval):
		}
	}
}

// Reconfigure changes the target and drops the current session so Run
// reconnects with the new settings right away.
func (c *Client) Reconfigure(url, password string) {
	c.mu.Lock()
	c.opts.URL = url
	c.opts.Password = password
	c.status.URL = url
	sess := c.sess
	c.mu.Unlock()

	if sess != nil {
		c.drop(sess, errors.New("reconfigured"))
	}

	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Close drops the current session.
func (c *Client) Close() {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()

	if sess == nil {
		return
	}

	sess.writeMu.Lock()
	_ = sess.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	sess.writeMu.Unlock()

	c.drop(sess, nil)
}

func (c *Client) setStatus(fn func(*Status)) {
	c.mu.Lock()
	fn(&c.status)
	status := c.status
	c.mu.Unlock()
	c.notifyStatus(status)
}

func (c *Client) notifyStatus(s Status) {
	if c.opts.OnStatus != nil {
		c.opts.OnStatus(s)
	}
}
