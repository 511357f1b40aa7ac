package ledger

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/unytco/pricing-oracle/pkg/version"
)

// conn is one websocket connection to a conductor socket with in-flight
// request correlation. The process performs a single pass, so there is no
// reconnect logic: a dropped connection fails the pending calls and the
// run.
type conn struct {
	ws     *websocket.Conn
	logger zerolog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan response
	closed  bool
	readErr error
}

type response struct {
	payload []byte
	err     error
}

func dialConn(ctx context.Context, url string, logger zerolog.Logger) (*conn, error) {
	header := http.Header{"User-Agent": []string{version.AgentString()}}
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnectionFailed, url, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	c := &conn{
		ws:      ws,
		logger:  logger.With().Str("component", "ledger").Str("url", url).Logger(),
		pending: make(map[uint64]chan response),
	}
	go c.readLoop()

	c.logger.Debug().Msg("conductor socket connected")
	return c, nil
}

// request sends a payload as a correlated request and waits for the
// matching response or context expiry.
func (c *conn) request(ctx context.Context, payload []byte) ([]byte, error) {
	ch := make(chan response, 1)

	c.mu.Lock()
	if c.closed {
		err := c.readErr
		c.mu.Unlock()
		if err == nil {
			err = ErrConnectionClosed
		}
		return nil, err
	}
	c.nextID++
	id := c.nextID
	c.pending[id] = ch
	c.mu.Unlock()

	msg := wireMessage{ID: id, Type: wireTypeRequest, Data: payload}
	if err := c.write(msg); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, err
	}

	select {
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, ctx.Err()
	case resp := <-ch:
		return resp.payload, resp.err
	}
}

// authenticate sends the one-way authentication message on an app socket.
func (c *conn) authenticate(body interface{}) error {
	data, err := msgpack.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding authentication: %w", err)
	}
	return c.write(wireMessage{Type: wireTypeAuthenticate, Data: data})
}

func (c *conn) write(msg wireMessage) error {
	raw, err := msgpack.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding envelope: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteMessage(websocket.BinaryMessage, raw); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionClosed, err)
	}
	return nil
}

// readLoop dispatches responses to their pending requests and drops
// signals. It runs until the socket fails or is closed.
func (c *conn) readLoop() {
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			c.fail(err)
			return
		}

		var msg wireMessage
		if err := msgpack.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("discarding undecodable frame")
			continue
		}

		switch msg.Type {
		case wireTypeResponse:
			c.mu.Lock()
			ch, ok := c.pending[msg.ID]
			if ok {
				delete(c.pending, msg.ID)
			}
			c.mu.Unlock()
			if !ok {
				c.logger.Warn().Uint64("id", msg.ID).Msg("response for unknown request")
				continue
			}
			ch <- response{payload: msg.Data}
		case wireTypeSignal:
			// Signals are push traffic from the conductor; this client
			// only performs calls.
			c.logger.Debug().Msg("ignoring signal")
		default:
			c.logger.Warn().Str("type", msg.Type).Msg("ignoring unexpected frame")
		}
	}
}

// fail closes the connection and errors out every pending request.
func (c *conn) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.readErr = fmt.Errorf("%w: %v", ErrConnectionClosed, err)
	for id, ch := range c.pending {
		ch <- response{err: c.readErr}
		delete(c.pending, id)
	}
}

func (c *conn) close() {
	_ = c.ws.Close()
	c.fail(fmt.Errorf("closed by client"))
}
