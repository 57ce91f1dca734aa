package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pledgewatch/pledgewatch/internal/domain"
)

// ClientState is the connection lifecycle state.
type ClientState int32

const (
	StateConnecting ClientState = iota
	StateOpen
	StateClosed
)

// String returns the state name.
func (s ClientState) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	}
	return "UNKNOWN"
}

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// ClientConfig controls the reconnecting subscriber
type ClientConfig struct {
	URL            string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	OnEvent        func(Event)
}

// Client is a reconnecting WebSocket subscriber. It starts CONNECTING,
// moves to OPEN on a successful dial, drops back to CONNECTING on any
// transport failure, and reaches CLOSED only when its context is
// canceled. Reconnect attempts back off exponentially up to a cap; the
// backoff resets after a successful connection.
type Client struct {
	url     string
	dialer  *websocket.Dialer
	initial time.Duration
	max     time.Duration
	onEvent func(Event)
	state   atomic.Int32
	logger  *slog.Logger
}

// NewClient creates a Client. OnEvent is invoked for every received
// event, on the client's read goroutine.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = initialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = maxBackoff
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		url:     cfg.URL,
		dialer:  websocket.DefaultDialer,
		initial: cfg.InitialBackoff,
		max:     cfg.MaxBackoff,
		onEvent: cfg.OnEvent,
		logger:  logger,
	}
	c.state.Store(int32(StateConnecting))
	return c
}

// State returns the current lifecycle state.
func (c *Client) State() ClientState {
	return ClientState(c.state.Load())
}

// Run connects and consumes events until ctx is canceled. It never
// returns on transport failure alone; those trigger reconnects.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.initial

	for {
		c.state.Store(int32(StateConnecting))

		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				c.state.Store(int32(StateClosed))
				return ctx.Err()
			}
			c.logger.Warn("dial failed, retrying",
				"url", c.url,
				"backoff", backoff,
				"error", err)
			if err := sleepCtx(ctx, backoff); err != nil {
				c.state.Store(int32(StateClosed))
				return err
			}
			backoff = nextBackoff(backoff, c.max)
			continue
		}

		c.state.Store(int32(StateOpen))
		backoff = c.initial

		err = c.consume(ctx, conn)
		conn.Close()
		if ctx.Err() != nil {
			c.state.Store(int32(StateClosed))
			return ctx.Err()
		}

		c.logger.Warn("connection lost, reconnecting",
			"url", c.url,
			"error", err)
		if err := sleepCtx(ctx, backoff); err != nil {
			c.state.Store(int32(StateClosed))
			return err
		}
		backoff = nextBackoff(backoff, c.max)
	}
}

// consume reads events until the connection fails or ctx is canceled.
func (c *Client) consume(ctx context.Context, conn *websocket.Conn) error {
	// Unblock the read when the context goes away.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeTransportFailure, "websocket read failed", err)
		}

		var e Event
		if err := json.Unmarshal(data, &e); err != nil {
			c.logger.Warn("discarding malformed event", "error", err)
			continue
		}
		if c.onEvent != nil {
			c.onEvent(e)
		}
	}
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
