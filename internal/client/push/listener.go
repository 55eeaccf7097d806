package push

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/MaxonPy/kanban/internal/models"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

const (
	defaultRetryDelay  = 3 * time.Second
	defaultMaxAttempts = 5
)

// Conn is the subset of a websocket connection the listener needs.
// *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (int, []byte, error)
	Close() error
}

type Dialer func(ctx context.Context, url string) (Conn, error)

func gorillaDialer(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Listener maintains the push-notification channel. It reconnects after a
// fixed delay up to a bounded number of consecutive failures, then stops
// permanently; the owning session has to rebuild it (next login). Events are
// invalidation hints only and are handed off to the handler as-is.
type Listener struct {
	url         string
	handler     func(models.PushEvent)
	log         *zap.SugaredLogger
	dial        Dialer
	sleep       func(time.Duration)
	retryDelay  time.Duration
	maxAttempts int

	mu       sync.Mutex
	state    State
	attempts int
	conn     Conn
	closed   bool
}

type Option func(*Listener)

// WithDialer swaps the websocket dialer. Used by tests.
func WithDialer(d Dialer) Option {
	return func(l *Listener) { l.dial = d }
}

// WithSleep swaps the delay function between reconnect attempts.
func WithSleep(sleep func(time.Duration)) Option {
	return func(l *Listener) { l.sleep = sleep }
}

func WithRetryPolicy(delay time.Duration, maxAttempts int) Option {
	return func(l *Listener) {
		l.retryDelay = delay
		l.maxAttempts = maxAttempts
	}
}

func NewListener(url string, handler func(models.PushEvent), log *zap.SugaredLogger, opts ...Option) *Listener {
	l := &Listener{
		url:         url,
		handler:     handler,
		log:         log,
		dial:        gorillaDialer,
		sleep:       time.Sleep,
		retryDelay:  defaultRetryDelay,
		maxAttempts: defaultMaxAttempts,
		state:       StateDisconnected,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Run drives the connect/read/reconnect loop until the retry budget is
// exhausted, the context is cancelled, or Close is called. Callers run it in
// its own goroutine.
func (l *Listener) Run(ctx context.Context) {
	for {
		if l.isClosed() || ctx.Err() != nil {
			l.setState(StateDisconnected)
			return
		}

		l.setState(StateConnecting)
		conn, err := l.dial(ctx, l.url)
		if err != nil {
			l.log.Warnw("push channel connect failed", "url", l.url, "error", err)
			if !l.scheduleRetry() {
				return
			}
			continue
		}

		l.onOpen(conn)
		l.readLoop(conn)
		l.setState(StateDisconnected)

		if l.isClosed() || ctx.Err() != nil {
			return
		}
		if !l.scheduleRetry() {
			return
		}
	}
}

// Close tears the listener down deterministically. Safe to call more than
// once; any blocked read is unblocked by closing the connection.
func (l *Listener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}
	l.state = StateDisconnected
}

func (l *Listener) onOpen(conn Conn) {
	l.mu.Lock()
	l.conn = conn
	l.attempts = 0
	l.state = StateConnected
	closed := l.closed
	l.mu.Unlock()

	if closed {
		conn.Close()
		return
	}
	l.log.Infow("push channel connected", "url", l.url)
}

func (l *Listener) readLoop(conn Conn) {
	defer conn.Close()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if !l.isClosed() {
				l.log.Warnw("push channel closed", "error", err)
			}
			return
		}

		var event models.PushEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			// Malformed payloads are dropped, never fatal.
			l.log.Debugw("ignoring malformed push payload", "error", err)
			continue
		}
		l.handler(event)
	}
}

// scheduleRetry decides whether another reconnect is allowed and waits out
// the fixed delay. Returns false once the attempt budget is spent.
func (l *Listener) scheduleRetry() bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	if l.attempts >= l.maxAttempts {
		l.state = StateDisconnected
		l.mu.Unlock()
		l.log.Errorw("push channel reconnect attempts exhausted", "attempts", l.maxAttempts)
		return false
	}
	l.attempts++
	l.mu.Unlock()

	l.sleep(l.retryDelay)
	return true
}

func (l *Listener) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *Listener) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}
