package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/steemkit/steembridge/pkg/log"
)

// Dialer is a session with a node that carries one request at a time.
type Dialer interface {
	// Dial opens the session and returns once the handshake is done. The
	// background loops run until ctx is done, Close is called, or the
	// connection fails; handleClosure is then invoked once with the first
	// error encountered, if any.
	Dial(ctx context.Context, url string, handleClosure func(err error)) error

	// IsConnected reports whether the session is open.
	IsConnected() bool

	// Call assigns the next request id to req, sends it and waits for the
	// matching response. Concurrent callers are served one after another.
	Call(ctx context.Context, req *Request) (*Response, error)

	// Close ends the session.
	Close() error
}

type dialCtx struct {
	ctx    context.Context
	cancel context.CancelFunc
	conn   *websocket.Conn
	lg     log.Logger
	// closed is closed once conn has been closed.
	closed chan struct{}
}

// WebsocketDialerConfig contains configuration options for the WebSocket dialer
type WebsocketDialerConfig struct {
	// HandshakeTimeout bounds the WebSocket opening handshake.
	HandshakeTimeout time.Duration

	// PingInterval is how often a control ping is sent. Zero disables pings.
	PingInterval time.Duration

	// RequestTimeout bounds the wait for a response. Zero waits on the call
	// context alone.
	RequestTimeout time.Duration
}

// DefaultWebsocketDialerConfig provides sensible defaults for a public node.
var DefaultWebsocketDialerConfig = WebsocketDialerConfig{
	HandshakeTimeout: 5 * time.Second,
	PingInterval:     30 * time.Second,
	RequestTimeout:   5 * time.Second,
}

// WebsocketDialer implements Dialer over a single WebSocket connection.
type WebsocketDialer struct {
	cfg     WebsocketDialerConfig
	dialCtx *dialCtx
	pending *pendingCall
	nextID  atomic.Uint64
	mu      sync.RWMutex // Protects dialCtx and pending
	callMu  sync.Mutex   // Keeps a single request in flight
	writeMu sync.Mutex   // Serializes WebSocket data frames
}

var _ Dialer = (*WebsocketDialer)(nil)

// NewWebsocketDialer creates a new WebSocket dialer with the given configuration
func NewWebsocketDialer(cfg WebsocketDialerConfig) *WebsocketDialer {
	return &WebsocketDialer{cfg: cfg}
}

// Dial establishes a WebSocket connection to url and starts three background
// goroutines: one closing the connection when the session context is done,
// one reading frames, and one sending control pings.
//
// Example:
//
//	dialer := NewWebsocketDialer(DefaultWebsocketDialerConfig)
//	err := dialer.Dial(ctx, "wss://steemd.steemit.com", func(err error) {
//	    if err != nil {
//	        lg.Error("session closed", "error", err)
//	    }
//	})
func (d *WebsocketDialer) Dial(parentCtx context.Context, url string, handleClosure func(err error)) error {
	if d.IsConnected() {
		return connectionFailure(ErrAlreadyConnected, nil)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout:  d.cfg.HandshakeTimeout,
		EnableCompression: true,
	}

	conn, _, err := dialer.DialContext(parentCtx, url, nil)
	if err != nil {
		return connectionFailure(ErrDialingWebsocket, err)
	}

	childCtx, cancel := context.WithCancel(parentCtx)
	wg := sync.WaitGroup{}
	wg.Add(3)

	var closureErr error
	var closureErrMu sync.Mutex
	childHandleClosure := func(err error) {
		closureErrMu.Lock()
		defer closureErrMu.Unlock()

		if err != nil && closureErr == nil {
			closureErr = err
		}

		cancel()
		wg.Done()
	}

	lg := log.WithSession(log.FromContext(parentCtx).WithName("ws-dialer"), uuid.NewString(), url)

	dc := &dialCtx{
		ctx:    childCtx,
		cancel: cancel,
		conn:   conn,
		lg:     lg,
		closed: make(chan struct{}),
	}

	d.mu.Lock()
	d.dialCtx = dc
	d.pending = nil
	d.mu.Unlock()

	lg.Info("session opened")

	go d.closeOnContextDone(dc, childHandleClosure)
	go d.readMessages(dc, childHandleClosure)
	go d.pingPeriodically(dc, childHandleClosure)

	go func() {
		wg.Wait()

		closureErrMu.Lock()
		defer closureErrMu.Unlock()

		if handleClosure != nil {
			handleClosure(closureErr)
		}
	}()

	return nil
}

// IsConnected returns true if the dialer has an active connection
func (d *WebsocketDialer) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.dialCtx != nil && d.dialCtx.ctx.Err() == nil
}

// Close ends the session. The closure handler passed to Dial still runs.
func (d *WebsocketDialer) Close() error {
	d.mu.RLock()
	dc := d.dialCtx
	d.mu.RUnlock()

	if dc == nil {
		return connectionFailure(ErrNotConnected, nil)
	}

	dc.cancel()
	<-dc.closed
	return nil
}

func (d *WebsocketDialer) closeOnContextDone(dc *dialCtx, handleClosure func(err error)) {
	<-dc.ctx.Done()

	dc.writeClose()
	err := dc.conn.Close()
	close(dc.closed)

	d.mu.Lock()
	d.pending = nil
	d.mu.Unlock()

	dc.lg.Info("session closed")
	handleClosure(err)
}

// writeClose sends a close frame; failures are irrelevant since the
// connection is closed right after.
func (dc *dialCtx) writeClose() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = dc.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

// readMessages reads frames until the session ends and hands each one to the
// pending call. Frames arriving with no call pending are discarded.
func (d *WebsocketDialer) readMessages(dc *dialCtx, handleClosure func(err error)) {
	for {
		_, frame, err := dc.conn.ReadMessage()
		if dc.ctx.Err() != nil {
			handleClosure(nil)
			dc.lg.Debug("read loop exiting due to context done")
			return
		} else if ne := (net.Error)(nil); errors.As(err, &ne) && ne.Timeout() {
			handleClosure(connectionFailure(ErrConnectionTimeout, err))
			dc.lg.Error("websocket connection timeout", "error", err)
			return
		} else if err != nil {
			handleClosure(connectionFailure(ErrReadingMessage, err))
			dc.lg.Error("websocket read error", "error", err)
			return
		}

		d.mu.RLock()
		pending := d.pending
		d.mu.RUnlock()

		if pending == nil || !pending.deliver(frame) {
			dc.lg.Debug("discarding frame with no pending call", "frame", truncateValue(frame))
		}
	}
}

// pingPeriodically sends control pings to keep the session alive.
func (d *WebsocketDialer) pingPeriodically(dc *dialCtx, handleClosure func(err error)) {
	if d.cfg.PingInterval <= 0 {
		<-dc.ctx.Done()
		handleClosure(nil)
		return
	}

	ticker := time.NewTicker(d.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-dc.ctx.Done():
			handleClosure(nil)
			dc.lg.Debug("ping loop exiting due to context done")
			return
		case <-ticker.C:
			deadline := time.Now().Add(d.cfg.PingInterval)
			if err := dc.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				handleClosure(connectionFailure(ErrSendingPing, err))
				dc.lg.Error("error sending ping", "error", err)
				return
			}
		}
	}
}

// Call sends req and blocks until its response arrives.
//
// The request id is assigned here; ids start at 1 and increase by one per
// call over the dialer's lifetime. When no response arrives within
// RequestTimeout the call fails with ErrTimeout and the session stays open.
// A late response to an abandoned call carries a lower id and is discarded
// by the next call.
func (d *WebsocketDialer) Call(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, connectionFailure(ErrNilRequest, nil)
	}

	d.callMu.Lock()
	defer d.callMu.Unlock()

	d.mu.RLock()
	dc := d.dialCtx
	d.mu.RUnlock()
	if dc == nil || dc.ctx.Err() != nil {
		return nil, connectionFailure(ErrNotConnected, nil)
	}

	req.ID = d.nextID.Add(1)
	frame, err := EncodeRequest(*req)
	if err != nil {
		return nil, connectionFailure(err, nil)
	}

	pending := newPendingCall(req.ID)
	d.mu.Lock()
	d.pending = pending
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		if d.pending == pending {
			d.pending = nil
		}
		d.mu.Unlock()
		pending.finish()
	}()

	lg := log.WithCall(dc.lg, req.API, req.Method).WithKV(log.KeyRequestID, req.ID)
	lg.Debug("sending request")

	d.writeMu.Lock()
	err = dc.conn.WriteMessage(websocket.TextMessage, frame)
	d.writeMu.Unlock()
	if err != nil {
		return nil, connectionFailure(ErrSendingRequest, err)
	}

	var deadline time.Time
	if d.cfg.RequestTimeout > 0 {
		deadline = time.Now().Add(d.cfg.RequestTimeout)
	}

	for {
		var wait time.Duration
		if !deadline.IsZero() {
			wait = time.Until(deadline)
			if wait <= 0 {
				lg.Warn("request timed out")
				return nil, fmt.Errorf("%w: no response to request %d", ErrTimeout, req.ID)
			}
		}

		raw, err := pending.await(ctx, wait, dc.closed)
		if err != nil {
			if errors.Is(err, ErrTimeout) {
				lg.Warn("request timed out")
			}
			return nil, err
		}

		res, err := DecodeResponse(raw)
		if err != nil {
			lg.Warn("malformed response", "frame", truncateValue(raw), "error", err)
			return nil, err
		}

		switch {
		case res.ID == req.ID:
			return res, nil
		case res.ID < req.ID:
			lg.Debug("discarding stale response", "staleID", res.ID)
			continue
		default:
			return nil, connectionFailure(ErrUnexpectedResponseID, fmt.Errorf("expected %d, got %d", req.ID, res.ID))
		}
	}
}
