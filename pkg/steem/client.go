package steem

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/steemkit/steembridge/pkg/log"
	"github.com/steemkit/steembridge/pkg/rpc"
)

const tracerName = "github.com/steemkit/steembridge/pkg/steem"

// Client is a connected session with a Steem node. It is safe for concurrent
// use; calls are sent one at a time.
//
// Example:
//
//	client, err := steem.NewClient(ctx, steem.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	count, err := client.GetAccountCount(ctx)
type Client struct {
	cfg     Config
	dialer  rpc.Dialer
	caps    CapabilitySet
	metrics *Metrics
	tracer  trace.Tracer
	lg      log.Logger
}

var _ rpc.Invoker = (*Client)(nil)

type clientOptions struct {
	dialer        rpc.Dialer
	metrics       *Metrics
	tracer        trace.Tracer
	handleClosure func(err error)
	onTransition  func(from, to DiscoveryState)
}

// Option customizes NewClient.
type Option func(*clientOptions)

// WithDialer replaces the WebSocket dialer built from the config.
func WithDialer(dialer rpc.Dialer) Option {
	return func(o *clientOptions) { o.dialer = dialer }
}

// WithMetrics records calls and discoveries into m.
func WithMetrics(m *Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithTracer sets the tracer used for per-call spans. Defaults to the global
// tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *clientOptions) { o.tracer = tracer }
}

// WithClosureHandler is called once when the session ends.
func WithClosureHandler(handleClosure func(err error)) Option {
	return func(o *clientOptions) { o.handleClosure = handleClosure }
}

// WithDiscoveryObserver is called on every discovery state change.
func WithDiscoveryObserver(onTransition func(from, to DiscoveryState)) Option {
	return func(o *clientOptions) { o.onTransition = onTransition }
}

// NewClient connects to cfg.Endpoint and runs capability discovery. The
// session lives until ctx is done or Close is called.
//
// Construction fails only when the configuration is invalid, the connection
// cannot be opened, or the session is lost during discovery. Rejected logins
// and unavailable sub-APIs are logged as warnings.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialer == nil {
		o.dialer = rpc.NewWebsocketDialer(cfg.DialerConfig())
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}

	c := &Client{
		cfg:     cfg,
		dialer:  o.dialer,
		metrics: o.metrics,
		tracer:  o.tracer,
		lg:      log.FromContext(ctx).WithName("steem-client"),
	}

	handleClosure := func(err error) {
		if err != nil {
			c.lg.Error("session closed", "endpoint", cfg.Endpoint, "error", err)
		}
		if o.handleClosure != nil {
			o.handleClosure(err)
		}
	}

	if err := c.dialer.Dial(ctx, cfg.Endpoint, handleClosure); err != nil {
		return nil, err
	}

	disc := NewDiscovery(c, cfg.Credentials())
	disc.OnTransition = func(from, to DiscoveryState) {
		c.lg.Debug("discovery state changed", "from", from, "to", to)
		if o.onTransition != nil {
			o.onTransition(from, to)
		}
	}

	caps, err := disc.Run(log.SetContextLogger(ctx, c.lg))
	c.metrics.observeDiscovery(caps, err)
	if err != nil {
		_ = c.dialer.Close()
		return nil, fmt.Errorf("capability discovery: %w", err)
	}
	c.caps = caps

	return c, nil
}

// Capabilities returns the sub-APIs discovered at construction.
func (c *Client) Capabilities() CapabilitySet {
	return c.caps
}

// IsConnected reports whether the session is open.
func (c *Client) IsConnected() bool {
	return c.dialer.IsConnected()
}

// Close ends the session.
func (c *Client) Close() error {
	return c.dialer.Close()
}

// Invoke sends method to api and returns the decoded response. Node errors
// are left in the response for rpc.Transform to report.
func (c *Client) Invoke(ctx context.Context, api rpc.SubAPI, method rpc.Method, params ...any) (*rpc.Response, error) {
	ctx, span := c.tracer.Start(ctx, "steem."+string(method), trace.WithAttributes(
		attribute.String("steem.api", string(api)),
		attribute.String("steem.method", string(method)),
	))
	defer span.End()

	lg := log.WithCall(log.FromContext(log.SetContextLogger(ctx, c.lg)), api, method)

	req := rpc.NewRequest(api, method, params...)
	if c.cfg.NumericAPIIDs {
		if id, ok := c.caps.ID(api); ok {
			req.APIID = &id
		}
	}

	start := time.Now()
	res, err := c.dialer.Call(ctx, &req)
	elapsed := time.Since(start)

	outcome := "ok"
	switch {
	case err != nil:
		outcome = rpc.Classify(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		lg.Debug("call failed", "error", err)
	case res.Error != nil:
		outcome = rpc.KindRemote.String()
		span.SetStatus(codes.Error, res.Error.Message)
		lg.Debug("node returned an error", "code", res.Error.Code, "message", res.Error.Message)
	default:
		lg.Debug("call completed", log.KeyRequestID, req.ID, "elapsed", elapsed)
	}
	span.SetAttributes(attribute.Int64("steem.request_id", int64(req.ID)), attribute.String("steem.outcome", outcome))
	c.metrics.observeCall(string(api), string(method), outcome, elapsed)

	return res, err
}

// Login authenticates the session with the configured credentials and
// reports whether the node accepted them.
func (c *Client) Login(ctx context.Context) (bool, error) {
	return login(ctx, c, c.cfg.Credentials())
}
