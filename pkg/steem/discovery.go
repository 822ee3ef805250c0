package steem

import (
	"context"
	"errors"
	"fmt"

	"github.com/steemkit/steembridge/pkg/log"
	"github.com/steemkit/steembridge/pkg/rpc"
)

// DiscoveryState is a step of capability discovery.
type DiscoveryState int

const (
	StateStart DiscoveryState = iota
	StateLoggingIn
	StateProbingAPIs
	StateReady
)

func (s DiscoveryState) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateLoggingIn:
		return "logging_in"
	case StateProbingAPIs:
		return "probing_apis"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Credentials authenticate the session. Empty credentials log in anonymously.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) anonymous() bool {
	return c.Username == "" || c.Password == ""
}

// Discovery logs in and probes which sub-APIs the node publishes. Every
// failure except a lost session is logged as a warning and discovery moves on.
type Discovery struct {
	inv   rpc.Invoker
	creds Credentials
	apis  []rpc.SubAPI
	state DiscoveryState

	// OnTransition, when set, is called on every state change.
	OnTransition func(from, to DiscoveryState)
}

// NewDiscovery returns a discovery probing rpc.KnownSubAPIs.
func NewDiscovery(inv rpc.Invoker, creds Credentials) *Discovery {
	return &Discovery{
		inv:   inv,
		creds: creds,
		apis:  rpc.KnownSubAPIs,
		state: StateStart,
	}
}

// State returns the current state.
func (d *Discovery) State() DiscoveryState {
	return d.state
}

// Run performs discovery. It returns an error only when the session is not
// connected; the returned set may be empty.
func (d *Discovery) Run(ctx context.Context) (CapabilitySet, error) {
	lg := log.FromContext(ctx).WithName("discovery")

	d.transition(StateLoggingIn)
	if err := d.login(ctx, lg); err != nil {
		return CapabilitySet{}, err
	}

	d.transition(StateProbingAPIs)
	ids := make(map[rpc.SubAPI]uint32, len(d.apis))
	for _, api := range d.apis {
		id, err := probeAPI(ctx, d.inv, api)
		if isFatal(err) {
			return CapabilitySet{}, err
		} else if err != nil {
			lg.Warn("sub-API probe failed", "api", api, "error", err)
			continue
		}
		if id == nil {
			lg.Warn("sub-API not available", "api", api)
			continue
		}

		ids[api] = *id
		lg.Debug("sub-API available", "api", api, "id", *id)
	}

	d.transition(StateReady)
	lg.Info("discovery finished", "available", len(ids), "probed", len(d.apis))

	return NewCapabilitySet(ids), nil
}

func (d *Discovery) login(ctx context.Context, lg log.Logger) error {
	if d.creds.anonymous() {
		_, err := rpc.InvokeRaw(ctx, d.inv, rpc.LoginAPI, rpc.LoginMethod, "", "")
		if isFatal(err) {
			return err
		} else if err != nil {
			lg.Warn("anonymous login failed", "error", err)
		}
		return nil
	}

	ok, err := login(ctx, d.inv, d.creds)
	switch {
	case isFatal(err):
		return err
	case err != nil:
		lg.Warn("login failed, continuing anonymously", "username", d.creds.Username, "error", err)
	case !ok:
		lg.Warn("login rejected, continuing anonymously", "username", d.creds.Username)
	default:
		lg.Info("logged in", "username", d.creds.Username)
	}
	return nil
}

func (d *Discovery) transition(to DiscoveryState) {
	from := d.state
	d.state = to
	if d.OnTransition != nil {
		d.OnTransition(from, to)
	}
}

func login(ctx context.Context, inv rpc.Invoker, creds Credentials) (bool, error) {
	return rpc.InvokeOne[bool](ctx, inv, rpc.LoginAPI, rpc.LoginMethod, creds.Username, creds.Password)
}

// probeAPI returns nil when the node answers null for api.
func probeAPI(ctx context.Context, inv rpc.Invoker, api rpc.SubAPI) (*uint32, error) {
	return rpc.InvokeOne[*uint32](ctx, inv, rpc.LoginAPI, rpc.GetAPIByName, string(api))
}

// isFatal reports whether err means the session is gone or the request never
// reached the node.
func isFatal(err error) bool {
	return errors.Is(err, rpc.ErrNotConnected) ||
		errors.Is(err, rpc.ErrSendingRequest) ||
		errors.Is(err, rpc.ErrDialingWebsocket)
}
