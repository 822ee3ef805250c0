package steem_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steemkit/steembridge/pkg/log"
	"github.com/steemkit/steembridge/pkg/rpc"
	"github.com/steemkit/steembridge/pkg/rpc/rpctest"
	"github.com/steemkit/steembridge/pkg/steem"
)

// newStubNode returns a node that accepts any login and publishes apis with
// ids in the given order.
func newStubNode(t *testing.T, apis ...rpc.SubAPI) *rpctest.Node {
	t.Helper()

	node := rpctest.NewNode()
	t.Cleanup(node.Close)

	node.Publish(apis...)
	return node
}

func newTestClient(t *testing.T, node *rpctest.Node, mutate func(*steem.Config), opts ...steem.Option) *steem.Client {
	t.Helper()

	cfg := steem.DefaultConfig()
	cfg.Endpoint = node.URL()
	if mutate != nil {
		mutate(&cfg)
	}

	client, err := steem.NewClient(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client
}

func gatherValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, m := range family.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func TestNewClient_DiscoversCapabilities(t *testing.T) {
	t.Parallel()

	node := newStubNode(t, rpc.DatabaseAPI, rpc.LoginAPI)
	reg := prometheus.NewRegistry()

	var states []steem.DiscoveryState
	client := newTestClient(t, node, nil,
		steem.WithMetrics(steem.NewMetricsWithRegistry(reg)),
		steem.WithDiscoveryObserver(func(_, to steem.DiscoveryState) { states = append(states, to) }),
	)

	assert.True(t, client.IsConnected())
	caps := client.Capabilities()
	assert.Equal(t, []rpc.SubAPI{rpc.DatabaseAPI, rpc.LoginAPI}, caps.Available())
	assert.Len(t, caps.Missing(), len(rpc.KnownSubAPIs)-2)
	assert.Equal(t, []steem.DiscoveryState{steem.StateLoggingIn, steem.StateProbingAPIs, steem.StateReady}, states)

	requests := node.Requests()
	require.Len(t, requests, 1+len(rpc.KnownSubAPIs))
	assert.Equal(t, uint64(1), requests[0].ID)
	assert.Equal(t, rpc.LoginMethod, requests[0].Method)
	assert.Equal(t, []any{"", ""}, requests[0].Params)

	assert.Equal(t, float64(2), gatherValue(t, reg, "steembridge_available_apis", nil))
	assert.Equal(t, float64(1), gatherValue(t, reg, "steembridge_discoveries_total", map[string]string{"outcome": "ready"}))
	assert.Equal(t, float64(len(rpc.KnownSubAPIs)), gatherValue(t, reg, "steembridge_calls_total",
		map[string]string{"api": "login_api", "method": "get_api_by_name", "outcome": "ok"}))
}

func TestNewClient_Failures(t *testing.T) {
	t.Parallel()

	t.Run("invalid endpoint", func(t *testing.T) {
		t.Parallel()

		cfg := steem.DefaultConfig()
		cfg.Endpoint = "http://steemd.steemit.com"
		_, err := steem.NewClient(context.Background(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "websocket_url")
	})

	t.Run("unreachable node", func(t *testing.T) {
		t.Parallel()

		cfg := steem.DefaultConfig()
		cfg.Endpoint = "ws://127.0.0.1:1"
		_, err := steem.NewClient(context.Background(), cfg)
		require.Error(t, err)
		assert.Equal(t, rpc.KindConnectionFailure, rpc.Classify(err))
	})

	t.Run("node drops session during discovery", func(t *testing.T) {
		t.Parallel()

		node := rpctest.NewNode()
		defer node.Close()
		node.Handle(rpc.LoginMethod, func(req rpc.Request) []byte {
			go node.DropConnections()
			return nil
		})

		cfg := steem.DefaultConfig()
		cfg.Endpoint = node.URL()
		_, err := steem.NewClient(context.Background(), cfg)
		require.ErrorIs(t, err, rpc.ErrNotConnected)
	})
}

func TestClient_NumericAPIIDs(t *testing.T) {
	t.Parallel()

	node := newStubNode(t, rpc.LoginAPI, rpc.DatabaseAPI)
	node.Handle(rpc.GetAccountCount, rpctest.Result(42))

	client := newTestClient(t, node, func(cfg *steem.Config) { cfg.NumericAPIIDs = true })

	count, err := client.GetAccountCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), count)

	requests := node.Requests()
	last := requests[len(requests)-1]
	require.NotNil(t, last.APIID)
	assert.Equal(t, uint32(1), *last.APIID)

	// Sub-APIs the node does not publish are still sent by name.
	_, _ = client.GetKeyReferences(context.Background(), []string{"STM5"})
	requests = node.Requests()
	last = requests[len(requests)-1]
	assert.Nil(t, last.APIID)
	assert.Equal(t, rpc.AccountByKeyAPI, last.API)
}

func TestClient_RemoteErrorAndMetrics(t *testing.T) {
	t.Parallel()

	node := newStubNode(t, rpc.DatabaseAPI)
	node.Handle(rpc.GetBlock, rpctest.Error(10, "assert exception"))

	reg := prometheus.NewRegistry()
	client := newTestClient(t, node, nil, steem.WithMetrics(steem.NewMetricsWithRegistry(reg)))

	_, err := client.GetBlock(context.Background(), 1)
	var remote *rpc.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 10, remote.Code)
	assert.Equal(t, "assert exception", remote.Message)

	labels := map[string]string{"api": "database_api", "method": "get_block", "outcome": "remote_error"}
	assert.Equal(t, float64(1), gatherValue(t, reg, "steembridge_calls_total", labels))
	assert.Equal(t, float64(1), gatherValue(t, reg, "steembridge_call_duration_seconds",
		map[string]string{"api": "database_api", "method": "get_block"}))
}

func TestClient_TimeoutKeepsSession(t *testing.T) {
	t.Parallel()

	node := newStubNode(t, rpc.DatabaseAPI)
	node.Handle(rpc.GetWitnessCount, rpctest.Silent())
	node.Handle(rpc.GetAccountCount, rpctest.Result(7))

	lg := NewRecordingLogger()
	ctx := log.SetContextLogger(context.Background(), lg)

	cfg := steem.DefaultConfig()
	cfg.Endpoint = node.URL()
	cfg.ResponseTimeout = 200 * time.Millisecond
	client, err := steem.NewClient(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.GetWitnessCount(context.Background())
	require.ErrorIs(t, err, rpc.ErrTimeout)
	assert.True(t, client.IsConnected())

	count, err := client.GetAccountCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), count)

	var warned []string
	for _, e := range lg.Entries(log.LevelWarn) {
		if e.Value("method") == rpc.GetWitnessCount.String() {
			warned = append(warned, e.Message)
		}
	}
	assert.Equal(t, []string{"request timed out"}, warned, "a timeout is warned about once")

	var failed bool
	for _, e := range lg.Entries(log.LevelDebug) {
		if e.Message == "call failed" && e.Value("method") == rpc.GetWitnessCount.String() {
			failed = true
		}
	}
	assert.True(t, failed)
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	node := newStubNode(t)
	node.Handle(rpc.LoginMethod, func(req rpc.Request) []byte {
		return rpctest.ResultFrame(req.ID, req.Params[0] == "alice" && req.Params[1] == "secret")
	})

	client := newTestClient(t, node, func(cfg *steem.Config) {
		cfg.Username = "alice"
		cfg.Password = "secret"
	})

	ok, err := client.Login(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, client.Capabilities().Len())
}

func TestClient_ClosureHandler(t *testing.T) {
	t.Parallel()

	node := newStubNode(t, rpc.DatabaseAPI)

	closed := make(chan error, 1)
	client := newTestClient(t, node, nil, steem.WithClosureHandler(func(err error) { closed <- err }))

	node.DropConnections()

	select {
	case err := <-closed:
		assert.Equal(t, rpc.KindConnectionFailure, rpc.Classify(err))
	case <-time.After(2 * time.Second):
		t.Fatal("closure handler not invoked")
	}
	assert.False(t, client.IsConnected())

	_, err := client.GetAccountCount(context.Background())
	assert.ErrorIs(t, err, rpc.ErrNotConnected)
}
