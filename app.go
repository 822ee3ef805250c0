package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/steemkit/steembridge/pkg/log"
	"github.com/steemkit/steembridge/pkg/rpc"
	"github.com/steemkit/steembridge/pkg/steem"
	"github.com/steemkit/steembridge/storage"
)

const (
	metricsEndpoint     = "/metrics"
	defaultHistoryLimit = 20
)

// runner holds what every command needs once the configuration is loaded.
type runner struct {
	conf     *Config
	logger   log.Logger
	format   outputFormat
	registry *prometheus.Registry
	metrics  *steem.Metrics

	metricsServer *http.Server
}

func newApp(stdout, stderr io.Writer) *cli.App {
	r := &runner{}

	return &cli.App{
		Name:      "steembridge",
		Usage:     "Query a Steem node over its WebSocket API",
		Writer:    stdout,
		ErrWriter: stderr,
		// main reports errors and picks the exit status.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   string(outputTable),
				Usage:   "output format: table, json or yaml",
			},
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "node WebSocket URL, overrides STEEM_ENDPOINT",
			},
		},
		Before: r.setup,
		After:  r.teardown,
		Commands: []*cli.Command{
			{
				Name:  "apis",
				Usage: "Discover the sub-APIs published by the node",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "save", Usage: "store the result as a snapshot"},
				},
				Action: r.runApis,
			},
			{
				Name:  "history",
				Usage: "List stored capability snapshots",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "include every endpoint"},
					&cli.BoolFlag{Name: "latest", Usage: "show the newest snapshot of the endpoint in full"},
					&cli.IntFlag{Name: "limit", Value: defaultHistoryLimit, Usage: "maximum number of snapshots"},
				},
				Action: r.runHistory,
			},
			{
				Name:   "forget",
				Usage:  "Delete the stored snapshots of the endpoint",
				Action: r.runForget,
			},
			{
				Name:      "call",
				Usage:     "Call a method and print its result",
				ArgsUsage: "<api> <method> [--] [json params...]",
				Action:    r.runCall,
			},
			{
				Name:   "console",
				Usage:  "Start an interactive session",
				Action: r.runConsole,
			},
		},
	}
}

func (r *runner) setup(c *cli.Context) error {
	conf, err := LoadConfig()
	if err != nil {
		return err
	}
	if endpoint := c.String("endpoint"); endpoint != "" {
		conf.steem.Endpoint = endpoint
		if err := conf.steem.Validate(); err != nil {
			return err
		}
	}

	r.format, err = parseOutputFormat(c.String("output"))
	if err != nil {
		return err
	}

	r.conf = conf
	r.logger = log.NewZapLogger(conf.log).WithName("steembridge")
	if conf.dotEnvErr != nil {
		r.logger.Warn(".env file not found", "dir", conf.configDir)
	}

	r.registry = prometheus.NewRegistry()
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	r.metrics = steem.NewMetricsWithRegistry(r.registry)

	if conf.metricsAddr != "" {
		r.startMetricsServer(conf.metricsAddr)
	}
	return nil
}

func (r *runner) teardown(*cli.Context) error {
	if r.metricsServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.metricsServer.Shutdown(ctx); err != nil {
		r.logger.Error("failed to shut down metrics server", "error", err)
	}
	return nil
}

func (r *runner) startMetricsServer(addr string) {
	metricsMux := http.NewServeMux()
	metricsMux.Handle(metricsEndpoint, promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))

	r.metricsServer = &http.Server{
		Addr:    addr,
		Handler: metricsMux,
	}

	go func() {
		r.logger.Info("Prometheus metrics available", "listenAddr", addr, "endpoint", metricsEndpoint)
		if err := r.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Error("metrics server failure", "error", err)
		}
	}()
}

func (r *runner) connect(ctx context.Context, opts ...steem.Option) (*steem.Client, error) {
	ctx = log.SetContextLogger(ctx, r.logger)
	return steem.NewClient(ctx, r.conf.steem, append(opts, steem.WithMetrics(r.metrics))...)
}

func (r *runner) openStorage() (*storage.Storage, error) {
	path, err := r.conf.storagePath()
	if err != nil {
		return nil, err
	}
	return storage.NewStorage(path)
}

func (r *runner) runApis(c *cli.Context) error {
	client, err := r.connect(c.Context)
	if err != nil {
		return err
	}
	caps := client.Capabilities()
	_ = client.Close()

	endpoint := r.conf.steem.Endpoint
	if err := renderCapabilities(c.App.Writer, r.format, endpoint, caps); err != nil {
		return err
	}

	if !c.Bool("save") {
		return nil
	}

	store, err := r.openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	snapshot, err := store.SaveSnapshot(endpoint, caps)
	if err != nil {
		return err
	}
	r.logger.Info("snapshot saved", "id", snapshot.ID, "endpoint", endpoint)
	return nil
}

func (r *runner) runHistory(c *cli.Context) error {
	store, err := r.openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	endpoint := r.conf.steem.Endpoint
	if c.Bool("latest") {
		snapshot, err := store.GetLatestSnapshot(endpoint)
		if err != nil {
			return err
		}
		caps, err := snapshot.Capabilities()
		if err != nil {
			return err
		}
		return renderCapabilities(c.App.Writer, r.format, snapshot.Endpoint, caps)
	}
	if c.Bool("all") {
		endpoint = ""
	}

	snapshots, err := store.GetSnapshots(endpoint, c.Int("limit"))
	if err != nil {
		return err
	}
	return renderSnapshots(c.App.Writer, r.format, snapshots)
}

func (r *runner) runForget(c *cli.Context) error {
	store, err := r.openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	endpoint := r.conf.steem.Endpoint
	removed, err := store.DeleteSnapshots(endpoint)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Removed %d snapshot(s) of %s.\n", removed, endpoint)
	return nil
}

func (r *runner) runCall(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("usage: steembridge call <api> <method> [json params...]")
	}

	client, err := r.connect(c.Context)
	if err != nil {
		return err
	}
	defer client.Close()

	args := c.Args().Slice()
	result, err := rpc.InvokeRaw(c.Context, client, rpc.SubAPI(args[0]), rpc.Method(args[1]), parseParams(args[2:])...)
	if err != nil {
		return err
	}
	return renderResult(c.App.Writer, r.format, result)
}

func (r *runner) runConsole(c *cli.Context) error {
	disconnected := make(chan struct{})
	client, err := r.connect(c.Context, steem.WithClosureHandler(func(error) {
		close(disconnected)
	}))
	if err != nil {
		return err
	}
	defer client.Close()

	store, err := r.openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	console := NewConsole(c.Context, client, store, r.conf.steem.Endpoint, r.format, c.App.Writer)
	return console.Run(c.Context, disconnected)
}

// parseParams decodes each argument as JSON. Arguments that are not valid
// JSON are sent as strings, so account names need no quoting.
func parseParams(args []string) []any {
	params := make([]any, 0, len(args))
	for _, arg := range args {
		if json.Valid([]byte(arg)) {
			params = append(params, json.RawMessage(arg))
		} else {
			params = append(params, arg)
		}
	}
	return params
}

// exitCode maps a failure kind to the process exit status.
func exitCode(err error) int {
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	switch rpc.Classify(err) {
	case rpc.KindConnectionFailure:
		return 2
	case rpc.KindTimeout:
		return 3
	case rpc.KindTransformation:
		return 4
	case rpc.KindRemote:
		return 5
	default:
		return 1
	}
}

func describeError(err error) string {
	return fmt.Sprintf("%s: %s", rpc.Classify(err), err)
}
