package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/webbmaffian/go-fifo/channel"
	"github.com/webbmaffian/go-fifo/internal/config"
	"github.com/webbmaffian/go-fifo/internal/logging"
	"github.com/webbmaffian/go-fifo/internal/metrics"
	"go.uber.org/zap"
)

type app struct {
	cfg     *config.Config
	log     *zap.Logger
	monitor bool
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{
		cfg: cfg,
		log: zap.NewNop(),
	}

	root := &cobra.Command{
		Use:           "fifoproc",
		Short:         "fifoproc - bounded producer/consumer byte channel",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			if err = a.cfg.Validate(); err != nil {
				return
			}

			a.log, err = logging.New(logging.Config{
				Level:       a.cfg.Logging.Level,
				Development: a.cfg.Logging.Development,
			})

			return
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	bindFlags(root.PersistentFlags(), a)

	root.AddCommand(
		newPipeCmd(a),
		newRandomCmd(a),
	)

	return root
}

func bindFlags(fs *pflag.FlagSet, a *app) {
	fs.IntVar(&a.cfg.Channel.Capacity, "capacity", a.cfg.Channel.Capacity, "channel capacity in bytes")
	fs.IntVar(&a.cfg.Channel.MaxRecord, "max-record", a.cfg.Channel.MaxRecord, "maximum bytes per read or write call")
	fs.StringVar(&a.cfg.Channel.Storage, "storage", a.cfg.Channel.Storage, "channel storage: heap or mmap")
	fs.StringVar(&a.cfg.Logging.Level, "log-level", a.cfg.Logging.Level, "log level")
	fs.BoolVar(&a.cfg.Logging.Development, "log-dev", a.cfg.Logging.Development, "human readable logs")
	fs.StringVar(&a.cfg.Metrics.Addr, "metrics-addr", a.cfg.Metrics.Addr, "serve Prometheus metrics on this address")
	fs.BoolVarP(&a.monitor, "monitor", "m", false, "render live channel statistics on stderr")
}

func (a *app) newChannel(name string) (*channel.Channel, error) {
	opts, err := a.cfg.ChannelOptions()

	if err != nil {
		return nil, err
	}

	opts = append(opts, channel.WithName(name), channel.WithLogger(a.log))

	return channel.New(a.cfg.Channel.Capacity, a.cfg.Channel.MaxRecord, opts...)
}

// Largest transfer accepted by the channel.
func (a *app) chunkSize() int {
	if a.cfg.Channel.MaxRecord < a.cfg.Channel.Capacity {
		return a.cfg.Channel.MaxRecord
	}

	return a.cfg.Channel.Capacity
}

// Starts the optional metrics endpoint and live monitor. The returned
// function stops both.
func (a *app) observe(ctx context.Context, chans ...*channel.Channel) (stop func()) {
	var stops []func()

	if a.cfg.Metrics.Addr != "" {
		stops = append(stops, a.serveMetrics(chans...))
	}

	if a.monitor {
		stops = append(stops, startMonitor(ctx, chans...))
	}

	return func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}
}

func (a *app) serveMetrics(chans ...*channel.Channel) (stop func()) {
	sources := make([]metrics.StatsSource, len(chans))

	for i, ch := range chans {
		sources[i] = ch
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector(sources...))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.log.Info("serving metrics", zap.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_ = srv.Shutdown(ctx)
	}
}
