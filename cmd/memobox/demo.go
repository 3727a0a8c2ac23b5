package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"memobox/internal/cache"
	"memobox/internal/config"
	"memobox/internal/log"
	"memobox/internal/memo"
)

func newDemoCommand(flags *rootFlags) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Memoize a few functions and show hits, evictions and expiry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if flags.logLevel != "" {
				cfg.Log.Level = flags.logLevel
			}
			if metricsAddr != "" {
				cfg.MetricsAddr = metricsAddr
			}

			logger, err := log.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return runDemo(cmd.Context(), cfg, logger, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics on this address while the demo runs")
	return cmd
}

func newMemoizer[V any](r *memo.Registry, cfg *config.Config, name string) (*memo.Memoizer[V], error) {
	spec, ok := cfg.Lookup(name)
	if !ok {
		return nil, cache.WrapErrCacheNotFound(name)
	}
	if spec.Kind == memo.KindExpiring {
		return memo.NewExpiring[V](r, name, spec.TTL)
	}
	return memo.NewLRU[V](r, name, spec.Capacity)
}

func runDemo(ctx context.Context, cfg *config.Config, logger *zap.Logger, out io.Writer) error {
	reg := prometheus.NewRegistry()
	registry := memo.NewRegistry(memo.WithLogger(logger), memo.WithRegisterer(reg))

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	adder, err := newMemoizer[int](registry, cfg, "expensive_computation")
	if err != nil {
		return err
	}
	concat, err := newMemoizer[string](registry, cfg, "concatenate_strings")
	if err != nil {
		return err
	}
	expiringAdder, err := newMemoizer[int](registry, cfg, "expensive_computation_ttl")
	if err != nil {
		return err
	}

	add := func(m *memo.Memoizer[int], x, y int) error {
		v, err := m.Do(func() (int, error) {
			fmt.Fprintf(out, "Computing %d + %d\n", x, y)
			return x + y, nil
		}, x, y)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, v)
		return nil
	}
	join := func(a, b string) error {
		v, err := concat.Do(func() (string, error) {
			fmt.Fprintf(out, "Concatenating %s and %s\n", a, b)
			return a + b, nil
		}, a, b)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, v)
		return nil
	}

	// With capacity 2, (4, 4) pushes out (1, 2), which then pushes out (3, 4).
	for _, args := range [][2]int{{1, 2}, {1, 2}, {3, 4}, {3, 4}, {4, 4}, {1, 2}, {3, 4}} {
		if err := add(adder, args[0], args[1]); err != nil {
			return err
		}
	}
	for _, args := range [][2]string{{"Hello, ", "World!"}, {"Hello, ", "World!"}, {"Rust", "Lang"}, {"Rust", "Lang"}} {
		if err := join(args[0], args[1]); err != nil {
			return err
		}
	}

	if err := add(expiringAdder, 3, 4); err != nil {
		return err
	}
	if err := add(expiringAdder, 3, 4); err != nil {
		return err
	}

	spec, _ := cfg.Lookup("expensive_computation_ttl")
	wait := time.NewTimer(spec.TTL + spec.TTL/2)
	defer wait.Stop()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
		return nil
	case <-wait.C:
	}

	fmt.Fprintln(out, "sleep ended")
	if err := add(expiringAdder, 3, 4); err != nil {
		return err
	}

	for _, name := range registry.Names() {
		stats, err := registry.Stats(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: hits=%d insertions=%d evictions=%d expirations=%d\n",
			name, stats.Hits, stats.Insertions, stats.Evictions, stats.Expirations)
	}
	return nil
}
