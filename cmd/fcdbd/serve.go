package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fcdb-io/fcdb/pkg/cas"
	"github.com/fcdb-io/fcdb/pkg/events"
	"github.com/fcdb-io/fcdb/pkg/fingerprint"
	"github.com/fcdb-io/fcdb/pkg/graph"
	"github.com/fcdb-io/fcdb/pkg/log"
	"github.com/fcdb-io/fcdb/pkg/metrics"
	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run fcdbd as a long-lived process",
	Long: `Opens the store at --data-dir and keeps it open: runs the Bloom
hierarchy's adaptation ticker, polls pack/graph/manifest stats onto
the metrics gauges, and serves /metrics and /healthz (plus /ready and
/live) over HTTP until interrupted.

This is ambient observability, not a query front-end — fcdbd has no
wire protocol for remote graph operations in this release.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("data-dir", "./data", "Data directory for the store")
	serveCmd.Flags().String("config", "", "Path to a fcdbd YAML config file (defaults used if omitted)")
	serveCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "Address for the metrics/health HTTP server")
}

func runServe(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	configPath, _ := cmd.Flags().GetString("config")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	casOpts, err := casOptions(cfg)
	if err != nil {
		return err
	}

	store, err := cas.Open(dataDir, casOpts)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info(fmt.Sprintf("store opened at %s", dataDir))

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()
	logSub := broker.Subscribe()
	go logStoreEvents(logSub)
	defer broker.Unsubscribe(logSub)

	store.SetBroker(broker)
	g := graph.New(store)
	g.SetBroker(broker)

	manifest := fingerprint.NewManifest(cfg.Manifest.Capacity)
	manifest.SetBroker(broker)
	if err := manifest.OpenLog(dataDir); err != nil {
		return err
	}
	defer manifest.CloseLog()

	adaptor := cas.NewBloomAdaptor(store, cfg.CAS.AdaptationInterval)
	adaptor.Start()
	defer adaptor.Stop()
	log.Info("bloom adaptation ticker started")

	collector := metrics.NewCollector(
		packStatsSource(store),
		nodeCountSource(g),
		edgeCountsSource(g),
		manifest.Len,
	)
	collector.Start()
	defer collector.Stop()
	log.Info("stats collector started")

	metrics.SetVersion(Version)
	metrics.RegisterComponent("cas", true, "ready")
	metrics.RegisterComponent("graph", true, "ready")
	metrics.RegisterComponent("executor", true, "ready")

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/healthz", metrics.HealthHandler())
	mux.Handle("/health", metrics.HealthHandler())
	mux.Handle("/ready", metrics.ReadyHandler())
	mux.Handle("/live", metrics.LivenessHandler())

	server := &http.Server{Addr: metricsAddr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	fmt.Printf("✓ Metrics/health endpoint: http://%s/metrics\n", metricsAddr)
	fmt.Printf("✓ Health endpoints: http://%s/healthz, /ready, /live\n", metricsAddr)
	fmt.Println("fcdbd is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		fmt.Println("\nShutting down...")
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "\nmetrics server error: %v\n", err)
	}

	return server.Shutdown(context.Background())
}

// packStatsSource adapts store.Stats (map[types.Band]cas.BandStats)
// to the map[types.Band]metrics.PackStats shape metrics.Collector
// expects, keeping pkg/metrics free of a pkg/cas import.
func packStatsSource(store *cas.PackCAS) func() map[types.Band]metrics.PackStats {
	return func() map[types.Band]metrics.PackStats {
		raw := store.Stats()
		out := make(map[types.Band]metrics.PackStats, len(raw))
		for band, s := range raw {
			out[band] = metrics.PackStats{PackCount: s.PackCount, Bytes: s.Bytes}
		}
		return out
	}
}

func nodeCountSource(g *graph.Store) func() (int, error) {
	return func() (int, error) {
		rids, err := g.ListRids(context.Background())
		if err != nil {
			return 0, err
		}
		return len(rids), nil
	}
}

// edgeCountsSource tallies live outgoing edges per label across every
// known Rid. It walks the whole node set on each poll; fine at the
// 15-second collector cadence for the node counts this store is sized
// for.
func edgeCountsSource(g *graph.Store) func() (map[types.LabelID]int, error) {
	return func() (map[types.LabelID]int, error) {
		ctx := context.Background()
		rids, err := g.ListRids(ctx)
		if err != nil {
			return nil, err
		}

		counts := make(map[types.LabelID]int)
		for _, rid := range rids {
			edges, err := g.GetEdgesFrom(ctx, rid)
			if err != nil {
				return nil, err
			}
			for _, e := range edges {
				counts[e.Label]++
			}
		}
		return counts, nil
	}
}

// logStoreEvents drains sub until the broker closes it, logging each
// event at debug level. This is the server's sole consumer of the
// event stream in this release; a remote subscriber API is not yet
// wired up.
func logStoreEvents(sub events.Subscriber) {
	for ev := range sub {
		log.Logger.Debug().Str("type", string(ev.Type)).Str("message", ev.Message).Msg("store event")
	}
}
