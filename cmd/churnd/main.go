package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/churnscope/churnscope/internal/alerts"
	"github.com/churnscope/churnscope/internal/api"
	"github.com/churnscope/churnscope/internal/config"
	"github.com/churnscope/churnscope/internal/dataset"
	"github.com/churnscope/churnscope/internal/metrics"
	"github.com/churnscope/churnscope/internal/report"
	"github.com/churnscope/churnscope/internal/store"
	"github.com/churnscope/churnscope/internal/ws"
)

const wsBroadcastInterval = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("churnd starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"sources", len(cfg.Server.Sources),
		"refresh_interval", cfg.Server.Report.RefreshInterval,
		"report_ttl", cfg.Server.Report.TTL,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Report store with background TTL eviction.
	st := store.New(cfg.Server.Report.TTL)
	go st.Run(ctx)

	// Alerts engine — evaluates rules on every rebuilt report.
	alertEngine := alerts.New(cfg.Server.Alerts)

	// One loader per configured source.
	type source struct {
		id     string
		loader dataset.Loader
	}
	var sources []source
	for _, src := range cfg.Server.Sources {
		sources = append(sources, source{id: src.ID, loader: newLoader(src)})
		slog.Info("registered source", "id", src.ID, "type", src.Type)
	}

	builder := newBuilder(cfg.Server.Report)

	// refresh reloads every source and rebuilds its report. A source that
	// fails keeps its previous report until the TTL retires it.
	refresh := func() {
		for _, src := range sources {
			start := time.Now()
			snap, err := src.loader.Load(ctx)
			if err != nil {
				slog.Error("refresh: load failed — keeping previous report",
					"source", src.id, "err", err)
				continue
			}
			rep, err := builder.Build(snap)
			if err != nil {
				slog.Error("refresh: report build failed", "source", src.id, "err", err)
				continue
			}
			st.Put(snap, rep)
			alertEngine.Evaluate(rep)
			slog.Info("report refreshed",
				"source", src.id,
				"records", snap.Len(),
				"churn_rate", rep.OverallChurnRate,
				"took", time.Since(start),
			)
		}
	}

	// First analysis run happens synchronously so the API has data at startup.
	refresh()

	// Periodic refresh via the scheduler.
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(cfg.Server.Report.RefreshInterval).Do(refresh); err != nil {
		slog.Error("failed to schedule refresh", "err", err)
		os.Exit(1)
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	// Watch config file for hot-reload. Only the alert rule set is swapped
	// at runtime; port and source changes need a restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			alertEngine.Replace(updated.Server.Alerts)
			slog.Info("alert rules hot-reloaded", "rules", len(updated.Server.Alerts.Rules))
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// WebSocket hub — broadcasts reports to clients every few seconds.
	hub := ws.New(st, wsBroadcastInterval)
	go hub.Run(ctx)

	// Combined HTTP server: REST API + WebSocket hub + Prometheus metrics.
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", api.APIKeyMiddleware(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
		api.New(st, alertEngine),
	))
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/metrics", metrics.Handler(st))

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("churnd shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}

// newLoader builds the loader for one validated source config.
func newLoader(src config.Source) dataset.Loader {
	switch src.Type {
	case "postgres":
		return dataset.NewPostgresLoader(src.ID, src.DSN(), src.Table)
	default:
		return dataset.NewCSVLoader(src.ID, src.Path)
	}
}

// newBuilder maps the report config onto a builder, falling back to the
// default layout where the config is silent.
func newBuilder(rc config.ReportConfig) *report.Builder {
	b := report.NewBuilder()
	if len(rc.Attributes) > 0 {
		b.Attributes = rc.Attributes
	}
	if len(rc.Cross) == 2 {
		b.CrossPair = [2]string{rc.Cross[0], rc.Cross[1]}
	}
	if len(rc.Ranking) > 0 {
		b.Ranking = rc.Ranking
	}
	if rc.TopN > 0 {
		b.TopN = rc.TopN
	}
	return b
}
