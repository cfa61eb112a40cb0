package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pharmames/pharmames/agent/internal/compute"
	"github.com/pharmames/pharmames/agent/internal/config"
	"github.com/pharmames/pharmames/agent/internal/scraper"
	"github.com/pharmames/pharmames/agent/internal/security"
	"github.com/pharmames/pharmames/agent/internal/shipper"
	"github.com/pharmames/pharmames/pkg/ident"
)

// certInterval is how often each TLS endpoint's certificate is re-inspected.
const certInterval = time.Hour

func main() {
	configPath := flag.String("config", "agent.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("pharmames-agent starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"server_endpoint", cfg.Agent.ServerEndpoint,
		"sources", len(cfg.Agent.Sources),
		"scrape_interval", cfg.Agent.ScrapeInterval,
		"window_size", cfg.Agent.WindowSize,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine := compute.NewEngine(cfg.Agent.Thresholds, cfg.Agent.WindowSize, ident.UUIDGenerator{}, ident.SystemClock{})

	type pipeline struct {
		src config.Source
		s   scraper.Scraper
	}
	var pipelines []pipeline
	for _, src := range cfg.Agent.Sources {
		s, err := scraper.New(src)
		if err != nil {
			slog.Error("skipping source: could not build scraper", "source", src.ID, "err", err)
			continue
		}
		pipelines = append(pipelines, pipeline{src: src, s: s})
		slog.Info("registered source", "id", src.ID, "type", src.Type, "endpoint", src.Endpoint)
	}
	defer func() {
		for _, p := range pipelines {
			if c, ok := p.s.(scraper.Closer); ok {
				c.Close()
			}
		}
	}()

	if len(pipelines) == 0 {
		slog.Warn("no sources configured, agent will idle")
	}

	// Hot reload applies thresholds and window size; source changes need a restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			engine.SetPolicy(updated.Agent.Thresholds, updated.Agent.WindowSize)
			if len(updated.Agent.Sources) != len(cfg.Agent.Sources) {
				slog.Warn("config hot-reloaded: source list changed, restart to apply",
					"sources", len(updated.Agent.Sources))
				return
			}
			slog.Info("config hot-reloaded", "window_size", updated.Agent.WindowSize)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	ship, err := shipper.New(cfg.Agent)
	if err != nil {
		slog.Error("failed to build shipper", "err", err)
		os.Exit(1)
	}
	go ship.Run(ctx)

	certs := security.NewChecker(certInterval)

	// Scrape loop: poll every ScrapeInterval, derive line state, ship.
	go func() {
		ticker := time.NewTicker(cfg.Agent.ScrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				for _, p := range pipelines {
					r, err := p.s.Scrape(ctx)
					if err != nil {
						slog.Warn("scrape error", "source", p.src.ID, "err", err)
						continue
					}
					snap := engine.Process(r, t.UTC())
					snap.Cert = certs.Status(ctx, p.src, t.UTC())
					ship.Ship(snap)
					slog.Debug("shipped snapshot",
						"source", p.src.ID,
						"state", snap.State,
						"score", snap.HealthScore,
						"anomalies", len(snap.Anomalies),
						"drifts", len(snap.Drifts),
					)
				}
			}
		}
	}()

	<-ctx.Done()
	slog.Info("pharmames-agent shutting down")
}
