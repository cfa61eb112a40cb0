package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pharmames/pharmames/pkg/ident"
	"github.com/pharmames/pharmames/server/internal/alerts"
	"github.com/pharmames/pharmames/server/internal/api"
	"github.com/pharmames/pharmames/server/internal/auth"
	"github.com/pharmames/pharmames/server/internal/config"
	"github.com/pharmames/pharmames/server/internal/metrics"
	"github.com/pharmames/pharmames/server/internal/receiver"
	"github.com/pharmames/pharmames/server/internal/store"
	"github.com/pharmames/pharmames/server/internal/ws"
)

// gaugeInterval is how often the live-line and stream-client gauges refresh.
const gaugeInterval = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file; built-in defaults when empty")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	srv := cfg.Server

	level, _ := config.ParseLevel(srv.LogLevel) // validated by Load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("pharmames-server starting",
		"config", *configPath,
		"http_port", srv.HTTPPort,
		"auth_mode", srv.Auth.Mode,
		"snapshot_ttl", srv.Snapshot.TTL,
		"stream_interval", srv.Stream.Interval,
		"webhooks", len(srv.Alerts.Webhooks),
	)

	apiKey := srv.Auth.Key()
	if srv.Auth.Mode == "apikey" && apiKey == "" {
		slog.Warn("auth mode is apikey but the key is empty; requests are not authenticated",
			"key_env", srv.Auth.KeyEnv)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Snapshot store with background TTL eviction.
	st := store.New(srv.Snapshot.TTL)
	go st.Run(ctx)

	reg := metrics.NewRegistry()
	alertEngine := alerts.New(srv.Alerts)

	hub := ws.New(st, srv.Stream.Interval, srv.CORS.AllowedOrigins)
	go hub.Run(ctx)

	go refreshGauges(ctx, st, hub, reg)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(), cors.New(corsConfig(srv)))

	h := api.New(api.Deps{
		Store:   st,
		Alerts:  alertEngine,
		Metrics: reg,
		Engines: srv.Engines,
		IDs:     ident.UUIDGenerator{},
		Clock:   ident.SystemClock{},
	})
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(reg.Handler()))
	router.GET("/ws/stream", gin.WrapH(hub))

	v1 := router.Group("/api/v1", auth.APIKey(srv.Auth.Mode, srv.Auth.EffectiveHeader(), apiKey))
	h.Register(v1)
	v1.POST("/lines/snapshots", receiver.New(st, alertEngine, reg).Handle)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", srv.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", srv.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("pharmames-server shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown", "err", err)
	}
}

func corsConfig(srv config.ServerConfig) cors.Config {
	c := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", srv.Auth.EffectiveHeader()},
		MaxAge:       12 * time.Hour,
	}
	if srv.CORS.AllowAll() {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = srv.CORS.AllowedOrigins
	}
	return c
}

func refreshGauges(ctx context.Context, st *store.Store, hub *ws.Hub, reg *metrics.Registry) {
	t := time.NewTicker(gaugeInterval)
	defer t.Stop()
	for {
		reg.SetLinesLive(len(st.List()))
		reg.SetStreamClients(hub.Count())
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
