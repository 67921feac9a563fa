package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gaspardpetit/tasksplit/core/secret"
	"github.com/gaspardpetit/tasksplit/internal/config"
	"github.com/gaspardpetit/tasksplit/internal/gemini"
	"github.com/gaspardpetit/tasksplit/internal/logx"
	"github.com/gaspardpetit/tasksplit/internal/metrics"
	"github.com/gaspardpetit/tasksplit/internal/server"
	"github.com/gaspardpetit/tasksplit/internal/serverstate"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	cfg, err := config.Load("tasksplit", os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		logx.Log.Fatal().Err(err).Msg("load config")
	}
	if cfg.ShowVersion {
		fmt.Printf("tasksplit version=%s sha=%s date=%s\n", version, buildSHA, buildDate)
		return
	}
	logx.Configure(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logx.Log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.RedisAddr != "" {
		rs, err := serverstate.NewRedisStore(ctx, cfg.RedisAddr, "")
		if err != nil {
			logx.Log.Fatal().Err(err).Msg("connect redis")
		}
		defer func() {
			if err := rs.Close(); err != nil {
				logx.Log.Warn().Err(err).Msg("close redis")
			}
		}()
		serverstate.UseStore(rs)
		logx.Log.Info().Str("key", rs.Key()).Msg("using redis state store")
	}

	if cfg.GeminiAPIKey == "" {
		logx.Log.Warn().Msg("GEMINI_API_KEY is not set; /api/gemini will answer 500")
	}
	logx.Log.Info().Str("model", cfg.GeminiModel).Str("api_key", secret.Describe(cfg.GeminiAPIKey)).Dur("timeout", cfg.UpstreamTimeout).Msg("gemini upstream")

	gen := gemini.New(gemini.Options{
		BaseURL: cfg.GeminiBaseURL,
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.UpstreamTimeout,
	})
	preg := server.NewRegistry()
	metrics.SetServerBuildInfo(version, buildSHA, buildDate)

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           server.New(cfg, gen, preg, version),
		ReadHeaderTimeout: 10 * time.Second,
	}
	var metricsSrv *http.Server
	if cfg.SeparateMetrics() {
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: server.MetricsHandler(preg), ReadHeaderTimeout: 10 * time.Second}
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		logx.Log.Fatal().Err(err).Str("addr", cfg.ListenAddr()).Msg("listen")
	}
	go handleSignals(cancel, cfg.DrainTimeout)
	grace := cfg.UpstreamTimeout + 5*time.Second

	metricsDone := make(chan struct{})
	if metricsSrv != nil {
		mln, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			logx.Log.Fatal().Err(err).Str("addr", cfg.MetricsAddr).Msg("listen metrics")
		}
		go func() {
			defer close(metricsDone)
			logx.Log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server starting")
			if err := server.Serve(ctx, metricsSrv, mln, grace); err != nil {
				logx.Log.Error().Err(err).Msg("metrics server error")
			}
		}()
	} else {
		close(metricsDone)
	}

	serverstate.SetState(serverstate.StatusReady)
	logx.Log.Info().Str("addr", "http://"+cfg.ListenAddr()).Str("version", version).Msg("server starting")
	if err := server.Serve(ctx, srv, ln, grace); err != nil {
		logx.Log.Error().Err(err).Msg("server shutdown")
	}
	cancel()
	<-metricsDone
	logx.Log.Info().Msg("server stopped")
}

// handleSignals drains on the first SIGINT/SIGTERM and cancels after drain
// elapses; a second signal cancels immediately.
func handleSignals(cancel context.CancelFunc, drain time.Duration) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	for range sigCh {
		if serverstate.IsDraining() || drain <= 0 {
			logx.Log.Warn().Msg("termination requested")
			cancel()
			return
		}
		serverstate.StartDrain()
		logx.Log.Info().Dur("timeout", drain).Msg("draining; send SIGTERM again to terminate immediately")
		go func() {
			time.Sleep(drain)
			logx.Log.Info().Msg("drain complete; shutting down")
			cancel()
		}()
	}
}
