// Command dsdaemon runs a standalone driver station connection to one
// robot, exposing its operational state as Prometheus metrics. It is
// meant to run unattended on a field or bench as a systemd unit,
// holding the 50 Hz control link open and reporting battery/connection
// health without any interactive control surface — use dsctl for that.
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
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/frcnet/godriverstation/internal/config"
	"github.com/frcnet/godriverstation/internal/ds"
	dsmetrics "github.com/frcnet/godriverstation/internal/metrics"
	appversion "github.com/frcnet/godriverstation/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(appversion.Full("dsdaemon"))
		return 0
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		return 1
	}

	levelVar := &slog.LevelVar{}
	levelVar.Set(config.ParseLogLevel(cfg.Log.Level))
	logger := newLoggerWithLevel(cfg.Log.Format, levelVar)

	logger.Info("starting dsdaemon",
		slog.String("version", appversion.Version),
		slog.Int("team", int(cfg.Team)),
	)

	registry := prometheus.NewRegistry()
	collector := dsmetrics.NewCollector(registry)

	alliance, err := resolveAlliance(cfg.Alliance.Side, cfg.Alliance.Position)
	if err != nil {
		logger.Error("invalid alliance config", slog.String("error", err.Error()))
		return 1
	}

	station, err := ds.NewTeam(cfg.Team, alliance, ds.WithLogger(logger), ds.WithMetrics(collector))
	if err != nil {
		logger.Error("start driver station failed", slog.String("error", err.Error()))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsServer := newMetricsServer(cfg.Metrics.Addr, cfg.Metrics.Path, registry)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listenAndServe(metricsServer, logger)
	})
	g.Go(func() error {
		return handleSIGHUP(gctx, logger, levelVar, configPath)
	})

	if watchdogInterval, ok, werr := daemon.SdWatchdogEnabled(false); werr == nil && ok > 0 {
		g.Go(func() error {
			runWatchdog(gctx, watchdogInterval, logger)
			return nil
		})
	}

	notifyReady(logger)

	<-gctx.Done()
	logger.Info("shutdown signal received")
	notifyStopping(logger)

	return gracefulShutdown(station, metricsServer, logger, g)
}

func resolveAlliance(side string, position uint8) (ds.Alliance, error) {
	switch strings.ToLower(side) {
	case "red":
		return ds.NewRedAlliance(position), nil
	case "blue":
		return ds.NewBlueAlliance(position), nil
	default:
		return ds.Alliance{}, fmt.Errorf("alliance side %q: %w", side, config.ErrInvalidAllianceSide)
	}
}

func newLoggerWithLevel(format string, level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func newMetricsServer(addr, path string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:    addr,
		Handler: mux,
	}
}

func listenAndServe(srv *http.Server, logger *slog.Logger) error {
	logger.Info("metrics server listening", slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// handleSIGHUP reloads the log level from the on-disk config on SIGHUP.
// There is no session list to reconcile here — a dsdaemon process owns
// exactly one robot connection for its whole lifetime — so reload is
// limited to what can safely change without reconnecting: the log
// level.
func handleSIGHUP(ctx context.Context, logger *slog.Logger, level *slog.LevelVar, configPath *string) error {
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sighup:
			if *configPath == "" {
				continue
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				logger.Warn("reload config failed", slog.String("error", err.Error()))
				continue
			}
			newLevel := config.ParseLogLevel(cfg.Log.Level)
			level.Set(newLevel)
			logger.Info("log level reloaded", slog.String("level", newLevel.String()))
		}
	}
}

func runWatchdog(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
				logger.Warn("watchdog notify failed", slog.String("error", err.Error()))
			}
		}
	}
}

func notifyReady(logger *slog.Logger) {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logger.Debug("systemd notify ready failed", slog.String("error", err.Error()))
	}
}

func notifyStopping(logger *slog.Logger) {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		logger.Debug("systemd notify stopping failed", slog.String("error", err.Error()))
	}
}

func gracefulShutdown(station *ds.DriverStation, metricsServer *http.Server, logger *slog.Logger, g *errgroup.Group) int {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := station.Close(); err != nil {
		logger.Warn("driver station close failed", slog.String("error", err.Error()))
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown failed", slog.String("error", err.Error()))
	}

	if err := g.Wait(); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("dsdaemon stopped")
	return 0
}
