package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-trailmeter/internal/config"
	"backend-trailmeter/internal/db"
	"backend-trailmeter/internal/locate"
	"backend-trailmeter/internal/observability"
	"backend-trailmeter/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig    func() config.Config
	buildProvider func(config.Config) locate.Provider
	connectRedis  func(config.Config) *redis.Client
	notify        func(chan<- os.Signal, ...os.Signal)
	run           func(context.Context, config.Config, locate.Provider, *redis.Client, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:    config.Load,
		buildProvider: buildProvider,
		connectRedis:  db.ConnectRedis,
		notify:        signal.Notify,
		run:           Run,
	}
}

// buildProvider picks the location capability from configuration: an NMEA
// GPS feed by default, or an MQTT companion-device relay.
func buildProvider(cfg config.Config) locate.Provider {
	if cfg.GPSSource == "mqtt" {
		return locate.NewMQTTProvider(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic)
	}
	return locate.NewNMEAProvider(cfg.GPSAddr)
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()

	provider := deps.buildProvider(cfg)
	rdb := deps.connectRedis(cfg)

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, provider, rdb, signals, nil); err != nil {
		log.Printf("server exited with error: %v", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run starts the HTTP server and waits for termination signals.
func Run(ctx context.Context, cfg config.Config, provider locate.Provider, rdb *redis.Client, signals <-chan os.Signal, listen ListenFunc) error {
	srv := server.NewServer(cfg, provider, rdb)

	if cfg.MetricsPort != "" {
		go observability.StartMetricsServer(cfg.MetricsPort)
	}

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	// release the continuous subscription before tearing the server down
	srv.Tracker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}
