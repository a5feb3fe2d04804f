package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pixil98/go-dream/internal/console"
	"github.com/pixil98/go-dream/internal/dream"
	"github.com/pixil98/go-dream/internal/driver"
	"github.com/pixil98/go-dream/internal/listener"
	"github.com/pixil98/go-dream/internal/messaging"
	"github.com/pixil98/go-dream/internal/storage"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	err := cfg.applyEnv()
	if err != nil {
		return nil, err
	}
	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating config after environment overrides: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel()})))

	t, err := cfg.loadTuning()
	if err != nil {
		return nil, fmt.Errorf("loading tuning: %w", err)
	}

	catalogue, err := cfg.Scenes.buildCatalogue(t)
	if err != nil {
		return nil, fmt.Errorf("building scene catalogue: %w", err)
	}

	kv, err := cfg.Storage.buildKeyValue()
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	director, err := dream.NewDirector(
		dream.WithTuning(t),
		dream.WithCatalogue(catalogue),
		dream.WithKeyValue(kv),
		dream.WithAutoFade(cfg.Headless),
	)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("creating director: %w", err)
	}

	driverOpts := []driver.DriverOpt{driver.WithOnStart(director.Start)}
	if d := cfg.tickInterval(); d > 0 {
		driverOpts = append(driverOpts, driver.WithTickLength(d))
	}

	workers := service.WorkerList{
		"driver":  driver.NewDriver([]driver.Ticker{director}, driverOpts...),
		"storage": &storageCloser{kv: kv},
	}

	if cfg.Nats.Enabled {
		server, err := cfg.Nats.buildNatsServer()
		if err != nil {
			_ = kv.Close()
			return nil, fmt.Errorf("creating nats server: %w", err)
		}
		workers["nats"] = server
		workers["bridge"] = messaging.NewBridge(server, director.Bus(), director, cfg.Nats.bridgeOpts()...)
	}

	if cfg.Journal.enabled() {
		workers["journal"] = cfg.Journal.buildJournal(director.Bus())
	}

	if cfg.Websocket.enabled() {
		workers["websocket"] = cfg.Websocket.buildGateway(director.Bus(), director)
	}

	// Create Listeners
	if len(cfg.Listeners) > 0 {
		cm := listener.NewConnectionManager(
			console.NewConsole(director, director.Bus()),
			listener.WithConnectionLimit(cfg.MaxConsoles),
		)

		listeners := make(service.WorkerList, len(cfg.Listeners))
		for i, l := range cfg.Listeners {
			w, err := l.BuildListener(cm)
			if err != nil {
				_ = kv.Close()
				return nil, fmt.Errorf("creating listener %d: %w", i, err)
			}
			listeners[fmt.Sprintf("%s-%d", l.Protocol, i)] = w
		}
		workers["listeners"] = &listeners
	}

	return workers, nil
}

// storageCloser releases the key/value store once the app shuts down.
type storageCloser struct {
	kv storage.KeyValue
}

func (s *storageCloser) Start(ctx context.Context) error {
	<-ctx.Done()
	err := s.kv.Close()
	if err != nil {
		return fmt.Errorf("closing storage: %w", err)
	}
	return nil
}
