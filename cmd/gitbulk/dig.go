package main

import (
	"go.uber.org/dig"

	"gitbulk/internal/config"
	"gitbulk/internal/credentials"
	"gitbulk/internal/discovery"
	"gitbulk/internal/eventbus"
	"gitbulk/internal/git"
	"gitbulk/internal/logic"
	"gitbulk/internal/logpipe"
	"gitbulk/internal/orchestrator"
)

// flags are the global command line options
type flags struct {
	path       string
	configPath string
	debug      bool
}

// app is everything a command needs once the container is assembled
type app struct {
	cfg       *config.Config
	configSvc config.ConfigService
	bus       eventbus.EventBus
	pipeline  *logpipe.Pipeline
	orch      *orchestrator.Orchestrator
}

func newApp(
	cfg *config.Config,
	configSvc config.ConfigService,
	bus eventbus.EventBus,
	pipeline *logpipe.Pipeline,
	orch *orchestrator.Orchestrator,
) *app {
	return &app{cfg: cfg, configSvc: configSvc, bus: bus, pipeline: pipeline, orch: orch}
}

func newConfig(svc config.ConfigService, f flags) (*config.Config, error) {
	cfg, err := svc.Load()
	if err != nil {
		return nil, err
	}
	if f.path != "" {
		cfg.BaseDir = f.path
	}
	return cfg, nil
}

// registerProviders registers every service with the container, bottom-up
func registerProviders(container *dig.Container, f flags) error {
	providers := []any{
		func() flags { return f },
		eventbus.New,
		func(bus eventbus.EventBus, f flags) config.ConfigService {
			return config.NewConfigService(f.configPath, bus)
		},
		newConfig,
		func(cfg *config.Config) *credentials.Resolver {
			return cfg.Resolver()
		},
		func(cfg *config.Config, resolver *credentials.Resolver) *git.Opener {
			return git.NewOpener(cfg.GitOptions(resolver))
		},
		func(bus eventbus.EventBus, opener *git.Opener, cfg *config.Config) discovery.DiscoveryService {
			return discovery.NewDiscoveryService(bus, opener, cfg.Exclude)
		},
		logpipe.New,
		func() logic.NodeStore {
			return logic.NewMemoryNodeStore()
		},
		func(disc discovery.DiscoveryService, store logic.NodeStore, pipeline *logpipe.Pipeline, bus eventbus.EventBus) *orchestrator.Orchestrator {
			return orchestrator.New(disc, store, pipeline, bus)
		},
		newApp,
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return err
		}
	}
	return nil
}

func injectApp(f flags) (*app, error) {
	container := dig.New()

	if err := registerProviders(container, f); err != nil {
		return nil, err
	}

	var a *app
	if err := container.Invoke(func(resolved *app) {
		a = resolved
	}); err != nil {
		return nil, err
	}
	return a, nil
}
