package common

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rajithacharith/thunder-sub007/config"
	"github.com/rajithacharith/thunder-sub007/store"
)

// Engine is the running engine as seen by commands.
type Engine interface {
	Store() store.Store
	DeclarativeSummary() store.SnapshotSummary
	ReloadDeclarative(ctx context.Context) (store.SnapshotSummary, error)
	WatchDeclarative(ctx context.Context) error
	Close() error
}

type EngineOptions struct {
	Logger     logr.Logger
	Registerer prometheus.Registerer
}

type CommandDependencies struct {
	LoadConfig       func(ctx context.Context, configPath string) (config.Engine, error)
	OpenEngine       func(ctx context.Context, cfg config.Engine, opts EngineOptions) (Engine, error)
	CheckDeclarative func(ctx context.Context, cfg config.Engine, opts EngineOptions) (store.SnapshotSummary, error)
}

func RequireConfig(ctx context.Context, deps CommandDependencies, globalFlags *GlobalFlags) (config.Engine, error) {
	if deps.LoadConfig == nil {
		return config.Engine{}, ValidationError("engine config loader is not configured", nil)
	}
	configPath := ""
	if globalFlags != nil {
		configPath = globalFlags.Config
	}
	return deps.LoadConfig(ctx, configPath)
}

// RequireEngine loads the engine config and opens the engine. The caller owns
// the returned engine and must close it.
func RequireEngine(ctx context.Context, deps CommandDependencies, globalFlags *GlobalFlags, registerer prometheus.Registerer) (Engine, error) {
	cfg, err := RequireConfig(ctx, deps, globalFlags)
	if err != nil {
		return nil, err
	}
	return OpenEngine(ctx, deps, cfg, registerer)
}

func OpenEngine(ctx context.Context, deps CommandDependencies, cfg config.Engine, registerer prometheus.Registerer) (Engine, error) {
	if deps.OpenEngine == nil {
		return nil, ValidationError("engine is not configured", nil)
	}
	return deps.OpenEngine(ctx, cfg, EngineOptions{
		Logger:     logr.FromContextOrDiscard(ctx),
		Registerer: registerer,
	})
}

func RequireDeclarativeCheck(deps CommandDependencies) (func(context.Context, config.Engine, EngineOptions) (store.SnapshotSummary, error), error) {
	if deps.CheckDeclarative == nil {
		return nil, ValidationError("declarative check is not configured", nil)
	}
	return deps.CheckDeclarative, nil
}
