package core

import (
	"context"
	"errors"

	"github.com/rajithacharith/thunder-sub007/config"
	"github.com/rajithacharith/thunder-sub007/faults"
	configfile "github.com/rajithacharith/thunder-sub007/internal/providers/config/file"
	"github.com/rajithacharith/thunder-sub007/store"
)

func NewConfigService(opts BootstrapConfig) config.EngineConfigService {
	service := configfile.NewFileEngineConfigService(opts.ConfigPath)
	if opts.LookupEnv != nil {
		service = service.WithLookupEnv(opts.LookupEnv)
	}
	return service
}

func LoadConfig(ctx context.Context, opts BootstrapConfig) (config.Engine, error) {
	return NewConfigService(opts).Load(ctx)
}

// OpenEngine loads the engine config described by bootstrap and builds the
// engine from it.
func OpenEngine(ctx context.Context, bootstrap BootstrapConfig, opts EngineOptions) (*Engine, error) {
	cfg, err := LoadConfig(ctx, bootstrap)
	if err != nil {
		return nil, err
	}
	return NewEngine(ctx, cfg, opts)
}

// Close releases the database and stops the declarative watcher, if running.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	var errs []error
	for idx := len(e.closers) - 1; idx >= 0; idx-- {
		if err := e.closers[idx](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	if len(errs) > 0 {
		return faults.NewTypedError(faults.InternalError, "failed to close engine", errors.Join(errs...))
	}
	return nil
}

// Store is the resource operation surface of the engine.
func (e *Engine) Store() store.Store {
	return e.Router
}

// ReloadDeclarative re-scans the declarative directories now. On failure the
// previous snapshot keeps serving.
func (e *Engine) ReloadDeclarative(ctx context.Context) (store.SnapshotSummary, error) {
	if e.declarative.holder == nil {
		return store.SnapshotSummary{}, nil
	}
	if _, err := e.declarative.holder.Reload(ctx); err != nil {
		return store.SnapshotSummary{}, err
	}
	return e.DeclarativeSummary(), nil
}

func (e *Engine) DeclarativeSummary() store.SnapshotSummary {
	return e.declarative.summary(e.Config.Resources)
}

// WatchDeclarative starts reloading the declarative snapshot when its files
// change. The watcher stops when ctx ends or the engine is closed.
func (e *Engine) WatchDeclarative(ctx context.Context) error {
	return e.declarative.watch(ctx, e.Config.Declarative.WatchDebounceOrDefault(), e.logger, func(stop func() error) {
		e.closers = append(e.closers, stop)
	})
}

// CheckDeclarative loads the declarative directories named by cfg without
// opening the database.
func CheckDeclarative(ctx context.Context, cfg config.Engine, opts EngineOptions) (store.SnapshotSummary, error) {
	runtime, err := buildDeclarative(ctx, cfg, opts.Logger, nil)
	if err != nil {
		return store.SnapshotSummary{}, err
	}
	return runtime.summary(cfg.Resources), nil
}
