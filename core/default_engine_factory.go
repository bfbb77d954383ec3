package core

import (
	"context"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
	"github.com/rajithacharith/thunder-sub007/config"
	"github.com/rajithacharith/thunder-sub007/faults"
	"github.com/rajithacharith/thunder-sub007/internal/engine"
	"github.com/rajithacharith/thunder-sub007/internal/metrics"
	"github.com/rajithacharith/thunder-sub007/internal/providers/declarative"
	sqlitestore "github.com/rajithacharith/thunder-sub007/internal/providers/mutable/sqlite"
	"github.com/rajithacharith/thunder-sub007/store"
)

// NewEngine opens the backends required by cfg, loads the initial declarative
// snapshot and builds the router. A declarative directory that cannot be read
// fails startup.
func NewEngine(ctx context.Context, cfg config.Engine, opts EngineOptions) (*Engine, error) {
	if len(cfg.Resources) == 0 {
		return nil, faults.NewTypedError(faults.ValidationError, "engine config declares no resource types", nil)
	}

	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	collectors, err := metrics.New(opts.Registerer)
	if err != nil {
		return nil, faults.NewTypedError(faults.InternalError, "failed to register engine metrics", err)
	}

	built := &Engine{Config: cfg, logger: logger}
	var strategies engine.Strategies

	var mutable *sqlitestore.Store
	if len(cfg.Resources.TypesWith(config.StoreMode.UsesDatabase)) > 0 {
		mutable, err = sqlitestore.Open(ctx, cfg.Database.Path, sqlitestore.Options{})
		if err != nil {
			return nil, err
		}
		built.closers = append(built.closers, mutable.Close)
		strategies.Mutable = mutable
		logger.V(1).Info("opened mutable store", "path", cfg.Database.Path)
	}

	runtime, err := buildDeclarative(ctx, cfg, logger, collectors)
	if err != nil {
		_ = built.Close()
		return nil, err
	}
	built.declarative = runtime
	if runtime.adapter != nil {
		strategies.Declarative = runtime.adapter
	}

	if mutable != nil && runtime.adapter != nil {
		strategies.Composite = engine.NewCoordinator(mutable, runtime.adapter, engine.CoordinatorOptions{
			Logger:   logger,
			Recorder: collectors,
		})
	}

	router, err := engine.NewRouter(cfg.Resources, strategies, engine.RouterOptions{
		OperationTimeout: cfg.OperationTimeoutOrDefault(),
		Logger:           logger,
		TracerProvider:   opts.TracerProvider,
	})
	if err != nil {
		_ = built.Close()
		return nil, err
	}
	built.Router = router
	return built, nil
}

type declarativeRuntime struct {
	holder  *declarative.Holder
	adapter *declarative.Adapter
	dirs    []string
}

func buildDeclarative(ctx context.Context, cfg config.Engine, logger logr.Logger, recorder declarative.Recorder) (declarativeRuntime, error) {
	resourceTypes := cfg.Resources.TypesWith(config.StoreMode.UsesDeclarative)
	if len(resourceTypes) == 0 {
		return declarativeRuntime{}, nil
	}

	holder := declarative.NewHolder(cfg.Declarative.BaseDir, resourceTypes, declarative.HolderOptions{
		Logger:   logger,
		Recorder: recorder,
	})
	if _, err := holder.Reload(ctx); err != nil {
		return declarativeRuntime{}, err
	}

	dirs := make([]string, 0, len(resourceTypes))
	for _, resourceType := range resourceTypes {
		dirs = append(dirs, filepath.Join(cfg.Declarative.BaseDir, resourceType))
	}
	return declarativeRuntime{
		holder:  holder,
		adapter: declarative.NewAdapter(holder),
		dirs:    dirs,
	}, nil
}

func (r declarativeRuntime) summary(modes config.StoreModeConfig) store.SnapshotSummary {
	if r.holder == nil {
		return store.SnapshotSummary{Types: []store.TypeSummary{}}
	}

	snapshot := r.holder.Current()
	resourceTypes := r.holder.ResourceTypes()
	types := make([]store.TypeSummary, 0, len(resourceTypes))
	for _, resourceType := range resourceTypes {
		types = append(types, store.TypeSummary{
			Type:      resourceType,
			Mode:      modes[resourceType],
			Resources: snapshot.Len(resourceType),
			Skipped:   snapshot.Skipped(resourceType),
		})
	}

	return store.SnapshotSummary{
		BaseDir:     r.holder.BaseDir(),
		Digest:      snapshot.Digest().String(),
		LoadedAt:    snapshot.LoadedAt(),
		Types:       types,
		Diagnostics: snapshot.Diagnostics(),
	}
}

func (r declarativeRuntime) watch(
	ctx context.Context,
	debounce time.Duration,
	logger logr.Logger,
	register func(stop func() error),
) error {
	if r.holder == nil {
		return nil
	}

	watcher, err := declarative.NewWatcher(r.holder, r.dirs, debounce, logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	register(func() error {
		watcher.Stop()
		return nil
	})
	return nil
}
