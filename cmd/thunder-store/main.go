package main

import (
	"context"
	"os"

	"github.com/rajithacharith/thunder-sub007/config"
	"github.com/rajithacharith/thunder-sub007/core"
	"github.com/rajithacharith/thunder-sub007/internal/cli"
	"github.com/rajithacharith/thunder-sub007/internal/cli/common"
	"github.com/rajithacharith/thunder-sub007/store"
)

func main() {
	if err := cli.Execute(dependencies()); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func dependencies() cli.Dependencies {
	return cli.Dependencies{
		LoadConfig:       loadConfig,
		OpenEngine:       openEngine,
		CheckDeclarative: checkDeclarative,
	}
}

func exitCodeForError(err error) int {
	return cli.ExitCodeForError(err)
}

func loadConfig(ctx context.Context, configPath string) (config.Engine, error) {
	return core.LoadConfig(ctx, core.BootstrapConfig{ConfigPath: configPath})
}

func openEngine(ctx context.Context, cfg config.Engine, opts common.EngineOptions) (common.Engine, error) {
	engine, err := core.NewEngine(ctx, cfg, engineOptions(opts))
	if err != nil {
		return nil, err
	}
	return engine, nil
}

func checkDeclarative(ctx context.Context, cfg config.Engine, opts common.EngineOptions) (store.SnapshotSummary, error) {
	return core.CheckDeclarative(ctx, cfg, engineOptions(opts))
}

func engineOptions(opts common.EngineOptions) core.EngineOptions {
	return core.EngineOptions{Logger: opts.Logger, Registerer: opts.Registerer}
}
