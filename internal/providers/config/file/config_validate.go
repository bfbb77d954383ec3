package file

import (
	"fmt"
	"strings"

	"github.com/rajithacharith/thunder-sub007/config"
	"github.com/rajithacharith/thunder-sub007/resource"
)

func validateConfig(cfg config.Engine) error {
	if len(cfg.Resources) == 0 {
		return validationError("resources must configure at least one resource type", nil)
	}

	needsDatabase := false
	needsDeclarative := false
	for _, resourceType := range cfg.Resources.Types() {
		if _, err := resource.NormalizeTypeName(resourceType); err != nil {
			return validationError(fmt.Sprintf("invalid resource type %q", resourceType), err)
		}
		mode := cfg.Resources[resourceType]
		if !mode.Valid() {
			return validationError(
				fmt.Sprintf("resource type %q has invalid store mode %q: use mutable, declarative, or composite", resourceType, mode),
				nil,
			)
		}
		needsDatabase = needsDatabase || mode.UsesDatabase()
		needsDeclarative = needsDeclarative || mode.UsesDeclarative()
	}

	if needsDatabase && cfg.Database.Path == "" {
		return validationError("database.path is required when a resource type uses mutable or composite mode", nil)
	}
	if needsDeclarative && cfg.Declarative.BaseDir == "" {
		return validationError("declarative.base-dir is required when a resource type uses declarative or composite mode", nil)
	}
	if cfg.OperationTimeout < 0 {
		return validationError("operation-timeout must not be negative", nil)
	}
	if cfg.Declarative.WatchDebounce < 0 {
		return validationError("declarative.watch-debounce must not be negative", nil)
	}

	return nil
}

func normalizeConfig(cfg config.Engine) (config.Engine, error) {
	cfg.Database.Path = strings.TrimSpace(cfg.Database.Path)
	cfg.Declarative.BaseDir = strings.TrimSpace(cfg.Declarative.BaseDir)

	resources := make(config.StoreModeConfig, len(cfg.Resources))
	for resourceType, mode := range cfg.Resources {
		resources[strings.TrimSpace(resourceType)] = config.StoreMode(strings.ToLower(strings.TrimSpace(string(mode))))
	}
	cfg.Resources = resources

	var err error
	if cfg.Database.Path, err = expandHome(cfg.Database.Path); err != nil {
		return config.Engine{}, err
	}
	if cfg.Declarative.BaseDir, err = expandHome(cfg.Declarative.BaseDir); err != nil {
		return config.Engine{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg config.Engine, lookupEnv func(string) (string, bool)) config.Engine {
	if value, ok := lookupEnv(config.DatabasePathEnvVar); ok && strings.TrimSpace(value) != "" {
		cfg.Database.Path = value
	}
	if value, ok := lookupEnv(config.DeclarativeDirEnvVar); ok && strings.TrimSpace(value) != "" {
		cfg.Declarative.BaseDir = value
	}
	return cfg
}
