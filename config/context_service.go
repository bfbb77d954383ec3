package config

import "context"

// EngineConfigLoader resolves the engine configuration read once at startup.
type EngineConfigLoader interface {
	Load(ctx context.Context) (Engine, error)
}

type EngineConfigValidator interface {
	Validate(ctx context.Context, cfg Engine) error
}

type EngineConfigService interface {
	EngineConfigLoader
	EngineConfigValidator
}
