package file

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rajithacharith/thunder-sub007/config"
	"github.com/rajithacharith/thunder-sub007/faults"
)

var _ config.EngineConfigService = (*FileEngineConfigService)(nil)

type FileEngineConfigService struct {
	configPath string
	lookupEnv  func(string) (string, bool)
}

func NewFileEngineConfigService(path string) *FileEngineConfigService {
	return &FileEngineConfigService{configPath: path, lookupEnv: os.LookupEnv}
}

// WithLookupEnv replaces the environment lookup used for path resolution and
// overrides.
func (s *FileEngineConfigService) WithLookupEnv(lookupEnv func(string) (string, bool)) *FileEngineConfigService {
	cloned := *s
	if lookupEnv == nil {
		lookupEnv = func(string) (string, bool) { return "", false }
	}
	cloned.lookupEnv = lookupEnv
	return &cloned
}

func (s *FileEngineConfigService) Load(_ context.Context) (config.Engine, error) {
	resolvedPath, err := resolveConfigPath(s.configPath, s.lookupEnv)
	if err != nil {
		return config.Engine{}, err
	}

	cfg, err := decodeConfigFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Engine{}, notFoundError(fmt.Sprintf("engine config %q not found", resolvedPath))
		}
		if faults.IsCategory(err, faults.ValidationError) {
			return config.Engine{}, err
		}
		return config.Engine{}, internalError("failed to read engine config", err)
	}

	cfg, err = normalizeConfig(applyEnvOverrides(cfg, s.lookupEnv))
	if err != nil {
		return config.Engine{}, err
	}
	if err := validateConfig(cfg); err != nil {
		return config.Engine{}, err
	}
	return cfg, nil
}

func (s *FileEngineConfigService) Validate(_ context.Context, cfg config.Engine) error {
	normalized, err := normalizeConfig(cfg)
	if err != nil {
		return err
	}
	return validateConfig(normalized)
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
