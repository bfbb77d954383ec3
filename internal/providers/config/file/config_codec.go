package file

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rajithacharith/thunder-sub007/config"
	"go.yaml.in/yaml/v3"
)

func decodeConfigFile(path string) (config.Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config.Engine{}, err
	}
	return decodeConfig(data)
}

func decodeConfig(data []byte) (config.Engine, error) {
	var cfg config.Engine

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return config.Engine{}, validationError("invalid engine config yaml", err)
	}

	return cfg, nil
}

func resolveConfigPath(explicitPath string, lookupEnv func(string) (string, bool)) (string, error) {
	path := strings.TrimSpace(explicitPath)
	if path == "" {
		if value, ok := lookupEnv(config.ConfigFileEnvVar); ok {
			path = strings.TrimSpace(value)
		}
	}
	if path == "" {
		path = config.DefaultConfigPath
	}

	expanded, err := expandHome(path)
	if err != nil {
		return "", err
	}

	cleanPath := filepath.Clean(expanded)
	if cleanPath == "." {
		return "", validationError("engine config path is invalid", errors.New("resolved to current directory"))
	}
	return cleanPath, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", internalError("failed to resolve user home directory", err)
	}
	if path == "~" {
		return homeDir, nil
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~/")), nil
}
