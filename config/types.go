package config

import (
	"sort"
	"time"
)

const (
	ConfigFileEnvVar        = "THUNDER_STORE_CONFIG"
	DatabasePathEnvVar      = "THUNDER_STORE_DATABASE_PATH"
	DeclarativeDirEnvVar    = "THUNDER_STORE_DECLARATIVE_DIR"
	DefaultConfigPath       = "~/.thunder/store.yaml"
	DefaultWatchDebounce    = 500 * time.Millisecond
	DefaultOperationTimeout = 10 * time.Second
)

// StoreMode selects where a resource type's records come from.
type StoreMode string

const (
	StoreModeMutable     StoreMode = "mutable"
	StoreModeDeclarative StoreMode = "declarative"
	StoreModeComposite   StoreMode = "composite"
)

func (m StoreMode) Valid() bool {
	switch m {
	case StoreModeMutable, StoreModeDeclarative, StoreModeComposite:
		return true
	default:
		return false
	}
}

// UsesDatabase reports whether the mode reads or writes the mutable backend.
func (m StoreMode) UsesDatabase() bool {
	return m == StoreModeMutable || m == StoreModeComposite
}

// UsesDeclarative reports whether the mode reads declarative files.
func (m StoreMode) UsesDeclarative() bool {
	return m == StoreModeDeclarative || m == StoreModeComposite
}

// StoreModeConfig maps resource type names to their store mode. It is fixed
// for the lifetime of a running engine.
type StoreModeConfig map[string]StoreMode

// Types returns the configured resource types in lexical order.
func (c StoreModeConfig) Types() []string {
	types := make([]string, 0, len(c))
	for resourceType := range c {
		types = append(types, resourceType)
	}
	sort.Strings(types)
	return types
}

// TypesWith returns the sorted resource types whose mode satisfies keep.
func (c StoreModeConfig) TypesWith(keep func(StoreMode) bool) []string {
	types := make([]string, 0, len(c))
	for _, resourceType := range c.Types() {
		if keep(c[resourceType]) {
			types = append(types, resourceType)
		}
	}
	return types
}

func (c StoreModeConfig) Clone() StoreModeConfig {
	cloned := make(StoreModeConfig, len(c))
	for key, value := range c {
		cloned[key] = value
	}
	return cloned
}

type Engine struct {
	Database    Database        `yaml:"database,omitempty"`
	Declarative Declarative     `yaml:"declarative,omitempty"`
	Resources   StoreModeConfig `yaml:"resources"`
	// OperationTimeout bounds operations whose caller supplied no deadline.
	OperationTimeout Duration `yaml:"operation-timeout,omitempty"`
}

type Database struct {
	Path string `yaml:"path,omitempty"`
}

type Declarative struct {
	BaseDir       string   `yaml:"base-dir,omitempty"`
	Watch         bool     `yaml:"watch,omitempty"`
	WatchDebounce Duration `yaml:"watch-debounce,omitempty"`
}

// OperationTimeoutOrDefault returns the configured timeout or the default.
func (e Engine) OperationTimeoutOrDefault() time.Duration {
	if e.OperationTimeout > 0 {
		return time.Duration(e.OperationTimeout)
	}
	return DefaultOperationTimeout
}

func (d Declarative) WatchDebounceOrDefault() time.Duration {
	if d.WatchDebounce > 0 {
		return time.Duration(d.WatchDebounce)
	}
	return DefaultWatchDebounce
}
