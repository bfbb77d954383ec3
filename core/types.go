package core

import (
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rajithacharith/thunder-sub007/config"
	"github.com/rajithacharith/thunder-sub007/internal/engine"
	"go.opentelemetry.io/otel/trace"
)

type BootstrapConfig struct {
	// ConfigPath is the explicit engine config file; empty falls back to the
	// environment and then the default path.
	ConfigPath string
	// LookupEnv replaces os.LookupEnv for path resolution and overrides.
	LookupEnv func(string) (string, bool)
}

type EngineOptions struct {
	Logger logr.Logger
	// Registerer receives the engine collectors. Nil leaves them unregistered.
	Registerer prometheus.Registerer
	// TracerProvider receives dispatch spans. Nil uses the global provider.
	TracerProvider trace.TracerProvider
}

// Engine is a running store engine: the router plus the resources it owns.
type Engine struct {
	Config config.Engine
	Router *engine.Router

	closers     []func() error
	declarative declarativeRuntime
	logger      logr.Logger
}
