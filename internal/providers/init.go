// Package providers wires concrete data providers into a registry.
package providers

import (
	"os"

	"github.com/dartlens/dartlens/internal/provider"
	"github.com/dartlens/dartlens/internal/providers/dart"
)

// RegisterAll registers every built-in provider with the global registry.
// apiKey may be empty; calls then rely on the environment or per-call
// overrides.
func RegisterAll(apiKey string) error {
	return RegisterAllTo(provider.Global(), apiKey)
}

// RegisterAllTo registers every built-in provider with the given registry.
func RegisterAllTo(reg *provider.Registry, apiKey string) error {
	if apiKey == "" {
		apiKey = os.Getenv(dart.EnvAPIKey)
	}
	return reg.Register(dart.New(), map[string]string{"api_key": apiKey})
}
