package providers

import (
	"testing"

	"github.com/dartlens/dartlens/internal/provider"
	"github.com/dartlens/dartlens/internal/providers/dart"
)

func TestRegisterAllTo(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, "configured-key"); err != nil {
		t.Fatalf("RegisterAllTo failed: %v", err)
	}

	p, err := reg.Get("dart")
	if err != nil {
		t.Fatalf("dart provider not registered: %v", err)
	}
	if got := len(p.SupportedModels()); got != len(provider.AllModels) {
		t.Errorf("dart should cover every model type, got %d of %d", got, len(provider.AllModels))
	}
	for _, m := range provider.AllModels {
		if name, ok := reg.DefaultProvider(m); !ok || name != "dart" {
			t.Errorf("expected dart as default for %s, got %q (ok=%v)", m, name, ok)
		}
	}
}

func TestRegisterAllToFallsBackToEnv(t *testing.T) {
	t.Setenv(dart.EnvAPIKey, "env-key")
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, ""); err != nil {
		t.Fatalf("RegisterAllTo failed: %v", err)
	}

	p, err := reg.Get("dart")
	if err != nil {
		t.Fatal(err)
	}
	dp, ok := p.(*dart.DartProvider)
	if !ok {
		t.Fatalf("unexpected provider type %T", p)
	}
	if dp.ResolveAPIKey("") != "env-key" {
		t.Error("empty configured key should fall back to the environment")
	}
}

func TestRegisterAllUsesGlobalRegistry(t *testing.T) {
	if err := RegisterAll("global-key"); err != nil {
		t.Fatalf("RegisterAll failed: %v", err)
	}
	if _, err := provider.Global().Get("dart"); err != nil {
		t.Errorf("RegisterAll must register with the global registry: %v", err)
	}
}
