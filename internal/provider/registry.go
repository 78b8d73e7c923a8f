package provider

import (
	"context"
	"sort"
	"sync"
)

// Registry holds all registered providers and routes fetch requests.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	defaults  map[ModelType]string // model -> default provider name
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		defaults:  make(map[ModelType]string),
	}
}

var (
	globalRegistry *Registry
	globalOnce     sync.Once
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Register initializes the provider with credentials and adds it to the
// registry. The first provider registered for a model type becomes its
// default.
func (r *Registry) Register(p Provider, credentials map[string]string) error {
	if err := p.Init(credentials); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Info().Name
	r.providers[name] = p
	for _, m := range p.SupportedModels() {
		if _, ok := r.defaults[m]; !ok {
			r.defaults[m] = name
		}
	}
	return nil
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return p, nil
}

// List returns info for all registered providers, sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, p := range r.providers {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ProvidersFor returns the names of all providers that support the given
// model type, sorted.
func (r *Registry) ProvidersFor(model ModelType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, p := range r.providers {
		if p.Fetcher(model) != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// DefaultProvider returns the default provider name for a model type.
func (r *Registry) DefaultProvider(model ModelType) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.defaults[model]
	return name, ok
}

// SetDefault overrides the default provider for a model type.
func (r *Registry) SetDefault(model ModelType, providerName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[providerName]
	if !ok {
		return &ErrProviderNotFound{Name: providerName}
	}
	if p.Fetcher(model) == nil {
		return &ErrModelNotSupported{Provider: providerName, Model: model}
	}
	r.defaults[model] = providerName
	return nil
}

// Fetch routes a lookup to the appropriate provider. If params carries a
// "provider" key that provider is used, otherwise the model's default.
func (r *Registry) Fetch(ctx context.Context, model ModelType, params QueryParams) (*FetchResult, error) {
	name := params[ParamProvider]
	if name == "" {
		var ok bool
		name, ok = r.DefaultProvider(model)
		if !ok {
			return nil, &ErrModelNotSupported{Provider: "(none)", Model: model}
		}
	}

	p, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	f := p.Fetcher(model)
	if f == nil {
		return nil, &ErrModelNotSupported{Provider: name, Model: model}
	}
	if err := ValidateParams(params, f.RequiredParams()); err != nil {
		return nil, err
	}
	return f.Fetch(ctx, params)
}

// ModelCoverage reports, for each model type, which providers support it.
func (r *Registry) ModelCoverage() map[ModelType][]string {
	coverage := make(map[ModelType][]string, len(AllModels))
	for _, m := range AllModels {
		coverage[m] = r.ProvidersFor(m)
	}
	return coverage
}
