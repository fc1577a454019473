package provider

import (
	"context"
	"fmt"
)

// Config carries the credentials that determine variant availability.
type Config struct {
	OpenAIKey      string
	HuggingFaceKey string
	ArkAPIKey      string
	ArkModel       string
	ArkBaseURL     string
	ArkRegion      string
}

// Registry owns the closed set of provider variants and default selection.
// Extension happens by adding a variant here, not by subclassing anything.
type Registry struct {
	providers map[string]Provider
	priority  []string
	fallback  Provider
}

// New builds every variant up front; availability depends only on which
// credentials were supplied, so selection is stable for a given environment.
func New(ctx context.Context, cfg Config) *Registry {
	fallback := NewMock()
	providers := map[string]Provider{
		openAIName:      NewOpenAI(cfg.OpenAIKey),
		huggingFaceName: NewHuggingFace(cfg.HuggingFaceKey),
		arkName:         NewArk(ctx, cfg.ArkAPIKey, cfg.ArkModel, cfg.ArkBaseURL, cfg.ArkRegion),
		mockName:        fallback,
	}
	return &Registry{
		providers: providers,
		priority:  []string{openAIName, huggingFaceName, arkName},
		fallback:  fallback,
	}
}

// Resolve returns the provider registered under name.
func (r *Registry) Resolve(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// Fallback returns the always-available synthetic provider.
func (r *Registry) Fallback() Provider { return r.fallback }

// DefaultName prefers the first configured real backend in priority order,
// then the synthetic fallback.
func (r *Registry) DefaultName() string {
	for _, name := range r.priority {
		if r.providers[name].Available() {
			return name
		}
	}
	return r.fallback.Name()
}

// Names lists the backends a client may usefully select: available real
// providers, or just the fallback when none are configured.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.priority))
	for _, name := range r.priority {
		if r.providers[name].Available() {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		names = append(names, r.fallback.Name())
	}
	return names
}
