package providers

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds TTS providers. It supports config-driven instantiation,
// hot reload, and thread-safe access.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]TTSProvider
	logger    *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]TTSProvider),
		logger:    slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register registers a TTS provider by name.
func (r *Registry) Register(name string, provider TTSProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
	if r.logger != nil {
		r.logger.Info("registered TTS provider", "name", name)
	}
}

// Get returns a TTS provider by name.
func (r *Registry) Get(name string) (TTSProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("TTS provider not found: %s", name)
	}
	return provider, nil
}

// Has checks if a TTS provider is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[name]
	return ok
}

// List returns all registered provider names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// RegistryConfig defines the providers to instantiate from config.
type RegistryConfig struct {
	// TTSProviders maps provider names to their config
	TTSProviders map[string]TTSProviderConfig
}

// TTSProviderConfig matches config.TTSProviderCfg with resolved API key.
type TTSProviderConfig struct {
	Type      string
	Model     string
	Voice     string
	APIKey    string // Resolved API key
	Speed     float64
	Format    string
	RateLimit float64 // Requests per second
	Enabled   bool
}

// NewRegistryFromConfig creates a registry with providers based on
// configuration. Only enabled providers with valid API keys are registered.
func NewRegistryFromConfig(cfg RegistryConfig) *Registry {
	r := NewRegistry()
	for name, provCfg := range cfg.TTSProviders {
		if !provCfg.Enabled || provCfg.APIKey == "" {
			continue
		}
		if provider := createTTSProvider(provCfg); provider != nil {
			r.providers[name] = provider
		}
	}
	return r
}

// Reload updates the registry based on new configuration. Providers that are
// no longer configured are unregistered; changed ones are recreated.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool)
	for name, provCfg := range cfg.TTSProviders {
		if !provCfg.Enabled || provCfg.APIKey == "" {
			continue
		}
		want[name] = true

		// Recreate unconditionally; TTS clients are cheap and stateless
		// beyond their rate limiter.
		if provider := createTTSProvider(provCfg); provider != nil {
			_, existed := r.providers[name]
			r.providers[name] = provider
			if r.logger != nil {
				if existed {
					r.logger.Info("updated TTS provider", "name", name, "type", provCfg.Type)
				} else {
					r.logger.Info("registered TTS provider", "name", name, "type", provCfg.Type)
				}
			}
		}
	}

	for name := range r.providers {
		if !want[name] {
			delete(r.providers, name)
			if r.logger != nil {
				r.logger.Info("unregistered TTS provider", "name", name)
			}
		}
	}
}

// createTTSProvider creates a TTS client based on provider type.
func createTTSProvider(cfg TTSProviderConfig) TTSProvider {
	switch cfg.Type {
	case "openai":
		return NewOpenAITTSClient(OpenAITTSConfig{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			Voice:     cfg.Voice,
			Speed:     cfg.Speed,
			RateLimit: cfg.RateLimit,
		})
	default:
		return nil
	}
}
