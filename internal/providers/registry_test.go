package providers

import (
	"testing"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	mock := NewMockTTS()

	r.Register("mock", mock)

	if !r.Has("mock") {
		t.Fatal("registry should have mock provider")
	}
	got, err := r.Get("mock")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != mock {
		t.Fatal("registry returned a different provider")
	}
	if _, err := r.Get("missing"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewRegistryFromConfig(t *testing.T) {
	r := NewRegistryFromConfig(RegistryConfig{
		TTSProviders: map[string]TTSProviderConfig{
			"openai":   {Type: "openai", APIKey: "key", Enabled: true},
			"disabled": {Type: "openai", APIKey: "key", Enabled: false},
			"no-key":   {Type: "openai", Enabled: true},
			"unknown":  {Type: "never-heard-of-it", APIKey: "key", Enabled: true},
		},
	})

	if !r.Has("openai") {
		t.Error("enabled openai provider should be registered")
	}
	for _, name := range []string{"disabled", "no-key", "unknown"} {
		if r.Has(name) {
			t.Errorf("provider %q should not be registered", name)
		}
	}
}

func TestRegistryReload(t *testing.T) {
	r := NewRegistryFromConfig(RegistryConfig{
		TTSProviders: map[string]TTSProviderConfig{
			"openai": {Type: "openai", APIKey: "key", Enabled: true},
		},
	})

	r.Reload(RegistryConfig{
		TTSProviders: map[string]TTSProviderConfig{
			"second": {Type: "openai", APIKey: "key2", Enabled: true},
		},
	})

	if r.Has("openai") {
		t.Error("dropped provider should be unregistered after reload")
	}
	if !r.Has("second") {
		t.Error("new provider should be registered after reload")
	}
	if names := r.List(); len(names) != 1 {
		t.Errorf("registry lists %v, want one provider", names)
	}
}
