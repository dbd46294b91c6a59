package config

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: 4400,
		},
		TTSProviders: map[string]TTSProviderCfg{
			"openai": {
				Type:      "openai",
				Model:     "tts-1-hd",
				Voice:     "onyx",
				APIKey:    "${OPENAI_API_KEY}",
				Speed:     1.0,
				Format:    "mp3",
				RateLimit: 8.0,
				Enabled:   true,
			},
		},
		Defaults: DefaultsCfg{
			TTSProvider:     "openai",
			AudioFormat:     "mp3",
			MaxSegmentChars: 4096,
			AudioWorkers:    2,
		},
	}
}
