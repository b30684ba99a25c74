package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// ProviderConfig holds the DNS provider type, the managed hosted zone, and
// provider-specific connection settings.
type ProviderConfig struct {
	Provider     string `yaml:"provider"`
	HostedZoneID string `yaml:"hosted_zone_id"`
	// Subdomain is appended to bridge IDs to form record names, e.g. ".apps.example.com".
	Subdomain string `yaml:"subdomain"`
	// Timeout bounds the wait for provider acknowledgement. Zero means the default.
	Timeout  time.Duration     `yaml:"timeout"`
	Settings map[string]string `yaml:"settings"`
}

// LoadProviderConfig reads the DNS provider configuration from the path
// specified by the DNS_PROVIDER_PATH environment variable, defaulting to
// "configs/dns-provider.yaml".
func LoadProviderConfig() (*ProviderConfig, error) {
	path := os.Getenv("DNS_PROVIDER_PATH")
	if path == "" {
		path = "configs/dns-provider.yaml"
	}
	return LoadProviderConfigFromPath(path)
}

// LoadProviderConfigFromPath reads the DNS provider configuration from the
// given file path.
func LoadProviderConfigFromPath(path string) (*ProviderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading provider config file: %w", err)
	}

	var cfg ProviderConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing provider config file: %w", err)
	}

	if cfg.Provider == "" {
		return nil, fmt.Errorf("provider config: missing required field 'provider'")
	}
	if cfg.HostedZoneID == "" {
		return nil, fmt.Errorf("provider config: missing required field 'hosted_zone_id'")
	}
	if cfg.Subdomain == "" {
		return nil, fmt.Errorf("provider config: missing required field 'subdomain'")
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("provider config: timeout must not be negative, got %s", cfg.Timeout)
	}

	// Expand ${ENV_VAR} references in setting values.
	for k, v := range cfg.Settings {
		cfg.Settings[k] = os.ExpandEnv(v)
	}

	return &cfg, nil
}

// LoadShardMapFromEnv reads the shard map from the path specified by the
// SHARD_MAP_PATH environment variable, defaulting to "configs/shards.yaml".
func LoadShardMapFromEnv() (*ShardMap, error) {
	path := os.Getenv("SHARD_MAP_PATH")
	if path == "" {
		path = "configs/shards.yaml"
	}
	return LoadShardMap(path)
}
