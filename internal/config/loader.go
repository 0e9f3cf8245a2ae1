package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// envPrefix namespaces the environment variables read by Load.
	envPrefix = "EPRBOT_"

	maxConfigFileSize = 1 << 20 // 1MB
)

// Load reads configuration from an optional YAML file, then overrides with
// EPRBOT_* environment variables, on top of Default().
//
// Environment variables use underscore separators after the prefix and map to
// dotted config paths:
//
//	EPRBOT_STORE_BACKEND        -> store.backend
//	EPRBOT_EMBEDDER_PROVIDER    -> embedder.provider
//	EPRBOT_CACHE_CAPACITY       -> cache.capacity
//
// A missing file is not an error; an unreadable or oversized one is.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if content != nil {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envToPath), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// readConfigFile returns the file content, or nil if the file does not exist.
func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// envToPath maps EPRBOT_STORE_BACKEND to store.backend. The first underscore
// after the prefix separates the section from the field; later underscores
// stay part of the field name (EPRBOT_RETRIEVAL_PER_COLLECTION_K ->
// retrieval.per_collection_k).
func envToPath(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(s, "_", 2)
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + "." + parts[1]
}
