package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, SPARK_CONFIG env, ./spark.yaml, /etc/spark/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. SPARK_CONFIG environment variable
// 3. ./spark.yaml in the current directory
// 4. /etc/spark/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("SPARK_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"spark.yaml",
		"/etc/spark/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SPARK_BASE_URL"); v != "" {
		cfg.Client.BaseURL = v
	}
	if v := os.Getenv("SPARK_API_KEY"); v != "" {
		cfg.Client.APIKey = v
	}
	if v := os.Getenv("SPARK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Client.Timeout = d
		}
	}
	if v := os.Getenv("SPARK_REASONING_LEVEL"); v != "" {
		cfg.Client.ReasoningLevel = v
	}
	if v := os.Getenv("SPARK_SHOW_THINKING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Client.ShowThinking = b
		}
	}
	if v := os.Getenv("SPARK_MOCK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Mock.Port = port
		}
	}
	if v := os.Getenv("SPARK_MOCK_AUTH_TYPE"); v != "" {
		cfg.Mock.Auth.Type = v
	}
	if v := os.Getenv("SPARK_MOCK_JWT_SECRET"); v != "" {
		cfg.Mock.Auth.JWT.Secret = v
	}

	// SPARK_MOCK_API_KEYS: JSON array of API key configs.
	if v := os.Getenv("SPARK_MOCK_API_KEYS"); v != "" {
		keys, err := parseAPIKeysJSON(v)
		if err == nil && len(keys) > 0 {
			cfg.Mock.Auth.APIKeys = keys
		}
	}
}

// parseAPIKeysJSON parses a JSON array of API key configurations.
func parseAPIKeysJSON(jsonStr string) ([]APIKey, error) {
	var keys []APIKey
	if err := json.Unmarshal([]byte(jsonStr), &keys); err != nil {
		return nil, fmt.Errorf("parsing API keys JSON: %w", err)
	}
	return keys, nil
}

// resolveFileReferences reads _file fields and populates the corresponding
// value fields. For each field ending in _file, if the value field is empty
// and the file field is set, the file is read, whitespace is trimmed, and
// the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// client.api_key_file -> client.api_key
	if cfg.Client.APIKeyFile != "" && cfg.Client.APIKey == "" {
		val, err := readSecretFile(cfg.Client.APIKeyFile)
		if err != nil {
			return fmt.Errorf("client.api_key_file: %w", err)
		}
		cfg.Client.APIKey = val
	}

	// mock.auth.api_keys[*].key_file -> mock.auth.api_keys[*].key
	for i := range cfg.Mock.Auth.APIKeys {
		if cfg.Mock.Auth.APIKeys[i].KeyFile != "" && cfg.Mock.Auth.APIKeys[i].Key == "" {
			val, err := readSecretFile(cfg.Mock.Auth.APIKeys[i].KeyFile)
			if err != nil {
				return fmt.Errorf("mock.auth.api_keys[%d].key_file: %w", i, err)
			}
			cfg.Mock.Auth.APIKeys[i].Key = val
		}
	}

	// mock.auth.jwt.secret_file -> mock.auth.jwt.secret
	if cfg.Mock.Auth.JWT.SecretFile != "" && cfg.Mock.Auth.JWT.Secret == "" {
		val, err := readSecretFile(cfg.Mock.Auth.JWT.SecretFile)
		if err != nil {
			return fmt.Errorf("mock.auth.jwt.secret_file: %w", err)
		}
		cfg.Mock.Auth.JWT.Secret = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding
// whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
