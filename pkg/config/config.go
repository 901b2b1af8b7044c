// Package config provides unified configuration for the Spark client CLI
// and the mock backend.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (SPARK_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the Spark client tooling.
type Config struct {
	Client Client `yaml:"client"`
	Mock   Mock   `yaml:"mock"`
	Debug  Debug  `yaml:"debug"`
}

// Client holds settings for connecting to the Spark API.
type Client struct {
	BaseURL        string        `yaml:"base_url"`        // default: the well-known Spark host
	APIKey         string        `yaml:"api_key"`         // required for real calls
	APIKeyFile     string        `yaml:"api_key_file"`    // _file variant for api_key
	Timeout        time.Duration `yaml:"timeout"`         // default: 120s, buffered mode only
	ShowThinking   bool          `yaml:"show_thinking"`   // include reasoning in results
	ReasoningLevel string        `yaml:"reasoning_level"` // "", "low", "medium", "high"
}

// Mock holds settings for the mock Spark backend.
type Mock struct {
	Port    int     `yaml:"port"` // default: 9090
	Metrics Metrics `yaml:"metrics"`
	Auth    Auth    `yaml:"auth"`
}

// Metrics holds Prometheus metrics endpoint settings.
type Metrics struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Auth holds mock backend authentication settings.
type Auth struct {
	Type    string   `yaml:"type"`     // "none", "apikey", or "jwt", default: "none"
	APIKeys []APIKey `yaml:"api_keys"` // key entries for type=apikey
	JWT     JWT      `yaml:"jwt"`      // settings for type=jwt
}

// APIKey describes a single API key entry.
type APIKey struct {
	Key     string `yaml:"key"`
	KeyFile string `yaml:"key_file"` // _file variant for key
	Subject string `yaml:"subject"`
}

// JWT describes HS256 bearer-token validation settings.
type JWT struct {
	Secret     string `yaml:"secret"`
	SecretFile string `yaml:"secret_file"` // _file variant for secret
	Issuer     string `yaml:"issuer"`      // optional iss check
	Audience   string `yaml:"audience"`    // optional aud check
}

// Debug holds logging settings (see the debug package).
type Debug struct {
	Categories string `yaml:"categories"` // comma-separated, e.g. "client,streaming"
	Level      string `yaml:"level"`      // ERROR|WARN|INFO|DEBUG|TRACE
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Client: Client{
			Timeout: 120 * time.Second,
		},
		Mock: Mock{
			Port: 9090,
			Metrics: Metrics{
				Enabled: true,
				Path:    "/metrics",
			},
			Auth: Auth{
				Type: "none",
			},
		},
	}
}
