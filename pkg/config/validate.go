package config

import "fmt"

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	switch c.Client.ReasoningLevel {
	case "", "low", "medium", "high":
	default:
		return fmt.Errorf("client.reasoning_level must be low, medium, high, or empty, got %q", c.Client.ReasoningLevel)
	}

	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout must not be negative, got %s", c.Client.Timeout)
	}

	if c.Mock.Port < 1 || c.Mock.Port > 65535 {
		return fmt.Errorf("mock.port must be between 1 and 65535, got %d", c.Mock.Port)
	}

	switch c.Mock.Auth.Type {
	case "none":
	case "apikey":
		if len(c.Mock.Auth.APIKeys) == 0 {
			return fmt.Errorf("mock.auth.type is apikey but no api_keys are configured")
		}
		for i, k := range c.Mock.Auth.APIKeys {
			if k.Key == "" && k.KeyFile == "" {
				return fmt.Errorf("mock.auth.api_keys[%d] has neither key nor key_file", i)
			}
		}
	case "jwt":
		if c.Mock.Auth.JWT.Secret == "" && c.Mock.Auth.JWT.SecretFile == "" {
			return fmt.Errorf("mock.auth.type is jwt but no secret is configured")
		}
	default:
		return fmt.Errorf("mock.auth.type must be none, apikey, or jwt, got %q", c.Mock.Auth.Type)
	}

	if c.Mock.Metrics.Enabled && c.Mock.Metrics.Path == "" {
		return fmt.Errorf("mock.metrics.path must not be empty when metrics are enabled")
	}

	return nil
}
