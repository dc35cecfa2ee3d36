package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays ARTIGO_* environment variables. Unset variables keep the current value.
// A nil environment means the process environment.
func parseEnv(c *Config, environment map[string]string) error {
	if err := env.ParseWithOptions(c, env.Options{Environment: environment}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
