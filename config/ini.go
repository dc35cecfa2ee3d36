package config

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/ini.v1"
)

// parseIni overlays the keys of the default section of an INI file. Key names equal the flag names.
//
//	listen = 0.0.0.0:8080
//	db = sqlite3:/var/lib/artigo/artigo.sqlite3
//	token-lifetime = 12h
func parseIni(c *Config, filename string) error {

	file, err := ini.Load(filename)
	if err != nil {
		return fmt.Errorf("load config file: %w", err)
	}

	var data = file.Section("").KeysHash()

	var texts = map[string]*string{
		"listen":    &c.Listen,
		"base":      &c.Base,
		"db":        &c.Database,
		"hmac":      &c.HMACSecret,
		"log-level": &c.LogLevel,
	}
	for key, field := range texts {
		if value, ok := data[key]; ok {
			*field = value
		}
	}

	var durations = map[string]*time.Duration{
		"token-lifetime":   &c.TokenLifetime,
		"session-idle":     &c.SessionIdle,
		"session-lifetime": &c.SessionLifetime,
		"gate-timeout":     &c.GateTimeout,
	}
	for key, field := range durations {
		if value, ok := data[key]; ok {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("config file key %s: %w", key, err)
			}
			*field = d
		}
	}

	var bools = map[string]*bool{
		"skip-indexes":  &c.SkipIndexes,
		"secure-cookie": &c.SecureCookie,
	}
	for key, field := range bools {
		if value, ok := data[key]; ok {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("config file key %s: %w", key, err)
			}
			*field = b
		}
	}

	if value, ok := data["page-size"]; ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config file key page-size: %w", err)
		}
		c.PageSize = n
	}

	return nil
}
