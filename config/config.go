// Package config assembles the runtime settings of artigo from defaults,
// an optional INI file, ARTIGO_* environment variables and command-line flags,
// in this order of precedence (flags win).
package config

import (
	"flag"
	"fmt"
	"time"
)

// Config holds runtime settings.
type Config struct {
	Listen          string        `env:"ARTIGO_LISTEN"`
	Base            string        `env:"ARTIGO_BASE"` // strip off this prefix from every request and prepend it to every link
	Database        string        `env:"ARTIGO_DB"`   // see github.com/xo/dburl, or "memory:"
	HMACSecret      string        `env:"ARTIGO_HMAC_SECRET"`
	TokenLifetime   time.Duration `env:"ARTIGO_TOKEN_LIFETIME"`
	SessionIdle     time.Duration `env:"ARTIGO_SESSION_IDLE"`
	SessionLifetime time.Duration `env:"ARTIGO_SESSION_LIFETIME"`
	GateTimeout     time.Duration `env:"ARTIGO_GATE_TIMEOUT"`
	LogLevel        string        `env:"ARTIGO_LOG_LEVEL"`
	PageSize        int           `env:"ARTIGO_PAGE_SIZE"` // articles on the home page, 0 means all
	SkipIndexes     bool          `env:"ARTIGO_SKIP_INDEXES"`
	SecureCookie    bool          `env:"ARTIGO_SECURE_COOKIE"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Listen = "127.0.0.1:8080"
	c.Base = ""
	c.Database = "sqlite3:artigo.sqlite3?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	c.HMACSecret = ""
	c.TokenLifetime = 24 * time.Hour
	c.SessionIdle = 12 * time.Hour
	c.SessionLifetime = 720 * time.Hour
	c.GateTimeout = 3 * time.Second
	c.LogLevel = "info"
	c.PageSize = 0
	c.SkipIndexes = false
	c.SecureCookie = false
}

// Load builds a Config by applying defaults, then the INI file given by -config (if any),
// then the environment, and finally the flags which have been set explicitly.
//
// extra may register additional flags on the FlagSet, e.g. for subcommands.
func Load(name string, args []string, environment map[string]string, extra func(*flag.FlagSet)) (*Config, error) {

	cfg := &Config{}
	cfg.LoadDefaults()

	// flags are parsed into a separate Config, so they can be applied last
	var flagged = *cfg
	var iniFile string

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&iniFile, "config", "", "read settings from this INI `file`")
	registerFlags(fs, &flagged)
	if extra != nil {
		extra(fs)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if iniFile != "" {
		if err := parseIni(cfg, iniFile); err != nil {
			return nil, err
		}
	}

	if err := parseEnv(cfg, environment); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		applyFlag(cfg, &flagged, f.Name)
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings which can't work.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is empty")
	}
	if c.Database == "" {
		return fmt.Errorf("database url is empty")
	}
	if c.TokenLifetime <= 0 {
		return fmt.Errorf("token lifetime must be positive, got %s", c.TokenLifetime)
	}
	if c.GateTimeout <= 0 {
		return fmt.Errorf("gate timeout must be positive, got %s", c.GateTimeout)
	}
	if c.PageSize < 0 {
		return fmt.Errorf("page size must not be negative, got %d", c.PageSize)
	}
	return nil
}
