package config

import (
	"flag"
)

// registerFlags binds the settings to fs. The current values of c are the flag defaults.
func registerFlags(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.Listen, "listen", c.Listen, "serve HTTP content at this `ip:port`")
	// Your reverse proxy must not strip the prefix.
	fs.StringVar(&c.Base, "base", c.Base, "strip off this `prefix` from every HTTP request and prepend it to every link")
	fs.StringVar(&c.Database, "db", c.Database, "sql database `url`, see github.com/xo/dburl, or memory:")
	fs.StringVar(&c.HMACSecret, "hmac", c.HMACSecret, "use this secret HMAC `key` for signing session tokens")
	fs.DurationVar(&c.TokenLifetime, "token-lifetime", c.TokenLifetime, "validity of session tokens")
	fs.DurationVar(&c.SessionIdle, "session-idle", c.SessionIdle, "idle timeout of browser sessions")
	fs.DurationVar(&c.SessionLifetime, "session-lifetime", c.SessionLifetime, "absolute lifetime of browser sessions")
	fs.DurationVar(&c.GateTimeout, "gate-timeout", c.GateTimeout, "how long the admin area waits for the session state")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fs.IntVar(&c.PageSize, "page-size", c.PageSize, "number of articles on the home page, 0 means all")
	fs.BoolVar(&c.SkipIndexes, "skip-indexes", c.SkipIndexes, "don't declare the document store indexes")
	fs.BoolVar(&c.SecureCookie, "secure-cookie", c.SecureCookie, "send the session cookie over https only")
}

// applyFlag copies the field behind the named flag from src to dst.
func applyFlag(dst, src *Config, name string) {
	switch name {
	case "listen":
		dst.Listen = src.Listen
	case "base":
		dst.Base = src.Base
	case "db":
		dst.Database = src.Database
	case "hmac":
		dst.HMACSecret = src.HMACSecret
	case "token-lifetime":
		dst.TokenLifetime = src.TokenLifetime
	case "session-idle":
		dst.SessionIdle = src.SessionIdle
	case "session-lifetime":
		dst.SessionLifetime = src.SessionLifetime
	case "gate-timeout":
		dst.GateTimeout = src.GateTimeout
	case "log-level":
		dst.LogLevel = src.LogLevel
	case "page-size":
		dst.PageSize = src.PageSize
	case "skip-indexes":
		dst.SkipIndexes = src.SkipIndexes
	case "secure-cookie":
		dst.SecureCookie = src.SecureCookie
	}
}
