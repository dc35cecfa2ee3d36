package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:8080", c.Listen)
	assert.Equal(t, "", c.Base)
	assert.Equal(t, "sqlite3:artigo.sqlite3?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", c.Database)
	assert.Equal(t, 24*time.Hour, c.TokenLifetime)
	assert.Equal(t, 12*time.Hour, c.SessionIdle)
	assert.Equal(t, 720*time.Hour, c.SessionLifetime)
	assert.Equal(t, 3*time.Second, c.GateTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.False(t, c.SkipIndexes)
	assert.NoError(t, c.Validate())
}

func TestLoad_NoSources(t *testing.T) {
	c, err := Load("artigo", nil, map[string]string{}, nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, c)
}

func writeIni(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artigo.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Precedence(t *testing.T) {
	path := writeIni(t, `
listen = 0.0.0.0:9000
db = sqlite3:/tmp/ini.sqlite3
token-lifetime = 2h
skip-indexes = true
page-size = 5
`)

	environment := map[string]string{
		"ARTIGO_DB":        "sqlite3:/tmp/env.sqlite3",
		"ARTIGO_LOG_LEVEL": "debug",
	}

	c, err := Load("artigo", []string{"-config", path, "-log-level", "warn"}, environment, nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", c.Listen, "ini overrides default")
	assert.Equal(t, "sqlite3:/tmp/env.sqlite3", c.Database, "env overrides ini")
	assert.Equal(t, "warn", c.LogLevel, "flag overrides env")
	assert.Equal(t, 2*time.Hour, c.TokenLifetime)
	assert.True(t, c.SkipIndexes)
	assert.Equal(t, 5, c.PageSize)
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	environment := map[string]string{"ARTIGO_LISTEN": "127.0.0.1:7000"}

	c, err := Load("artigo", []string{"-base", "/blog"}, environment, nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", c.Listen)
	assert.Equal(t, "/blog", c.Base)
}

func TestLoad_ExtraFlags(t *testing.T) {
	var user string
	var disable bool

	c, err := Load("init", []string{"-user", "a@example.com", "-disable", "-db", "memory:"}, map[string]string{}, func(fs *flag.FlagSet) {
		fs.StringVar(&user, "user", "", "")
		fs.BoolVar(&disable, "disable", false, "")
	})
	require.NoError(t, err)

	assert.Equal(t, "a@example.com", user)
	assert.True(t, disable)
	assert.Equal(t, "memory:", c.Database)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("artigo", []string{"-nope"}, map[string]string{}, nil)
	assert.Error(t, err, "unknown flag")

	_, err = Load("artigo", []string{"-config", filepath.Join(t.TempDir(), "missing.ini")}, map[string]string{}, nil)
	assert.Error(t, err, "missing file")

	path := writeIni(t, "token-lifetime = soon\n")
	_, err = Load("artigo", []string{"-config", path}, map[string]string{}, nil)
	assert.Error(t, err, "bad duration")

	_, err = Load("artigo", nil, map[string]string{"ARTIGO_PAGE_SIZE": "many"}, nil)
	assert.Error(t, err, "bad env value")

	_, err = Load("artigo", []string{"-page-size", "-1"}, map[string]string{}, nil)
	assert.Error(t, err, "invalid page size")
}
