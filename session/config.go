package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/npillmayer/schuko"
)

// DefaultAppKey names the cache directory if no app key is configured.
const DefaultAppKey = "thaifix"

// Config holds the settings of an editing session.
type Config struct {
	AppKey   string // application key, names the cache directory
	CacheDir string // directory for session state and per-asset pair lists
}

// ConfigFrom reads a session configuration from keys "app-key" and
// "cache-dir". Missing keys are left empty and get defaults from
// (Config).Normalize.
func ConfigFrom(conf schuko.Configuration) Config {
	var c Config
	if conf == nil {
		return c
	}
	if conf.IsSet("app-key") {
		c.AppKey = conf.GetString("app-key")
	}
	if conf.IsSet("cache-dir") {
		c.CacheDir = conf.GetString("cache-dir")
	}
	return c
}

// Normalize fills in defaults. The default cache directory is the app key
// within the user's cache directory.
func (c Config) Normalize() (Config, error) {
	if c.AppKey == "" {
		c.AppKey = DefaultAppKey
	}
	if c.CacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return c, fmt.Errorf("cannot determine cache directory: %w", err)
		}
		c.CacheDir = filepath.Join(base, c.AppKey)
	}
	return c, nil
}
