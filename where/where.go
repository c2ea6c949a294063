// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/relayplay/relayplay/constant"
	"github.com/relayplay/relayplay/filesystem"
	"github.com/relayplay/relayplay/key"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "RELAYPLAY_CONFIG_PATH"

// ensureDir creates path if it does not exist yet and returns it.
func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// It can be overridden through the RELAYPLAY_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache resolves the absolute path to the application's persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs resolves the absolute path to the directory used for application diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Screenshots resolves the directory decoder screenshots are moved into.
// The screenshot.dir setting takes precedence when set.
func Screenshots() string {
	if custom := viper.GetString(key.ScreenshotDir); custom != "" {
		return ensureDir(custom)
	}
	return ensureDir(filepath.Join(Config(), "screenshots"))
}

// History resolves the path of the file remembering previously opened relay channels.
func History() string {
	return filepath.Join(Cache(), "channels.json")
}

// Temp resolves a volatile directory for transient artifacts such as decoder screenshots awaiting a move.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
