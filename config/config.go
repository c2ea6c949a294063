// Package config wires viper to the registered defaults, RELAYPLAY_* environment variables and the
// TOML file in the config directory.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/relayplay/relayplay/constant"
	"github.com/relayplay/relayplay/filesystem"
	"github.com/relayplay/relayplay/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer turns a key such as relay.control_interval into the RELAY_CONTROL_INTERVAL suffix.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

const fileType = "toml"

// File is where the configuration is read from and written to.
func File() string {
	return filepath.Join(where.Config(), fmt.Sprintf("%s.%s", constant.App, fileType))
}

// Setup loads the configuration. A missing file is not an error.
func Setup() error {
	viper.SetConfigName(constant.App)
	viper.SetConfigType(fileType)
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("read %s: %w", File(), err)
	}

	return nil
}
