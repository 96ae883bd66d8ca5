package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const prefix = "FLEETQUERY"

var conf Config

// Parse reads the configuration file given as parameter.
func Parse(confFile string) (*Config, error) {
	setDefault()

	viper.SetEnvPrefix(prefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	if len(confFile) > 0 {
		viper.SetConfigFile(confFile)

		err := viper.ReadInConfig()
		if err != nil {
			return &conf, fmt.Errorf("failed to read config file %v: %w", confFile, err)
		}
	}

	err := viper.Unmarshal(&conf)
	if err != nil {
		return &conf, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &conf, nil
}

func setDefault() {
	viper.SetDefault("logs.level", 4)
	viper.SetDefault("logs.encoder", EncoderTypeConsole)
	viper.SetDefault("metrics.port", 7777)

	viper.SetDefault("schema.sourceURL", "https://raw.githubusercontent.com/fleetdm/fleet/main/schema/osquery_fleet_schema.json")
	viper.SetDefault("schema.cacheDir", defaultCacheDir())
	viper.SetDefault("schema.cacheTTL", "24h")
	viper.SetDefault("schema.hostCacheTTL", "1h")
	viper.SetDefault("schema.downloadTimeout", "30s")

	viper.SetDefault("query.timeout", "60s")
	viper.SetDefault("query.onlinePageSize", 500)

	viper.SetDefault("valkey.retention", "24h")
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".fleetquery", "cache")
	}

	return filepath.Join(home, ".fleetquery", "cache")
}
