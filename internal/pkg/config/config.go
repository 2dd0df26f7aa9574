package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ougirez/regstat/internal/pkg/constants"
	"github.com/spf13/viper"
)

const envConfigPath = "REGSTAT_CONFIG"

// Load reads the optional config file named by REGSTAT_CONFIG and the
// REGSTAT_* environment into the global viper instance.
func Load() error {
	viper.SetDefault(constants.ViperHTTPAddrKey, ":8080")
	viper.SetDefault(constants.ViperCORSOriginsKey, []string{"http://localhost:3000"})
	viper.SetDefault(constants.ViperRefreshIntervalKey, 30*time.Second)
	viper.SetDefault(constants.ViperLogLevelKey, "info")
	viper.SetDefault(constants.ViperNavHistoryKey, 20)
	viper.SetDefault(constants.ViperScreenIdleTTLKey, 30*time.Minute)

	viper.SetEnvPrefix("regstat")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path := os.Getenv(envConfigPath); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("viper.ReadInConfig, path-%s: %w", path, err)
		}
	}

	for _, key := range []string{constants.ViperRefreshIntervalKey, constants.ViperScreenIdleTTLKey} {
		if d := viper.GetDuration(key); d <= 0 {
			return fmt.Errorf("config key %s must be a positive duration, got %s", key, d)
		}
	}

	return nil
}

func RequireString(key string) (string, error) {
	v := viper.GetString(key)
	if v == "" {
		return "", fmt.Errorf("config key %s is empty", key)
	}
	return v, nil
}
