package server

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/elskow/reportdesk/internal/config"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

func LoadConfig() (*config.AppConfig, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = EnvDevelopment
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath("./config/server")

	v.SetDefault("auth.min_password_length", 6)
	v.SetDefault("auth.session_cookie_ttl", 7*24*time.Hour)
	v.SetDefault("auth.claim_cookie_ttl", 365*24*time.Hour)
	v.SetDefault("auth.device_cookie_ttl", 365*24*time.Hour)
	v.SetDefault("auth.login_rate_limit", 5)
	v.SetDefault("auth.login_rate_window", time.Minute)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config config.AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Load environment-specific configurations
	if envSettings := v.GetStringMap(fmt.Sprintf("server.%s", env)); len(envSettings) > 0 {
		if err := v.UnmarshalKey(fmt.Sprintf("server.%s", env), &config.Server); err != nil {
			return nil, fmt.Errorf("error unmarshaling env config: %w", err)
		}
	}

	return &config, nil
}
