package config

import "time"

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type AuthConfig struct {
	// MinPasswordLength applies to explicit set/change flows only. An empty
	// password always means "no password" and bypasses the threshold.
	MinPasswordLength int           `mapstructure:"min_password_length"`
	SessionCookieTTL  time.Duration `mapstructure:"session_cookie_ttl"`
	ClaimCookieTTL    time.Duration `mapstructure:"claim_cookie_ttl"`
	DeviceCookieTTL   time.Duration `mapstructure:"device_cookie_ttl"`
	LoginRateLimit    int           `mapstructure:"login_rate_limit"`
	LoginRateWindow   time.Duration `mapstructure:"login_rate_window"`
}

// RedisConfig is optional. An empty Addr disables the redis-backed sync bus
// and the login rate limiter.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Redis    RedisConfig    `mapstructure:"redis"`
	CORS     CORSConfig     `mapstructure:"cors"`
}
