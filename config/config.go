package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds all configuration for the gateway process. Values are
// read once at startup; no other environment-driven behavior exists.
type ServerConfig struct {
	HTTPPort  string `mapstructure:"HTTP_PORT"`
	PublicURL string `mapstructure:"PUBLIC_URL"` // externally reachable base URL, used to build the callback

	MongoURI    string `mapstructure:"MONGO_URI"` // empty selects the in-memory store (development)
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"` // empty selects the in-memory token cache

	// Identity Provider reached for user resolution and the upstream
	// authentication redirect.
	IDPBaseURL    string `mapstructure:"IDP_BASE_URL"`
	IDPServiceKey string `mapstructure:"IDP_SERVICE_KEY"`
	IDPClientID   string `mapstructure:"IDP_CLIENT_ID"`

	SessionCookieName string `mapstructure:"SESSION_COOKIE_NAME"`

	AuthCodeTTLMin    int `mapstructure:"AUTH_CODE_TTL_MIN"`
	AccessTokenTTLSec int `mapstructure:"ACCESS_TOKEN_TTL_SEC"`

	LogLevel        string `mapstructure:"LOG_LEVEL"`
	LogPretty       bool   `mapstructure:"LOG_PRETTY"`
	OtelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

// LoadConfig reads configuration from an optional yaml file, environment
// variables, and defaults, in that order of precedence.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/oauth-gateway/")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("PUBLIC_URL", "http://localhost:8080")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB_NAME", "oauth_gateway")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("IDP_BASE_URL", "http://localhost:54321")
	v.SetDefault("IDP_SERVICE_KEY", "")
	v.SetDefault("IDP_CLIENT_ID", "oauth-gateway")
	v.SetDefault("SESSION_COOKIE_NAME", "sb-access-token")
	v.SetDefault("AUTH_CODE_TTL_MIN", 10)
	v.SetDefault("ACCESS_TOKEN_TTL_SEC", 3600)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("OTEL_SERVICE_NAME", "oauth-gateway")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, everything has an env var or a
		// default. Anything else is a real read error.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
