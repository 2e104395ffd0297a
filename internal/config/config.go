package config

import (
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	Port       string `mapstructure:"PORT"`
	BaseURL    string `mapstructure:"BASE_URL"`
	LogFile    string `mapstructure:"LOG_FILE"`
	AdminToken string `mapstructure:"ADMIN_TOKEN"`

	// Config store
	StoreDriver         string `mapstructure:"CONFIG_STORE_DRIVER"`
	EdgeConfigURL       string `mapstructure:"EDGE_CONFIG"`
	EdgeConfigRestURL   string `mapstructure:"EDGE_CONFIG_REST_API_URL"`
	EdgeConfigRestToken string `mapstructure:"EDGE_CONFIG_REST_TOKEN"`
	EdgeConfigTeamID    string `mapstructure:"EDGE_CONFIG_TEAM_ID"`
	RedisURL            string `mapstructure:"REDIS_URL"`
	RedisPassword       string `mapstructure:"REDIS_PASSWORD"`
	DatabaseURL         string `mapstructure:"DATABASE_URL"`

	// Conversion API
	FBPixelAPIToken string `mapstructure:"FB_PIXEL_API_TOKEN"`
	FBTestEventCode string `mapstructure:"FB_TEST_EVENT_CODE"`
	FBAPIVersion    string `mapstructure:"FB_API_VERSION"`
	FBGraphURL      string `mapstructure:"FB_GRAPH_URL"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

var envKeys = []string{
	"APP_ENV", "PORT", "BASE_URL", "LOG_FILE", "ADMIN_TOKEN",
	"CONFIG_STORE_DRIVER", "EDGE_CONFIG", "EDGE_CONFIG_REST_API_URL",
	"EDGE_CONFIG_REST_TOKEN", "EDGE_CONFIG_TEAM_ID", "REDIS_URL",
	"REDIS_PASSWORD", "DATABASE_URL", "FB_PIXEL_API_TOKEN",
	"FB_TEST_EVENT_CODE", "FB_API_VERSION", "FB_GRAPH_URL",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

func LoadConfig() (config Config, err error) {
	v := viper.New()
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("PORT", "8080")
	v.SetDefault("CONFIG_STORE_DRIVER", "memory")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("DATABASE_URL", "sqlite://pixelgate.db")
	v.SetDefault("FB_API_VERSION", "v18.0")
	v.SetDefault("FB_GRAPH_URL", "https://graph.facebook.com")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	v.AutomaticEnv()
	// Unmarshal only sees keys viper already knows about.
	for _, key := range envKeys {
		if err = v.BindEnv(key); err != nil {
			return
		}
	}

	err = v.Unmarshal(&config)
	if err != nil {
		log.Printf("unable to decode into struct, %v", err)
		return
	}

	config.StoreDriver = strings.ToLower(strings.TrimSpace(config.StoreDriver))
	return
}

var leadingEquals = regexp.MustCompile(`^\s*=`)

// RestBaseURL cleans up EDGE_CONFIG_REST_API_URL: a stray leading "=" from
// shell assignment and a trailing "/items" are both tolerated.
func (c Config) RestBaseURL() (*url.URL, error) {
	if c.EdgeConfigRestURL == "" {
		return nil, fmt.Errorf("EDGE_CONFIG_REST_API_URL not set (expected https://api.vercel.com/v1/edge-config/<id>)")
	}
	cleaned := strings.TrimSpace(leadingEquals.ReplaceAllString(c.EdgeConfigRestURL, ""))
	cleaned = strings.TrimSuffix(strings.TrimSuffix(cleaned, "/"), "/items")

	base, err := url.Parse(cleaned)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("EDGE_CONFIG_REST_API_URL is invalid (%s). Expected full URL like https://api.vercel.com/v1/edge-config/<id>", c.EdgeConfigRestURL)
	}
	return base, nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}
