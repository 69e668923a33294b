package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultDescription = "Simple, practical upgrade designed to make everyday routines feel easier, not more complicated."

// MinSessionSecretLength is the shortest SESSION_SECRET accepted in production.
const MinSessionSecretLength = 32

var ErrWeakSessionSecret = errors.New("SESSION_SECRET must be set to at least 32 bytes in production")

type Config struct {
	AppEnv        string `mapstructure:"APP_ENV"`
	Port          string `mapstructure:"PORT"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	RedisURL      string `mapstructure:"REDIS_URL"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`

	// Values passed through to the browser by /api/config.
	BackendURL     string `mapstructure:"BACKEND_URL"`
	BackendAnonKey string `mapstructure:"BACKEND_ANON_KEY"`
	AllowedEmail   string `mapstructure:"ALLOWED_EMAIL"`

	AdminPassword      string        `mapstructure:"ADMIN_PASSWORD"`
	PublicBaseURL      string        `mapstructure:"PUBLIC_BASE_URL"`
	Timezone           string        `mapstructure:"TIMEZONE"`
	DefaultDescription string        `mapstructure:"DEFAULT_DESCRIPTION"`
	ProductsCacheTTL   time.Duration `mapstructure:"PRODUCTS_CACHE_TTL"`

	MaxMindAccountID  string `mapstructure:"MAXMIND_ACCOUNT_ID"`
	MaxMindLicenseKey string `mapstructure:"MAXMIND_LICENSE_KEY"`
	MaxMindEditionIDs string `mapstructure:"MAXMIND_EDITION_IDS"`
	MaxMindDBPath     string `mapstructure:"GEOIP_DB_PATH"`
}

func LoadConfig() (config Config, err error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	viper.SetDefault("APP_ENV", "local")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_URL", "sqlite://affilink.db")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	// No default; see EnsureSessionSecret.
	_ = viper.BindEnv("SESSION_SECRET")
	viper.SetDefault("BACKEND_URL", "")
	viper.SetDefault("BACKEND_ANON_KEY", "")
	viper.SetDefault("ALLOWED_EMAIL", "")
	viper.SetDefault("ADMIN_PASSWORD", "")
	viper.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	viper.SetDefault("TIMEZONE", "")
	viper.SetDefault("DEFAULT_DESCRIPTION", DefaultDescription)
	viper.SetDefault("PRODUCTS_CACHE_TTL", "5m")
	viper.SetDefault("GEOIP_DB_PATH", "./geoip/GeoLite2-Country.mmdb")
	viper.SetDefault("MAXMIND_ACCOUNT_ID", "")
	viper.SetDefault("MAXMIND_LICENSE_KEY", "")
	viper.SetDefault("MAXMIND_EDITION_IDS", "GeoLite2-Country")

	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	if err != nil {
		log.Printf("unable to decode into struct, %v", err)
		return
	}

	config.PublicBaseURL = strings.TrimRight(config.PublicBaseURL, "/")
	return
}

// EnsureSessionSecret checks the cookie signing key. Production refuses a
// missing or short key; elsewhere a random one is generated and generated is
// true, so sessions do not survive a restart.
func (c *Config) EnsureSessionSecret() (generated bool, err error) {
	if len(c.SessionSecret) >= MinSessionSecretLength {
		return false, nil
	}
	if c.AppEnv == "production" {
		return false, ErrWeakSessionSecret
	}

	key := securecookie.GenerateRandomKey(MinSessionSecretLength)
	if key == nil {
		return false, fmt.Errorf("generate session secret: no entropy available")
	}
	c.SessionSecret = string(key)
	return true, nil
}

// Location returns the zone used for "today" and "this week" boundaries.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("unknown TIMEZONE %q, using local time", c.Timezone)
		return time.Local
	}
	return loc
}

// IsAllowedEmail reports whether email is the single dashboard administrator.
func (c Config) IsAllowedEmail(email string) bool {
	allowed := strings.TrimSpace(c.AllowedEmail)
	if allowed == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(email), allowed)
}
