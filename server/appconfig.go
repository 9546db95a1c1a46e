package server

import (
	"encoding/base64"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/reputrace/social-link/platforms"
)

// AppConfig defines application configuration loaded from files and
// environment. Platform endpoints are baked into the registry defaults; only
// credentials and operational knobs live here.
type AppConfig struct {
	Env     string `koanf:"env"`
	BaseURL string `koanf:"base_url"`

	// HTTPTimeoutSeconds bounds outbound calls to platform endpoints.
	HTTPTimeoutSeconds int `koanf:"http_timeout_seconds"`

	// StateSigningKey switches the state codec to signed JWTs when set.
	StateSigningKey string `koanf:"state_signing_key"`
	// StateTTLMinutes bounds state age at callback; 0 disables the check.
	StateTTLMinutes int `koanf:"state_ttl_minutes"`
	// TokenSealingKey enables at-rest token encryption; base64, 32 bytes.
	TokenSealingKey string `koanf:"token_sealing_key"`

	Database  DatabaseConfig                     `koanf:"database"`
	Valkey    ValkeyConfig                       `koanf:"valkey"`
	Platforms map[string]PlatformCredsConfig     `koanf:"platforms"`
	Endpoints map[string]PlatformEndpointsConfig `koanf:"endpoints"`
}

type DatabaseConfig struct {
	DSN string `koanf:"dsn"`
}

type ValkeyConfig struct {
	Addr   string `koanf:"addr"`
	Prefix string `koanf:"prefix"`
}

type PlatformCredsConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
}

// PlatformEndpointsConfig overrides provider endpoints. Dev and test only;
// production uses the registry defaults.
type PlatformEndpointsConfig struct {
	AuthorizeURL string `koanf:"authorize_url"`
	TokenURL     string `koanf:"token_url"`
	ProfileURL   string `koanf:"profile_url"`
}

// LoadConfig loads configuration. Loading order:
// 1) config/config.yaml (optional, enabled via APP_CONFIG_FILES)
// 2) config/config.<APP_ENV>.yaml (optional), APP_ENV defaults to "local"
// 3) Environment variables with prefix SOCIAL_ mapped using __ as nested
//    separator, e.g. SOCIAL_PLATFORMS__X__CLIENT_ID -> platforms.x.client_id
func LoadConfig() *AppConfig {
	k := koanf.New(".")

	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		configDir = "config"
	}
	loadFiles := strings.EqualFold(os.Getenv("APP_CONFIG_FILES"), "1") || strings.EqualFold(os.Getenv("APP_CONFIG_FILES"), "true")

	envName := os.Getenv("APP_ENV")
	if envName == "" {
		envName = "local"
	}

	if loadFiles {
		for _, name := range []string{"config.yaml", "config." + envName + ".yaml"} {
			path := filepath.Join(configDir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				log.Printf("config: failed loading %s: %v", name, err)
			}
		}
	}

	_ = k.Load(env.Provider("SOCIAL_", "__", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "SOCIAL_")), "__", ".")
	}), nil)

	var c AppConfig
	if err := k.Unmarshal("", &c); err != nil {
		log.Printf("config: unmarshal error: %v", err)
	}
	if c.Env == "" {
		c.Env = envName
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080"
	}
	return &c
}

// HTTPTimeout returns the configured outbound timeout.
func (c *AppConfig) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return platforms.DefaultHTTPTimeout
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// StateTTL returns the configured state max age, 0 when disabled.
func (c *AppConfig) StateTTL() time.Duration {
	if c.StateTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(c.StateTTLMinutes) * time.Minute
}

// SealingKey decodes the token sealing key, nil when unset.
func (c *AppConfig) SealingKey() ([]byte, error) {
	if strings.TrimSpace(c.TokenSealingKey) == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(c.TokenSealingKey)
}

// PlatformCredentials converts the config map to the registry's input shape.
func (c *AppConfig) PlatformCredentials() map[string]platforms.Credentials {
	creds := make(map[string]platforms.Credentials, len(c.Platforms))
	for id, pc := range c.Platforms {
		creds[id] = platforms.Credentials{
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
		}
	}
	return creds
}
