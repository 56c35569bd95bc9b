package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Bridge drivers accepted by BRIDGE_DRIVER.
const (
	BridgeFile     = "file"
	BridgeMemory   = "memory"
	BridgePostgres = "postgres"
)

type Config struct {
	APIURL          string        `mapstructure:"API_URL"`
	Env             string        `mapstructure:"ENV"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LLMPollInterval time.Duration `mapstructure:"LLM_POLL_INTERVAL"`

	BridgeDriver         string `mapstructure:"BRIDGE_DRIVER"`
	BridgeDir            string `mapstructure:"BRIDGE_DIR"`
	BridgeSession        string `mapstructure:"BRIDGE_SESSION"`
	BridgeMemorySessions int    `mapstructure:"BRIDGE_MEMORY_SESSIONS"`
	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	DBMaxConns           int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns           int32  `mapstructure:"DB_MIN_CONNS"`

	DownloadDir string `mapstructure:"DOWNLOAD_DIR"`

	DevServerPort      string   `mapstructure:"DEVSERVER_PORT"`
	DevServerOutputDir string   `mapstructure:"DEVSERVER_OUTPUT_DIR"`
	CORSOrigins        []string `mapstructure:"CORS_ORIGINS"`

	EnterpriseBaseURL      string `mapstructure:"ENTERPRISE_BASE_URL"`
	EnterpriseClientID     string `mapstructure:"ENTERPRISE_CLIENT_ID"`
	EnterpriseClientSecret string `mapstructure:"ENTERPRISE_CLIENT_SECRET"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("API_URL", "http://localhost:8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_TIMEOUT", "0s")
	v.SetDefault("LLM_POLL_INTERVAL", "30s")
	v.SetDefault("BRIDGE_DRIVER", BridgeFile)
	v.SetDefault("BRIDGE_DIR", ".synthfhir/bridge")
	v.SetDefault("BRIDGE_SESSION", "default")
	v.SetDefault("BRIDGE_MEMORY_SESSIONS", 16)
	v.SetDefault("DB_MAX_CONNS", 4)
	v.SetDefault("DB_MIN_CONNS", 0)
	v.SetDefault("DOWNLOAD_DIR", ".")
	v.SetDefault("DEVSERVER_PORT", "8000")
	v.SetDefault("DEVSERVER_OUTPUT_DIR", "output")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("API_URL")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("LLM_POLL_INTERVAL")
	v.BindEnv("BRIDGE_DRIVER")
	v.BindEnv("BRIDGE_DIR")
	v.BindEnv("BRIDGE_SESSION")
	v.BindEnv("BRIDGE_MEMORY_SESSIONS")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("DOWNLOAD_DIR")
	v.BindEnv("DEVSERVER_PORT")
	v.BindEnv("DEVSERVER_OUTPUT_DIR")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("ENTERPRISE_BASE_URL")
	v.BindEnv("ENTERPRISE_CLIENT_ID")
	v.BindEnv("ENTERPRISE_CLIENT_SECRET")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) <= 1 {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	cfg.BridgeDriver = strings.ToLower(strings.TrimSpace(cfg.BridgeDriver))

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// EnterpriseConfigured reports whether every OAuth2 credential for the
// enterprise LLM gateway is present.
func (c *Config) EnterpriseConfigured() bool {
	return c.EnterpriseBaseURL != "" && c.EnterpriseClientID != "" && c.EnterpriseClientSecret != ""
}

// Validate checks that the configuration can drive the client. The postgres
// bridge needs DATABASE_URL; the other drivers need nothing external.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_URL must be an absolute URL, got %q", c.APIURL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout)
	}
	if c.LLMPollInterval <= 0 {
		return fmt.Errorf("LLM_POLL_INTERVAL must be positive, got %s", c.LLMPollInterval)
	}

	switch c.BridgeDriver {
	case BridgeFile:
		if c.BridgeDir == "" {
			return fmt.Errorf("BRIDGE_DIR is required when BRIDGE_DRIVER is %q", BridgeFile)
		}
	case BridgeMemory:
		if c.BridgeMemorySessions <= 0 {
			return fmt.Errorf("BRIDGE_MEMORY_SESSIONS must be positive, got %d", c.BridgeMemorySessions)
		}
	case BridgePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when BRIDGE_DRIVER is %q", BridgePostgres)
		}
	default:
		return fmt.Errorf("BRIDGE_DRIVER must be %q, %q, or %q, got %q", BridgeFile, BridgeMemory, BridgePostgres, c.BridgeDriver)
	}
	if c.BridgeSession == "" {
		return fmt.Errorf("BRIDGE_SESSION must not be empty")
	}
	return nil
}
