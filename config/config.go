// Package config loads service settings from .env, a YAML file and PATROL_* variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"go-patrol/types"
)

const envPrefix = "PATROL"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Firebase FirebaseConfig `mapstructure:"firebase"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Cron     CronConfig     `mapstructure:"cron"`
	Report   ReportConfig   `mapstructure:"report"`
}

type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	ClientURL string `mapstructure:"client_url"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type FirebaseConfig struct {
	// Credentials is the base64 service account JSON.
	Credentials string `mapstructure:"credentials"`
	ProjectID   string `mapstructure:"project_id"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Enabled reports whether narratives can be requested.
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

type CronConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Cleanup  string `mapstructure:"cleanup"`
	Backfill string `mapstructure:"backfill"`
}

// ReportConfig holds defaults applied to report requests that leave them blank.
type ReportConfig struct {
	TopN int        `mapstructure:"top_n"`
	Memo types.Memo `mapstructure:"memo"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.cleanup", "0 2 * * *")
	v.SetDefault("cron.backfill", "15 * * * *")
	v.SetDefault("report.top_n", 5)
	v.SetDefault("report.memo.for", "The Provincial Director")
	v.SetDefault("report.memo.from", "Chief, Provincial Crime Analysis Unit")
}

// legacyEnv keeps the variable names the deployed service already uses.
var legacyEnv = map[string][]string{
	"firebase.credentials": {"FIREBASE_CREDENTIALS"},
	"firebase.project_id":  {"FIREBASE_PROJECT_ID"},
	"openai.api_key":       {"OPENAI_API_KEY"},
	"server.client_url":    {"CLIENT_URL"},
	"server.port":          {"PORT"},
}

// LoadDotEnv loads .env files if present. Existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration into v. file may be empty, in which case
// ./config.yaml and ./config/config.yaml are tried and may be absent.
// Precedence: flags bound on v, then environment, then file, then defaults.
func Load(v *viper.Viper, file string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		args := append([]string{key, envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Report.TopN < 0 {
		return fmt.Errorf("report.top_n must not be negative, got %d", c.Report.TopN)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ApplyMemoDefaults fills blank FOR and FROM lines from configuration.
func (c ReportConfig) ApplyMemoDefaults(m types.Memo) types.Memo {
	if strings.TrimSpace(m.For) == "" {
		m.For = c.Memo.For
	}
	if strings.TrimSpace(m.From) == "" {
		m.From = c.Memo.From
	}
	return m
}
