// Package config handles configuration loading for finratios.
// It supports YAML config files with environment variable overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/seenimoa/finratios/pkg/utils"
)

// EnvPrefix prefixes every environment override, e.g. FINRATIOS_SINK_KIND.
const EnvPrefix = "FINRATIOS"

// Config represents the complete application configuration.
type Config struct {
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Ratio    RatioConfig    `mapstructure:"ratio"    yaml:"ratio"    json:"ratio"`
	Source   SourceConfig   `mapstructure:"source"   yaml:"source"   json:"source"`
	Sink     SinkConfig     `mapstructure:"sink"     yaml:"sink"     json:"sink"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"      json:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"  json:"logging"`

	file string // config file used, if any
}

// DefaultFile is where configuration is saved when none was read.
const DefaultFile = "config/config.yaml"

// File returns the path of the config file that was read, or "".
func (c *Config) File() string { return c.file }

// Path returns the file the configuration is saved to.
func (c *Config) Path() string {
	if c.file != "" {
		return c.file
	}
	return DefaultFile
}

// PipelineConfig selects the company, year and statement inputs of a run.
type PipelineConfig struct {
	Company    string            `mapstructure:"company"    yaml:"company"    json:"company"    validate:"required"`
	Year       int               `mapstructure:"year"       yaml:"year"       json:"year"       validate:"gte=1000,lte=9999"`
	BasePath   string            `mapstructure:"base_path"  yaml:"base_path"  json:"base_path"` // may contain {company}
	Extension  string            `mapstructure:"extension"  yaml:"extension"  json:"extension"  validate:"oneof=csv xlsx html htm"`
	Statements map[string]string `mapstructure:"statements" yaml:"statements" json:"statements"` // "pl"/"bs"/"cf" -> identifier
}

// RatioConfig holds ratio engine settings.
type RatioConfig struct {
	StrictSchema bool `mapstructure:"strict_schema" yaml:"strict_schema" json:"strict_schema"`
}

// SourceConfig holds statement reader settings.
type SourceConfig struct {
	HTTPTimeoutSec     int    `mapstructure:"http_timeout_sec"     yaml:"http_timeout_sec"     json:"http_timeout_sec"     validate:"gte=1"`
	RateLimitPerSec    int    `mapstructure:"rate_limit_per_sec"   yaml:"rate_limit_per_sec"   json:"rate_limit_per_sec"   validate:"gte=1"`
	CacheTTL           int    `mapstructure:"cache_ttl"            yaml:"cache_ttl"            json:"cache_ttl"            validate:"gte=0"` // seconds
	GCSCredentialsFile string `mapstructure:"gcs_credentials_file" yaml:"gcs_credentials_file" json:"gcs_credentials_file"`
}

// HTTPTimeout returns the HTTP timeout as a duration.
func (s SourceConfig) HTTPTimeout() time.Duration {
	return time.Duration(s.HTTPTimeoutSec) * time.Second
}

// CacheDuration returns the cache TTL as a duration.
func (s SourceConfig) CacheDuration() time.Duration {
	return time.Duration(s.CacheTTL) * time.Second
}

// SinkConfig selects where ratio records are written.
type SinkConfig struct {
	Kind        string         `mapstructure:"kind"         yaml:"kind"         json:"kind"         validate:"oneof=console json csv report sqlite postgres bigquery"`
	Destination string         `mapstructure:"destination"  yaml:"destination"  json:"destination"`
	Mode        string         `mapstructure:"mode"         yaml:"mode"         json:"mode"         validate:"oneof=append overwrite"`
	AlsoPrint   bool           `mapstructure:"also_print"   yaml:"also_print"   json:"also_print"`
	PostgresDSN string         `mapstructure:"postgres_dsn" yaml:"postgres_dsn" json:"postgres_dsn"`
	BigQuery    BigQueryConfig `mapstructure:"bigquery"     yaml:"bigquery"     json:"bigquery"`
}

// BigQueryConfig holds BigQuery client settings.
type BigQueryConfig struct {
	Project         string `mapstructure:"project"          yaml:"project"          json:"project"`
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file" json:"credentials_file"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"         json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"         json:"port"         validate:"gte=1,lte=65535"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`

	// AllowStatementIDs lets requests name statement identifiers directly
	// instead of resolving them from the pipeline configuration.
	AllowStatementIDs bool `mapstructure:"allow_statement_ids" yaml:"allow_statement_ids" json:"allow_statement_ids"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"  validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" json:"format" validate:"oneof=text json"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.finratios/config.yaml (home directory)
//  3. /etc/finratios/config.yaml (system)
//
// A .env file in the working directory is loaded first if present.
// Environment variables override config file values.
// Format: FINRATIOS_<SECTION>_<KEY>, e.g., FINRATIOS_SINK_MODE
func Load() (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".finratios"))
	v.AddConfigPath("/etc/finratios")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.file = v.ConfigFileUsed()
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.file = path
	return cfg, nil
}

// SaveToFile writes cfg as YAML to path, creating parent directories.
// A Postgres DSN taken from the environment is not written.
func SaveToFile(cfg *Config, path string) error {
	out := *cfg
	dsn := checkCredential("", out.Sink.PostgresDSN, EnvPrefix+"_SINK_POSTGRES_DSN", "DATABASE_URL")
	if dsn.Source == CredentialSourceEnv {
		out.Sink.PostgresDSN = ""
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	var settings map[string]any
	if err := json.Unmarshal(raw, &settings); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config file %s: %w", path, err)
	}
	return nil
}

// Default returns the configuration built from defaults and environment only.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(err)
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Pipeline defaults
	v.SetDefault("pipeline.company", "GOOGLE")
	v.SetDefault("pipeline.year", 2024)
	v.SetDefault("pipeline.base_path", "./data/companies/{company}")
	v.SetDefault("pipeline.extension", "csv")
	v.SetDefault("pipeline.statements", map[string]string{})

	v.SetDefault("ratio.strict_schema", true)

	// Source defaults
	v.SetDefault("source.http_timeout_sec", 30)
	v.SetDefault("source.rate_limit_per_sec", 2)
	v.SetDefault("source.cache_ttl", 300) // 5 minutes

	// Sink defaults
	v.SetDefault("sink.kind", "console")
	v.SetDefault("sink.mode", "append")
	v.SetDefault("sink.also_print", true)

	// API defaults
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("api.allow_statement_ids", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if dsn := os.Getenv(EnvPrefix + "_SINK_POSTGRES_DSN"); dsn != "" {
		cfg.Sink.PostgresDSN = dsn
	} else if cfg.Sink.PostgresDSN == "" {
		cfg.Sink.PostgresDSN = os.Getenv("DATABASE_URL")
	}
	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		if cfg.Source.GCSCredentialsFile == "" {
			cfg.Source.GCSCredentialsFile = path
		}
		if cfg.Sink.BigQuery.CredentialsFile == "" {
			cfg.Sink.BigQuery.CredentialsFile = path
		}
	}
	if project := os.Getenv("GOOGLE_CLOUD_PROJECT"); project != "" && cfg.Sink.BigQuery.Project == "" {
		cfg.Sink.BigQuery.Project = project
	}
}

// loadDotEnv loads ./.env into the process environment. A missing file is fine.
func loadDotEnv() {
	_ = godotenv.Load()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !utils.IsValidCompany(c.Pipeline.Company) {
		return fmt.Errorf("invalid config: pipeline.company %q is not a usable company name", c.Pipeline.Company)
	}
	for key := range c.Pipeline.Statements {
		switch key {
		case "pl", "bs", "cf":
		default:
			return fmt.Errorf("invalid config: pipeline.statements: unknown statement type %q", key)
		}
	}
	switch c.Sink.Kind {
	case "postgres":
		if c.Sink.PostgresDSN == "" {
			return fmt.Errorf("invalid config: sink.postgres_dsn (or DATABASE_URL) is required for the postgres sink")
		}
	case "bigquery":
		if c.Sink.BigQuery.Project == "" {
			return fmt.Errorf("invalid config: sink.bigquery.project is required for the bigquery sink")
		}
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
