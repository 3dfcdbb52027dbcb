package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Terminology sources.
const (
	SourceEmbedded = "embedded"
	SourceDatabase = "database"
)

type Config struct {
	Port                 string        `mapstructure:"PORT"`
	Env                  string        `mapstructure:"ENV"`
	LogLevel             string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL          string        `mapstructure:"DATABASE_URL"`
	DBMaxConns           int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns           int32         `mapstructure:"DB_MIN_CONNS"`
	GDCBaseURL           string        `mapstructure:"GDC_BASE_URL"`
	GDCTimeout           time.Duration `mapstructure:"GDC_TIMEOUT"`
	GDCPageSize          int           `mapstructure:"GDC_PAGE_SIZE"`
	GDCRetryCount        int           `mapstructure:"GDC_RETRY_COUNT"`
	EnsemblTranscriptURL string        `mapstructure:"ENSEMBL_TRANSCRIPT_URL"`
	TerminologySource    string        `mapstructure:"TERMINOLOGY_SOURCE"`
	OutputDir            string        `mapstructure:"OUTPUT_DIR"`
	Workers              int           `mapstructure:"WORKERS"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"GDC_BASE_URL", "GDC_TIMEOUT", "GDC_PAGE_SIZE", "GDC_RETRY_COUNT",
	"ENSEMBL_TRANSCRIPT_URL", "TERMINOLOGY_SOURCE", "OUTPUT_DIR", "WORKERS",
}

// Load reads configuration from the environment and an optional .env file
// in the working directory. It does not validate; call Validate.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("GDC_BASE_URL", "https://api.gdc.cancer.gov")
	v.SetDefault("GDC_TIMEOUT", "30s")
	v.SetDefault("GDC_PAGE_SIZE", 100)
	v.SetDefault("GDC_RETRY_COUNT", 3)
	v.SetDefault("ENSEMBL_TRANSCRIPT_URL",
		"https://ftp.ensembl.org/pub/current_tsv/homo_sapiens/Homo_sapiens.GRCh38.113.ena.tsv.gz")
	v.SetDefault("TERMINOLOGY_SOURCE", SourceEmbedded)
	v.SetDefault("OUTPUT_DIR", "./phenopackets")
	v.SetDefault("WORKERS", 4)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasDatabase reports whether a Postgres connection is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.TerminologySource {
	case SourceEmbedded:
	case SourceDatabase:
		if !c.HasDatabase() {
			return fmt.Errorf("DATABASE_URL is required when TERMINOLOGY_SOURCE is %q", SourceDatabase)
		}
	default:
		return fmt.Errorf("TERMINOLOGY_SOURCE must be %q or %q, got %q", SourceEmbedded, SourceDatabase, c.TerminologySource)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Workers)
	}
	if c.GDCPageSize <= 0 {
		return fmt.Errorf("GDC_PAGE_SIZE must be positive, got %d", c.GDCPageSize)
	}
	if c.GDCTimeout <= 0 {
		return fmt.Errorf("GDC_TIMEOUT must be positive, got %s", c.GDCTimeout)
	}
	if c.GDCRetryCount < 0 {
		return fmt.Errorf("GDC_RETRY_COUNT must not be negative, got %d", c.GDCRetryCount)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}
