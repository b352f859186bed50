// Package config loads command line settings from flags, PARKEVAL_* environment
// variables and an optional parkeval.yaml file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dshills/parkeval/internal/profile"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "PARKEVAL"

// Config holds the resolved settings.
type Config struct {
	Log         LogConfig      `mapstructure:"log"`
	Profile     string         `mapstructure:"profile"`
	ProfileFile string         `mapstructure:"profile_file"`
	Horizons    map[string]int `mapstructure:"horizons"`
	Export      ExportConfig   `mapstructure:"export"`
	FailOn      string         `mapstructure:"fail_on"`

	// Standards overrides are nil unless explicitly configured.
	Standards StandardsOverride `mapstructure:"-"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// LogConfig selects the zap level and encoding.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ExportConfig controls report output.
type ExportConfig struct {
	Format string `mapstructure:"format"`
	Out    string `mapstructure:"out"`
	Font   string `mapstructure:"font"`
	Redact bool   `mapstructure:"redact"`
}

// StandardsOverride replaces the profile's hard standards when set.
type StandardsOverride struct {
	InvestPerMu *float64
	TaxPerMu    *float64
}

// flagKeys maps config keys to the command line flags that override them.
var flagKeys = map[string]string{
	"log.level":               "log-level",
	"log.format":              "log-format",
	"profile":                 "profile",
	"profile_file":            "profile-file",
	"standards.invest_per_mu": "invest-per-mu",
	"standards.tax_per_mu":    "tax-per-mu",
	"export.format":           "format",
	"export.out":              "out",
	"export.font":             "font",
	"export.redact":           "redact",
	"fail_on":                 "fail-on",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("profile", "park")
	v.SetDefault("export.format", "json")
	v.SetDefault("export.redact", true)
}

// Load resolves the configuration. path names an explicit config file, which
// must exist; when empty, parkeval.yaml is looked up in . and ./configs and is
// optional. flags may be nil. A .env file in the working directory is loaded
// into the environment first.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("config.Load: .env: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("parkeval")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config.Load: bind %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.Standards.InvestPerMu = optionalFloat(v, "standards.invest_per_mu")
	cfg.Standards.TaxPerMu = optionalFloat(v, "standards.tax_per_mu")
	return &cfg, nil
}

func optionalFloat(v *viper.Viper, key string) *float64 {
	if !v.IsSet(key) {
		return nil
	}
	f := v.GetFloat64(key)
	return &f
}

// Apply writes the standards and horizon overrides into the profile.
// Horizons are merged per project type. Viper lowercases map keys, so a
// horizon key matches an existing profile key regardless of case.
func (c *Config) Apply(p *profile.Profile) {
	if c.Standards.InvestPerMu != nil {
		p.Standards.InvestPerMu = *c.Standards.InvestPerMu
	}
	if c.Standards.TaxPerMu != nil {
		p.Standards.TaxPerMu = *c.Standards.TaxPerMu
	}
	if len(c.Horizons) > 0 && p.Horizons == nil {
		p.Horizons = make(map[string]int, len(c.Horizons))
	}
	for typ, months := range c.Horizons {
		p.Horizons[horizonKey(p.Horizons, typ)] = months
	}
}

func horizonKey(existing map[string]int, typ string) string {
	for k := range existing {
		if strings.EqualFold(k, typ) {
			return k
		}
	}
	return typ
}
