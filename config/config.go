// Package config loads the goforecast configuration from a YAML file and
// GOFORECAST_* environment variables on top of named defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sartorproj/goforecast/errs"
	"github.com/sartorproj/goforecast/features"
	"github.com/sartorproj/goforecast/forecast"
	"github.com/sartorproj/goforecast/logger"
	"github.com/sartorproj/goforecast/split"
	"github.com/sartorproj/goforecast/stats"
)

// EnvPrefix prefixes every environment override, e.g.
// GOFORECAST_FORECAST_HORIZON=60.
const EnvPrefix = "GOFORECAST"

// Config is the full application configuration.
type Config struct {
	Log          logger.Config   `mapstructure:"log" yaml:"log"`
	Data         DataConfig      `mapstructure:"data" yaml:"data"`
	Stationarity stats.Config    `mapstructure:"stationarity" yaml:"stationarity"`
	Features     features.Config `mapstructure:"features" yaml:"features"`
	Split        split.Config    `mapstructure:"split" yaml:"split"`
	Models       forecast.Config `mapstructure:"models" yaml:"models"`
	Forecast     ForecastConfig  `mapstructure:"forecast" yaml:"forecast"`
}

// DataConfig describes where the price history comes from.
type DataConfig struct {
	Source     string `mapstructure:"source" yaml:"source" default:"csv" validate:"oneof=csv xlsx"`
	Path       string `mapstructure:"path" yaml:"path"`
	Sheet      string `mapstructure:"sheet" yaml:"sheet"`
	DateField  string `mapstructure:"date_field" yaml:"date_field" default:"Date" validate:"required"`
	ValueField string `mapstructure:"value_field" yaml:"value_field" default:"Close" validate:"required"`
}

// ForecastConfig selects the models to run and the horizon.
type ForecastConfig struct {
	Horizon int             `mapstructure:"horizon" yaml:"horizon" default:"30" validate:"gte=1"`
	Models  []forecast.Kind `mapstructure:"models" yaml:"models" default:"[\"STATISTICAL\",\"BOOSTED_TREE\"]" validate:"min=1"`
}

// Default returns the configuration with every default applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errs.Wrap(errs.ErrConfig, "config.Default", err, "apply defaults")
	}
	return cfg, nil
}

// Load reads path (or goforecast.yaml from . or ./configs when path is
// empty), applies environment overrides and validates the result. A missing
// file is only an error when path is given explicitly.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("goforecast")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys(reflect.TypeOf(*cfg), "") {
		if err := v.BindEnv(key); err != nil {
			return nil, errs.Wrap(errs.ErrConfig, op, err, "bind %s", key)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errs.Wrap(errs.ErrConfig, op, err, "read config")
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errs.Wrap(errs.ErrConfig, op, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint and normalises model kinds.
func (c *Config) Validate() error {
	const op = "config.Validate"

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, message(fe))
			}
			return errs.New(errs.ErrConfig, op, "%s", strings.Join(msgs, "; "))
		}
		return errs.Wrap(errs.ErrConfig, op, err, "validate")
	}

	for i, k := range c.Forecast.Models {
		kind, err := forecast.ParseKind(string(k))
		if err != nil {
			return errs.Wrap(errs.ErrConfig, op, err, "forecast.models[%d]", i)
		}
		c.Forecast.Models[i] = kind
	}
	return nil
}

// Write renders c as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

func message(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// keys lists the dotted mapstructure keys of every leaf field so that
// environment variables are visible to Unmarshal.
func keys(t reflect.Type, prefix string) []string {
	var out []string
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("mapstructure")
		name, opts, _ := strings.Cut(tag, ",")

		if f.Anonymous && strings.Contains(opts, "squash") {
			out = append(out, keys(f.Type, prefix)...)
			continue
		}
		if name == "" || name == "-" {
			continue
		}

		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if f.Type.Kind() == reflect.Struct {
			out = append(out, keys(f.Type, key)...)
			continue
		}
		out = append(out, key)
	}
	return out
}
