package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads the tool's settings from an optional strata.yaml in the working
// directory and from STRATA_-prefixed environment variables, environment
// winning over the file. Returns a populated, validated Config or an error
// describing every failing setting.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("runs.root", "outputs")
	v.SetDefault("pipeline.strict", true)
	v.SetDefault("pipeline.validate_assign", true)
	v.SetDefault("log.level", "info")

	v.SetConfigName("strata")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings file: %w", err)
		}
		// No settings file is fine; defaults and environment apply.
	}

	v.SetEnvPrefix("STRATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag())
			}
			return nil, fmt.Errorf("invalid settings: %s", strings.Join(fields, ", "))
		}
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	return &cfg, nil
}
