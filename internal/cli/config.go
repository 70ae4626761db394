package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds the settings shared by every command.
type Config struct {
	Page     int           `mapstructure:"page" validate:"min=1"`
	Size     int           `mapstructure:"size" validate:"min=1"`
	LogLevel string        `mapstructure:"log-level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"min=0"`
}

// SQLConfig holds the settings of the sql command.
type SQLConfig struct {
	DSN   string `mapstructure:"dsn" validate:"required"`
	Query string `mapstructure:"query" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("PAGEDLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// readConfigFile merges the YAML (or any viper supported) file at path.
func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	return nil
}

// load decodes the settings held by v into out and validates them.
func load(v *viper.Viper, out any) error {
	if err := v.Unmarshal(out); err != nil {
		return errors.Wrap(err, "failed to decode config")
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return describe(verrs[0])
		}
		return err
	}
	return nil
}

func describe(fe validator.FieldError) error {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "min":
		return fmt.Errorf("invalid %s %v: must be >= %s", name, fe.Value(), fe.Param())
	case "required":
		return fmt.Errorf("missing %s", name)
	case "oneof":
		return fmt.Errorf("invalid %s %q: must be one of %s", name, fe.Value(), fe.Param())
	}
	return fmt.Errorf("invalid %s %v", name, fe.Value())
}
