// Package cfgloader provides a simple way to load and validate configuration
// at the start of an application.
package cfgloader

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvProduction = "production"
	EnvStaging    = "staging"
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvTest       = "test"

	defaultConfigDir = "./config"
)

// Load loads and validates configuration from a YAML file based on the
// ENVIRONMENT variable. The files must be named ${ENVIRONMENT}.yaml and live
// in the ./config directory at the root of the project (overridable with the
// CONFIG_DIR environment variable).
//
// The configuration struct should use `yaml` struct tags to map fields to the
// YAML file structure. Default values can be set with the `default` tag; they
// are applied before validation when the YAML file does not define the field.
// Validations use the go-playground/validator tag syntax.
//
// Example:
//
//	type Config struct {
//	    Brokers  string `yaml:"brokers" validate:"required"`
//	    Port     int    `yaml:"port" default:"8080"`
//	    LogLevel string `yaml:"log_level" default:"info"`
//	}
func Load[T any]() (T, error) {
	var config T

	if reflect.ValueOf(config).Kind() == reflect.Ptr {
		return config, errx.New("[cfgloader]: type argument must not be a pointer")
	}

	_ = godotenv.Load()

	env, err := defineEnvironment()
	if err != nil {
		return config, err
	}

	data, err := readConfigFile(buildConfigPath(env))
	if err != nil {
		return config, err
	}

	// Expand ${VAR} references before unmarshalling
	data = []byte(os.ExpandEnv(string(data)))

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errx.Wrap(err, errx.WithDetails(errx.D{"environment": env}))
	}

	if err := defaults.Set(&config); err != nil {
		return config, errx.Wrap(err)
	}

	if err := validateConfig(&config, env); err != nil {
		return config, err
	}

	return config, nil
}

// MustLoad is like Load but panics when loading fails.
// Intended for use in main during application startup.
func MustLoad[T any]() T {
	config, err := Load[T]()
	if err != nil {
		panic("[cfgloader]: " + err.Error())
	}
	return config
}

func defineEnvironment() (string, error) {
	env := os.Getenv("ENVIRONMENT")
	if !slices.Contains([]string{EnvProduction, EnvStaging, EnvDev, EnvLocal, EnvTest}, env) {
		return "", errx.New(
			"[cfgloader]: ENVIRONMENT env variable is not set or invalid. " +
				"Choices are: production, staging, dev, local, test",
		)
	}
	return env, nil
}

func buildConfigPath(env string) string {
	dir := os.Getenv("CONFIG_DIR")
	if dir == "" {
		dir = defaultConfigDir
	}
	return filepath.Join(dir, env+".yaml")
}

func readConfigFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errx.New(fmt.Sprintf(
			"[cfgloader]: config file not found in the path %s - "+
				"make sure that the yaml file exists for each environment", path,
		))
	}
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"path": path}))
	}
	return data, nil
}

func validateConfig(config any, env string) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(config)
	if err == nil {
		return nil
	}

	failedFields := make([]string, 0)
	if errs, ok := err.(validator.ValidationErrors); ok { //nolint:errorlint // validator returns the slice directly
		for _, fieldErr := range errs {
			tagErr := fieldErr.Tag()
			if fieldErr.Param() != "" {
				tagErr += "=" + fieldErr.Param()
			}
			failedFields = append(failedFields, fmt.Sprintf("%s: %s", fieldErr.Namespace(), tagErr))
		}
	}

	return errx.New(fmt.Sprintf(
		"[cfgloader]: invalid fields in %s config -> %s",
		env, strings.Join(failedFields, ",  "),
	))
}
