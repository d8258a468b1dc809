package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const envPrefix = "CASTCHECK_"

var ErrInvalidConfig = errors.New("config: invalid")

// Load layers, from low to high precedence:
//  1. defaults (New)
//  2. YAML file named by CASTCHECK_CONFIG
//  3. env CASTCHECK_*
//
// A .env file in the working directory is read into the environment first.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrap(err, "config: .env")
	}

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "config: %s", path)
		}
	}

	// CASTCHECK_MAX_JOBS -> max_jobs
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Wrap(err, "config: env")
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.Wrap(ErrInvalidConfig, "addr must not be empty")
	case c.Workers < 1:
		return errors.Wrapf(ErrInvalidConfig, "workers must be positive, got %d", c.Workers)
	case c.MaxJobs < 1:
		return errors.Wrapf(ErrInvalidConfig, "max_jobs must be positive, got %d", c.MaxJobs)
	case c.CacheTTL < 0:
		return errors.Wrapf(ErrInvalidConfig, "cache_ttl must not be negative, got %s", c.CacheTTL)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}

// ApplyLogLevel sets the logrus level from c.
func (c *Config) ApplyLogLevel() {
	if lv, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logrus.SetLevel(lv)
	}
}
