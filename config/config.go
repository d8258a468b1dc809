// Package config holds the process configuration of the service and the CLI.
package config

import (
	"runtime"
	"time"
)

type Config struct {
	// LogLevel is any level logrus can parse.
	LogLevel string `koanf:"log_level"`

	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Workers bounds how many fights are computed at once.
	Workers int `koanf:"workers"`

	// MaxJobs bounds how many queued websocket jobs run at once.
	MaxJobs int `koanf:"max_jobs"`

	// CacheTTL keeps computed reports for repeated requests. Zero disables it.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// Registry is the path of the ability table, CSV or YAML.
	Registry string `koanf:"registry"`

	SentryDSN string `koanf:"sentry_dsn"`
}

func New() *Config {
	return &Config{
		LogLevel: "info",
		Addr:     ":57381",
		Workers:  runtime.NumCPU(),
		MaxJobs:  4,
		CacheTTL: 10 * time.Minute,
		Registry: "abilities.csv",
	}
}
