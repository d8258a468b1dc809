package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"cast_check/config"

	"github.com/pkg/errors"
	"github.com/smartystreets/goconvey/convey"
)

var configEnv = []string{
	"CASTCHECK_CONFIG",
	"CASTCHECK_ADDR",
	"CASTCHECK_LOG_LEVEL",
	"CASTCHECK_WORKERS",
	"CASTCHECK_MAX_JOBS",
	"CASTCHECK_CACHE_TTL",
	"CASTCHECK_REGISTRY",
	"CASTCHECK_SENTRY_DSN",
}

func clearConfigEnv() {
	for _, k := range configEnv {
		_ = os.Unsetenv(k)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigNew(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New()

		convey.So(cfg.Addr, convey.ShouldEqual, ":57381")
		convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
		convey.So(cfg.Workers, convey.ShouldEqual, runtime.NumCPU())
		convey.So(cfg.MaxJobs, convey.ShouldEqual, 4)
		convey.So(cfg.CacheTTL, convey.ShouldEqual, 10*time.Minute)
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}

func TestConfigLoad(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnv()
		defer clearConfigEnv()

		convey.Convey("When nothing is set", func() {
			cfg, err := config.Load()

			convey.Convey("Then the defaults are used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":57381")
				convey.So(cfg.Registry, convey.ShouldEqual, "abilities.csv")
			})
		})

		convey.Convey("When environment variables are set", func() {
			_ = os.Setenv("CASTCHECK_ADDR", ":8080")
			_ = os.Setenv("CASTCHECK_WORKERS", "3")
			_ = os.Setenv("CASTCHECK_CACHE_TTL", "30s")
			_ = os.Setenv("CASTCHECK_LOG_LEVEL", "debug")

			cfg, err := config.Load()

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Workers, convey.ShouldEqual, 3)
				convey.So(cfg.CacheTTL, convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When a YAML file is given", func() {
			_ = os.Setenv("CASTCHECK_CONFIG", writeConfigFile(t, `
addr: ":9090"
max_jobs: 2
registry: "priest.yaml"
`))
			_ = os.Setenv("CASTCHECK_MAX_JOBS", "6")

			cfg, err := config.Load()

			convey.Convey("Then the file is read and env still wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Registry, convey.ShouldEqual, "priest.yaml")
				convey.So(cfg.MaxJobs, convey.ShouldEqual, 6)
			})
		})

		convey.Convey("When the YAML file is missing", func() {
			_ = os.Setenv("CASTCHECK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load()

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When a value is out of range", func() {
			_ = os.Setenv("CASTCHECK_WORKERS", "0")

			_, err := config.Load()

			convey.Convey("Then the config is rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the log level is unknown", func() {
			_ = os.Setenv("CASTCHECK_LOG_LEVEL", "loud")

			_, err := config.Load()

			convey.Convey("Then the config is rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
