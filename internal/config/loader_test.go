package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/pelada/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
				convey.So(cfg.MinConfirmed, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PELADA_ADDR", ":8080")
			_ = os.Setenv("PELADA_MIN_CONFIRMED", "8")
			_ = os.Setenv("PELADA_MAX_GOALKEEPERS", "0")
			_ = os.Setenv("PELADA_STORE_DRIVER", "sqlite")
			_ = os.Setenv("PELADA_DATABASE_URL", "file:pelada.db")
			_ = os.Setenv("PELADA_CURRENCY", "EUR")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MinConfirmed, convey.ShouldEqual, 8)
				convey.So(cfg.MaxGoalkeepers, convey.ShouldEqual, 0)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.DatabaseURL, convey.ShouldEqual, "file:pelada.db")
				convey.So(cfg.Currency, convey.ShouldEqual, "EUR")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
log_format: json
dedupe_size: 50
summary_title: "Friday game"
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("PELADA_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50)
				convey.So(cfg.SummaryTitle, convey.ShouldEqual, "Friday game")
			})
		})

		convey.Convey("When both file and environment variables are set", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
min_confirmed: 6
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("PELADA_CONFIG", tmpFile)
			_ = os.Setenv("PELADA_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables take precedence", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MinConfirmed, convey.ShouldEqual, 6)
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			tmpFile := createTempConfigFile("addr: [unclosed")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("PELADA_CONFIG", tmpFile)

			_, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("PELADA_CONFIG", filepath.Join(os.TempDir(), "pelada-missing.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When addr is empty", func() {
			_ = os.Setenv("PELADA_ADDR", "")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a SQL driver has no database_url", func() {
			_ = os.Setenv("PELADA_STORE_DRIVER", "postgres")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the driver is unknown", func() {
			_ = os.Setenv("PELADA_STORE_DRIVER", "redis")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestLoadDotEnv(t *testing.T) {
	convey.Convey("Given a .env file", t, func() {
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		dir := t.TempDir()
		path := filepath.Join(dir, ".env")
		convey.So(os.WriteFile(path, []byte("PELADA_ADDR=:6060\nPELADA_CURRENCY=USD\n"), 0o600), convey.ShouldBeNil)
		_ = os.Setenv("PELADA_CURRENCY", "EUR")

		convey.Convey("When it is loaded before Load", func() {
			convey.So(config.LoadDotEnv(path), convey.ShouldBeNil)
			cfg, err := config.Load(context.Background())

			convey.Convey("Then unset variables come from the file and set ones are kept", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.Currency, convey.ShouldEqual, "EUR")
			})
		})

		convey.Convey("When the file is missing", func() {
			err := config.LoadDotEnv(filepath.Join(dir, "absent.env"))

			convey.Convey("Then it is ignored", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"PELADA_CONFIG",
		"PELADA_ADDR",
		"PELADA_LOG_FORMAT",
		"PELADA_STORE_DRIVER",
		"PELADA_DATABASE_URL",
		"PELADA_DEDUPE_SIZE",
		"PELADA_MIN_CONFIRMED",
		"PELADA_MAX_GOALKEEPERS",
		"PELADA_CURRENCY",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "pelada-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
