package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rizeos/workforce/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		os.Unsetenv("WORKFORCE_CONFIG")
		t.Setenv("WORKFORCE_JWT_SECRET", "test-secret")

		Convey("When loading with defaults", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then defaults should apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8080")
				So(cfg.DatabaseDriver, ShouldEqual, "postgres")
				So(cfg.DefaultPageSize, ShouldEqual, 10)
				So(cfg.MaxPageSize, ShouldEqual, 100)
				So(cfg.BusMaxSubscribers, ShouldEqual, 20)
			})
		})

		Convey("When env vars override defaults", func() {
			t.Setenv("WORKFORCE_ADDR", ":9999")
			t.Setenv("WORKFORCE_DATABASE_DRIVER", "sqlite")
			t.Setenv("WORKFORCE_DATABASE_DSN", "file::memory:?cache=shared")

			cfg, err := config.Load(context.Background())

			Convey("Then the overrides should win", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9999")
				So(cfg.DatabaseDriver, ShouldEqual, "sqlite")
				So(cfg.DatabaseDSN, ShouldEqual, "file::memory:?cache=shared")
			})
		})

		Convey("When a config file is layered under env", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			yaml := "addr: \":7070\"\nlog_level: debug\n"
			So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
			t.Setenv("WORKFORCE_CONFIG", path)

			cfg, err := config.Load(context.Background())

			Convey("Then the file values should apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.LogLevel, ShouldEqual, "debug")
			})

			Convey("And env should still beat the file", func() {
				t.Setenv("WORKFORCE_ADDR", ":6060")
				cfg, err := config.Load(context.Background())
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6060")
			})
		})

		Convey("When required fields are missing", func() {
			t.Setenv("WORKFORCE_JWT_SECRET", "")

			_, err := config.Load(context.Background())

			Convey("Then validation should fail", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "jwt_secret")
			})
		})

		Convey("When the database driver is unknown", func() {
			t.Setenv("WORKFORCE_DATABASE_DRIVER", "oracle")

			_, err := config.Load(context.Background())

			Convey("Then validation should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
