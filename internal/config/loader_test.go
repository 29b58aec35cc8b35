package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/riskview/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.MergePolicy, convey.ShouldEqual, config.MergeOverwrite)
				convey.So(cfg.DefaultTimeout(), convey.ShouldEqual, 8*time.Second)
				convey.So(cfg.DetailTimeout(), convey.ShouldEqual, 5*time.Second)
				convey.So(cfg.RefreshInterval(), convey.ShouldEqual, time.Minute)
				convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 16)
				convey.So(cfg.RefreshWorkers, convey.ShouldEqual, 1)
				convey.So(cfg.Providers, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RISKVIEW_ADDR", ":8080")
			_ = os.Setenv("RISKVIEW_MERGE_POLICY", "enrich")
			_ = os.Setenv("RISKVIEW_REFRESH_INTERVAL_MS", "0")
			_ = os.Setenv("RISKVIEW_DETAIL_ENDPOINTS", "http://a.test/students/{id}, http://b.test/children/{id}")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MergePolicy, convey.ShouldEqual, config.MergeEnrich)
				convey.So(cfg.RefreshInterval(), convey.ShouldEqual, time.Duration(0))
				convey.So(cfg.DetailEndpoints, convey.ShouldResemble, []string{
					"http://a.test/students/{id}",
					"http://b.test/children/{id}",
				})
			})
		})

		convey.Convey("When loading config with a YAML file of providers", func() {
			yamlContent := `
addr: ":9090"
log_level: debug
default_timeout_ms: 3000
providers:
  - name: dashboard
    url: http://dash.test/api/risk-summary
    timeout_ms: 1500
  - name: discipline
    url: http://disc.test/api/discipline/students
    method: POST
    data_key: students
    body:
      scope: school
salvage:
  name: incident-log
  url: http://disc.test/api/incidents
detail_endpoints:
  - http://dash.test/api/students/{id}
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("RISKVIEW_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then providers keep their priority order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(len(cfg.Providers), convey.ShouldEqual, 2)
				convey.So(cfg.Providers[0].Name, convey.ShouldEqual, "dashboard")
				convey.So(cfg.Providers[0].Timeout(cfg.DefaultTimeout()), convey.ShouldEqual, 1500*time.Millisecond)
				convey.So(cfg.Providers[1].Name, convey.ShouldEqual, "discipline")
				convey.So(cfg.Providers[1].Method, convey.ShouldEqual, "POST")
				convey.So(cfg.Providers[1].DataKey, convey.ShouldEqual, "students")
				convey.So(cfg.Providers[1].Body["scope"], convey.ShouldEqual, "school")
				convey.So(cfg.Providers[1].Timeout(cfg.DefaultTimeout()), convey.ShouldEqual, 3*time.Second)
				convey.So(cfg.Salvage, convey.ShouldNotBeNil)
				convey.So(cfg.Salvage.Name, convey.ShouldEqual, "incident-log")
				convey.So(cfg.DetailEndpoints, convey.ShouldResemble, []string{"http://dash.test/api/students/{id}"})
			})
		})

		convey.Convey("When the file and env both set a value", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nrefresh_workers: 3\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("RISKVIEW_CONFIG", tmpFile)
			_ = os.Setenv("RISKVIEW_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins and file fills the rest", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.RefreshWorkers, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("RISKVIEW_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("RISKVIEW_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("RISKVIEW_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("RISKVIEW_REFRESH_WORKERS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown merge policy", func() {
			_ = os.Setenv("RISKVIEW_MERGE_POLICY", "union")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "MergePolicy")
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("When a provider has no URL", func() {
			cfg.Providers = []config.Provider{{Name: "dash"}}
			convey.So(errors.Is(cfg.Validate(ctx), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a provider uses an unsupported method", func() {
			cfg.Providers = []config.Provider{{Name: "dash", URL: "http://dash.test/x", Method: "DELETE"}}
			convey.So(cfg.Validate(ctx), convey.ShouldNotBeNil)
		})

		convey.Convey("When two providers share a name", func() {
			cfg.Providers = []config.Provider{
				{Name: "dash", URL: "http://dash.test/a"},
				{Name: "dash", URL: "http://dash.test/b"},
			}
			err := cfg.Validate(ctx)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "duplicate provider name")
		})

		convey.Convey("When a detail endpoint lacks the id placeholder", func() {
			cfg.DetailEndpoints = []string{"http://dash.test/students"}
			convey.So(cfg.Validate(ctx), convey.ShouldNotBeNil)
		})

		convey.Convey("When everything is well-formed", func() {
			cfg.Providers = []config.Provider{{Name: "dash", URL: "http://dash.test/a", Method: "GET"}}
			cfg.DetailEndpoints = []string{"http://dash.test/students/{id}"}
			convey.So(cfg.Validate(ctx), convey.ShouldBeNil)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"RISKVIEW_CONFIG",
		"RISKVIEW_ADDR",
		"RISKVIEW_MERGE_POLICY",
		"RISKVIEW_REFRESH_INTERVAL_MS",
		"RISKVIEW_REFRESH_WORKERS",
		"RISKVIEW_DETAIL_ENDPOINTS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "riskview-config-*.yaml")
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
