package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/riskview/internal/app"
	"github.com/okian/riskview/internal/config"
	"github.com/okian/riskview/internal/domain/model"
	"github.com/okian/riskview/internal/fakeprovider"
	"github.com/okian/riskview/pkg/logger"
	"github.com/okian/riskview/pkg/metrics"
)

func init() {
	_ = logger.Init()
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("RISKVIEW_ADDR", ":8080")
			_ = os.Setenv("RISKVIEW_REFRESH_QUEUE_SIZE", "32")
			_ = os.Setenv("RISKVIEW_REFRESH_WORKERS", "4")
			defer func() {
				_ = os.Unsetenv("RISKVIEW_ADDR")
				_ = os.Unsetenv("RISKVIEW_REFRESH_QUEUE_SIZE")
				_ = os.Unsetenv("RISKVIEW_REFRESH_WORKERS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 32)
				convey.So(cfg.RefreshWorkers, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the address is empty", func() {
			_ = os.Setenv("RISKVIEW_ADDR", " ")
			defer func() { _ = os.Unsetenv("RISKVIEW_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When metrics are initialised against a custom registry", func() {
			manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
			convey.So(manager, convey.ShouldNotBeNil)
		})
	})
}

func TestMux(t *testing.T) {
	convey.Convey("Given the full mux over a service fed by fake providers", t, func() {
		fake := fakeprovider.New()
		fakeprovider.Populate(fake, fakeprovider.NewGenerator(11), 5)
		upstream := httptest.NewServer(fake)
		defer upstream.Close()

		cfg := config.New()
		cfg.Providers = []config.Provider{{Name: "students", URL: upstream.URL + fakeprovider.StudentsPath}}
		cfg.RefreshIntervalMS = 0
		opts, err := app.OptionsFromConfig(cfg)
		convey.So(err, convey.ShouldBeNil)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc := app.New(opts...)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newMux(ctx, svc))
		defer srv.Close()

		convey.Convey("Then subjects are served from the providers", func() {
			resp, err := http.Get(srv.URL + "/subjects")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			var list model.Listing
			convey.So(json.NewDecoder(resp.Body).Decode(&list), convey.ShouldBeNil)
			convey.So(list.Subjects, convey.ShouldHaveLength, 5)
			convey.So(list.UsedDegradedDataset, convey.ShouldBeFalse)
		})

		convey.Convey("And the API docs are mounted", func() {
			resp, err := http.Get(srv.URL + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When the system metrics updater runs until its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When system metrics are updated", func() {
			convey.So(func() {
				updateSystemMetrics()
			}, convey.ShouldNotPanic)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given run with a cancelled context", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"
		cfg.RefreshIntervalMS = 0
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("It shuts down cleanly", func() {
			convey.So(run(ctx, cfg, logger.Nop()), convey.ShouldBeNil)
		})
	})
}
