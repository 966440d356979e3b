package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/tcoracle/internal/api"
	"github.com/markusressel/tcoracle/internal/configuration"
	"github.com/markusressel/tcoracle/internal/device"
	"github.com/markusressel/tcoracle/internal/persistence"
	"github.com/markusressel/tcoracle/internal/session"
	"github.com/markusressel/tcoracle/internal/statistics"
	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/markusressel/tcoracle/internal/util"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var ErrVerificationFailed = errors.New("verification failed")

// NewInjector creates an injector on the configured device root
func NewInjector() *device.FsInjector {
	return device.NewRootedFsInjector(configuration.CurrentConfig.DeviceRoot, util.Retry{
		Attempts: configuration.CurrentConfig.Injector.RestoreAttempts,
		Delay:    configuration.CurrentConfig.Injector.RestoreDelay,
	})
}

// InspectDevice reads the topology, parameters and fan direction of the configured device
func InspectDevice(ctx context.Context) (*session.Target, error) {
	config, err := session.ConfigFrom(configuration.CurrentConfig)
	if err != nil {
		return nil, err
	}
	return session.Inspect(ctx, NewInjector(), config)
}

// RunVerification runs a full verification session against the configured
// device, optionally exposing its progress via the statistics and api servers
func RunVerification() error {
	if owner := getProcessOwner(); owner != "root" && configuration.CurrentConfig.DeviceRoot == "/" {
		ui.Warning("Running as '%s', mocking device files usually requires root permissions", owner)
	}

	config, err := session.ConfigFrom(configuration.CurrentConfig)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	injector := NewInjector()
	s, err := session.New(ctx, injector, config)
	if err != nil {
		return err
	}

	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	if err := pers.Init(); err != nil {
		ui.Warning("Report database unavailable, the report will not be stored: %v", err)
		pers = nil
	}

	registry := prometheus.NewRegistry()
	if err := statistics.RegisterAll(registry, s); err != nil {
		return err
	}

	var report *session.Report
	var g run.Group
	{
		if configuration.CurrentConfig.Statistics.Enabled {
			// === Prometheus Exporter
			port := configuration.CurrentConfig.Statistics.Port
			server := &http.Server{
				Addr:    fmt.Sprintf(":%d", port),
				Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			}
			g.Add(func() error {
				ui.Info("Serving statistics on %s/metrics", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					ui.Error("Cannot start prometheus metrics endpoint (%s)", err.Error())
				}
				<-ctx.Done()
				return nil
			}, func(err error) {
				shutdown(server.Shutdown, "statistics server")
			})
		}
	}
	{
		if configuration.CurrentConfig.Api.Enabled {
			// === REST api
			rest := api.CreateRestService(api.Options{
				Results:    s,
				Reports:    pers,
				Registerer: registry,
				Gatherer:   registry,
			})
			g.Add(func() error {
				return serveRest(ctx, rest)
			}, func(err error) {
				shutdown(rest.Shutdown, "api server")
			})
		}
	}
	{
		// === verification session
		g.Add(func() error {
			var err error
			report, err = s.Run(ctx)
			return err
		}, func(err error) {
			cancel()
		})
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			select {
			case <-sig:
				ui.Info("Received SIGTERM signal, exiting...")
				return context.Canceled
			case <-ctx.Done():
				return nil
			}
		}, func(err error) {
			signal.Stop(sig)
			cancel()
		})
	}

	runErr := g.Run()

	if report != nil {
		printSummary(report)
		if pers != nil {
			if err := pers.SaveReport(report); err != nil {
				ui.Warning("Unable to store report %s: %v", report.ID, err)
			} else {
				ui.Info("Stored report %s", report.ID)
			}
		}
	}

	if runErr != nil {
		return runErr
	}
	if report == nil || !report.Success() {
		return ErrVerificationFailed
	}
	return nil
}

// ServeReports exposes the stored reports via the REST api until interrupted
func ServeReports() error {
	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	if err := pers.Init(); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	rest := api.CreateRestService(api.Options{
		Reports:    pers,
		Registerer: registry,
		Gatherer:   registry,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var g run.Group
	{
		g.Add(func() error {
			return serveRest(ctx, rest)
		}, func(err error) {
			shutdown(rest.Shutdown, "api server")
		})
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			<-sig
			ui.Info("Received SIGTERM signal, exiting...")
			return nil
		}, func(err error) {
			signal.Stop(sig)
			cancel()
		})
	}
	return g.Run()
}

func serveRest(ctx context.Context, rest *echo.Echo) error {
	host := configuration.CurrentConfig.Api.Host
	port := configuration.CurrentConfig.Api.Port
	address := fmt.Sprintf("%s:%d", host, port)
	ui.Info("Serving api on http://%s", address)
	if err := rest.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-ctx.Done()
	return nil
}

func shutdown(fn func(ctx context.Context) error, name string) {
	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()
	if err := fn(timeoutCtx); err != nil {
		ui.Warning("Error stopping %s: %v", name, err)
	} else {
		ui.Debug("%s stopped.", name)
	}
}

func printSummary(report *session.Report) {
	for _, result := range report.Results {
		switch {
		case result.Skipped:
			ui.Warning("%s skipped: %s", result.ID, result.Error)
		case result.Passed:
			ui.Success("%s passed (expected %d%%, observed %d%%)", result.ID, result.Expected.Pwm, result.Observed.Pwm)
		default:
			ui.Error("%s failed: %s", result.ID, result.Error)
		}
	}
	ui.Info("%d passed, %d failed, %d skipped", report.Passed, report.Failed, report.Skipped)
}

func getProcessOwner() string {
	current, err := user.Current()
	if err != nil {
		return ""
	}
	return current.Username
}
