package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/hookahmix/miniapp/internal/apiclient"
	"github.com/hookahmix/miniapp/internal/config"
	"github.com/hookahmix/miniapp/internal/host"
	"github.com/hookahmix/miniapp/internal/metrics"
	"github.com/hookahmix/miniapp/internal/ratelimit"
	"github.com/hookahmix/miniapp/internal/validation"
)

// ProvideMetrics provides the Prometheus collector.
func ProvideMetrics(_ do.Injector) (*metrics.Collector, error) {
	return metrics.NewCollector(metricsNamespace), nil
}

// ProvideThrottle provides the per-resource request throttle.
func ProvideThrottle(i do.Injector) (*ratelimit.Throttle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.New(cfg.API.RateLimit, cfg.API.RateBurst), nil
}

// ProvideValidator provides the input validator.
func ProvideValidator(_ do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideBridge provides the host bridge. Outside the host shell dialogs are
// answered on the terminal.
func ProvideBridge(i do.Injector) (*host.Bridge, error) {
	term := do.MustInvoke[*Terminal](i)
	log := do.MustInvoke[*slog.Logger](i)

	var shell host.Shell
	if s, err := do.Invoke[host.Shell](i); err == nil {
		shell = s
	}

	bridge := host.NewBridge(shell, host.NewTerminalFallback(term.In, term.Err), log)
	bridge.Init()
	return bridge, nil
}

// ProvideAPIClient provides the backend client.
func ProvideAPIClient(i do.Injector) (*apiclient.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	bridge := do.MustInvoke[*host.Bridge](i)

	return apiclient.New(apiclient.Options{
		Identity: apiclient.FromSource(bridge),
		Throttle: do.MustInvoke[*ratelimit.Throttle](i),
		Metrics:  do.MustInvoke[*metrics.Collector](i),
		Logger:   do.MustInvoke[*slog.Logger](i),
		BaseURL:  cfg.API.BaseURL,
		Locale:   cfg.Tag(),
	}), nil
}
