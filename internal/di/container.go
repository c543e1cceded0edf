// Package di provides dependency injection configuration for the mini-app client.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/hookahmix/miniapp/internal/apiclient"
	"github.com/hookahmix/miniapp/internal/config"
	"github.com/hookahmix/miniapp/internal/di/providers"
	"github.com/hookahmix/miniapp/internal/host"
	"github.com/hookahmix/miniapp/internal/metrics"
	"github.com/hookahmix/miniapp/internal/nav"
	"github.com/hookahmix/miniapp/internal/ratelimit"
	"github.com/hookahmix/miniapp/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
// shell may be nil when the client runs outside the host.
func NewContainer(args []string, term *providers.Terminal, shell host.Shell) *do.RootScope {
	injector := do.New()

	// Process inputs
	do.ProvideValue(injector, providers.Args(args))
	do.ProvideValue(injector, term)
	if shell != nil {
		do.ProvideValue(injector, shell)
	}

	// Core infrastructure
	do.Provide(injector, providers.ProvideInvocation)
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetrics)
	do.Provide(injector, providers.ProvideValidator)

	// Host and transport
	do.Provide(injector, providers.ProvideBridge)
	do.Provide(injector, providers.ProvideThrottle)
	do.Provide(injector, providers.ProvideAPIClient)

	// State layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSnapshotCache)

	// Pages
	do.Provide(injector, providers.ProvideNavigator)
	do.Provide(injector, providers.ProvidePages)

	// Server
	do.Provide(injector, providers.ProvideMetricsServer)

	return injector
}

// Bootstrap initializes all services.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*providers.Invocation](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*slog.Logger](injector)
	_ = do.MustInvoke[*metrics.Collector](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*host.Bridge](injector)
	_ = do.MustInvoke[*ratelimit.Throttle](injector)
	_ = do.MustInvoke[*apiclient.Client](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	// Snapshot warm-up runs after the search index follows the store so the
	// restored tobaccos are indexed too.
	if _, err := do.Invoke[*providers.SnapshotCacheHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*nav.Navigator](injector)
	_ = do.MustInvoke[*providers.PagesHandle](injector)

	if _, err := do.Invoke[*providers.MetricsServerHandle](injector); err != nil {
		return err
	}

	return nil
}

// Shutdown stops every service in reverse dependency order and reports the
// failures, if any.
func Shutdown(injector *do.RootScope) error {
	report := injector.Shutdown()
	if report == nil || report.Succeed {
		return nil
	}
	return report
}
