package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/hookahmix/miniapp/internal/apiclient"
	"github.com/hookahmix/miniapp/internal/config"
	"github.com/hookahmix/miniapp/internal/host"
	"github.com/hookahmix/miniapp/internal/metrics"
	"github.com/hookahmix/miniapp/internal/nav"
	"github.com/hookahmix/miniapp/internal/pages"
	"github.com/hookahmix/miniapp/internal/validation"
)

// PagesHandle wraps pages.Pages with Shutdownable.
type PagesHandle struct {
	*pages.Pages
}

// Shutdown implements do.Shutdownable.
func (h *PagesHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvidePages provides the page loaders and actions.
func ProvidePages(i do.Injector) (*PagesHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)

	p, err := pages.New(pages.Options{
		Client:       do.MustInvoke[*apiclient.Client](i),
		Store:        storeHandle.Store,
		Bridge:       do.MustInvoke[*host.Bridge](i),
		Search:       searchHandle.Index,
		Validator:    do.MustInvoke[*validation.Validator](i),
		Logger:       do.MustInvoke[*slog.Logger](i),
		Locale:       cfg.Tag(),
		HistoryLimit: cfg.App.HistoryLimit,
	})
	if err != nil {
		return nil, err
	}
	return &PagesHandle{Pages: p}, nil
}

// ProvideNavigator provides the tab navigator.
func ProvideNavigator(i do.Injector) (*nav.Navigator, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	bridge := do.MustInvoke[*host.Bridge](i)

	return nav.New(
		storeHandle.Store,
		bridge.Haptics(),
		do.MustInvoke[*metrics.Collector](i),
		do.MustInvoke[*slog.Logger](i),
	), nil
}
