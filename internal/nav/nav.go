// Package nav implements the tab navigation state machine.
//
// Every tab is reachable from every other tab and there is no terminal state.
// Selecting a tab only writes the Store's current tab; page loading belongs
// to the pages layer.
package nav

import (
	"log/slog"

	"github.com/hookahmix/miniapp/internal/domain"
	"github.com/hookahmix/miniapp/internal/host"
	"github.com/hookahmix/miniapp/internal/logger"
	"github.com/hookahmix/miniapp/internal/metrics"
	"github.com/hookahmix/miniapp/internal/state"
)

// Navigator switches between tabs.
type Navigator struct {
	store   *state.Store
	haptics host.Haptics
	metrics *metrics.Collector
	logger  *slog.Logger
}

// New creates a Navigator writing to store.
func New(store *state.Store, haptics host.Haptics, m *metrics.Collector, log *slog.Logger) *Navigator {
	return &Navigator{
		store:   store,
		haptics: haptics,
		metrics: m,
		logger:  logger.OrDiscard(log).With("component", "nav"),
	}
}

// Current returns the selected tab.
func (n *Navigator) Current() domain.Tab {
	return n.store.CurrentTab()
}

// Select makes tab current and fires a light impact. Reselecting the current
// tab is allowed. An unknown tab returns a validation error and changes nothing.
func (n *Navigator) Select(tab domain.Tab) error {
	from := n.store.CurrentTab()
	if err := n.store.SetCurrentTab(tab); err != nil {
		n.logger.Debug("tab rejected", "tab", tab)
		return err
	}
	n.haptics.Light()
	n.metrics.RecordTabSelection(string(tab))
	n.logger.Debug("tab selected", "from", from, "to", tab)
	return nil
}

// SelectName parses name and selects the matching tab.
func (n *Navigator) SelectName(name string) (domain.Tab, error) {
	tab := domain.Tab(name)
	if err := n.Select(tab); err != nil {
		return n.Current(), err
	}
	return tab, nil
}
