package domain

import "fmt"

// Tab is a page-level view of the mini-app.
type Tab string

// Tabs in navigation-bar order.
const (
	TabHome       Tab = "home"
	TabCollection Tab = "collection"
	TabMix        Tab = "mix"
	TabHistory    Tab = "history"
	TabFavorites  Tab = "favorites"
)

// Tabs returns every tab in navigation-bar order.
func Tabs() []Tab {
	return []Tab{TabHome, TabCollection, TabMix, TabHistory, TabFavorites}
}

// Valid reports whether t is a known tab.
func (t Tab) Valid() bool {
	switch t {
	case TabHome, TabCollection, TabMix, TabHistory, TabFavorites:
		return true
	default:
		return false
	}
}

// ParseTab converts a tab name into a Tab.
func ParseTab(s string) (Tab, error) {
	t := Tab(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown tab %q", s)
	}
	return t, nil
}
