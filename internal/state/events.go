package state

import (
	"github.com/hookahmix/miniapp/internal/domain"
)

// Container names a collection held by the Store.
type Container string

// Store containers.
const (
	ContainerCategories Container = "categories"
	ContainerTobaccos   Container = "tobaccos"
	ContainerMixes      Container = "mixes"
	ContainerFavorites  Container = "favorites"
	ContainerStats      Container = "stats"
)

// Containers returns every container in a fixed order.
func Containers() []Container {
	return []Container{ContainerCategories, ContainerTobaccos, ContainerMixes, ContainerFavorites, ContainerStats}
}

// EventType identifies what changed.
type EventType string

// Mutation events.
const (
	EventCategoriesSet   EventType = "categories.set"
	EventTobaccosSet     EventType = "tobaccos.set"
	EventTobaccoAdded    EventType = "tobacco.added"
	EventTobaccoUpdated  EventType = "tobacco.updated"
	EventTobaccoRemoved  EventType = "tobacco.removed"
	EventTobaccosCleared EventType = "tobaccos.cleared"
	EventMixesSet        EventType = "mixes.set"
	EventMixAdded        EventType = "mix.added"
	EventMixUpdated      EventType = "mix.updated"
	EventFavoritesSet    EventType = "favorites.set"
	EventStatsSet        EventType = "stats.set"
	EventCurrentMixSet   EventType = "current_mix.set"
	EventTabChanged      EventType = "tab.changed"
	EventLoadingChanged  EventType = "loading.changed"
	EventErrorChanged    EventType = "error.changed"
	EventInvalidated     EventType = "container.invalidated"
	EventRestored        EventType = "store.restored"
)

// Event describes a committed mutation. Listeners read the new state back
// from the Store; the event only says what changed.
type Event struct {
	Type      EventType
	Container Container
	Tab       domain.Tab
	// ID is the affected entity for single-entity events.
	ID int64
}

// Touches reports whether the event changed container c.
func (e Event) Touches(c Container) bool {
	switch e.Type {
	case EventRestored:
		return true
	case EventMixUpdated:
		return c == ContainerMixes || c == ContainerFavorites
	default:
		return e.Container == c
	}
}

// Listener receives events after the mutation is committed, outside the
// Store's lock. A listener may read from the Store and may mutate it.
type Listener func(Event)
