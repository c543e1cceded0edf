// Package state holds the client's in-memory view of the backend.
//
// The Store is the single writer of every container. Mutators are
// synchronous, never perform I/O and keep the container invariants:
//
//   - tobaccos: unique ids, ascending by name under the locale collation,
//     stable for equal names;
//   - mixes: unique ids, newest first;
//   - favorites: unique ids, kept consistent with mixes by UpdateMix.
//
// Listeners are notified after the lock is released.
package state

import (
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hookahmix/miniapp/internal/domain"
	domainerrors "github.com/hookahmix/miniapp/internal/errors"
	"github.com/hookahmix/miniapp/internal/id"
	"github.com/hookahmix/miniapp/internal/locale"
	"github.com/hookahmix/miniapp/internal/logger"
	"github.com/hookahmix/miniapp/internal/metrics"
)

// ErrClosed is returned by Subscribe after Close.
var ErrClosed = errors.New("state: store closed")

// Options configures a Store.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Collector
	// Locale selects the collation for tobacco names. Defaults to Russian.
	Locale language.Tag
}

type subscription struct {
	listener Listener
	id       string
}

// Store is the reactive client state.
type Store struct {
	collator   *collate.Collator
	logger     *slog.Logger
	metrics    *metrics.Collector
	stats      *domain.Stats
	currentMix *domain.GeneratedMix
	loaded     map[Container]bool
	errMsg     string
	currentTab domain.Tab
	categories []domain.Category
	tobaccos   []domain.Tobacco
	mixes      []domain.Mix
	favorites  []domain.Mix
	subs       []subscription
	mu         sync.Mutex
	loading    bool
	closed     bool
}

// New creates an empty Store on the home tab.
func New(opts Options) *Store {
	if opts.Locale == language.Und {
		opts.Locale = language.Russian
	}
	return &Store{
		collator:   locale.Collator(opts.Locale),
		logger:     logger.OrDiscard(opts.Logger).With("component", "store"),
		metrics:    opts.Metrics,
		loaded:     make(map[Container]bool),
		currentTab: domain.TabHome,
	}
}

// Categories returns a copy of the category list.
func (s *Store) Categories() []domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.categories)
}

// Tobaccos returns a copy of the collection in display order.
func (s *Store) Tobaccos() []domain.Tobacco {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tobaccos)
}

// Tobacco looks up a tobacco by id.
func (s *Store) Tobacco(tobaccoID int64) (domain.Tobacco, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexTobacco(s.tobaccos, tobaccoID); i >= 0 {
		return s.tobaccos[i], true
	}
	return domain.Tobacco{}, false
}

// Mixes returns a copy of the history, newest first.
func (s *Store) Mixes() []domain.Mix {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMixes(s.mixes)
}

// Favorites returns a copy of the favorites list.
func (s *Store) Favorites() []domain.Mix {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMixes(s.favorites)
}

// Mix looks up a mix by id in the history, then in the favorites.
func (s *Store) Mix(mixID int64) (domain.Mix, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexMix(s.mixes, mixID); i >= 0 {
		return cloneMix(s.mixes[i]), true
	}
	if i := indexMix(s.favorites, mixID); i >= 0 {
		return cloneMix(s.favorites[i]), true
	}
	return domain.Mix{}, false
}

// IsFavorite reports whether the favorites container holds mixID.
func (s *Store) IsFavorite(mixID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexMix(s.favorites, mixID) >= 0
}

// Stats returns the cached counts and whether any were loaded.
func (s *Store) Stats() (domain.Stats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return domain.Stats{}, false
	}
	return *s.stats, true
}

// CurrentMix returns the draft produced by the last generation, or nil.
func (s *Store) CurrentMix() *domain.GeneratedMix {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentMix == nil {
		return nil
	}
	m := *s.currentMix
	m.Components = slices.Clone(m.Components)
	return &m
}

// CurrentTab returns the selected tab.
func (s *Store) CurrentTab() domain.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTab
}

// Loading reports the shared loading flag.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Error returns the last error message, or "" when cleared.
func (s *Store) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Loaded reports whether c has been filled from the backend since the last Invalidate.
func (s *Store) Loaded(c Container) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded[c]
}

// SetCategories replaces the category list.
func (s *Store) SetCategories(categories []domain.Category) {
	s.mutate(Event{Type: EventCategoriesSet, Container: ContainerCategories}, func() {
		s.categories = uniqueBy(categories, func(c domain.Category) int64 { return c.ID })
		s.loaded[ContainerCategories] = true
	})
}

// SetTobaccos replaces the collection. Duplicate ids keep their first occurrence.
func (s *Store) SetTobaccos(tobaccos []domain.Tobacco) {
	s.mutate(Event{Type: EventTobaccosSet, Container: ContainerTobaccos}, func() {
		s.tobaccos = uniqueBy(tobaccos, func(t domain.Tobacco) int64 { return t.ID })
		s.sortTobaccos()
		s.loaded[ContainerTobaccos] = true
	})
}

// AddTobacco inserts t keeping the name order. An entry with the same id is replaced.
func (s *Store) AddTobacco(t domain.Tobacco) {
	s.mutate(Event{Type: EventTobaccoAdded, Container: ContainerTobaccos, ID: t.ID}, func() {
		if i := indexTobacco(s.tobaccos, t.ID); i >= 0 {
			s.tobaccos[i] = t
		} else {
			s.tobaccos = append(s.tobaccos, t)
		}
		s.sortTobaccos()
	})
}

// UpdateTobacco rewrites an existing entry and restores the name order.
// It reports whether the entry was present.
func (s *Store) UpdateTobacco(t domain.Tobacco) bool {
	found := false
	s.mutate(Event{Type: EventTobaccoUpdated, Container: ContainerTobaccos, ID: t.ID}, func() {
		i := indexTobacco(s.tobaccos, t.ID)
		if i < 0 {
			return
		}
		found = true
		s.tobaccos[i] = t
		s.sortTobaccos()
	})
	return found
}

// RemoveTobacco drops the entry with the given id, if any.
func (s *Store) RemoveTobacco(tobaccoID int64) {
	s.mutate(Event{Type: EventTobaccoRemoved, Container: ContainerTobaccos, ID: tobaccoID}, func() {
		s.tobaccos = slices.DeleteFunc(s.tobaccos, func(t domain.Tobacco) bool { return t.ID == tobaccoID })
	})
}

// ClearTobaccos empties the collection.
func (s *Store) ClearTobaccos() {
	s.mutate(Event{Type: EventTobaccosCleared, Container: ContainerTobaccos}, func() {
		s.tobaccos = nil
	})
}

// SetMixes replaces the history, ordered newest first.
func (s *Store) SetMixes(mixes []domain.Mix) {
	s.mutate(Event{Type: EventMixesSet, Container: ContainerMixes}, func() {
		s.mixes = newestFirst(uniqueBy(cloneMixes(mixes), func(m domain.Mix) int64 { return m.ID }))
		s.loaded[ContainerMixes] = true
	})
}

// AddMix puts m at the head of the history. An older entry with the same id is dropped.
func (s *Store) AddMix(m domain.Mix) {
	s.mutate(Event{Type: EventMixAdded, Container: ContainerMixes, ID: m.ID}, func() {
		rest := slices.DeleteFunc(s.mixes, func(x domain.Mix) bool { return x.ID == m.ID })
		s.mixes = append([]domain.Mix{cloneMix(m)}, rest...)
	})
}

// UpdateMix rewrites every entry with m's id in both the history and the
// favorites. It never inserts. A mix that is no longer a favorite leaves the
// favorites container.
func (s *Store) UpdateMix(m domain.Mix) {
	s.mutate(Event{Type: EventMixUpdated, Container: ContainerMixes, ID: m.ID}, func() {
		for i := range s.mixes {
			if s.mixes[i].ID == m.ID {
				s.mixes[i] = cloneMix(m)
			}
		}
		if !m.IsFavorite {
			s.favorites = slices.DeleteFunc(s.favorites, func(x domain.Mix) bool { return x.ID == m.ID })
			return
		}
		for i := range s.favorites {
			if s.favorites[i].ID == m.ID {
				s.favorites[i] = cloneMix(m)
			}
		}
	})
}

// SetFavorites replaces the favorites list.
func (s *Store) SetFavorites(mixes []domain.Mix) {
	s.mutate(Event{Type: EventFavoritesSet, Container: ContainerFavorites}, func() {
		s.favorites = uniqueBy(cloneMixes(mixes), func(m domain.Mix) int64 { return m.ID })
		s.loaded[ContainerFavorites] = true
	})
}

// SetStats replaces the cached counts.
func (s *Store) SetStats(stats domain.Stats) {
	s.mutate(Event{Type: EventStatsSet, Container: ContainerStats}, func() {
		s.stats = &stats
		s.loaded[ContainerStats] = true
	})
}

// SetCurrentMix replaces the generation draft. nil clears it.
func (s *Store) SetCurrentMix(m *domain.GeneratedMix) {
	s.mutate(Event{Type: EventCurrentMixSet}, func() {
		if m == nil {
			s.currentMix = nil
			return
		}
		draft := *m
		draft.Components = slices.Clone(m.Components)
		s.currentMix = &draft
	})
}

// SetCurrentTab selects tab. Unknown tabs are rejected and leave the state unchanged.
func (s *Store) SetCurrentTab(tab domain.Tab) error {
	if !tab.Valid() {
		return domainerrors.Validationf("unknown tab %q", tab)
	}
	s.mutate(Event{Type: EventTabChanged, Tab: tab}, func() {
		s.currentTab = tab
	})
	return nil
}

// SetLoading sets the shared loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mutate(Event{Type: EventLoadingChanged}, func() {
		s.loading = loading
	})
}

// SetError records msg as the current error. An empty msg clears it.
func (s *Store) SetError(msg string) {
	s.mutate(Event{Type: EventErrorChanged}, func() {
		s.errMsg = msg
	})
}

// Invalidate marks c as stale so the next page visit fetches it again.
// The contents stay visible until then.
func (s *Store) Invalidate(c Container) {
	s.mutate(Event{Type: EventInvalidated, Container: c}, func() {
		delete(s.loaded, c)
	})
}

// Subscribe registers l for every later mutation. The returned cancel func
// unregisters it and is safe to call more than once.
func (s *Store) Subscribe(l Listener) (string, func(), error) {
	subID, err := id.Generate("sub")
	if err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", nil, ErrClosed
	}
	s.subs = append(s.subs, subscription{id: subID, listener: l})
	s.logger.Debug("listener subscribed", "subscription_id", subID, "listeners", len(s.subs))

	var once sync.Once
	return subID, func() { once.Do(func() { s.unsubscribe(subID) }) }, nil
}

// Close drops every listener and rejects later subscriptions. Mutators keep
// working so in-flight requests can still land.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = nil
	s.logger.Debug("store closed")
	return nil
}

func (s *Store) unsubscribe(subID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool { return sub.id == subID })
}

// mutate applies fn under the lock, then notifies listeners outside it.
func (s *Store) mutate(ev Event, fn func()) {
	s.mu.Lock()
	fn()
	listeners := make([]Listener, len(s.subs))
	for i, sub := range s.subs {
		listeners[i] = sub.listener
	}
	sizes := s.sizes(ev)
	s.mu.Unlock()

	s.metrics.RecordMutation(string(ev.Type))
	for c, n := range sizes {
		s.metrics.SetContainerSize(string(c), n)
	}
	s.logger.Debug("store mutation", "event", ev.Type, "container", ev.Container, "id", ev.ID)

	for _, l := range listeners {
		l(ev)
	}
}

func (s *Store) sizes(ev Event) map[Container]int {
	sizes := make(map[Container]int, 2)
	for _, c := range []Container{ContainerCategories, ContainerTobaccos, ContainerMixes, ContainerFavorites} {
		if ev.Touches(c) {
			sizes[c] = s.lenOf(c)
		}
	}
	return sizes
}

func (s *Store) lenOf(c Container) int {
	switch c {
	case ContainerCategories:
		return len(s.categories)
	case ContainerTobaccos:
		return len(s.tobaccos)
	case ContainerMixes:
		return len(s.mixes)
	case ContainerFavorites:
		return len(s.favorites)
	default:
		return 0
	}
}

func (s *Store) sortTobaccos() {
	slices.SortStableFunc(s.tobaccos, func(a, b domain.Tobacco) int {
		return s.collator.CompareString(a.Name, b.Name)
	})
}

func indexTobacco(list []domain.Tobacco, tobaccoID int64) int {
	return slices.IndexFunc(list, func(t domain.Tobacco) bool { return t.ID == tobaccoID })
}

func indexMix(list []domain.Mix, mixID int64) int {
	return slices.IndexFunc(list, func(m domain.Mix) bool { return m.ID == mixID })
}

// uniqueBy returns a copy of list without later duplicates of a key.
func uniqueBy[T any](list []T, key func(T) int64) []T {
	seen := make(map[int64]bool, len(list))
	out := make([]T, 0, len(list))
	for _, v := range list {
		k := key(v)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}

func newestFirst(mixes []domain.Mix) []domain.Mix {
	slices.SortStableFunc(mixes, func(a, b domain.Mix) int {
		return b.CreatedAt.Compare(a.CreatedAt.Time)
	})
	return mixes
}

func cloneMix(m domain.Mix) domain.Mix {
	m.Components = maps.Clone(m.Components)
	return m
}

func cloneMixes(mixes []domain.Mix) []domain.Mix {
	if mixes == nil {
		return nil
	}
	out := make([]domain.Mix, len(mixes))
	for i, m := range mixes {
		out[i] = cloneMix(m)
	}
	return out
}
