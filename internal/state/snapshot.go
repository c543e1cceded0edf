package state

import (
	"slices"

	"github.com/hookahmix/miniapp/internal/domain"
)

// Snapshot is a point-in-time copy of the cacheable containers.
type Snapshot struct {
	Stats      *domain.Stats     `json:"stats,omitempty"`
	Categories []domain.Category `json:"categories,omitempty"`
	Tobaccos   []domain.Tobacco  `json:"tobaccos,omitempty"`
	Mixes      []domain.Mix      `json:"mixes,omitempty"`
	Favorites  []domain.Mix      `json:"favorites,omitempty"`
}

// Empty reports whether the snapshot holds nothing.
func (s Snapshot) Empty() bool {
	return s.Stats == nil && len(s.Categories) == 0 && len(s.Tobaccos) == 0 &&
		len(s.Mixes) == 0 && len(s.Favorites) == 0
}

// Snapshot copies the cacheable containers.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Categories: slices.Clone(s.categories),
		Tobaccos:   slices.Clone(s.tobaccos),
		Mixes:      cloneMixes(s.mixes),
		Favorites:  cloneMixes(s.favorites),
	}
	if s.stats != nil {
		stats := *s.stats
		snap.Stats = &stats
	}
	return snap
}

// Restore fills the containers from snap with the same invariants as the
// bulk setters. Restored containers are not marked loaded, so the first page
// visit still refreshes them from the backend.
func (s *Store) Restore(snap Snapshot) {
	s.mutate(Event{Type: EventRestored}, func() {
		s.categories = uniqueBy(snap.Categories, func(c domain.Category) int64 { return c.ID })
		s.tobaccos = uniqueBy(snap.Tobaccos, func(t domain.Tobacco) int64 { return t.ID })
		s.sortTobaccos()
		s.mixes = newestFirst(uniqueBy(cloneMixes(snap.Mixes), func(m domain.Mix) int64 { return m.ID }))
		s.favorites = uniqueBy(cloneMixes(snap.Favorites), func(m domain.Mix) int64 { return m.ID })
		s.stats = nil
		if snap.Stats != nil {
			stats := *snap.Stats
			s.stats = &stats
		}
	})
}
