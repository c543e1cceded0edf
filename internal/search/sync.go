package search

import (
	"github.com/hookahmix/miniapp/internal/logger"
	"github.com/hookahmix/miniapp/internal/state"
)

// Follow indexes the store's collection and keeps the index in step with
// every later tobacco mutation until Close.
func (s *Index) Follow(store *state.Store) error {
	if err := s.Reset(store.Tobaccos()); err != nil {
		return err
	}

	_, cancel, err := store.Subscribe(func(ev state.Event) {
		if !ev.Touches(state.ContainerTobaccos) {
			return
		}
		if err := s.apply(store, ev); err != nil {
			s.logger.Warn("search index update failed", "event", ev.Type, logger.Err(err))
		}
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.detach != nil {
		s.detach()
	}
	s.detach = cancel
	s.mu.Unlock()
	return nil
}

func (s *Index) apply(store *state.Store, ev state.Event) error {
	switch ev.Type {
	case state.EventTobaccoAdded, state.EventTobaccoUpdated:
		if t, ok := store.Tobacco(ev.ID); ok {
			return s.IndexTobacco(t)
		}
		return s.DeleteTobacco(ev.ID)
	case state.EventTobaccoRemoved:
		return s.DeleteTobacco(ev.ID)
	case state.EventInvalidated:
		return nil
	default:
		return s.Reset(store.Tobaccos())
	}
}
