package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/hookahmix/miniapp/internal/config"
	"github.com/hookahmix/miniapp/internal/host"
	"github.com/hookahmix/miniapp/internal/identity"
	"github.com/hookahmix/miniapp/internal/metrics"
	"github.com/hookahmix/miniapp/internal/search"
	"github.com/hookahmix/miniapp/internal/snapshot"
	"github.com/hookahmix/miniapp/internal/state"
)

// StoreHandle wraps state.Store with Shutdownable.
type StoreHandle struct {
	*state.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the reactive client state.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	s := state.New(state.Options{
		Logger:  do.MustInvoke[*slog.Logger](i),
		Metrics: do.MustInvoke[*metrics.Collector](i),
		Locale:  cfg.Tag(),
	})
	return &StoreHandle{Store: s}, nil
}

// SearchIndexHandle wraps search.Index with Shutdownable.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the collection search index, kept in step with the store.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	idx, err := search.NewIndex(log)
	if err != nil {
		return nil, err
	}
	if err := idx.Follow(storeHandle.Store); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return &SearchIndexHandle{Index: idx}, nil
}

// SnapshotCacheHandle wraps snapshot.Cache with Shutdownable. On shutdown the
// current store contents are saved for the resolved user before the cache closes.
type SnapshotCacheHandle struct {
	*snapshot.Cache
	store  *state.Store
	logger *slog.Logger
	user   *identity.User
}

// UserID returns the id snapshots are keyed by, or zero when nobody is signed in.
func (h *SnapshotCacheHandle) UserID() int64 {
	if h.user == nil {
		return 0
	}
	return h.user.ID
}

// Shutdown implements do.Shutdownable.
func (h *SnapshotCacheHandle) Shutdown() error {
	if h.user != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := h.Save(ctx, h.user.ID, h.store.Snapshot()); err != nil {
			h.logger.Warn("failed to save snapshot", "user_id", h.user.ID, "error", err)
		}
	}
	return h.Close()
}

// ProvideSnapshotCache opens the snapshot cache and warms the store from it.
func ProvideSnapshotCache(i do.Injector) (*SnapshotCacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	bridge := do.MustInvoke[*host.Bridge](i)

	cache, err := snapshot.Open(cfg.Cache.Path, log)
	if err != nil {
		return nil, err
	}

	h := &SnapshotCacheHandle{
		Cache:  cache,
		store:  storeHandle.Store,
		logger: log,
		user:   identity.Resolve(bridge),
	}
	if h.user != nil {
		if _, err := cache.Warm(context.Background(), h.user.ID, storeHandle.Store); err != nil {
			log.Warn("failed to warm store from snapshot", "user_id", h.user.ID, "error", err)
		}
	}
	return h, nil
}
