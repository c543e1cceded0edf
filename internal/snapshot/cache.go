// Package snapshot persists the cacheable Store containers in Badger so a
// restarted client can show the last known data before the first fetch lands.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hookahmix/miniapp/internal/logger"
	"github.com/hookahmix/miniapp/internal/state"
)

const keyPrefix = "snap:"

// Cache wraps a Badger database holding one snapshot per user.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens the cache at path. An empty path keeps everything in memory.
func Open(path string, log *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true
		opts.CompactL0OnClose = true
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot cache: %w", err)
	}

	log = logger.OrDiscard(log).With("component", "snapshot")
	log.Debug("snapshot cache opened", "path", path, "in_memory", path == "")
	return &Cache{db: db, logger: log, now: time.Now}, nil
}

// Close flushes and closes the database.
func (c *Cache) Close() error {
	c.logger.Debug("closing snapshot cache")
	return c.db.Close()
}

func key(userID int64, part string) []byte {
	return []byte(keyPrefix + strconv.FormatInt(userID, 10) + ":" + part)
}

// Save writes snap for userID in one transaction, replacing the previous one.
func (c *Cache) Save(ctx context.Context, userID int64, snap state.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	parts := map[string]any{
		"categories": snap.Categories,
		"tobaccos":   snap.Tobaccos,
		"mixes":      snap.Mixes,
		"favorites":  snap.Favorites,
	}
	if snap.Stats != nil {
		parts["stats"] = snap.Stats
	}

	err := c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(key(userID, "stats")); err != nil {
			return err
		}
		for part, v := range parts {
			data, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", part, err)
			}
			if err := txn.Set(key(userID, part), data); err != nil {
				return err
			}
		}
		stamp := c.now().UTC().Format(time.RFC3339Nano)
		return txn.Set(key(userID, "saved_at"), []byte(stamp))
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	c.logger.Debug("snapshot saved",
		"user_id", userID,
		"tobaccos", len(snap.Tobaccos),
		"mixes", len(snap.Mixes),
		"favorites", len(snap.Favorites),
	)
	return nil
}

// Load reads the snapshot saved for userID. The bool is false when nothing was saved.
func (c *Cache) Load(ctx context.Context, userID int64) (state.Snapshot, time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return state.Snapshot{}, time.Time{}, false, err
	}

	var (
		snap    state.Snapshot
		savedAt time.Time
		found   bool
	)
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(userID, "saved_at"))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		if err := item.Value(func(val []byte) error {
			savedAt, err = time.Parse(time.RFC3339Nano, string(val))
			return err
		}); err != nil {
			return fmt.Errorf("read saved_at: %w", err)
		}

		parts := map[string]any{
			"categories": &snap.Categories,
			"tobaccos":   &snap.Tobaccos,
			"mixes":      &snap.Mixes,
			"favorites":  &snap.Favorites,
			"stats":      &snap.Stats,
		}
		for part, dest := range parts {
			if err := get(txn, key(userID, part), dest); err != nil {
				return fmt.Errorf("read %s: %w", part, err)
			}
		}
		return nil
	})
	if err != nil {
		return state.Snapshot{}, time.Time{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, savedAt, found, nil
}

// Clear removes the snapshot saved for userID.
func (c *Cache) Clear(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		for _, part := range []string{"categories", "tobaccos", "mixes", "favorites", "stats", "saved_at"} {
			if err := txn.Delete(key(userID, part)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Warm restores the saved snapshot into store. It reports whether one was found.
func (c *Cache) Warm(ctx context.Context, userID int64, store *state.Store) (bool, error) {
	snap, savedAt, found, err := c.Load(ctx, userID)
	if err != nil || !found || snap.Empty() {
		return false, err
	}
	store.Restore(snap)
	c.logger.Info("store restored from snapshot", "user_id", userID, "saved_at", savedAt)
	return true, nil
}

// get decodes the value at k into dest. A missing key leaves dest untouched.
func get(txn *badger.Txn, k []byte, dest any) error {
	item, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}
