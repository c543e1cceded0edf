package pages

import (
	"context"

	"github.com/hookahmix/miniapp/internal/locale"
	"github.com/hookahmix/miniapp/internal/logger"
	"github.com/hookahmix/miniapp/internal/state"
)

// EnterFavorites loads the favorites unless a loaded copy is cached.
func (p *Pages) EnterFavorites(ctx context.Context) error {
	if p.store.Loaded(state.ContainerFavorites) {
		return nil
	}
	mixes, err := p.client.Mixes.Favorites(ctx)
	if err != nil {
		p.logger.Warn("load favorites failed", logger.Err(err))
		return err
	}
	p.store.SetFavorites(mixes)
	return nil
}

// Unfavorite asks for confirmation, then removes a mix from the favorites.
// It reports false when the user declined.
func (p *Pages) Unfavorite(ctx context.Context, mixID int64) (bool, error) {
	ok, err := p.confirm(ctx, locale.MsgConfirmUnfav)
	if err != nil || !ok {
		return false, err
	}
	if _, err := p.ToggleFavorite(ctx, mixID, false); err != nil {
		return false, err
	}
	return true, nil
}

// ClearFavorites asks for confirmation, then unfavorites every mix. The cached
// history is rewritten so no entry keeps a stale favorite flag.
func (p *Pages) ClearFavorites(ctx context.Context) (string, error) {
	ok, err := p.confirm(ctx, locale.MsgConfirmClearFav)
	if err != nil || !ok {
		return "", err
	}

	msg, err := p.client.Mixes.ClearFavorites(ctx)
	if err != nil {
		return "", p.fail("clear favorites", err)
	}

	for _, m := range p.store.Mixes() {
		if m.IsFavorite {
			m.IsFavorite = false
			p.store.UpdateMix(m)
		}
	}
	p.store.SetFavorites(nil)
	p.store.Invalidate(state.ContainerStats)
	p.haptics.Success()
	p.logger.Info("favorites cleared", "message", msg)
	return msg, nil
}
