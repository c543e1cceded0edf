package pages

import (
	"context"

	"github.com/hookahmix/miniapp/internal/apiclient"
	"github.com/hookahmix/miniapp/internal/domain"
	"github.com/hookahmix/miniapp/internal/logger"
	"github.com/hookahmix/miniapp/internal/state"
)

// EnterHistory loads the most recent mixes unless a loaded copy is cached.
func (p *Pages) EnterHistory(ctx context.Context) error {
	if p.store.Loaded(state.ContainerMixes) {
		return nil
	}
	mixes, err := p.client.Mixes.List(ctx, p.historyLimit)
	if err != nil {
		p.logger.Warn("load history failed", logger.Err(err))
		return err
	}
	p.store.SetMixes(mixes)
	return nil
}

// Rate stores a rating for a mix and rewrites every cached copy of it.
func (p *Pages) Rate(ctx context.Context, mixID int64, rating domain.Rating) (domain.Mix, error) {
	if err := p.validator.Validate(apiclient.RateRequest{Rating: rating}); err != nil {
		return domain.Mix{}, p.fail("rate mix", err)
	}
	p.haptics.Light()

	m, err := p.client.Mixes.Rate(ctx, mixID, rating)
	if err != nil {
		return domain.Mix{}, p.fail("rate mix", err)
	}
	p.store.UpdateMix(m)
	p.haptics.Success()
	return m, nil
}

// ToggleFavorite sets the favorite flag of a mix. A mix that becomes a
// favorite but is missing from the cached favorites marks them stale, since
// the Store never inserts on update.
func (p *Pages) ToggleFavorite(ctx context.Context, mixID int64, favorite bool) (domain.Mix, error) {
	p.haptics.Light()

	m, err := p.client.Mixes.ToggleFavorite(ctx, mixID, favorite)
	if err != nil {
		return domain.Mix{}, p.fail("toggle favorite", err)
	}
	p.store.UpdateMix(m)
	if m.IsFavorite && !p.store.IsFavorite(m.ID) {
		p.store.Invalidate(state.ContainerFavorites)
	}
	p.store.Invalidate(state.ContainerStats)
	p.haptics.Success()
	return m, nil
}
