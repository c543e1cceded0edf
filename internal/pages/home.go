package pages

import (
	"context"

	"github.com/hookahmix/miniapp/internal/logger"
	"github.com/hookahmix/miniapp/internal/state"
)

// EnterHome loads the counts unless a loaded copy is cached.
func (p *Pages) EnterHome(ctx context.Context) error {
	if p.store.Loaded(state.ContainerStats) {
		return nil
	}
	stats, err := p.client.User.Stats(ctx)
	if err != nil {
		p.logger.Warn("load stats failed", logger.Err(err))
		return err
	}
	p.store.SetStats(stats)
	return nil
}
