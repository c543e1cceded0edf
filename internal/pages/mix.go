package pages

import (
	"context"

	"github.com/hookahmix/miniapp/internal/apiclient"
	"github.com/hookahmix/miniapp/internal/domain"
	domainerrors "github.com/hookahmix/miniapp/internal/errors"
	"github.com/hookahmix/miniapp/internal/locale"
	"github.com/hookahmix/miniapp/internal/state"
)

// MinTobaccosForMix is the collection size the backend needs to build a mix.
const MinTobaccosForMix = 2

// EnterMix loads the collection when the Store holds none, so the page can
// offer base tobaccos.
func (p *Pages) EnterMix(ctx context.Context) error {
	if len(p.store.Tobaccos()) > 0 {
		return nil
	}
	return p.loadTobaccos(ctx)
}

// CanGenerate reports whether the cached collection is large enough for a mix.
func (p *Pages) CanGenerate() bool {
	return len(p.store.Tobaccos()) >= MinTobaccosForMix
}

// GenerateHint is shown in place of the generate controls while CanGenerate
// is false. It is empty otherwise.
func (p *Pages) GenerateHint() string {
	if p.CanGenerate() {
		return ""
	}
	return p.text(locale.MsgNeedTobaccos, MinTobaccosForMix)
}

// Generate requests a new mix and stores it as the current draft. The draft
// and the error flag are cleared first and the loading flag is held for the
// duration of the call. The history and the counts are marked stale because
// the backend has stored the new mix.
func (p *Pages) Generate(ctx context.Context, req apiclient.GenerateRequest) (domain.GeneratedMix, error) {
	if err := p.validator.Validate(req); err != nil {
		return domain.GeneratedMix{}, p.fail("generate mix", err)
	}

	p.store.SetLoading(true)
	p.store.SetError("")
	p.store.SetCurrentMix(nil)
	defer p.store.SetLoading(false)

	mix, err := p.client.Mixes.Generate(ctx, req)
	if err != nil {
		p.store.SetError(domainerrors.MessageOf(err))
		return domain.GeneratedMix{}, p.fail("generate mix", err)
	}

	p.store.SetCurrentMix(&mix)
	p.store.Invalidate(state.ContainerMixes)
	p.store.Invalidate(state.ContainerStats)
	p.haptics.Success()
	p.logger.Info("mix generated", "mix_id", mix.ID, "request_type", req.RequestType)
	return mix, nil
}

// ClearDraft drops the current draft and the error flag.
func (p *Pages) ClearDraft() {
	p.store.SetCurrentMix(nil)
	p.store.SetError("")
}

// RateDraft rates the current draft.
func (p *Pages) RateDraft(ctx context.Context, rating domain.Rating) (domain.Mix, error) {
	draft := p.store.CurrentMix()
	if draft == nil {
		return domain.Mix{}, domainerrors.Validation("no mix to rate")
	}
	return p.Rate(ctx, draft.ID, rating)
}

// FavoriteDraft adds the current draft to the favorites.
func (p *Pages) FavoriteDraft(ctx context.Context) (domain.Mix, error) {
	draft := p.store.CurrentMix()
	if draft == nil {
		return domain.Mix{}, domainerrors.Validation("no mix to favorite")
	}
	return p.ToggleFavorite(ctx, draft.ID, true)
}
