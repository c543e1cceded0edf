package pages

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hookahmix/miniapp/internal/apiclient"
	"github.com/hookahmix/miniapp/internal/domain"
	"github.com/hookahmix/miniapp/internal/locale"
	"github.com/hookahmix/miniapp/internal/logger"
	"github.com/hookahmix/miniapp/internal/state"
)

// EnterCollection loads the collection and the categories together. Neither is
// applied unless both arrive.
func (p *Pages) EnterCollection(ctx context.Context) error {
	if p.store.Loaded(state.ContainerTobaccos) && p.store.Loaded(state.ContainerCategories) {
		return nil
	}

	var (
		tobaccos   []domain.Tobacco
		categories []domain.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tobaccos, err = p.client.Tobaccos.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = p.client.Categories.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		p.logger.Warn("load collection failed", logger.Err(err))
		return err
	}

	p.store.SetTobaccos(tobaccos)
	p.store.SetCategories(categories)
	return nil
}

func (p *Pages) loadTobaccos(ctx context.Context) error {
	tobaccos, err := p.client.Tobaccos.List(ctx)
	if err != nil {
		p.logger.Warn("load tobaccos failed", logger.Err(err))
		return err
	}
	p.store.SetTobaccos(tobaccos)
	return nil
}

// Collection returns the cached collection filtered by q on name or brand.
func (p *Pages) Collection(ctx context.Context, q string) ([]domain.Tobacco, error) {
	tobaccos := p.store.Tobaccos()
	if p.search == nil || strings.TrimSpace(q) == "" {
		return filterTobaccos(tobaccos, q), nil
	}
	return p.search.Filter(ctx, tobaccos, q)
}

// filterTobaccos is the substring match used when no search index is attached.
func filterTobaccos(tobaccos []domain.Tobacco, q string) []domain.Tobacco {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return tobaccos
	}
	out := make([]domain.Tobacco, 0, len(tobaccos))
	for _, t := range tobaccos {
		if strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.BrandName()), q) {
			out = append(out, t)
		}
	}
	return out
}

// AddTobacco creates a tobacco and inserts it into the collection.
// Name and brand are trimmed; a blank brand is sent as absent.
func (p *Pages) AddTobacco(ctx context.Context, in apiclient.TobaccoInput) (domain.Tobacco, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = trimmed(in.Brand)
	in.Notes = trimmed(in.Notes)
	if err := p.validator.Validate(in); err != nil {
		return domain.Tobacco{}, p.fail("add tobacco", err)
	}

	t, err := p.client.Tobaccos.Create(ctx, in)
	if err != nil {
		return domain.Tobacco{}, p.fail("add tobacco", err)
	}
	p.store.AddTobacco(t)
	p.haptics.Success()
	p.logger.Info("tobacco added", "tobacco_id", t.ID, "name", t.Name)
	return t, nil
}

// UpdateTobacco applies a partial update and rewrites the cached entry.
func (p *Pages) UpdateTobacco(ctx context.Context, tobaccoID int64, in apiclient.TobaccoUpdate) (domain.Tobacco, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if err := p.validator.Validate(in); err != nil {
		return domain.Tobacco{}, p.fail("update tobacco", err)
	}

	t, err := p.client.Tobaccos.Update(ctx, tobaccoID, in)
	if err != nil {
		return domain.Tobacco{}, p.fail("update tobacco", err)
	}
	p.store.UpdateTobacco(t)
	p.haptics.Success()
	return t, nil
}

// DeleteTobacco asks for confirmation, then deletes the tobacco.
// It reports false when the user declined.
func (p *Pages) DeleteTobacco(ctx context.Context, tobaccoID int64) (bool, error) {
	ok, err := p.confirm(ctx, locale.MsgConfirmDelete)
	if err != nil || !ok {
		return false, err
	}

	if _, err := p.client.Tobaccos.Delete(ctx, tobaccoID); err != nil {
		return false, p.fail("delete tobacco", err)
	}
	p.store.RemoveTobacco(tobaccoID)
	p.haptics.Success()
	p.logger.Info("tobacco deleted", "tobacco_id", tobaccoID)
	return true, nil
}

// DeleteAll asks for confirmation, then empties the collection.
// It returns the backend's message, or "" when the user declined.
func (p *Pages) DeleteAll(ctx context.Context) (string, error) {
	ok, err := p.confirm(ctx, locale.MsgConfirmDeleteAll)
	if err != nil || !ok {
		return "", err
	}

	msg, err := p.client.Tobaccos.DeleteAll(ctx)
	if err != nil {
		return "", p.fail("delete all tobaccos", err)
	}
	p.store.ClearTobaccos()
	p.haptics.Success()
	p.logger.Info("collection cleared", "message", msg)
	return msg, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
