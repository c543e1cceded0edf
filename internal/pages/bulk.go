package pages

import (
	"context"
	"strings"

	"github.com/hookahmix/miniapp/internal/apiclient"
	"github.com/hookahmix/miniapp/internal/domain"
	domainerrors "github.com/hookahmix/miniapp/internal/errors"
	"github.com/hookahmix/miniapp/internal/locale"
	"github.com/hookahmix/miniapp/internal/logger"
	"github.com/hookahmix/miniapp/internal/state"
)

// BulkReport is the outcome of a bulk add.
type BulkReport struct {
	Result  domain.BulkResult
	Summary string
}

// ParseBulk reads one tobacco per non-blank line as "name | brand".
// The brand is optional and anything after a second separator is ignored.
func ParseBulk(text string) []apiclient.TobaccoInput {
	var items []apiclient.TobaccoInput
	for line := range strings.SplitSeq(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "|")
		item := apiclient.TobaccoInput{Name: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			item.Brand = trimmed(&parts[1])
		}
		items = append(items, item)
	}
	return items
}

// BulkAdd submits every entry parsed from text in one batch. Entries the
// backend skips or rejects do not fail the batch. On success the collection
// is reloaded from the backend.
func (p *Pages) BulkAdd(ctx context.Context, text string) (BulkReport, error) {
	items := ParseBulk(text)
	if len(items) == 0 {
		return BulkReport{}, domainerrors.Validation(p.text(locale.MsgEmptyBulk))
	}

	res, err := p.client.Tobaccos.CreateBulk(ctx, items)
	if err != nil {
		return BulkReport{}, p.fail("bulk add", err)
	}
	p.haptics.Success()
	p.logger.Info("bulk add finished",
		"submitted", len(items),
		"added", len(res.Added),
		"skipped", len(res.Skipped),
		"errors", len(res.Errors),
	)

	p.store.Invalidate(state.ContainerTobaccos)
	if err := p.loadTobaccos(ctx); err != nil {
		p.logger.Warn("reload after bulk add failed", logger.Err(err))
	}

	return BulkReport{Result: res, Summary: p.BulkSummary(res)}, nil
}

// BulkSummary renders the counts of res. Skipped and error lines appear only
// when nonzero.
func (p *Pages) BulkSummary(res domain.BulkResult) string {
	lines := []string{p.text(locale.MsgBulkAdded, len(res.Added))}
	if n := len(res.Skipped); n > 0 {
		lines = append(lines, p.text(locale.MsgBulkSkipped, n))
	}
	if n := len(res.Errors); n > 0 {
		lines = append(lines, p.text(locale.MsgBulkErrors, n))
	}
	return strings.Join(lines, "\n")
}
