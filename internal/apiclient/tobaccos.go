package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hookahmix/miniapp/internal/domain"
	domainerrors "github.com/hookahmix/miniapp/internal/errors"
)

// CategoryService reads the reference category list.
type CategoryService struct {
	c *Client
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return request[[]domain.Category](ctx, s.c, http.MethodGet, "/categories", nil)
}

// TobaccoService manages the user's collection.
type TobaccoService struct {
	c *Client
}

// List returns the user's tobaccos.
func (s *TobaccoService) List(ctx context.Context) ([]domain.Tobacco, error) {
	return request[[]domain.Tobacco](ctx, s.c, http.MethodGet, "/tobaccos", nil)
}

// Get returns one tobacco.
func (s *TobaccoService) Get(ctx context.Context, id int64) (domain.Tobacco, error) {
	return request[domain.Tobacco](ctx, s.c, http.MethodGet, tobaccoPath(id), nil)
}

// Create adds a tobacco to the collection.
func (s *TobaccoService) Create(ctx context.Context, in TobaccoInput) (domain.Tobacco, error) {
	return request[domain.Tobacco](ctx, s.c, http.MethodPost, "/tobaccos", in)
}

// CreateBulk adds many tobaccos at once. Each entry lands in exactly one of
// added, skipped or errors; a response that does not account for every entry
// is reported as an error.
func (s *TobaccoService) CreateBulk(ctx context.Context, items []TobaccoInput) (domain.BulkResult, error) {
	if items == nil {
		items = []TobaccoInput{}
	}
	res, err := request[domain.BulkResult](ctx, s.c, http.MethodPost, "/tobaccos/bulk", bulkRequest{Tobaccos: items})
	if err != nil {
		return domain.BulkResult{}, err
	}
	if !res.Accounts(len(items)) {
		return res, domainerrors.Internalf("bulk result covers %d of %d entries", res.Total(), len(items)).
			WithDetails(res)
	}
	return res, nil
}

// Update changes fields of an existing tobacco.
func (s *TobaccoService) Update(ctx context.Context, id int64, in TobaccoUpdate) (domain.Tobacco, error) {
	return request[domain.Tobacco](ctx, s.c, http.MethodPut, tobaccoPath(id), in)
}

// Delete removes one tobacco and returns the backend's confirmation text.
func (s *TobaccoService) Delete(ctx context.Context, id int64) (string, error) {
	res, err := request[messageResponse](ctx, s.c, http.MethodDelete, tobaccoPath(id), nil)
	return res.Message, err
}

// DeleteAll empties the collection.
func (s *TobaccoService) DeleteAll(ctx context.Context) (string, error) {
	res, err := request[messageResponse](ctx, s.c, http.MethodDelete, "/tobaccos", nil)
	return res.Message, err
}

func tobaccoPath(id int64) string {
	return "/tobaccos/" + strconv.FormatInt(id, 10)
}
