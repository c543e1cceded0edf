package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hookahmix/miniapp/internal/domain"
)

// DefaultHistoryLimit is how many mixes List returns when limit is not positive.
const DefaultHistoryLimit = 20

// MixService generates and curates mixes.
type MixService struct {
	c *Client
}

// Generate asks the backend for a new mix. The result is already stored server-side.
func (s *MixService) Generate(ctx context.Context, req GenerateRequest) (domain.GeneratedMix, error) {
	return request[domain.GeneratedMix](ctx, s.c, http.MethodPost, "/mixes/generate", req)
}

// List returns the newest mixes, at most limit of them.
func (s *MixService) List(ctx context.Context, limit int) ([]domain.Mix, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return request[[]domain.Mix](ctx, s.c, http.MethodGet, "/mixes?limit="+strconv.Itoa(limit), nil)
}

// Favorites returns the favorite mixes.
func (s *MixService) Favorites(ctx context.Context) ([]domain.Mix, error) {
	return request[[]domain.Mix](ctx, s.c, http.MethodGet, "/mixes/favorites", nil)
}

// Get returns one mix.
func (s *MixService) Get(ctx context.Context, id int64) (domain.Mix, error) {
	return request[domain.Mix](ctx, s.c, http.MethodGet, mixPath(id), nil)
}

// Rate sets the rating of a mix and returns the updated mix.
func (s *MixService) Rate(ctx context.Context, id int64, rating domain.Rating) (domain.Mix, error) {
	return request[domain.Mix](ctx, s.c, http.MethodPost, mixPath(id)+"/rate", RateRequest{Rating: rating})
}

// ToggleFavorite sets the favorite flag of a mix and returns the updated mix.
func (s *MixService) ToggleFavorite(ctx context.Context, id int64, favorite bool) (domain.Mix, error) {
	return request[domain.Mix](ctx, s.c, http.MethodPost, mixPath(id)+"/favorite", FavoriteRequest{IsFavorite: favorite})
}

// ClearFavorites unflags every favorite mix.
func (s *MixService) ClearFavorites(ctx context.Context) (string, error) {
	res, err := request[messageResponse](ctx, s.c, http.MethodDelete, "/mixes/favorites", nil)
	return res.Message, err
}

func mixPath(id int64) string {
	return "/mixes/" + strconv.FormatInt(id, 10)
}

// UserService reads per-user aggregates.
type UserService struct {
	c *Client
}

// Stats returns collection and mix counts.
func (s *UserService) Stats(ctx context.Context) (domain.Stats, error) {
	return request[domain.Stats](ctx, s.c, http.MethodGet, "/user/stats", nil)
}

// Me returns the backend's record of the current user.
func (s *UserService) Me(ctx context.Context) (domain.Profile, error) {
	return request[domain.Profile](ctx, s.c, http.MethodGet, "/user/me", nil)
}
