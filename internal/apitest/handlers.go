package apitest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/hookahmix/miniapp/internal/domain"
	"github.com/hookahmix/miniapp/internal/identity"
)

type ctxKey struct{}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		b.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (b *Backend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api")

		b.mu.Lock()
		f, ok := b.failures[key]
		delete(b.failures, key)
		b.mu.Unlock()

		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := identity.FromHeaders(r.Header)
		if u == nil {
			writeInvalid(w, []string{"header", identity.HeaderUserID}, "Field required")
			return
		}

		b.mu.Lock()
		acc := b.account(u)
		b.mu.Unlock()

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, acc)))
	})
}

func accountFrom(r *http.Request) *account {
	return r.Context().Value(ctxKey{}).(*account)
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, accountFrom(r).profile)
}

func (b *Backend) handleStats(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc := accountFrom(r)
	stats := domain.Stats{TobaccosCount: len(acc.tobaccos), MixesCount: len(acc.mixes)}
	for _, m := range acc.mixes {
		if m.IsFavorite {
			stats.FavoritesCount++
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (b *Backend) handleCategories(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.categories)
}

func (b *Backend) handleListTobaccos(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := slices.Clone(accountFrom(r).tobaccos)
	slices.SortStableFunc(out, byName)
	writeJSON(w, http.StatusOK, nonNil(out))
}

func (b *Backend) handleGetTobacco(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := tobaccoIndex(accountFrom(r), id)
	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Табак не найден")
		return
	}
	writeJSON(w, http.StatusOK, accountFrom(r).tobaccos[idx])
}

type tobaccoBody struct {
	Name       *string `json:"name"`
	Brand      *string `json:"brand"`
	CategoryID *int64  `json:"category_id"`
	Notes      *string `json:"notes"`
}

func (b *Backend) handleCreateTobacco(w http.ResponseWriter, r *http.Request) {
	var in tobaccoBody
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Name == nil {
		writeInvalid(w, []string{"body", "name"}, "Field required")
		return
	}
	if tooShort(*in.Name) {
		writeInvalid(w, []string{"body", "name"}, "String should have at least 2 characters")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc := accountFrom(r)
	if lowerSet(acc.tobaccos)[strings.ToLower(*in.Name)] {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Табак '%s' уже есть в коллекции", *in.Name))
		return
	}
	writeJSON(w, http.StatusOK, b.addTobacco(acc, *in.Name, in.Brand, in.CategoryID, in.Notes))
}

// handleBulk partitions the batch: names shorter than two characters are
// errors, names already present (case-insensitively, including earlier
// entries of the same batch) are skipped, the rest are added.
func (b *Backend) handleBulk(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Tobaccos []tobaccoBody `json:"tobaccos"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc := accountFrom(r)
	existing := lowerSet(acc.tobaccos)
	res := domain.BulkResult{Added: []string{}, Skipped: []string{}, Errors: []string{}}

	for _, item := range in.Tobaccos {
		name := ""
		if item.Name != nil {
			name = *item.Name
		}
		switch {
		case tooShort(name):
			res.Errors = append(res.Errors, shortNameError(name))
		case existing[strings.ToLower(name)]:
			res.Skipped = append(res.Skipped, name)
		default:
			b.addTobacco(acc, name, item.Brand, item.CategoryID, nil)
			existing[strings.ToLower(name)] = true
			res.Added = append(res.Added, name)
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (b *Backend) handleUpdateTobacco(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in tobaccoBody
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Name != nil && tooShort(*in.Name) {
		writeInvalid(w, []string{"body", "name"}, "String should have at least 2 characters")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc := accountFrom(r)
	idx := tobaccoIndex(acc, id)
	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Табак не найден")
		return
	}

	t := &acc.tobaccos[idx]
	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Brand != nil {
		t.Brand = in.Brand
	}
	if in.CategoryID != nil {
		t.CategoryID = in.CategoryID
		t.Category = b.category(in.CategoryID)
	}
	if in.Notes != nil {
		t.Notes = in.Notes
	}
	writeJSON(w, http.StatusOK, *t)
}

func (b *Backend) handleDeleteTobacco(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc := accountFrom(r)
	idx := tobaccoIndex(acc, id)
	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Табак не найден")
		return
	}
	acc.tobaccos = slices.Delete(acc.tobaccos, idx, idx+1)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Табак удалён"})
}

func (b *Backend) handleDeleteAllTobaccos(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc := accountFrom(r)
	count := len(acc.tobaccos)
	acc.tobaccos = nil
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Удалено %d табаков", count)})
}

type generateBody struct {
	BaseTobacco  *string `json:"base_tobacco"`
	TasteProfile *string `json:"taste_profile"`
	RequestType  string  `json:"request_type"`
}

// handleGenerate builds a deterministic mix from the first tobaccos of the
// collection in name order, starting with base_tobacco when given.
func (b *Backend) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var in generateBody
	if !decodeBody(w, r, &in) {
		return
	}
	if !domain.RequestType(in.RequestType).Valid() {
		writeInvalid(w, []string{"body", "request_type"}, "String should match pattern '^(base|profile|surprise)$'")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc := accountFrom(r)
	if len(acc.tobaccos) < 2 {
		writeDetail(w, http.StatusBadRequest, "Нужно минимум 2 табака для микса")
		return
	}

	pool := slices.Clone(acc.tobaccos)
	slices.SortStableFunc(pool, byName)
	if in.BaseTobacco != nil {
		if i := slices.IndexFunc(pool, func(t domain.Tobacco) bool {
			return strings.EqualFold(t.Name, *in.BaseTobacco)
		}); i > 0 {
			base := pool[i]
			pool = slices.Insert(slices.Delete(pool, i, i+1), 0, base)
		}
	}

	shares := []struct {
		role    domain.Role
		portion float64
	}{{domain.Base, 60}, {domain.Complement, 40}}
	if len(pool) >= 3 {
		shares = []struct {
			role    domain.Role
			portion float64
		}{{domain.Base, 50}, {domain.Complement, 30}, {domain.Accent, 20}}
	}

	gen := domain.GeneratedMix{
		Description: "Сбалансированный микс из вашей коллекции",
		Tips:        "Забивайте воздушно, жар средний",
	}
	components := make(map[string]domain.Portion, len(shares))
	for i, s := range shares {
		gen.Components = append(gen.Components, domain.Component{Tobacco: pool[i].Name, Role: s.role, Portion: s.portion})
		components[pool[i].Name] = domain.Portion{Role: s.role, Portion: s.portion}
	}

	b.nextMix++
	gen.ID = b.nextMix
	gen.Name = "Микс #" + strconv.FormatInt(gen.ID, 10)

	description, tips := gen.Description, gen.Tips
	acc.mixes = append(acc.mixes, domain.Mix{
		ID:          gen.ID,
		UserID:      acc.profile.ID,
		Name:        gen.Name,
		Components:  components,
		Description: &description,
		Tips:        &tips,
		RequestType: domain.RequestType(in.RequestType),
		CreatedAt:   domain.Timestamp{Time: b.now()},
	})
	writeJSON(w, http.StatusOK, gen)
}

func (b *Backend) handleListMixes(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeInvalid(w, []string{"query", "limit"}, "Input should be a valid integer")
			return
		}
		limit = n
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	out := newestFirst(accountFrom(r).mixes)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	writeJSON(w, http.StatusOK, nonNil(out))
}

func (b *Backend) handleFavorites(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := slices.DeleteFunc(newestFirst(accountFrom(r).mixes), func(m domain.Mix) bool { return !m.IsFavorite })
	writeJSON(w, http.StatusOK, nonNil(out))
}

func (b *Backend) handleClearFavorites(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc := accountFrom(r)
	count := 0
	for i := range acc.mixes {
		if acc.mixes[i].IsFavorite {
			acc.mixes[i].IsFavorite = false
			count++
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Убрано из избранного: %d миксов", count)})
}

func (b *Backend) handleGetMix(w http.ResponseWriter, r *http.Request) {
	b.withMix(w, r, func(*domain.Mix) {})
}

func (b *Backend) handleRate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Rating *int `json:"rating"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Rating == nil || *in.Rating < -1 || *in.Rating > 1 {
		writeInvalid(w, []string{"body", "rating"}, "Input should be greater than or equal to -1 and less than or equal to 1")
		return
	}

	b.withMix(w, r, func(m *domain.Mix) {
		rating := domain.Rating(*in.Rating)
		m.Rating = &rating
	})
}

func (b *Backend) handleFavorite(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IsFavorite *bool `json:"is_favorite"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.IsFavorite == nil {
		writeInvalid(w, []string{"body", "is_favorite"}, "Field required")
		return
	}

	b.withMix(w, r, func(m *domain.Mix) {
		m.IsFavorite = *in.IsFavorite
	})
}

// withMix looks up the mix named by the path, applies fn and answers with the result.
func (b *Backend) withMix(w http.ResponseWriter, r *http.Request, fn func(*domain.Mix)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc := accountFrom(r)
	idx := slices.IndexFunc(acc.mixes, func(m domain.Mix) bool { return m.ID == id })
	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Микс не найден")
		return
	}
	fn(&acc.mixes[idx])
	writeJSON(w, http.StatusOK, acc.mixes[idx])
}

func tobaccoIndex(acc *account, id int64) int {
	return slices.IndexFunc(acc.tobaccos, func(t domain.Tobacco) bool { return t.ID == id })
}

func byName(x, y domain.Tobacco) int {
	return strings.Compare(x.Name, y.Name)
}

func newestFirst(mixes []domain.Mix) []domain.Mix {
	out := slices.Clone(mixes)
	slices.SortStableFunc(out, func(a, b domain.Mix) int {
		if c := b.CreatedAt.Compare(a.CreatedAt.Time); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
