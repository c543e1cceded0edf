// Package apitest provides an in-memory fake of the mix backend for tests.
//
// The fake mirrors the backend's observable contract: identity from
// X-Telegram-* headers, error bodies with "detail", the bulk partition rules
// and the canned shape of generated mixes.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/hookahmix/miniapp/internal/domain"
	"github.com/hookahmix/miniapp/internal/identity"
)

// Request is a call the backend received.
type Request struct {
	Header http.Header
	Method string
	Path   string
	Query  string
	Body   []byte
}

type failure struct {
	body   string
	status int
}

type account struct {
	profile  domain.Profile
	tobaccos []domain.Tobacco
	mixes    []domain.Mix
}

// Backend is the fake. The zero value is not usable; call New.
type Backend struct {
	router     chi.Router
	accounts   map[int64]*account
	failures   map[string]failure
	categories []domain.Category
	requests   []Request
	now        func() time.Time
	mu         sync.Mutex
	nextUser   int64
	nextTob    int64
	nextMix    int64
}

// DefaultCategories is the reference list every fake starts with.
func DefaultCategories() []domain.Category {
	return []domain.Category{
		{ID: 1, Name: "Фруктовые", Emoji: "🍑", TasteProfile: "fruity"},
		{ID: 2, Name: "Ягодные", Emoji: "🍓", TasteProfile: "berry"},
		{ID: 3, Name: "Цитрусовые", Emoji: "🍋", TasteProfile: "citrus"},
		{ID: 4, Name: "Свежие", Emoji: "❄️", TasteProfile: "fresh"},
		{ID: 5, Name: "Десертные", Emoji: "🍰", TasteProfile: "dessert"},
	}
}

// New creates an empty backend with the default categories.
func New() *Backend {
	b := &Backend{
		accounts:   make(map[int64]*account),
		failures:   make(map[string]failure),
		categories: DefaultCategories(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	b.router = b.routes()
	return b
}

// Start serves b over HTTP for the duration of the test and returns the API base URL.
func Start(t testing.TB) (*Backend, string) {
	t.Helper()
	b := New()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, srv.URL + "/api"
}

// ServeHTTP implements http.Handler.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

// Requests returns the calls received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests)
}

// RequestCount returns how many calls were received.
func (b *Backend) RequestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

// LastRequest returns the most recent call.
func (b *Backend) LastRequest() (Request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return Request{}, false
	}
	return b.requests[len(b.requests)-1], true
}

// ResetRequests forgets the recorded calls.
func (b *Backend) ResetRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

// FailNext makes the next call to method and path (without the /api prefix)
// answer with status and the raw body.
func (b *Backend) FailNext(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, body: body}
}

// SeedTobacco adds a tobacco to the user's collection directly.
func (b *Backend) SeedTobacco(userID int64, name, brand string) domain.Tobacco {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc := b.account(&identity.User{ID: userID})
	return b.addTobacco(acc, name, optional(brand), nil, nil)
}

// SeedMix stores m for the user and returns it with id, owner and time set.
func (b *Backend) SeedMix(userID int64, m domain.Mix) domain.Mix {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc := b.account(&identity.User{ID: userID})
	b.nextMix++
	m.ID = b.nextMix
	m.UserID = acc.profile.ID
	if m.CreatedAt.IsZero() {
		m.CreatedAt = domain.Timestamp{Time: b.now().Add(time.Duration(m.ID) * time.Second)}
	}
	if m.RequestType == "" {
		m.RequestType = domain.RequestSurprise
	}
	acc.mixes = append(acc.mixes, m)
	return m
}

// Tobaccos returns the user's stored tobaccos.
func (b *Backend) Tobaccos(userID int64) []domain.Tobacco {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.account(&identity.User{ID: userID}).tobaccos)
}

// Mixes returns the user's stored mixes.
func (b *Backend) Mixes(userID int64) []domain.Mix {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.account(&identity.User{ID: userID}).mixes)
}

func (b *Backend) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(b.record)
	r.Use(b.injectFailures)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, domain.Health{Status: "ok"})
		})

		r.Group(func(r chi.Router) {
			r.Use(b.requireUser)

			r.Get("/user/me", b.handleMe)
			r.Get("/user/stats", b.handleStats)
			r.Get("/categories", b.handleCategories)

			r.Route("/tobaccos", func(r chi.Router) {
				r.Get("/", b.handleListTobaccos)
				r.Post("/", b.handleCreateTobacco)
				r.Delete("/", b.handleDeleteAllTobaccos)
				r.Post("/bulk", b.handleBulk)
				r.Get("/{id}", b.handleGetTobacco)
				r.Put("/{id}", b.handleUpdateTobacco)
				r.Delete("/{id}", b.handleDeleteTobacco)
			})

			r.Route("/mixes", func(r chi.Router) {
				r.Get("/", b.handleListMixes)
				r.Post("/generate", b.handleGenerate)
				r.Get("/favorites", b.handleFavorites)
				r.Delete("/favorites", b.handleClearFavorites)
				r.Get("/{id}", b.handleGetMix)
				r.Post("/{id}/rate", b.handleRate)
				r.Post("/{id}/favorite", b.handleFavorite)
			})
		})
	})

	return r
}

func (b *Backend) account(u *identity.User) *account {
	acc, ok := b.accounts[u.ID]
	if !ok {
		b.nextUser++
		acc = &account{profile: domain.Profile{
			ID:         b.nextUser,
			TelegramID: u.ID,
			CreatedAt:  domain.Timestamp{Time: b.now()},
		}}
		b.accounts[u.ID] = acc
	}
	if u.Username != "" && acc.profile.Username == nil {
		acc.profile.Username = optional(u.Username)
	}
	if u.FirstName != "" && acc.profile.FirstName == nil {
		acc.profile.FirstName = optional(u.FirstName)
	}
	return acc
}

func (b *Backend) category(id *int64) *domain.Category {
	if id == nil {
		return nil
	}
	for _, c := range b.categories {
		if c.ID == *id {
			return &c
		}
	}
	return nil
}

func (b *Backend) addTobacco(acc *account, name string, brand *string, categoryID *int64, notes *string) domain.Tobacco {
	b.nextTob++
	t := domain.Tobacco{
		ID:         b.nextTob,
		UserID:     acc.profile.ID,
		Name:       name,
		Brand:      brand,
		CategoryID: categoryID,
		Notes:      notes,
		Category:   b.category(categoryID),
		CreatedAt:  domain.Timestamp{Time: b.now()},
	}
	acc.tobaccos = append(acc.tobaccos, t)
	return t
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeInvalid answers like a framework-level request validation failure.
func writeInvalid(w http.ResponseWriter, loc []string, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]any{{"loc": loc, "msg": msg, "type": "value_error"}},
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeInvalid(w, []string{"path", "id"}, "Input should be a valid integer")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeInvalid(w, []string{"body"}, "JSON decode error")
		return false
	}
	return true
}

func tooShort(name string) bool {
	return utf8.RuneCountInString(name) < 2
}

func shortNameError(name string) string {
	return fmt.Sprintf("'%s' — слишком короткое название", name)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func lowerSet(tobaccos []domain.Tobacco) map[string]bool {
	set := make(map[string]bool, len(tobaccos))
	for _, t := range tobaccos {
		set[strings.ToLower(t.Name)] = true
	}
	return set
}
