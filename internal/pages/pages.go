// Package pages drives the five mini-app pages: it loads what each page
// shows into the Store and runs the user actions available on it.
//
// Loaders follow a fetch-once policy: a container is requested only when the
// Store does not hold a loaded copy. Actions call the backend first and touch
// the Store only on success, firing a success or error haptic either way.
package pages

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/text/language"

	"github.com/hookahmix/miniapp/internal/apiclient"
	"github.com/hookahmix/miniapp/internal/domain"
	domainerrors "github.com/hookahmix/miniapp/internal/errors"
	"github.com/hookahmix/miniapp/internal/host"
	"github.com/hookahmix/miniapp/internal/identity"
	"github.com/hookahmix/miniapp/internal/locale"
	"github.com/hookahmix/miniapp/internal/logger"
	"github.com/hookahmix/miniapp/internal/search"
	"github.com/hookahmix/miniapp/internal/state"
	"github.com/hookahmix/miniapp/internal/validation"
)

// Options configures Pages.
type Options struct {
	Client    *apiclient.Client
	Store     *state.Store
	Bridge    *host.Bridge
	Search    *search.Index
	Validator *validation.Validator
	Logger    *slog.Logger
	Locale    language.Tag
	// HistoryLimit caps the history page. Defaults to apiclient.DefaultHistoryLimit.
	HistoryLimit int
}

// Pages holds the page loaders and actions.
type Pages struct {
	client       *apiclient.Client
	store        *state.Store
	bridge       *host.Bridge
	haptics      host.Haptics
	search       *search.Index
	validator    *validation.Validator
	logger       *slog.Logger
	locale       language.Tag
	historyLimit int

	mu           sync.Mutex
	tobaccoCount int
	detach       func()
}

// New creates Pages and starts watching the collection size, so the home page
// reloads its counts after the collection grows or shrinks.
func New(opts Options) (*Pages, error) {
	if opts.Bridge == nil {
		opts.Bridge = host.NewBridge(nil, nil, opts.Logger)
	}
	if opts.Validator == nil {
		opts.Validator = validation.New()
	}
	if opts.Locale == language.Und {
		opts.Locale = language.Russian
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = apiclient.DefaultHistoryLimit
	}

	p := &Pages{
		client:       opts.Client,
		store:        opts.Store,
		bridge:       opts.Bridge,
		haptics:      opts.Bridge.Haptics(),
		search:       opts.Search,
		validator:    opts.Validator,
		logger:       logger.OrDiscard(opts.Logger).With("component", "pages"),
		locale:       opts.Locale,
		historyLimit: opts.HistoryLimit,
		tobaccoCount: len(opts.Store.Tobaccos()),
	}

	_, cancel, err := p.store.Subscribe(p.watchCollection)
	if err != nil {
		return nil, err
	}
	p.detach = cancel
	return p, nil
}

// Close stops watching the store.
func (p *Pages) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.detach != nil {
		p.detach()
		p.detach = nil
	}
}

func (p *Pages) watchCollection(ev state.Event) {
	if !ev.Touches(state.ContainerTobaccos) {
		return
	}
	n := len(p.store.Tobaccos())

	p.mu.Lock()
	changed := n != p.tobaccoCount
	p.tobaccoCount = n
	p.mu.Unlock()

	if changed && p.store.Loaded(state.ContainerStats) {
		p.store.Invalidate(state.ContainerStats)
	}
}

// Greeting returns the name the home page greets the user with.
func (p *Pages) Greeting() string {
	if u := identity.Resolve(p.bridge); u != nil && u.FirstName != "" {
		return u.FirstName
	}
	return p.text(locale.MsgDefaultName)
}

// Enter loads whatever tab shows.
func (p *Pages) Enter(ctx context.Context, tab domain.Tab) error {
	switch tab {
	case domain.TabHome:
		return p.EnterHome(ctx)
	case domain.TabCollection:
		return p.EnterCollection(ctx)
	case domain.TabMix:
		return p.EnterMix(ctx)
	case domain.TabHistory:
		return p.EnterHistory(ctx)
	case domain.TabFavorites:
		return p.EnterFavorites(ctx)
	default:
		return domainerrors.Validationf("unknown tab %q", tab)
	}
}

// Refresh drops the cached containers of tab and loads them again.
func (p *Pages) Refresh(ctx context.Context, tab domain.Tab) error {
	for _, c := range containersOf(tab) {
		p.store.Invalidate(c)
	}
	if tab == domain.TabMix {
		return p.loadTobaccos(ctx)
	}
	return p.Enter(ctx, tab)
}

func containersOf(tab domain.Tab) []state.Container {
	switch tab {
	case domain.TabHome:
		return []state.Container{state.ContainerStats}
	case domain.TabCollection:
		return []state.Container{state.ContainerTobaccos, state.ContainerCategories}
	case domain.TabMix:
		return []state.Container{state.ContainerTobaccos}
	case domain.TabHistory:
		return []state.Container{state.ContainerMixes}
	case domain.TabFavorites:
		return []state.Container{state.ContainerFavorites}
	default:
		return nil
	}
}

func (p *Pages) text(key string, args ...any) string {
	return locale.Text(p.locale, key, args...)
}

// fail fires the error haptic and passes err through.
func (p *Pages) fail(action string, err error) error {
	p.haptics.Error()
	p.logger.Warn(action+" failed", logger.Err(err))
	return err
}

// confirm asks the user and treats a dismissed dialog as a refusal.
func (p *Pages) confirm(ctx context.Context, key string) (bool, error) {
	ok, err := p.bridge.Confirm(ctx, p.text(key))
	if err != nil {
		return false, err
	}
	if !ok {
		p.logger.Debug("action declined", "prompt", key)
	}
	return ok, nil
}
