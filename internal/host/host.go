// Package host models the chat-platform shell the mini-app runs inside:
// launch identity, lifecycle signals, haptic feedback and native dialogs.
//
// The core never implements the shell; it only invokes it. Every entry point
// degrades gracefully when no shell is attached.
package host

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hookahmix/miniapp/internal/identity"
)

// ImpactStyle is the intensity of an impact haptic.
type ImpactStyle string

// Impact intensities.
const (
	ImpactLight  ImpactStyle = "light"
	ImpactMedium ImpactStyle = "medium"
	ImpactHeavy  ImpactStyle = "heavy"
)

// NotificationType is the outcome signalled by a notification haptic.
type NotificationType string

// Notification outcomes.
const (
	NotifySuccess NotificationType = "success"
	NotifyError   NotificationType = "error"
	NotifyWarning NotificationType = "warning"
)

// Shell is the host bridge surface. Implementations forward to the real
// runtime; dialog methods call back exactly once.
type Shell interface {
	identity.Source

	Ready()
	Expand()

	ImpactOccurred(style ImpactStyle)
	NotificationOccurred(kind NotificationType)
	SelectionChanged()

	ShowAlert(message string, done func())
	ShowConfirm(message string, done func(ok bool))
}

// Bridge wraps an optional Shell. A nil shell means the app runs outside the host.
type Bridge struct {
	shell    Shell
	fallback Fallback
	logger   *slog.Logger
	initOnce sync.Once
}

// NewBridge creates a bridge. shell may be nil; fallback serves dialogs in that case.
func NewBridge(shell Shell, fallback Fallback, logger *slog.Logger) *Bridge {
	if fallback == nil {
		fallback = DenyFallback{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{shell: shell, fallback: fallback, logger: logger}
}

// Attached reports whether a host shell with launch data is present.
func (b *Bridge) Attached() bool {
	return b.shell != nil && b.shell.InitData() != ""
}

// InitData implements identity.Source.
func (b *Bridge) InitData() string {
	if b.shell == nil {
		return ""
	}
	return b.shell.InitData()
}

// User implements identity.Source.
func (b *Bridge) User() *identity.User {
	if b.shell == nil {
		return nil
	}
	return b.shell.User()
}

// Init fires the ready and expand lifecycle signals. Only the first call has an effect.
func (b *Bridge) Init() {
	b.initOnce.Do(func() {
		if b.shell == nil {
			b.logger.Debug("no host shell attached, skipping lifecycle signals")
			return
		}
		b.shell.Ready()
		b.shell.Expand()
	})
}

// Haptics returns the fire-and-forget haptic feedback surface.
func (b *Bridge) Haptics() Haptics {
	return Haptics{shell: b.shell}
}

// Haptics triggers haptic feedback. All methods are no-ops without a shell.
type Haptics struct {
	shell Shell
}

// Light fires a light impact.
func (h Haptics) Light() { h.impact(ImpactLight) }

// Medium fires a medium impact.
func (h Haptics) Medium() { h.impact(ImpactMedium) }

// Heavy fires a heavy impact.
func (h Haptics) Heavy() { h.impact(ImpactHeavy) }

// Success signals a successful outcome.
func (h Haptics) Success() { h.notify(NotifySuccess) }

// Error signals a failed outcome.
func (h Haptics) Error() { h.notify(NotifyError) }

// Warning signals a warning outcome.
func (h Haptics) Warning() { h.notify(NotifyWarning) }

// Selection signals a selection change.
func (h Haptics) Selection() {
	if h.shell != nil {
		h.shell.SelectionChanged()
	}
}

func (h Haptics) impact(style ImpactStyle) {
	if h.shell != nil {
		h.shell.ImpactOccurred(style)
	}
}

func (h Haptics) notify(kind NotificationType) {
	if h.shell != nil {
		h.shell.NotificationOccurred(kind)
	}
}

// Confirm asks the user a yes/no question. It blocks until the shell answers,
// the fallback answers, or ctx is done.
func (b *Bridge) Confirm(ctx context.Context, message string) (bool, error) {
	if b.shell == nil {
		return b.fallback.Confirm(ctx, message)
	}

	answer := make(chan bool, 1)
	b.shell.ShowConfirm(message, func(ok bool) {
		answer <- ok
	})

	select {
	case ok := <-answer:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Alert shows a message and blocks until it is dismissed or ctx is done.
func (b *Bridge) Alert(ctx context.Context, message string) error {
	if b.shell == nil {
		return b.fallback.Alert(ctx, message)
	}

	dismissed := make(chan struct{}, 1)
	b.shell.ShowAlert(message, func() {
		dismissed <- struct{}{}
	})

	select {
	case <-dismissed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
