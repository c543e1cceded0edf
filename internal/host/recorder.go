package host

import (
	"sync"

	"github.com/hookahmix/miniapp/internal/identity"
)

// RecordingShell is an in-memory Shell that records every signal it receives.
// Dialog answers are scripted through ConfirmAnswer.
type RecordingShell struct {
	user          *identity.User
	initData      string
	signals       []string
	alerts        []string
	mu            sync.Mutex
	ConfirmAnswer bool
}

// NewRecordingShell creates a shell launched with initData on behalf of user.
func NewRecordingShell(initData string, user *identity.User) *RecordingShell {
	return &RecordingShell{initData: initData, user: user}
}

// InitData implements Shell.
func (s *RecordingShell) InitData() string { return s.initData }

// User implements Shell.
func (s *RecordingShell) User() *identity.User { return s.user }

// Ready implements Shell.
func (s *RecordingShell) Ready() { s.record("ready") }

// Expand implements Shell.
func (s *RecordingShell) Expand() { s.record("expand") }

// ImpactOccurred implements Shell.
func (s *RecordingShell) ImpactOccurred(style ImpactStyle) { s.record("impact:" + string(style)) }

// NotificationOccurred implements Shell.
func (s *RecordingShell) NotificationOccurred(kind NotificationType) {
	s.record("notify:" + string(kind))
}

// SelectionChanged implements Shell.
func (s *RecordingShell) SelectionChanged() { s.record("selection") }

// ShowAlert implements Shell.
func (s *RecordingShell) ShowAlert(message string, done func()) {
	s.mu.Lock()
	s.alerts = append(s.alerts, message)
	s.mu.Unlock()
	go done()
}

// ShowConfirm implements Shell.
func (s *RecordingShell) ShowConfirm(message string, done func(ok bool)) {
	s.mu.Lock()
	s.alerts = append(s.alerts, message)
	answer := s.ConfirmAnswer
	s.mu.Unlock()
	go done(answer)
}

// Signals returns the recorded lifecycle and haptic signals in order.
func (s *RecordingShell) Signals() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.signals...)
}

// Dialogs returns the messages of every alert and confirm shown.
func (s *RecordingShell) Dialogs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.alerts...)
}

func (s *RecordingShell) record(signal string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = append(s.signals, signal)
}
