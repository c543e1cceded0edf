package host

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookahmix/miniapp/internal/identity"
)

// silentShell never answers dialogs.
type silentShell struct {
	*RecordingShell
}

func (silentShell) ShowConfirm(string, func(bool)) {}
func (silentShell) ShowAlert(string, func())      {}

func TestBridge_InitFiresOnce(t *testing.T) {
	shell := NewRecordingShell("query_id=1", &identity.User{ID: 1})
	b := NewBridge(shell, nil, nil)

	b.Init()
	b.Init()

	assert.Equal(t, []string{"ready", "expand"}, shell.Signals())
}

func TestBridge_WithoutShell(t *testing.T) {
	b := NewBridge(nil, nil, nil)

	assert.False(t, b.Attached())
	assert.Empty(t, b.InitData())
	assert.Nil(t, b.User())
	assert.NotPanics(t, func() {
		b.Init()
		h := b.Haptics()
		h.Light()
		h.Success()
		h.Selection()
	})

	ok, err := b.Confirm(context.Background(), "Удалить?")
	require.NoError(t, err)
	assert.False(t, ok, "deny fallback declines")
	assert.NoError(t, b.Alert(context.Background(), "Готово"))
}

func TestBridge_IdentitySource(t *testing.T) {
	shell := NewRecordingShell("query_id=1", &identity.User{ID: 99, Username: "hooka"})
	b := NewBridge(shell, nil, nil)

	assert.True(t, b.Attached())
	assert.Equal(t, &identity.User{ID: 99, Username: "hooka"}, identity.Resolve(b))
	assert.Equal(t, identity.Fallback(), identity.Resolve(NewBridge(nil, nil, nil)))
}

func TestHaptics_Signals(t *testing.T) {
	shell := NewRecordingShell("query_id=1", nil)
	h := NewBridge(shell, nil, nil).Haptics()

	h.Light()
	h.Medium()
	h.Heavy()
	h.Success()
	h.Error()
	h.Warning()
	h.Selection()

	assert.Equal(t, []string{
		"impact:light", "impact:medium", "impact:heavy",
		"notify:success", "notify:error", "notify:warning",
		"selection",
	}, shell.Signals())
}

func TestBridge_ConfirmThroughShell(t *testing.T) {
	shell := NewRecordingShell("query_id=1", nil)
	shell.ConfirmAnswer = true
	b := NewBridge(shell, nil, nil)

	ok, err := b.Confirm(context.Background(), "Очистить всё избранное?")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, b.Alert(context.Background(), "Добавлено: 3"))

	assert.Equal(t, []string{"Очистить всё избранное?", "Добавлено: 3"}, shell.Dialogs())
}

func TestBridge_ConfirmCancelled(t *testing.T) {
	b := NewBridge(silentShell{NewRecordingShell("query_id=1", nil)}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := b.Confirm(ctx, "Удалить?")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
	assert.ErrorIs(t, b.Alert(ctx, "hi"), context.Canceled)
}

func TestTerminalFallback(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"да\n", true},
		{"YES", true},
		{"n\n", false},
		{"\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			f := NewTerminalFallback(strings.NewReader(tt.input), &out)

			ok, err := f.Confirm(context.Background(), "Удалить табак из коллекции?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, "Удалить табак из коллекции? [y/N]: ", out.String())
		})
	}
}

func TestTerminalFallback_Alert(t *testing.T) {
	var out bytes.Buffer
	b := NewBridge(nil, NewTerminalFallback(strings.NewReader(""), &out), nil)

	require.NoError(t, b.Alert(context.Background(), "Добавлено: 2"))
	assert.Equal(t, "Добавлено: 2\n", out.String())
}
