package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookahmix/miniapp/internal/apitest"
	"github.com/hookahmix/miniapp/internal/di"
	"github.com/hookahmix/miniapp/internal/di/providers"
	"github.com/hookahmix/miniapp/internal/domain"
	"github.com/hookahmix/miniapp/internal/host"
	"github.com/hookahmix/miniapp/internal/identity"
)

const userID int64 = 42

type session struct {
	backend *apitest.Backend
	baseURL string
	shell   *host.RecordingShell
}

func newSession(t *testing.T) *session {
	t.Helper()
	backend, baseURL := apitest.Start(t)
	shell := host.NewRecordingShell("query_id=1", &identity.User{ID: userID, FirstName: "Анна"})
	shell.ConfirmAnswer = true
	return &session{backend: backend, baseURL: baseURL, shell: shell}
}

func (s *session) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	term := &providers.Terminal{In: strings.NewReader(stdin), Out: &out, Err: io.Discard}
	flags := []string{"-env-file", filepath.Join(t.TempDir(), "none.env"), "-api-url", s.baseURL}

	injector := di.NewContainer(append(flags, args...), term, s.shell)
	require.NoError(t, di.Bootstrap(injector))
	defer func() { _ = di.Shutdown(injector) }()

	err := run(context.Background(), injector, term)
	return out.String(), err
}

func TestRun_Usage(t *testing.T) {
	s := newSession(t)

	out, err := s.run(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage: mixctl")
	assert.Contains(t, out, "clear-favorites")

	_, err = s.run(t, "", "brew")
	assert.EqualError(t, err, `unknown command "brew"`)

	_, err = s.run(t, "", "rate", "7")
	assert.EqualError(t, err, "usage: mixctl rate <id> <like|dislike>")
}

func TestRun_Stats(t *testing.T) {
	s := newSession(t)
	s.backend.SeedTobacco(userID, "Mango", "Darkside")

	out, err := s.run(t, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Привет, Анна!")
	assert.Contains(t, out, "Табаков: 1")
}

func TestRun_AddAndList(t *testing.T) {
	s := newSession(t)

	_, err := s.run(t, "", "add", "Mango", "Darkside")
	require.NoError(t, err)
	_, err = s.run(t, "", "add", "Apple")
	require.NoError(t, err)

	out, err := s.run(t, "", "tobaccos")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Apple")
	assert.Contains(t, lines[1], "Mango (Darkside)")

	out, err = s.run(t, "", "tobaccos", "dark")
	require.NoError(t, err)
	assert.NotContains(t, out, "Apple")
	assert.Contains(t, out, "Mango")
}

func TestRun_AddDuplicateShowsBackendMessage(t *testing.T) {
	s := newSession(t)
	s.backend.SeedTobacco(userID, "Mango", "")

	_, err := s.run(t, "", "add", "Mango")
	assert.EqualError(t, err, "Табак 'Mango' уже есть в коллекции")
}

func TestRun_Bulk(t *testing.T) {
	s := newSession(t)
	s.backend.SeedTobacco(userID, "Mango", "")

	out, err := s.run(t, "Apple | Darkside\nmango\nPeach\n", "bulk")
	require.NoError(t, err)
	assert.Equal(t, "Добавлено: 2\nПропущено: 1\n", out)
}

func TestRun_DeleteNeedsConfirmation(t *testing.T) {
	s := newSession(t)
	tb := s.backend.SeedTobacco(userID, "Mango", "")

	id := strconv.FormatInt(tb.ID, 10)

	s.shell.ConfirmAnswer = false
	out, err := s.run(t, "", "delete", id)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Len(t, s.backend.Tobaccos(userID), 1)

	s.shell.ConfirmAnswer = true
	out, err = s.run(t, "", "delete", id)
	require.NoError(t, err)
	assert.Equal(t, "deleted "+id+"\n", out)
	assert.Empty(t, s.backend.Tobaccos(userID))
}

func TestRun_GenerateNeedsTwoTobaccos(t *testing.T) {
	s := newSession(t)
	s.backend.SeedTobacco(userID, "Mango", "")

	_, err := s.run(t, "", "generate", "surprise")
	assert.EqualError(t, err, "Добавьте минимум 2 табака для генерации микса")

	s.backend.SeedTobacco(userID, "Apple", "")
	out, err := s.run(t, "", "generate", "base", "Mango")
	require.NoError(t, err)
	assert.Contains(t, out, "Mango")
	assert.Len(t, s.backend.Mixes(userID), 1)
}

func TestRun_RateAndFavorites(t *testing.T) {
	s := newSession(t)
	m := s.backend.SeedMix(userID, domain.Mix{
		Name:       "Тропики",
		Components: map[string]domain.Portion{"Mango": {Role: domain.Base, Portion: 60}, "Apple": {Role: domain.Accent, Portion: 40}},
	})
	id := strconv.FormatInt(m.ID, 10)

	out, err := s.run(t, "", "rate", id, "like")
	require.NoError(t, err)
	assert.Contains(t, out, "👍")

	_, err = s.run(t, "", "fav", id)
	require.NoError(t, err)

	out, err = s.run(t, "", "favorites")
	require.NoError(t, err)
	assert.Contains(t, out, "Тропики ⭐ 👍")
	assert.Contains(t, out, "🔵 Mango 60%")

	out, err = s.run(t, "", "clear-favorites")
	require.NoError(t, err)
	assert.Equal(t, "Убрано из избранного: 1 миксов\n", out)
}

func TestRun_Tab(t *testing.T) {
	s := newSession(t)

	out, err := s.run(t, "", "tab", "history")
	require.NoError(t, err)
	assert.Equal(t, "history\n", out)
	assert.Contains(t, s.shell.Signals(), "impact:light")

	_, err = s.run(t, "", "tab", "settings")
	assert.Error(t, err)
}
