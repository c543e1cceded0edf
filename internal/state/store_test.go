package state

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/hookahmix/miniapp/internal/domain"
	domainerrors "github.com/hookahmix/miniapp/internal/errors"
	"github.com/hookahmix/miniapp/internal/locale"
	"github.com/hookahmix/miniapp/internal/metrics"
)

func tobacco(id int64, name string) domain.Tobacco {
	return domain.Tobacco{ID: id, Name: name}
}

func mix(id int64, fav bool, age time.Duration) domain.Mix {
	return domain.Mix{
		ID:         id,
		Name:       fmt.Sprintf("Микс #%d", id),
		IsFavorite: fav,
		Components: map[string]domain.Portion{"Mango": {Role: domain.Base, Portion: 100}},
		CreatedAt:  domain.Timestamp{Time: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC).Add(-age)},
	}
}

func names(list []domain.Tobacco) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.Name
	}
	return out
}

func mixIDs(list []domain.Mix) []int64 {
	out := make([]int64, len(list))
	for i, m := range list {
		out[i] = m.ID
	}
	return out
}

func TestStore_InitialState(t *testing.T) {
	s := New(Options{})

	assert.Equal(t, domain.TabHome, s.CurrentTab())
	assert.Empty(t, s.Tobaccos())
	assert.Nil(t, s.CurrentMix())
	assert.False(t, s.Loading())
	assert.Empty(t, s.Error())
	_, ok := s.Stats()
	assert.False(t, ok)
	for _, c := range Containers() {
		assert.False(t, s.Loaded(c), c)
	}
}

func TestStore_AddTobaccoKeepsNameOrder(t *testing.T) {
	s := New(Options{})
	s.SetTobaccos([]domain.Tobacco{tobacco(1, "Mango")})

	s.AddTobacco(tobacco(2, "Apple"))

	assert.Equal(t, []string{"Apple", "Mango"}, names(s.Tobaccos()))
}

func TestStore_AddTobaccoRussianCollation(t *testing.T) {
	s := New(Options{Locale: language.Russian})

	for i, name := range []string{"Яблоко", "дыня", "Арбуз", "ёлка", "Ежевика"} {
		s.AddTobacco(tobacco(int64(i+1), name))
	}

	assert.Equal(t, []string{"Арбуз", "дыня", "Ежевика", "ёлка", "Яблоко"}, names(s.Tobaccos()))
}

func TestStore_AddTobaccoStableForEqualNames(t *testing.T) {
	s := New(Options{})

	s.AddTobacco(tobacco(10, "Mint"))
	s.AddTobacco(tobacco(3, "Lemon"))
	s.AddTobacco(tobacco(7, "Mint"))
	s.AddTobacco(tobacco(1, "Mint"))

	list := s.Tobaccos()
	var mintIDs []int64
	for _, tb := range list {
		if tb.Name == "Mint" {
			mintIDs = append(mintIDs, tb.ID)
		}
	}
	assert.Equal(t, []int64{10, 7, 1}, mintIDs)
	assert.Equal(t, "Lemon", list[0].Name)
}

func TestStore_AddTobaccoReplacesSameID(t *testing.T) {
	s := New(Options{})
	s.SetTobaccos([]domain.Tobacco{tobacco(1, "Apple"), tobacco(2, "Mango")})

	s.AddTobacco(tobacco(1, "Watermelon"))

	assert.Equal(t, []string{"Mango", "Watermelon"}, names(s.Tobaccos()))
}

func TestStore_TobaccoOrderInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	pool := []string{"Mango", "apple", "Apple", "Лимон", "лёд", "Banana", "mint", "Mint", "Груша", "Ваниль", "kiwi"}
	collator := locale.Collator(language.Russian)

	s := New(Options{})
	for i := range 200 {
		id := int64(rng.IntN(40))
		switch rng.IntN(4) {
		case 0:
			s.RemoveTobacco(id)
		default:
			s.AddTobacco(tobacco(id, pool[rng.IntN(len(pool))]))
		}

		list := s.Tobaccos()
		require.True(t, slices.IsSortedFunc(list, func(a, b domain.Tobacco) int {
			return collator.CompareString(a.Name, b.Name)
		}), "step %d: %v", i, names(list))

		seen := map[int64]bool{}
		for _, tb := range list {
			require.False(t, seen[tb.ID], "step %d: duplicate id %d", i, tb.ID)
			seen[tb.ID] = true
		}
	}
}

func TestStore_SetTobaccosDedupesAndSorts(t *testing.T) {
	s := New(Options{})

	s.SetTobaccos([]domain.Tobacco{tobacco(2, "Mango"), tobacco(1, "Apple"), tobacco(2, "Duplicate")})

	assert.Equal(t, []string{"Apple", "Mango"}, names(s.Tobaccos()))
	assert.True(t, s.Loaded(ContainerTobaccos))
}

func TestStore_UpdateTobacco(t *testing.T) {
	s := New(Options{})
	s.SetTobaccos([]domain.Tobacco{tobacco(1, "Apple"), tobacco(2, "Mango")})

	assert.True(t, s.UpdateTobacco(tobacco(1, "Zest")))
	assert.Equal(t, []string{"Mango", "Zest"}, names(s.Tobaccos()))

	assert.False(t, s.UpdateTobacco(tobacco(99, "Ghost")))
	assert.Len(t, s.Tobaccos(), 2)
}

func TestStore_RemoveAndClearTobaccos(t *testing.T) {
	s := New(Options{})
	s.SetTobaccos([]domain.Tobacco{tobacco(1, "Apple"), tobacco(2, "Mango")})

	s.RemoveTobacco(1)
	assert.Equal(t, []string{"Mango"}, names(s.Tobaccos()))

	s.RemoveTobacco(42)
	assert.Len(t, s.Tobaccos(), 1)

	s.ClearTobaccos()
	assert.Empty(t, s.Tobaccos())
}

func TestStore_SetMixesNewestFirst(t *testing.T) {
	s := New(Options{})

	s.SetMixes([]domain.Mix{mix(1, false, 3*time.Hour), mix(3, false, time.Hour), mix(2, false, 2*time.Hour), mix(3, true, 0)})

	assert.Equal(t, []int64{3, 2, 1}, mixIDs(s.Mixes()))
	m, ok := s.Mix(3)
	require.True(t, ok)
	assert.False(t, m.IsFavorite, "first occurrence wins")
}

func TestStore_AddMixPrepends(t *testing.T) {
	s := New(Options{})
	s.SetMixes([]domain.Mix{mix(2, false, time.Hour), mix(1, false, 2*time.Hour)})

	s.AddMix(mix(3, false, 0))
	assert.Equal(t, []int64{3, 2, 1}, mixIDs(s.Mixes()))

	s.AddMix(mix(1, true, 0))
	assert.Equal(t, []int64{1, 3, 2}, mixIDs(s.Mixes()))
}

func TestStore_UpdateMixDualUpdate(t *testing.T) {
	s := New(Options{})
	s.SetMixes([]domain.Mix{mix(2, true, 0), mix(1, false, time.Hour)})
	s.SetFavorites([]domain.Mix{mix(2, true, 0)})

	rated := mix(2, true, 0)
	like := domain.Like
	rated.Rating = &like
	s.UpdateMix(rated)

	for _, list := range [][]domain.Mix{s.Mixes(), s.Favorites()} {
		i := slices.IndexFunc(list, func(m domain.Mix) bool { return m.ID == 2 })
		require.GreaterOrEqual(t, i, 0)
		require.NotNil(t, list[i].Rating)
		assert.Equal(t, domain.Like, *list[i].Rating)
	}
	m, _ := s.Mix(1)
	assert.Nil(t, m.Rating)
}

func TestStore_UpdateMixNeverInserts(t *testing.T) {
	s := New(Options{})
	s.SetMixes([]domain.Mix{mix(1, false, 0)})
	s.SetFavorites(nil)

	s.UpdateMix(mix(9, true, 0))

	assert.Equal(t, []int64{1}, mixIDs(s.Mixes()))
	assert.Empty(t, s.Favorites())
}

func TestStore_ToggleFavoriteOff(t *testing.T) {
	s := New(Options{})
	s.SetMixes([]domain.Mix{mix(5, true, 0), mix(4, false, time.Hour)})
	s.SetFavorites([]domain.Mix{mix(5, true, 0)})

	s.UpdateMix(mix(5, false, 0))

	assert.Empty(t, s.Favorites())
	assert.False(t, s.IsFavorite(5))
	m, ok := s.Mix(5)
	require.True(t, ok)
	assert.False(t, m.IsFavorite)
	assert.Equal(t, []int64{5, 4}, mixIDs(s.Mixes()))
}

func TestStore_ReadsReturnCopies(t *testing.T) {
	s := New(Options{})
	s.SetTobaccos([]domain.Tobacco{tobacco(1, "Apple")})
	s.SetMixes([]domain.Mix{mix(1, false, 0)})
	s.SetCurrentMix(&domain.GeneratedMix{ID: 1, Components: []domain.Component{{Tobacco: "Apple"}}})

	s.Tobaccos()[0].Name = "Changed"
	s.Mixes()[0].Components["Mango"] = domain.Portion{Portion: 1}
	s.CurrentMix().Components[0].Tobacco = "Changed"

	assert.Equal(t, "Apple", s.Tobaccos()[0].Name)
	assert.Equal(t, 100.0, s.Mixes()[0].Components["Mango"].Portion)
	assert.Equal(t, "Apple", s.CurrentMix().Components[0].Tobacco)
}

func TestStore_Flags(t *testing.T) {
	s := New(Options{})

	s.SetLoading(true)
	s.SetError("Ошибка сети")
	s.SetStats(domain.Stats{TobaccosCount: 3})

	assert.True(t, s.Loading())
	assert.Equal(t, "Ошибка сети", s.Error())
	stats, ok := s.Stats()
	assert.True(t, ok)
	assert.Equal(t, 3, stats.TobaccosCount)

	s.SetError("")
	assert.Empty(t, s.Error())

	s.SetCurrentMix(&domain.GeneratedMix{ID: 7})
	s.SetCurrentMix(nil)
	assert.Nil(t, s.CurrentMix())
}

func TestStore_SetCurrentTab(t *testing.T) {
	s := New(Options{})

	require.NoError(t, s.SetCurrentTab(domain.TabHistory))
	assert.Equal(t, domain.TabHistory, s.CurrentTab())

	err := s.SetCurrentTab(domain.Tab("settings"))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Equal(t, domain.TabHistory, s.CurrentTab())
}

func TestStore_LoadedAndInvalidate(t *testing.T) {
	s := New(Options{})

	s.SetFavorites([]domain.Mix{mix(1, true, 0)})
	assert.True(t, s.Loaded(ContainerFavorites))

	s.Invalidate(ContainerFavorites)
	assert.False(t, s.Loaded(ContainerFavorites))
	assert.Len(t, s.Favorites(), 1, "contents stay until the next load")
}

func TestStore_SubscribeReceivesCommittedState(t *testing.T) {
	s := New(Options{})

	var got []Event
	var seen [][]string
	_, cancel, err := s.Subscribe(func(ev Event) {
		got = append(got, ev)
		seen = append(seen, names(s.Tobaccos()))
	})
	require.NoError(t, err)

	s.AddTobacco(tobacco(1, "Mango"))
	s.AddTobacco(tobacco(2, "Apple"))

	require.Len(t, got, 2)
	assert.Equal(t, EventTobaccoAdded, got[1].Type)
	assert.Equal(t, int64(2), got[1].ID)
	assert.True(t, got[1].Touches(ContainerTobaccos))
	assert.Equal(t, []string{"Apple", "Mango"}, seen[1])

	cancel()
	cancel()
	s.ClearTobaccos()
	assert.Len(t, got, 2)
}

func TestStore_ListenerMayMutate(t *testing.T) {
	s := New(Options{})

	_, _, err := s.Subscribe(func(ev Event) {
		if ev.Type == EventTobaccoAdded {
			s.Invalidate(ContainerStats)
		}
	})
	require.NoError(t, err)

	s.SetStats(domain.Stats{})
	s.AddTobacco(tobacco(1, "Mango"))

	assert.False(t, s.Loaded(ContainerStats))
}

func TestStore_Close(t *testing.T) {
	s := New(Options{})
	calls := 0
	_, _, err := s.Subscribe(func(Event) { calls++ })
	require.NoError(t, err)

	require.NoError(t, s.Close())

	s.AddTobacco(tobacco(1, "Mango"))
	assert.Zero(t, calls)
	assert.Len(t, s.Tobaccos(), 1, "mutators keep working after close")

	_, _, err = s.Subscribe(func(Event) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStore_ConcurrentMutations(t *testing.T) {
	s := New(Options{Metrics: metrics.NewCollector("test")})

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddTobacco(tobacco(int64(i), fmt.Sprintf("Tobacco %02d", 19-i)))
			s.UpdateMix(mix(int64(i), false, 0))
		}()
	}
	wg.Wait()

	list := s.Tobaccos()
	require.Len(t, list, 20)
	assert.Equal(t, "Tobacco 00", list[0].Name)
	assert.Equal(t, "Tobacco 19", list[19].Name)
}

func TestStore_SnapshotRestore(t *testing.T) {
	src := New(Options{})
	src.SetTobaccos([]domain.Tobacco{tobacco(2, "Mango"), tobacco(1, "Apple")})
	src.SetMixes([]domain.Mix{mix(1, true, time.Hour), mix(2, false, 0)})
	src.SetFavorites([]domain.Mix{mix(1, true, time.Hour)})
	src.SetStats(domain.Stats{TobaccosCount: 2, MixesCount: 2, FavoritesCount: 1})

	snap := src.Snapshot()
	assert.False(t, snap.Empty())

	dst := New(Options{})
	var events []EventType
	_, _, err := dst.Subscribe(func(ev Event) { events = append(events, ev.Type) })
	require.NoError(t, err)

	dst.Restore(snap)

	assert.Equal(t, []string{"Apple", "Mango"}, names(dst.Tobaccos()))
	assert.Equal(t, []int64{2, 1}, mixIDs(dst.Mixes()))
	assert.Equal(t, []int64{1}, mixIDs(dst.Favorites()))
	stats, ok := dst.Stats()
	assert.True(t, ok)
	assert.Equal(t, 1, stats.FavoritesCount)
	assert.Equal(t, []EventType{EventRestored}, events)
	for _, c := range Containers() {
		assert.False(t, dst.Loaded(c), c)
	}

	assert.True(t, New(Options{}).Snapshot().Empty())
}
