package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookahmix/miniapp/internal/domain"
	"github.com/hookahmix/miniapp/internal/state"
)

func brand(s string) *string { return &s }

func collection() []domain.Tobacco {
	return []domain.Tobacco{
		{ID: 1, Name: "Apple", Brand: brand("Darkside")},
		{ID: 2, Name: "Mango Tango", Brand: brand("Tangiers")},
		{ID: 3, Name: "Мята", Brand: brand("Северный")},
		{ID: 4, Name: "Pinkman"},
		{ID: 5, Name: "Cola (classic)", Brand: brand("Must Have")},
	}
}

func setupTestIndex(t *testing.T) *Index {
	t.Helper()
	index, err := NewIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func ids(list []domain.Tobacco) []int64 {
	out := make([]int64, len(list))
	for i, t := range list {
		out[i] = t.ID
	}
	return out
}

func TestNewIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_Filter(t *testing.T) {
	index := setupTestIndex(t)
	list := collection()
	require.NoError(t, index.Reset(list))

	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{"empty query keeps everything", "", []int64{1, 2, 3, 4, 5}},
		{"blank query keeps everything", "   ", []int64{1, 2, 3, 4, 5}},
		{"name substring", "ang", []int64{2}},
		{"case insensitive", "APPLE", []int64{1}},
		{"brand substring", "tangi", []int64{2}},
		{"matches name or brand", "tang", []int64{2}},
		{"cyrillic name", "МЯТ", []int64{3}},
		{"cyrillic brand", "северн", []int64{3}},
		{"inner space", "o t", []int64{2}},
		{"regexp characters are literal", "(classic)", []int64{5}},
		{"dot is literal", "a.", nil},
		{"no match", "zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := index.Filter(context.Background(), list, tt.query)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestIndex_FilterKeepsInputOrder(t *testing.T) {
	index := setupTestIndex(t)
	list := []domain.Tobacco{
		{ID: 9, Name: "Mint"},
		{ID: 2, Name: "Ice Mint"},
		{ID: 5, Name: "Spearmint"},
	}
	require.NoError(t, index.Reset(list))

	got, err := index.Filter(context.Background(), list, "mint")
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 2, 5}, ids(got))
}

func TestIndex_IndexAndDelete(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexTobacco(domain.Tobacco{ID: 1, Name: "Apple"}))
	require.NoError(t, index.IndexTobacco(domain.Tobacco{ID: 1, Name: "Grape"}))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	hits, err := index.Match(context.Background(), "grape")
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{1: true}, hits)

	require.NoError(t, index.DeleteTobacco(1))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIndex_FollowsStore(t *testing.T) {
	store := state.New(state.Options{})
	store.SetTobaccos(collection())

	index := setupTestIndex(t)
	require.NoError(t, index.Follow(store))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)

	store.AddTobacco(domain.Tobacco{ID: 6, Name: "Peach"})
	got, err := index.Filter(context.Background(), store.Tobaccos(), "peach")
	require.NoError(t, err)
	assert.Equal(t, []int64{6}, ids(got))

	store.UpdateTobacco(domain.Tobacco{ID: 6, Name: "Plum"})
	got, err = index.Filter(context.Background(), store.Tobaccos(), "peach")
	require.NoError(t, err)
	assert.Empty(t, got)

	store.RemoveTobacco(1)
	hits, err := index.Match(context.Background(), "apple")
	require.NoError(t, err)
	assert.Empty(t, hits)

	store.ClearTobaccos()
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)

	store.Restore(state.Snapshot{Tobaccos: []domain.Tobacco{{ID: 7, Name: "Kiwi"}}})
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndex_CloseDetaches(t *testing.T) {
	store := state.New(state.Options{})
	index, err := NewIndex(nil)
	require.NoError(t, err)
	require.NoError(t, index.Follow(store))
	require.NoError(t, index.Close())

	assert.NotPanics(t, func() {
		store.AddTobacco(domain.Tobacco{ID: 1, Name: "Apple"})
	})
}
