package locale

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestText(t *testing.T) {
	assert.Equal(t, "Ошибка сети", Text(language.Russian, MsgNetworkError))
	assert.Equal(t, "Произошла ошибка", Text(language.MustParse("ru-RU"), MsgGenericError))
	assert.Equal(t, "Network error", Text(language.English, MsgNetworkError))
	assert.Equal(t, "Добавлено: 3", Text(language.Russian, MsgBulkAdded, 3))
	assert.Equal(t, "друг", Text(language.Russian, MsgDefaultName))
}

func TestMatch(t *testing.T) {
	assert.Equal(t, language.Russian, Match(language.MustParse("ru-RU")))
	assert.Equal(t, language.English, Match(language.AmericanEnglish))
	assert.Equal(t, language.Russian, Match(language.Japanese), "unsupported languages fall back to Russian")
}

func TestCollator_Russian(t *testing.T) {
	names := []string{"Яблоко", "абрикос", "Mango", "Banana", "Дыня"}
	Collator(language.Russian).SortStrings(names)

	assert.True(t, slices.Index(names, "абрикос") < slices.Index(names, "Дыня"))
	assert.True(t, slices.Index(names, "Дыня") < slices.Index(names, "Яблоко"))
	assert.True(t, slices.Index(names, "Banana") < slices.Index(names, "Mango"))
}
