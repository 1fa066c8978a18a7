package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("folds turkish diacritics", func(t *testing.T) {
		assert.Equal(t, Normalize("cesme"), Normalize("Çeşme"))
		assert.Equal(t, "karsiyaka", Normalize("Karşıyaka"))
		assert.Equal(t, "izmir", Normalize("İzmir"))
		assert.Equal(t, "foca", Normalize("Foça"))
	})

	t.Run("idempotent", func(t *testing.T) {
		for _, s := range []string{"Çeşme", "KONAK", "Bağlarbaşı Ürünleri", "plain ascii"} {
			once := Normalize(s)
			assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", s)
		}
	})

	t.Run("pure on empty input", func(t *testing.T) {
		assert.Equal(t, "", Normalize(""))
	})
}

func TestExtractDate(t *testing.T) {
	t.Run("day and month", func(t *testing.T) {
		got, ok := ExtractDate("I plan to travel on 15 April")
		require.True(t, ok)
		assert.Equal(t, "15 April 2025", got)
	})

	t.Run("case insensitive month", func(t *testing.T) {
		got, ok := ExtractDate("maybe 3 SEPTEMBER works")
		require.True(t, ok)
		assert.Equal(t, "3 September 2025", got)
	})

	t.Run("day glued to month", func(t *testing.T) {
		got, ok := ExtractDate("15april")
		require.True(t, ok)
		assert.Equal(t, "15 April 2025", got)
	})

	t.Run("no date", func(t *testing.T) {
		_, ok := ExtractDate("sometime next week")
		assert.False(t, ok)

		_, ok = ExtractDate("in April") // month without a day is not a date
		assert.False(t, ok)
	})
}

func TestExtractCategories(t *testing.T) {
	vocab := map[string]struct{}{
		"historical sites": {},
		"beaches":          {},
		"city life":        {},
	}

	t.Run("comma and conjunction split", func(t *testing.T) {
		got := ExtractCategories("historical sites, beaches and city life", vocab)
		assert.Equal(t, []string{"historical sites", "beaches", "city life"}, got)
	})

	t.Run("unknown tokens dropped", func(t *testing.T) {
		got := ExtractCategories("shopping and beaches", vocab)
		assert.Equal(t, []string{"beaches"}, got)
	})

	t.Run("case folded", func(t *testing.T) {
		got := ExtractCategories("Historical Sites", vocab)
		assert.Equal(t, []string{"historical sites"}, got)
	})

	t.Run("nothing recognized", func(t *testing.T) {
		assert.Empty(t, ExtractCategories("something else entirely", vocab))
		assert.Empty(t, ExtractCategories("", vocab))
	})
}
