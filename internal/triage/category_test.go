package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemedyFor_EveryCategoryHasGuidance(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 10)

	for _, c := range cats {
		r, ok := RemedyFor(c)
		require.True(t, ok, "missing remedy for %s", c)
		assert.NotEmpty(t, r.Steps, "steps for %s", c)
		assert.NotEmpty(t, r.Warnings, "warnings for %s", c)
		assert.NotEmpty(t, r.Call911, "call_911 for %s", c)
	}
}

func TestRemedyFor_Unknown(t *testing.T) {
	_, ok := RemedyFor(CategoryUnknown)
	assert.False(t, ok)

	_, ok = RemedyFor(Category("earthquake"))
	assert.False(t, ok)
}

func TestRemedyFor_ReturnsCopy(t *testing.T) {
	r, _ := RemedyFor(CategoryBurns)
	r.Steps[0] = "changed"

	again, _ := RemedyFor(CategoryBurns)
	assert.NotEqual(t, "changed", again.Steps[0])
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("chest_pain")
	assert.True(t, ok)
	assert.Equal(t, CategoryChestPain, c)

	c, ok = ParseCategory("unknown")
	assert.False(t, ok)
	assert.Equal(t, CategoryUnknown, c)

	_, ok = ParseCategory("Chest_Pain")
	assert.False(t, ok)
}

func TestCategories_ReturnsCopy(t *testing.T) {
	cats := Categories()
	cats[0] = "mutated"
	assert.Equal(t, CategoryUnconscious, Categories()[0])
}
