package catalog

import (
	"testing"

	"github.com/amaumene/cinedex/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestMergeGenres(t *testing.T) {
	movie := []models.Genre{
		{ID: 28, Name: "Action"},
		{ID: 12, Name: "Adventure"},
		{ID: 16, Name: "Animation"},
	}
	tv := []models.Genre{
		{ID: 16, Name: "Animation & Cartoon"}, // same id, different name
		{ID: 10759, Name: "Action & Adventure"},
		{ID: 28, Name: "Action"},
	}

	merged := MergeGenres(0, movie, tv)

	assert.Equal(t, []models.Genre{
		{ID: 28, Name: "Action"},
		{ID: 12, Name: "Adventure"},
		{ID: 16, Name: "Animation"},
		{ID: 10759, Name: "Action & Adventure"},
	}, merged)
}

func TestMergeGenresFirstNameWins(t *testing.T) {
	first := []models.Genre{{ID: 99, Name: "Documentary"}}
	second := []models.Genre{{ID: 99, Name: "Documentaire"}}

	merged := MergeGenres(0, first, second)

	assert.Len(t, merged, 1)
	assert.Equal(t, "Documentary", merged[0].Name)
}

func TestMergeGenresTruncates(t *testing.T) {
	list := []models.Genre{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "C"},
	}

	merged := MergeGenres(2, list)

	assert.Equal(t, []models.Genre{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}, merged)
}

func TestMergeGenresEmptyInput(t *testing.T) {
	assert.Empty(t, MergeGenres(5))
	assert.Empty(t, MergeGenres(5, nil, []models.Genre{}))
}
