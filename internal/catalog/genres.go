package catalog

import "github.com/amaumene/cinedex/internal/models"

// MergeGenres merges genre taxonomies from multiple catalog namespaces
// (movie genres, TV genres) into one unique list. The first occurrence of
// each id wins, including its name; later duplicates are dropped even when
// the name differs. First-seen order is preserved and the result is
// truncated to max entries (max <= 0 means no limit).
func MergeGenres(max int, lists ...[]models.Genre) []models.Genre {
	seen := make(map[int]struct{})
	var merged []models.Genre

	for _, list := range lists {
		for _, genre := range list {
			if _, ok := seen[genre.ID]; ok {
				continue
			}
			seen[genre.ID] = struct{}{}
			merged = append(merged, genre)

			if max > 0 && len(merged) == max {
				return merged
			}
		}
	}

	return merged
}
