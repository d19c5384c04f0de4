// Package search renders backend search results and filters the loaded
// test cases locally.
package search

import (
	"github.com/nikbrunner/tcm/internal/model"
	"github.com/sahilm/fuzzy"
)

// Result represents a fuzzy match against a test case title.
type Result struct {
	Entry          *model.Entry
	MatchedIndexes []int
	Score          int
}

// entryTitles implements fuzzy.Source for an entry slice.
type entryTitles []*model.Entry

func (et entryTitles) String(i int) string {
	return et[i].TestCase.Title
}

func (et entryTitles) Len() int {
	return len(et)
}

// Filter fuzzy-matches query against the titles of entries.
// Returns results sorted by match score (best first).
func Filter(entries []model.Entry, query string) []Result {
	if query == "" {
		return nil
	}

	source := make(entryTitles, len(entries))
	for i := range entries {
		source[i] = &entries[i]
	}

	matches := fuzzy.FindFrom(query, source)

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Entry:          source[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
