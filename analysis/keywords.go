package analysis

import (
	"sort"
	"unicode/utf8"

	"github.com/kova98/userlens.api/models"
	"github.com/kova98/userlens.api/text"
)

const (
	maxKeywords   = 10
	minKeywordLen = 3
)

type KeywordExtractor struct {
	exclusions Exclusions
}

func NewKeywordExtractor(exclusions Exclusions) *KeywordExtractor {
	return &KeywordExtractor{exclusions: exclusions}
}

// Extract counts topic words across the whole corpus and returns at most ten of them,
// most frequent first. Equal counts keep the order in which words first appeared.
func (k *KeywordExtractor) Extract(texts []string) []models.KeywordEntry {
	entries := make([]models.KeywordEntry, 0, 64)
	index := make(map[string]int)

	for _, body := range texts {
		if text.IsDeleted(body) {
			continue
		}
		for _, word := range text.Words(text.Scrub(text.Plain(body))) {
			if utf8.RuneCountInString(word) < minKeywordLen || k.exclusions.Contains(word) {
				continue
			}
			if i, ok := index[word]; ok {
				entries[i].Count++
				continue
			}
			index[word] = len(entries)
			entries = append(entries, models.KeywordEntry{Word: word, Count: 1})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if len(entries) > maxKeywords {
		entries = entries[:maxKeywords]
	}

	return entries
}
