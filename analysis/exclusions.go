package analysis

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed stopwords.yaml
var stopwordsYAML []byte

// Exclusions is the immutable set of words the keyword extractor never reports.
// The zero value excludes nothing.
type Exclusions struct {
	words map[string]struct{}
}

// NewExclusions builds a set from words, lowercased. Later changes to the
// argument slice do not affect the set.
func NewExclusions(words ...string) Exclusions {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return Exclusions{words: set}
}

var defaultExclusions = mustLoadExclusions(stopwordsYAML)

// DefaultExclusions returns the built-in table, parsed once at process start.
func DefaultExclusions() Exclusions {
	return defaultExclusions
}

// LoadExclusions parses a YAML document of category -> word list.
func LoadExclusions(data []byte) (Exclusions, error) {
	var categories map[string][]string
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return Exclusions{}, fmt.Errorf("parse exclusions: %w", err)
	}

	set := make(map[string]struct{})
	for category, words := range categories {
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" {
				return Exclusions{}, fmt.Errorf("parse exclusions: empty word in %q", category)
			}
			set[w] = struct{}{}
		}
	}

	return Exclusions{words: set}, nil
}

func mustLoadExclusions(data []byte) Exclusions {
	set, err := LoadExclusions(data)
	if err != nil {
		panic(err)
	}
	return set
}

func (e Exclusions) Contains(word string) bool {
	_, ok := e.words[word]
	return ok
}

func (e Exclusions) Len() int {
	return len(e.words)
}
