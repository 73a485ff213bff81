package analysis

import (
	"sort"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"

	"github.com/kova98/userlens.api/models"
	"github.com/kova98/userlens.api/text"
)

// Shorter texts are too ambiguous to attribute to a language.
const minDetectableLength = 20

var detectableLanguages = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.French,
	lingua.German,
	lingua.Italian,
	lingua.Dutch,
	lingua.Polish,
	lingua.Swedish,
	lingua.Russian,
}

type LanguageDetector interface {
	Detect(input string) (string, bool)
}

type linguaDetector struct {
	detector lingua.LanguageDetector
}

// NewLanguageDetector builds the detector with its models preloaded; build it once per process.
func NewLanguageDetector() LanguageDetector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(detectableLanguages...).
		WithLowAccuracyMode().
		WithPreloadedLanguageModels().
		Build()
	return &linguaDetector{detector: detector}
}

func (d *linguaDetector) Detect(input string) (string, bool) {
	language, ok := d.detector.DetectLanguageOf(input)
	if !ok {
		return "", false
	}
	return language.String(), true
}

// CountLanguages tallies the detected language of every item long enough to judge,
// most common first, ties alphabetical.
func CountLanguages(detector LanguageDetector, items []models.ContentItem) []models.LanguageCount {
	counts := make(map[string]int)
	if detector != nil {
		for _, item := range items {
			if text.IsDeleted(item.Text) {
				continue
			}
			plain := text.Plain(item.Text)
			if utf8.RuneCountInString(plain) < minDetectableLength {
				continue
			}
			if language, ok := detector.Detect(plain); ok {
				counts[language]++
			}
		}
	}

	res := make([]models.LanguageCount, 0, len(counts))
	for language, count := range counts {
		res = append(res, models.LanguageCount{Language: language, Count: count})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Count != res[j].Count {
			return res[i].Count > res[j].Count
		}
		return res[i].Language < res[j].Language
	})

	return res
}
