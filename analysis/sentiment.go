package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonreiter/govader"
	"gonum.org/v1/gonum/stat"

	"github.com/kova98/userlens.api/models"
	"github.com/kova98/userlens.api/text"
)

const (
	positiveItemThreshold = 0.1
	negativeItemThreshold = -0.1

	positiveSummaryThreshold = 0.3
	negativeSummaryThreshold = -0.3
)

// ItemSentiment is the score of a single post or comment.
type ItemSentiment struct {
	Polarity     float64
	Subjectivity float64
}

type SentimentScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewSentimentScorer() *SentimentScorer {
	return &SentimentScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score maps text to a polarity in [-1,1] (VADER compound) and a subjectivity in [0,1]
// (the share of the text VADER did not judge neutral). Blank input scores zero.
func (s *SentimentScorer) Score(input string) ItemSentiment {
	plain := text.Plain(input)
	if strings.TrimSpace(plain) == "" {
		return ItemSentiment{}
	}

	scores := s.analyzer.PolarityScores(plain)
	return ItemSentiment{
		Polarity:     clamp(scores.Compound, -1, 1),
		Subjectivity: clamp(1-scores.Neutral, 0, 1),
	}
}

// AggregateSentiment averages item scores with equal weight and buckets them.
// Ratios are percentages with one decimal that always add up to 100; rounding drift
// is absorbed by the neutral bucket.
func AggregateSentiment(scores []ItemSentiment) models.SentimentAnalysis {
	if len(scores) == 0 {
		res := models.SentimentAnalysis{NeutralRatio: 100}
		res.SentimentSummary = summarize(res)
		return res
	}

	polarities := make([]float64, len(scores))
	subjectivities := make([]float64, len(scores))
	positive, negative := 0, 0
	for i, s := range scores {
		polarities[i] = s.Polarity
		subjectivities[i] = s.Subjectivity
		switch {
		case s.Polarity > positiveItemThreshold:
			positive++
		case s.Polarity < negativeItemThreshold:
			negative++
		}
	}

	posTenths, neuTenths, negTenths := ratioTenths(positive, negative, len(scores))

	res := models.SentimentAnalysis{
		OverallPolarity:     round(stat.Mean(polarities, nil), 3),
		OverallSubjectivity: round(stat.Mean(subjectivities, nil), 3),
		PositiveRatio:       float64(posTenths) / 10,
		NeutralRatio:        float64(neuTenths) / 10,
		NegativeRatio:       float64(negTenths) / 10,
		TotalAnalyzed:       len(scores),
	}
	res.SentimentSummary = summarize(res)

	return res
}

// ratioTenths works in tenths of a percent so the three buckets sum to exactly 1000.
func ratioTenths(positive, negative, total int) (pos, neu, neg int) {
	pos = int(math.Round(float64(positive) * 1000 / float64(total)))
	neg = int(math.Round(float64(negative) * 1000 / float64(total)))
	neu = 1000 - pos - neg
	if neu < 0 {
		// both sides rounded up on a .5 boundary
		neg += neu
		neu = 0
	}
	return pos, neu, neg
}

func summarize(s models.SentimentAnalysis) string {
	switch {
	case s.OverallPolarity > positiveSummaryThreshold:
		return fmt.Sprintf("Generally positive outlook (%.1f%% positive content)", s.PositiveRatio)
	case s.OverallPolarity < negativeSummaryThreshold:
		return fmt.Sprintf("Tends toward criticism (%.1f%% negative content)", s.NegativeRatio)
	default:
		return fmt.Sprintf("Balanced perspective (%.1f%% positive, %.1f%% negative)", s.PositiveRatio, s.NegativeRatio)
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
