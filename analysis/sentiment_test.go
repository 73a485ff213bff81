package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateSentiment_MixedPolarities(t *testing.T) {
	res := AggregateSentiment([]ItemSentiment{
		{Polarity: 0.5, Subjectivity: 0.6},
		{Polarity: -0.5, Subjectivity: 0.4},
		{Polarity: 0, Subjectivity: 0.2},
	})

	assert.Equal(t, 0.0, res.OverallPolarity)
	assert.Equal(t, 0.4, res.OverallSubjectivity)
	assert.Equal(t, 33.3, res.PositiveRatio)
	assert.Equal(t, 33.4, res.NeutralRatio)
	assert.Equal(t, 33.3, res.NegativeRatio)
	assert.Equal(t, 3, res.TotalAnalyzed)
	assert.Equal(t, "Balanced perspective (33.3% positive, 33.3% negative)", res.SentimentSummary)
}

func TestAggregateSentiment_Empty(t *testing.T) {
	res := AggregateSentiment(nil)

	assert.Equal(t, 0.0, res.OverallPolarity)
	assert.Equal(t, 0.0, res.PositiveRatio)
	assert.Equal(t, 100.0, res.NeutralRatio)
	assert.Equal(t, 0.0, res.NegativeRatio)
	assert.Equal(t, 0, res.TotalAnalyzed)
}

func TestAggregateSentiment_RatiosSumToHundred(t *testing.T) {
	polarities := []float64{0.9, 0.4, -0.3, 0.05, -0.8, 0.2, 0.0}
	for n := 1; n <= len(polarities); n++ {
		scores := make([]ItemSentiment, 0, n)
		for _, p := range polarities[:n] {
			scores = append(scores, ItemSentiment{Polarity: p})
		}
		res := AggregateSentiment(scores)

		sum := int(res.PositiveRatio*10+0.5) + int(res.NeutralRatio*10+0.5) + int(res.NegativeRatio*10+0.5)
		assert.Equal(t, 1000, sum, "n=%d", n)
	}
}

func TestAggregateSentiment_Summaries(t *testing.T) {
	positive := AggregateSentiment([]ItemSentiment{{Polarity: 0.8}, {Polarity: 0.6}})
	assert.Equal(t, "Generally positive outlook (100.0% positive content)", positive.SentimentSummary)

	negative := AggregateSentiment([]ItemSentiment{{Polarity: -0.8}, {Polarity: -0.6}})
	assert.Equal(t, "Tends toward criticism (100.0% negative content)", negative.SentimentSummary)
}

func TestAggregateSentiment_ThresholdsAreExclusive(t *testing.T) {
	res := AggregateSentiment([]ItemSentiment{{Polarity: 0.1}, {Polarity: -0.1}})

	assert.Equal(t, 0.0, res.PositiveRatio)
	assert.Equal(t, 100.0, res.NeutralRatio)
	assert.Equal(t, 0.0, res.NegativeRatio)
}

func TestRatioTenths_NeverNegative(t *testing.T) {
	pos, neu, neg := ratioTenths(1, 1, 2)
	assert.Equal(t, 500, pos)
	assert.Equal(t, 0, neu)
	assert.Equal(t, 500, neg)
}

func TestSentimentScorer_Score(t *testing.T) {
	s := NewSentimentScorer()

	happy := s.Score("I love this, it is wonderful and amazing!")
	assert.Greater(t, happy.Polarity, 0.1)
	assert.Greater(t, happy.Subjectivity, 0.0)
	assert.LessOrEqual(t, happy.Subjectivity, 1.0)

	sad := s.Score("This is terrible, awful and I hate it.")
	assert.Less(t, sad.Polarity, -0.1)

	assert.Equal(t, ItemSentiment{}, s.Score("   "))
	assert.Equal(t, ItemSentiment{}, s.Score(""))
}

func TestSentimentScorer_IgnoresMarkdown(t *testing.T) {
	s := NewSentimentScorer()

	plain := s.Score("I love this")
	formatted := s.Score("**I love this**")
	assert.InDelta(t, plain.Polarity, formatted.Polarity, 0.0001)
}
