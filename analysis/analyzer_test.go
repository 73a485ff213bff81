package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kova98/userlens.api/enums"
	"github.com/kova98/userlens.api/models"
	"github.com/kova98/userlens.api/sources"
)

type fakeFetcher struct {
	profile models.UserProfile
	items   []models.ContentItem
	err     error
	calls   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, username string) (models.UserProfile, []models.ContentItem, error) {
	f.calls = append(f.calls, username)
	return f.profile, f.items, f.err
}

var now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestAnalyzer(fetcher Fetcher, opts Options) *Analyzer {
	opts.Now = func() time.Time { return now }
	return NewAnalyzer(fetcher, NewSentimentScorer(), NewKeywordExtractor(DefaultExclusions()), nil, opts)
}

func sampleItems() []models.ContentItem {
	return []models.ContentItem{
		{ID: "p1", Kind: enums.ItemKindPost, Text: "Show off my garden\nTomatoes and peppers everywhere", Subreddit: "gardening", Score: 10, CreatedAt: day(2023, 1, 1)},
		{ID: "c1", Kind: enums.ItemKindComment, Text: "I love tomatoes, they are wonderful", Subreddit: "gardening", Score: 3, CreatedAt: day(2023, 1, 3)},
		{ID: "c2", Kind: enums.ItemKindComment, Text: "Tomatoes need plenty of sunlight", Subreddit: "gardening", Score: 1, CreatedAt: day(2023, 1, 3)},
		{ID: "c3", Kind: enums.ItemKindComment, Text: "[deleted]", Subreddit: "golang", CreatedAt: day(2023, 1, 2)},
	}
}

func TestAnalyze_Success(t *testing.T) {
	fetcher := &fakeFetcher{
		profile: models.UserProfile{Username: "gardener", CreatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), PostKarma: 10, CommentKarma: 90},
		items:   sampleItems(),
	}

	report, err := newTestAnalyzer(fetcher, Options{}).Analyze(context.Background(), " u/gardener ")
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, []string{"gardener"}, fetcher.calls)
	assert.True(t, report.Success)
	assert.Equal(t, "gardener", report.Username)

	assert.Equal(t, 100, report.UserInfo.TotalKarma)
	assert.Equal(t, "2020-01-01", report.UserInfo.AccountCreated)
	assert.Equal(t, 1461, report.UserInfo.AccountAgeDays)
	assert.Equal(t, 4.0, report.UserInfo.AccountAgeYears)

	assert.Equal(t, 1, report.ContentStats.TotalPosts)
	assert.Equal(t, 3, report.ContentStats.TotalComments)
	assert.Equal(t, 4, report.ContentStats.TotalContent)

	assert.Equal(t, 3, report.SentimentAnalysis.TotalAnalyzed)
	sum := report.SentimentAnalysis.PositiveRatio + report.SentimentAnalysis.NeutralRatio + report.SentimentAnalysis.NegativeRatio
	assert.InDelta(t, 100, sum, 0.001)

	assert.Len(t, report.TimelineData, 3)
	require.NotEmpty(t, report.TopKeywords)
	assert.Equal(t, models.KeywordEntry{Word: "tomatoes", Count: 2}, report.TopKeywords[0])

	assert.Equal(t, []string{"gardening", "golang"}, report.CharacterAnalysis.ContentFocus)
	assert.Equal(t, report.SentimentAnalysis.SentimentSummary, report.CharacterAnalysis.SentimentSummary)
}

func TestAnalyze_InvalidUsernameSkipsFetch(t *testing.T) {
	fetcher := &fakeFetcher{}

	report, err := newTestAnalyzer(fetcher, Options{}).Analyze(context.Background(), "no spaces allowed")

	assert.Nil(t, report)
	assert.Equal(t, enums.OutcomeInputInvalid, OutcomeOf(err))
	assert.Empty(t, fetcher.calls)
}

func TestAnalyze_UserNotFound(t *testing.T) {
	fetcher := &fakeFetcher{err: fmt.Errorf("fetch profile: %w", sources.ErrUserNotFound)}

	report, err := newTestAnalyzer(fetcher, Options{}).Analyze(context.Background(), "ghost")

	assert.Nil(t, report)
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, enums.OutcomeUserNotFound, f.Kind)
	assert.Equal(t, "ghost", f.Username)

	body, jerr := json.Marshal(models.FailureResponse{Success: false, Error: f.Message()})
	require.NoError(t, jerr)
	assert.JSONEq(t, `{"success":false,"error":"User \"ghost\" not found"}`, string(body))
}

func TestAnalyze_SuspendedProfile(t *testing.T) {
	fetcher := &fakeFetcher{profile: models.UserProfile{Username: "banned", IsSuspended: true}, items: sampleItems()}

	report, err := newTestAnalyzer(fetcher, Options{}).Analyze(context.Background(), "banned")

	assert.Nil(t, report)
	assert.Equal(t, enums.OutcomeUserSuspended, OutcomeOf(err))
}

func TestAnalyze_InsufficientData(t *testing.T) {
	fetcher := &fakeFetcher{profile: models.UserProfile{Username: "lurker"}}

	report, err := newTestAnalyzer(fetcher, Options{MinItems: 1}).Analyze(context.Background(), "lurker")

	assert.Nil(t, report)
	assert.Equal(t, enums.OutcomeInsufficientData, OutcomeOf(err))
}

func TestAnalyze_FillsMissingUsername(t *testing.T) {
	fetcher := &fakeFetcher{items: sampleItems()}

	report, err := newTestAnalyzer(fetcher, Options{}).Analyze(context.Background(), "gardener")
	require.NoError(t, err)

	assert.Equal(t, "gardener", report.Username)
	assert.Equal(t, "gardener", report.UserInfo.Username)
	assert.Empty(t, report.UserInfo.AccountCreated)
}

func TestReport_CommentsOnlyScope(t *testing.T) {
	profile := models.UserProfile{Username: "gardener"}

	all := newTestAnalyzer(nil, Options{}).Report(profile, sampleItems())
	comments := newTestAnalyzer(nil, Options{CommentsOnly: true}).Report(profile, sampleItems())

	assert.Equal(t, 3, all.SentimentAnalysis.TotalAnalyzed)
	assert.Equal(t, 2, comments.SentimentAnalysis.TotalAnalyzed)
}

func TestReport_KeywordsOnlyFromComments(t *testing.T) {
	items := []models.ContentItem{
		{Kind: enums.ItemKindPost, Text: "Peppers peppers peppers", Subreddit: "a", CreatedAt: day(2023, 1, 1)},
		{Kind: enums.ItemKindComment, Text: "Tomatoes", Subreddit: "a", CreatedAt: day(2023, 1, 1)},
	}

	report := newTestAnalyzer(nil, Options{}).Report(models.UserProfile{Username: "x"}, items)

	assert.Equal(t, []models.KeywordEntry{{Word: "tomatoes", Count: 1}}, report.TopKeywords)
}
