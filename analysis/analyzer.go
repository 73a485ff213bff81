package analysis

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/kova98/userlens.api/enums"
	"github.com/kova98/userlens.api/models"
	"github.com/kova98/userlens.api/text"
)

// Fetcher retrieves a user's profile and recent items. Implementations own retries and
// rate limiting; errors are expected to wrap the sources sentinel errors.
type Fetcher interface {
	Fetch(ctx context.Context, username string) (models.UserProfile, []models.ContentItem, error)
}

type Options struct {
	// CommentsOnly restricts sentiment scoring to comments; posts are scored too otherwise.
	CommentsOnly bool
	// MinItems is the fewest fetched items that still produce a report.
	MinItems int
	Now      func() time.Time
}

type Analyzer struct {
	fetcher   Fetcher
	scorer    *SentimentScorer
	keywords  *KeywordExtractor
	languages LanguageDetector
	opts      Options
}

// NewAnalyzer wires the pipeline. languages may be nil to skip language detection.
func NewAnalyzer(fetcher Fetcher, scorer *SentimentScorer, keywords *KeywordExtractor, languages LanguageDetector, opts Options) *Analyzer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MinItems < 1 {
		opts.MinItems = 1
	}
	return &Analyzer{
		fetcher:   fetcher,
		scorer:    scorer,
		keywords:  keywords,
		languages: languages,
		opts:      opts,
	}
}

// Analyze validates the username, fetches everything up front and builds a report.
// Every failure is a *Failure; no partial report is ever returned.
func (a *Analyzer) Analyze(ctx context.Context, rawUsername string) (*models.AnalysisReport, error) {
	username, err := NormalizeUsername(rawUsername)
	if err != nil {
		return nil, &Failure{Kind: enums.OutcomeInputInvalid, Username: strings.TrimSpace(rawUsername), Err: err}
	}

	profile, items, err := a.fetcher.Fetch(ctx, username)
	if err != nil {
		return nil, &Failure{Kind: classifyFetchError(err), Username: username, Err: err}
	}
	if profile.IsSuspended {
		return nil, &Failure{Kind: enums.OutcomeUserSuspended, Username: username}
	}
	if len(items) < a.opts.MinItems {
		return nil, &Failure{Kind: enums.OutcomeInsufficientData, Username: username}
	}
	if profile.Username == "" {
		profile.Username = username
	}

	report := a.Report(profile, items)
	return &report, nil
}

// Report is the pure half of Analyze: it never touches the network.
func (a *Analyzer) Report(profile models.UserProfile, items []models.ContentItem) models.AnalysisReport {
	posts, comments := models.SplitByKind(items)

	scored := items
	if a.opts.CommentsOnly {
		scored = comments
	}
	scores := make([]ItemSentiment, 0, len(scored))
	for _, item := range scored {
		if strings.TrimSpace(item.Text) == "" || text.IsDeleted(item.Text) {
			continue
		}
		scores = append(scores, a.scorer.Score(item.Text))
	}
	sentiment := AggregateSentiment(scores)

	commentTexts := make([]string, 0, len(comments))
	for _, c := range comments {
		commentTexts = append(commentTexts, c.Text)
	}

	return models.AnalysisReport{
		Success:  true,
		Username: profile.Username,
		UserInfo: a.userInfo(profile),
		ContentStats: models.ContentStats{
			TotalPosts:    len(posts),
			TotalComments: len(comments),
			TotalContent:  len(items),
			Languages:     CountLanguages(a.languages, items),
		},
		SentimentAnalysis: sentiment,
		TimelineData:      BuildTimeline(items),
		TopKeywords:       a.keywords.Extract(commentTexts),
		CharacterAnalysis: Classify(items, sentiment),
	}
}

func (a *Analyzer) userInfo(profile models.UserProfile) models.UserInfo {
	info := models.UserInfo{
		Username:     profile.Username,
		TotalKarma:   profile.TotalKarma(),
		PostKarma:    profile.PostKarma,
		CommentKarma: profile.CommentKarma,
		IsVerified:   profile.IsVerified,
		HasPremium:   profile.HasPremium,
	}
	if profile.CreatedAt.IsZero() {
		return info
	}

	created := profile.CreatedAt.UTC()
	days := int(a.opts.Now().UTC().Sub(created).Hours() / 24)
	if days < 0 {
		days = 0
	}
	info.AccountCreated = created.Format(dateLayout)
	info.AccountAgeDays = days
	info.AccountAgeYears = math.Round(float64(days)/365.25*10) / 10

	return info
}
