package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/kova98/userlens.api/analysis"
	"github.com/kova98/userlens.api/config"
	"github.com/kova98/userlens.api/metrics"
	"github.com/kova98/userlens.api/sources"
)

// RequestTimeout bounds one analysis, fetching included.
func RequestTimeout(cfg config.AppConfig) time.Duration {
	return time.Duration(cfg.RequestTimeoutSecs) * time.Second
}

// NewAnalyzer wires the reddit fetcher and the scorers from cfg. m may be nil.
// Language models are loaded last, so configuration errors return quickly.
func NewAnalyzer(cfg config.AppConfig, logger *slog.Logger, limiter sources.Limiter, m *metrics.Metrics) (*analysis.Analyzer, error) {
	fetcherConfig, wrap := redditEndpoint(cfg)

	pool, err := sources.NewProxyPool(cfg.ProxyURLs, RequestTimeout(cfg), 0, cfg.RedditUserAgent, wrap)
	if err != nil {
		return nil, errors.Wrap(err, "create http client pool")
	}

	fetcher := sources.NewRedditFetcher(logger, pool, limiter, m, fetcherConfig)

	logger.Info("loading language models")
	return analysis.NewAnalyzer(
		fetcher,
		analysis.NewSentimentScorer(),
		analysis.NewKeywordExtractor(analysis.DefaultExclusions()),
		analysis.NewLanguageDetector(),
		analysis.Options{
			CommentsOnly: cfg.SentimentScope == config.SentimentScopeComments,
			MinItems:     cfg.MinItems,
		},
	), nil
}

// redditEndpoint picks the API host and, with credentials configured, the OAuth
// client wrapper. An explicit base URL always wins.
func redditEndpoint(cfg config.AppConfig) (sources.FetcherConfig, func(*http.Client) *http.Client) {
	fc := sources.FetcherConfig{
		BaseURL:    cfg.RedditBaseURL,
		Limit:      cfg.FetchLimit,
		MaxRetries: cfg.FetchMaxRetries,
	}

	if !cfg.RedditOAuthEnabled() {
		return fc, nil
	}
	if fc.BaseURL == "" {
		fc.BaseURL = sources.RedditOAuthURL
	}
	return fc, sources.OAuthWrapper(cfg.RedditClientID, cfg.RedditClientSecret)
}
