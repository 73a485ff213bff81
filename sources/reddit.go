package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sethvargo/go-retry"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/kova98/userlens.api/enums"
	"github.com/kova98/userlens.api/metrics"
	"github.com/kova98/userlens.api/models"
)

const (
	RedditAuthURL   = "https://www.reddit.com/api/v1/access_token"
	RedditOAuthURL  = "https://oauth.reddit.com"
	RedditPublicURL = "https://www.reddit.com"

	maxPageSize    = 100
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// ClientSource hands out HTTP clients and receives feedback about how they fared.
type ClientSource interface {
	Next(ctx context.Context) (*http.Client, string, error)
	MarkRateLimited(host string)
	MarkSuccess(host string)
	MarkFailure(host string)
}

type FetcherConfig struct {
	BaseURL        string
	Limit          int // per kind: at most Limit posts and Limit comments
	MaxRetries     int
	InitialBackoff time.Duration
}

type RedditFetcher struct {
	logger  *slog.Logger
	clients ClientSource
	limiter Limiter
	metrics *metrics.Metrics
	cfg     FetcherConfig
}

func NewRedditFetcher(logger *slog.Logger, clients ClientSource, limiter Limiter, m *metrics.Metrics, cfg FetcherConfig) *RedditFetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = RedditPublicURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Limit <= 0 {
		cfg.Limit = maxPageSize
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = initialBackoff
	}
	if limiter == nil {
		limiter = NewIntervalLimiter(0)
	}
	return &RedditFetcher{
		logger:  logger,
		clients: clients,
		limiter: limiter,
		metrics: m,
		cfg:     cfg,
	}
}

// OAuthWrapper layers app-only OAuth on top of a base client. The base client is also
// used for token requests, so both go through the same proxy.
func OAuthWrapper(clientID, clientSecret string) func(*http.Client) *http.Client {
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     RedditAuthURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	return func(base *http.Client) *http.Client {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client := conf.Client(ctx)
		client.Timeout = base.Timeout
		return client
	}
}

// Fetch reads the profile first so that unknown or suspended users fail fast, then
// pages through submissions and comments, newest first.
func (f *RedditFetcher) Fetch(ctx context.Context, username string) (models.UserProfile, []models.ContentItem, error) {
	start := time.Now()

	profile, err := f.fetchProfile(ctx, username)
	if err != nil {
		return models.UserProfile{}, nil, err
	}

	posts, err := f.fetchListing(ctx, username, "submitted", enums.ItemKindPost)
	if err != nil {
		return models.UserProfile{}, nil, pkgerrors.Wrap(err, "fetch posts")
	}
	comments, err := f.fetchListing(ctx, username, "comments", enums.ItemKindComment)
	if err != nil {
		return models.UserProfile{}, nil, pkgerrors.Wrap(err, "fetch comments")
	}

	f.logger.Debug("fetched reddit user", "username", username, "posts", len(posts), "comments", len(comments), "elapsed_ms", time.Since(start).Milliseconds())

	return profile, append(posts, comments...), nil
}

func (f *RedditFetcher) fetchProfile(ctx context.Context, username string) (models.UserProfile, error) {
	var about models.RedditAbout
	path := fmt.Sprintf("/user/%s/about.json?raw_json=1", url.PathEscape(username))
	if err := f.getJSON(ctx, "about", path, &about); err != nil {
		return models.UserProfile{}, pkgerrors.Wrap(err, "fetch profile")
	}
	if about.Data.IsSuspended {
		return models.UserProfile{}, fmt.Errorf("fetch profile: %w", ErrUserSuspended)
	}
	if about.Data.Name == "" {
		return models.UserProfile{}, fmt.Errorf("fetch profile: empty profile: %w", ErrUserNotFound)
	}

	return models.UserProfile{
		Username:     about.Data.Name,
		CreatedAt:    fromUnix(about.Data.CreatedUTC),
		PostKarma:    about.Data.LinkKarma,
		CommentKarma: about.Data.CommentKarma,
		IsVerified:   about.Data.Verified,
		HasPremium:   about.Data.IsGold,
	}, nil
}

func (f *RedditFetcher) fetchListing(ctx context.Context, username, listing string, kind enums.ItemKind) ([]models.ContentItem, error) {
	items := make([]models.ContentItem, 0, f.cfg.Limit)
	after := ""

	for len(items) < f.cfg.Limit {
		pageSize := min(f.cfg.Limit-len(items), maxPageSize)
		query := url.Values{}
		query.Set("limit", fmt.Sprint(pageSize))
		query.Set("sort", "new")
		query.Set("raw_json", "1")
		if after != "" {
			query.Set("after", after)
		}
		path := fmt.Sprintf("/user/%s/%s.json?%s", url.PathEscape(username), listing, query.Encode())

		var page models.RedditListing
		if err := f.getJSON(ctx, listing, path, &page); err != nil {
			return nil, err
		}

		for _, child := range page.Data.Children {
			items = append(items, toContentItem(child.Data, kind))
			if len(items) == f.cfg.Limit {
				break
			}
		}

		if page.Data.After == "" || len(page.Data.Children) == 0 {
			break
		}
		after = page.Data.After
	}

	return items, nil
}

func toContentItem(p models.RedditPost, kind enums.ItemKind) models.ContentItem {
	body := p.Body
	if kind == enums.ItemKindPost {
		body = strings.TrimSpace(p.Title + "\n" + p.Selftext)
	}
	return models.ContentItem{
		ID:        p.ID,
		Kind:      kind,
		Text:      body,
		Subreddit: p.Subreddit,
		Score:     p.Score,
		CreatedAt: fromUnix(p.CreatedUTC),
	}
}

// getJSON retries rate limits and transient failures with exponential backoff; any
// other failure is returned on the first attempt.
func (f *RedditFetcher) getJSON(ctx context.Context, endpoint, path string, dest any) error {
	backoff := retry.NewExponential(f.cfg.InitialBackoff)
	backoff = retry.WithCappedDuration(maxBackoff, backoff)
	backoff = retry.WithMaxRetries(uint64(f.cfg.MaxRetries), backoff)

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := f.get(ctx, endpoint, f.cfg.BaseURL+path, dest)
		if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable) {
			f.logger.Warn("reddit request failed, retrying", "endpoint", endpoint, "attempt", attempt, "error", truncateError(err))
			f.metrics.ObserveRetry()
			return retry.RetryableError(err)
		}
		return err
	})
}

func (f *RedditFetcher) get(ctx context.Context, endpoint, target string, dest any) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}
	client, host, err := f.clients.Next(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		f.metrics.ObserveRedditRequest(endpoint, 0)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var tokenErr *oauth2.RetrieveError
		if errors.As(err, &tokenErr) && tokenErr.Response != nil && tokenErr.Response.StatusCode < http.StatusInternalServerError {
			return fmt.Errorf("%w: token request: %v", ErrUnauthorized, tokenErr)
		}
		f.clients.MarkFailure(host)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	f.metrics.ObserveRedditRequest(endpoint, resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			f.clients.MarkFailure(host)
			return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, endpoint, err)
		}
		f.clients.MarkSuccess(host)
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrUserNotFound
	case resp.StatusCode == http.StatusForbidden:
		return ErrUserSuspended
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		f.clients.MarkRateLimited(host)
		return ErrRateLimited
	default:
		f.clients.MarkFailure(host)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}
}

func fromUnix(seconds float64) time.Time {
	if seconds <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(seconds), 0).UTC()
}

func truncateError(err error) error {
	msg := err.Error()
	if len(msg) > 300 {
		return fmt.Errorf("%s...", msg[:300])
	}
	return err
}
