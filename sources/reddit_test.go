package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kova98/userlens.api/enums"
	"github.com/kova98/userlens.api/metrics"
)

type child struct {
	Kind string         `json:"kind"`
	Data map[string]any `json:"data"`
}

func listing(after string, children ...child) map[string]any {
	return map[string]any{
		"kind": "Listing",
		"data": map[string]any{"after": after, "children": children},
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func aboutHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"kind": "t2",
		"data": map[string]any{
			"name":          "alice",
			"created_utc":   1577836800.0,
			"link_karma":    120,
			"comment_karma": 3400,
			"verified":      true,
			"is_gold":       false,
		},
	})
}

func newTestFetcher(t *testing.T, srv *httptest.Server, cfg FetcherConfig) *RedditFetcher {
	t.Helper()
	pool, err := NewProxyPool(nil, 5*time.Second, 0, "userlens-test/1.0", nil)
	require.NoError(t, err)
	cfg.BaseURL = srv.URL
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = time.Millisecond
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRedditFetcher(logger, pool, nil, metrics.New(prometheus.NewRegistry()), cfg)
}

func TestFetch_ProfilePostsAndComments(t *testing.T) {
	var userAgent atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/alice/about.json", func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.Header.Get("User-Agent"))
		aboutHandler(w, r)
	})
	mux.HandleFunc("GET /user/alice/submitted.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, listing("", child{"t3", map[string]any{
			"id": "p1", "title": "My garden", "selftext": "Tomatoes everywhere", "subreddit": "gardening",
			"score": 42, "created_utc": 1672531200.0,
		}}))
	})
	mux.HandleFunc("GET /user/alice/comments.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, listing("",
			child{"t1", map[string]any{"id": "c1", "body": "Nice tomatoes", "subreddit": "gardening", "score": 3, "created_utc": 1672617600.0}},
			child{"t1", map[string]any{"id": "c2", "body": "Go is fun", "subreddit": "golang", "score": 7, "created_utc": 1672704000.0}},
		))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	profile, items, err := newTestFetcher(t, srv, FetcherConfig{Limit: 100}).Fetch(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, 3520, profile.TotalKarma())
	assert.True(t, profile.IsVerified)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), profile.CreatedAt)
	assert.Equal(t, "userlens-test/1.0", userAgent.Load())

	require.Len(t, items, 3)
	assert.Equal(t, enums.ItemKindPost, items[0].Kind)
	assert.Equal(t, "My garden\nTomatoes everywhere", items[0].Text)
	assert.Equal(t, 42, items[0].Score)
	assert.Equal(t, enums.ItemKindComment, items[1].Kind)
	assert.Equal(t, "Nice tomatoes", items[1].Text)
	assert.Equal(t, "golang", items[2].Subreddit)
	assert.Equal(t, time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), items[2].CreatedAt)
}

func TestFetch_PaginatesUntilLimit(t *testing.T) {
	var pages []string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/alice/about.json", aboutHandler)
	mux.HandleFunc("GET /user/alice/submitted.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, listing(""))
	})
	mux.HandleFunc("GET /user/alice/comments.json", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		pages = append(pages, q.Get("limit")+"/"+q.Get("after"))
		n, _ := strconv.Atoi(q.Get("limit"))
		children := make([]child, 0, n)
		for i := 0; i < n; i++ {
			children = append(children, child{"t1", map[string]any{
				"id": fmt.Sprintf("c%d", i), "body": "text", "subreddit": "golang", "created_utc": 1672531200.0,
			}})
		}
		writeJSON(w, listing("t1_next", children...))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, items, err := newTestFetcher(t, srv, FetcherConfig{Limit: 150}).Fetch(context.Background(), "alice")
	require.NoError(t, err)

	assert.Len(t, items, 150)
	assert.Equal(t, []string{"100/", "50/t1_next"}, pages)
}

func TestFetch_UserNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, items, err := newTestFetcher(t, srv, FetcherConfig{}).Fetch(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, items)
}

func TestFetch_SuspendedFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"kind": "t2", "data": map[string]any{"name": "banned", "is_suspended": true}})
	}))
	defer srv.Close()

	_, _, err := newTestFetcher(t, srv, FetcherConfig{}).Fetch(context.Background(), "banned")
	assert.ErrorIs(t, err, ErrUserSuspended)
}

func TestFetch_ForbiddenIsSuspended(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, _, err := newTestFetcher(t, srv, FetcherConfig{}).Fetch(context.Background(), "banned")
	assert.ErrorIs(t, err, ErrUserSuspended)
}

func TestFetch_RetriesRateLimitThenSucceeds(t *testing.T) {
	var aboutCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/alice/about.json", func(w http.ResponseWriter, r *http.Request) {
		if aboutCalls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		aboutHandler(w, r)
	})
	mux.HandleFunc("GET /user/alice/submitted.json", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, listing("")) })
	mux.HandleFunc("GET /user/alice/comments.json", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, listing("")) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := newTestFetcher(t, srv, FetcherConfig{MaxRetries: 3})
	// the direct client would otherwise sit out the cooldown
	f.clients.(*ProxyPool).cooldown = 0

	profile, _, err := f.Fetch(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, int32(3), aboutCalls.Load())
}

func TestFetch_RateLimitedAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv, FetcherConfig{MaxRetries: 2})
	f.clients.(*ProxyPool).cooldown = 0

	_, _, err := f.Fetch(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_UnauthorizedIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, _, err := newTestFetcher(t, srv, FetcherConfig{MaxRetries: 3}).Fetch(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, _, err := newTestFetcher(t, srv, FetcherConfig{MaxRetries: 1}).Fetch(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetch_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(aboutHandler))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newTestFetcher(t, srv, FetcherConfig{}).Fetch(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)
}
