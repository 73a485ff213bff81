package sources

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/proxy"
)

const (
	directHost      = "direct"
	defaultCooldown = 30 * time.Second
)

// ProxyPool hands out HTTP clients round-robin, skipping clients that were rate limited
// recently or used less than minInterval ago. Without proxy URLs it holds a single
// direct client.
type ProxyPool struct {
	clients     []*http.Client
	hosts       []string
	index       atomic.Uint64
	cooldowns   map[int]time.Time
	lastUsed    map[int]time.Time
	successes   map[int]int
	failures    map[int]int
	cooldownMu  sync.RWMutex
	minInterval time.Duration // minimum time between uses of the same client
	cooldown    time.Duration
}

// NewProxyPool builds one client per unique proxy URL. wrap, when set, decorates each
// client (used to layer OAuth on top of the proxy transport).
func NewProxyPool(proxyURLs []string, timeout, minInterval time.Duration, userAgent string, wrap func(*http.Client) *http.Client) (*ProxyPool, error) {
	clients := make([]*http.Client, 0, len(proxyURLs)+1)
	hosts := make([]string, 0, len(proxyURLs)+1)
	seen := make(map[string]bool)

	for _, proxyURL := range proxyURLs {
		// Deduplicate by URL
		if seen[proxyURL] {
			if parsed, err := url.Parse(proxyURL); err == nil {
				slog.Warn("duplicate proxy URL, skipping", "host", parsed.Host)
			}
			continue
		}
		seen[proxyURL] = true

		client, err := createClient(proxyURL, timeout, userAgent)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)

		// Extract host only (no credentials)
		if parsed, err := url.Parse(proxyURL); err == nil {
			hosts = append(hosts, parsed.Host)
		} else {
			hosts = append(hosts, "unknown")
		}
	}

	if len(clients) == 0 {
		client, err := createClient("", timeout, userAgent)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
		hosts = append(hosts, directHost)
	}

	if wrap != nil {
		for i := range clients {
			clients[i] = wrap(clients[i])
		}
	}

	slog.Info("http client pool created", "count", len(clients), "hosts", hosts)

	return &ProxyPool{
		clients:     clients,
		hosts:       hosts,
		cooldowns:   make(map[int]time.Time),
		lastUsed:    make(map[int]time.Time),
		successes:   make(map[int]int),
		failures:    make(map[int]int),
		minInterval: minInterval,
		cooldown:    defaultCooldown,
	}, nil
}

func createClient(proxyURL string, timeout time.Duration, userAgent string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	client := &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: transport, userAgent: userAgent},
	}

	if proxyURL == "" {
		return client, nil
	}

	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		return nil, err
	}

	if parsedURL.Scheme != "socks5" {
		transport.Proxy = http.ProxyURL(parsedURL)
		return client, nil
	}

	var auth *proxy.Auth
	if parsedURL.User != nil {
		password, _ := parsedURL.User.Password()
		auth = &proxy.Auth{
			User:     parsedURL.User.Username(),
			Password: password,
		}
	}

	dialer, err := proxy.SOCKS5("tcp", parsedURL.Host, auth, proxy.Direct)
	if err != nil {
		return nil, err
	}

	transport.Proxy = nil
	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			return cd.DialContext(ctx, network, addr)
		}
		return dialer.Dial(network, addr)
	}

	return client, nil
}

// Next blocks until a client is available or ctx is done.
func (p *ProxyPool) Next(ctx context.Context) (*http.Client, string, error) {
	n := len(p.clients)

	p.cooldownMu.Lock()

	for {
		now := time.Now()

		// Try to find a client not on cooldown and not recently used
		for attempt := 0; attempt < n; attempt++ {
			idx := p.index.Add(1) - 1
			i := int(idx % uint64(n))

			if cooldownUntil, ok := p.cooldowns[i]; ok && now.Before(cooldownUntil) {
				continue
			}
			if lastUsed, ok := p.lastUsed[i]; ok && now.Sub(lastUsed) < p.minInterval {
				continue
			}

			p.lastUsed[i] = now
			p.cooldownMu.Unlock()
			return p.clients[i], p.hosts[i], nil
		}

		// All busy/on cooldown - find the one available soonest
		var soonestAvailable time.Time
		for i := 0; i < n; i++ {
			availableAt := p.lastUsed[i].Add(p.minInterval)
			if cooldownUntil, ok := p.cooldowns[i]; ok && cooldownUntil.After(availableAt) {
				availableAt = cooldownUntil
			}

			if soonestAvailable.IsZero() || availableAt.Before(soonestAvailable) {
				soonestAvailable = availableAt
			}
		}

		waitDuration := time.Until(soonestAvailable)
		if waitDuration > 0 {
			p.cooldownMu.Unlock()
			slog.Debug("all clients busy, waiting", "wait_ms", waitDuration.Milliseconds())
			timer := time.NewTimer(waitDuration)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, "", ctx.Err()
			case <-timer.C:
			}
			p.cooldownMu.Lock()
			// Loop back to re-check - another goroutine may have taken it
		}
	}
}

// MarkRateLimited puts a client on cooldown.
func (p *ProxyPool) MarkRateLimited(host string) {
	p.cooldownMu.Lock()
	defer p.cooldownMu.Unlock()

	for i, h := range p.hosts {
		if h == host {
			p.cooldowns[i] = time.Now().Add(p.cooldown)
			slog.Debug("client on cooldown", "host", host, "duration_seconds", p.cooldown.Seconds())
			return
		}
	}
}

func (p *ProxyPool) MarkSuccess(host string) {
	p.cooldownMu.Lock()
	defer p.cooldownMu.Unlock()

	for i, h := range p.hosts {
		if h == host {
			p.successes[i]++
			return
		}
	}
}

func (p *ProxyPool) MarkFailure(host string) {
	p.cooldownMu.Lock()
	defer p.cooldownMu.Unlock()

	for i, h := range p.hosts {
		if h == host {
			p.failures[i]++
			return
		}
	}
}

// GetStats returns success and failure counts per host.
func (p *ProxyPool) GetStats() map[string]struct{ Successes, Failures int } {
	p.cooldownMu.RLock()
	defer p.cooldownMu.RUnlock()

	stats := make(map[string]struct{ Successes, Failures int })
	for i, h := range p.hosts {
		stats[h] = struct{ Successes, Failures int }{
			Successes: p.successes[i],
			Failures:  p.failures[i],
		}
	}
	return stats
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}
