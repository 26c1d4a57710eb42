package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"repograph/internal/core/config"
	domainerrors "repograph/internal/core/errors"
	"repograph/internal/engine/graph"
	"repograph/internal/shared/observability"
	"repograph/internal/shared/util"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sony/gobreaker"
)

const (
	sourceName = "github"
	userAgent  = "repograph"
	maxBody    = 32 << 20
)

// Client reads repository trees and file contents from the GitHub REST API.
type Client struct {
	base     string
	token    string
	branches []string
	http     *http.Client
	limiter  *util.Limiter
	breaker  *gobreaker.CircuitBreaker
	cache    *lru.Cache[string, string]
}

type Option func(*Client)

// WithHTTPClient replaces the default client built from the configured timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func New(cfg config.GitHub, opts ...Option) (*Client, error) {
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create content cache: %w", err)
	}

	branches := cfg.Branches
	if len(branches) == 0 {
		branches = []string{"main", "master"}
	}
	ratePerSecond, burst := cfg.RatePerSecond, cfg.Burst
	if ratePerSecond <= 0 || burst <= 0 {
		ratePerSecond, burst = 20, 10
	}
	maxFailures := cfg.Breaker.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	c := &Client{
		base:     strings.TrimRight(cfg.APIBase, "/"),
		token:    cfg.Token,
		branches: branches,
		http:     &http.Client{Timeout: cfg.Timeout},
		limiter:  util.NewLimiter(ratePerSecond, burst),
		cache:    cache,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    sourceName,
		Timeout: cfg.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// A missing file or branch says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || domainerrors.IsCode(err, domainerrors.CodeNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("upstream circuit state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Name() string {
	return sourceName
}

type treeResponse struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
		Size int64  `json:"size"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

// ListFiles returns the recursive tree of the first configured branch that
// exists. Submodule entries are dropped.
func (c *Client) ListFiles(ctx context.Context, owner, repo string) ([]graph.FileEntry, error) {
	var lastErr error
	for _, branch := range c.branches {
		endpoint := fmt.Sprintf("/repos/%s/%s/git/trees/%s?recursive=1",
			url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(branch))

		var tree treeResponse
		err := c.getJSON(ctx, "tree", endpoint, &tree)
		if err == nil {
			if tree.Truncated {
				slog.Warn("repository tree truncated by upstream", "repo", owner+"/"+repo, "branch", branch)
			}
			entries := make([]graph.FileEntry, 0, len(tree.Tree))
			for _, item := range tree.Tree {
				switch item.Type {
				case "blob":
					entries = append(entries, graph.FileEntry{Path: item.Path, Kind: graph.KindFile, Size: item.Size})
				case "tree":
					entries = append(entries, graph.FileEntry{Path: item.Path, Kind: graph.KindDirectory})
				}
			}
			return entries, nil
		}
		if !domainerrors.IsCode(err, domainerrors.CodeNotFound) {
			return nil, err
		}
		slog.Debug("branch not found, trying next", "repo", owner+"/"+repo, "branch", branch)
		lastErr = err
	}
	return nil, domainerrors.Wrap(lastErr, domainerrors.CodeNotFound,
		fmt.Sprintf("no tree found on branches %s", strings.Join(c.branches, ", ")))
}

type contentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// GetContent returns the decoded text of one file. Successful reads are
// cached for the lifetime of the client.
func (c *Client) GetContent(ctx context.Context, owner, repo, path string) (string, error) {
	key := owner + "/" + repo + "/" + path
	if content, ok := c.cache.Get(key); ok {
		observability.ContentCacheHitsTotal.Inc()
		return content, nil
	}

	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", url.PathEscape(owner), url.PathEscape(repo), escapePath(path))
	var resp contentResponse
	if err := c.getJSON(ctx, "contents", endpoint, &resp); err != nil {
		return "", domainerrors.AddContext(err, domainerrors.CtxPath, path)
	}

	content, err := decodeContent(resp)
	if err != nil {
		return "", domainerrors.AddContext(
			domainerrors.Wrap(err, domainerrors.CodeUpstream, "decode file content"),
			domainerrors.CtxPath, path)
	}
	c.cache.Add(key, content)
	return content, nil
}

// ListLanguages returns the upstream byte count per language.
func (c *Client) ListLanguages(ctx context.Context, owner, repo string) (map[string]int64, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/languages", url.PathEscape(owner), url.PathEscape(repo))
	languages := map[string]int64{}
	if err := c.getJSON(ctx, "languages", endpoint, &languages); err != nil {
		return nil, err
	}
	return languages, nil
}

func (c *Client) getJSON(ctx context.Context, label, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx, 1); err != nil {
		return fmt.Errorf("wait for upstream rate limit: %w", err)
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.get(ctx, label, endpoint)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			observability.UpstreamRequestsTotal.WithLabelValues(label, "breaker_open").Inc()
			return domainerrors.Wrap(err, domainerrors.CodeUpstream, "upstream circuit open")
		}
		return err
	}

	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return domainerrors.AddContext(
			domainerrors.Wrap(err, domainerrors.CodeUpstream, "decode upstream response"),
			domainerrors.CtxOperation, label)
	}
	return nil
}

func (c *Client) get(ctx context.Context, label, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		observability.UpstreamRequestsTotal.WithLabelValues(label, "error").Inc()
		return nil, domainerrors.Wrap(err, domainerrors.CodeUpstream, "request "+label)
	}
	defer resp.Body.Close()
	observability.UpstreamRequestsTotal.WithLabelValues(label, statusClass(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeUpstream, "read "+label+" response")
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, statusError(resp, label)
}

func statusError(resp *http.Response, label string) error {
	var err error
	switch {
	case resp.StatusCode == http.StatusNotFound:
		err = domainerrors.New(domainerrors.CodeNotFound, label+" not found")
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		err = domainerrors.New(domainerrors.CodeRateLimited, "upstream rate limit exceeded")
		if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
			err = domainerrors.AddContext(err, "reset", reset)
		}
	default:
		err = domainerrors.New(domainerrors.CodeUpstream, fmt.Sprintf("%s returned %s", label, resp.Status))
	}
	return domainerrors.AddContext(err, domainerrors.CtxStatus, resp.StatusCode)
}

func decodeContent(resp contentResponse) (string, error) {
	switch resp.Encoding {
	case "base64":
		raw := strings.NewReplacer("\n", "", "\r", "").Replace(resp.Content)
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	case "", "utf-8":
		return resp.Content, nil
	default:
		return "", fmt.Errorf("unsupported content encoding %q", resp.Encoding)
	}
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
