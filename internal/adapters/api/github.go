package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const baseURL = "https://api.github.com"

const (
	pageSize = 100

	// Pacing constants. Below fastThreshold the remaining budget is spread
	// evenly across the time until reset, always keeping quotaReserve calls
	// unspent.
	minDelay      = 100 * time.Millisecond
	maxDelay      = 10 * time.Second
	fastThreshold = 500
	quotaReserve  = 20
	resetBuffer   = 2 * time.Second
)

// HTTPClient interface for HTTP operations (allows mocking in tests)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-2xx response from the GitHub API, excluding the
// quota-exhaustion condition which the client retries internally
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api returned status %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

// GitHubClient issues paced requests against the GitHub REST API. Quota state
// is owned by the instance, never shared; a fresh client re-learns real quota
// from its first response.
type GitHubClient struct {
	httpClient HTTPClient

	remaining    int
	resetAt      time.Time
	requestCount int
	quotaSeen    bool

	now   func() time.Time
	sleep func(time.Duration)
}

// NewGitHubClient creates a client authenticated with the given bearer token
func NewGitHubClient(token string) *GitHubClient {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	hc := oauth2.NewClient(context.Background(), src)
	hc.Timeout = 30 * time.Second

	return &GitHubClient{
		httpClient: hc,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// RequestCount reports how many requests this client has issued
func (c *GitHubClient) RequestCount() int {
	return c.requestCount
}

// pace waits before a request according to the observed quota state
func (c *GitHubClient) pace() {
	if !c.quotaSeen || !c.resetAt.After(c.now()) {
		c.sleep(minDelay)
		return
	}
	if c.remaining > fastThreshold {
		c.sleep(minDelay)
		return
	}

	available := c.remaining - quotaReserve
	if available < 1 {
		available = 1
	}

	delay := c.resetAt.Sub(c.now()) / time.Duration(available)
	if delay < minDelay {
		delay = minDelay
	}
	if delay > maxDelay {
		delay = maxDelay
	}
	c.sleep(delay)
}

// updateQuota refreshes the quota state from response headers
func (c *GitHubClient) updateQuota(h http.Header) {
	remaining, err := strconv.Atoi(h.Get("X-RateLimit-Remaining"))
	if err != nil {
		return
	}
	reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return
	}
	c.remaining = remaining
	c.resetAt = time.Unix(reset, 0)
	c.quotaSeen = true
}

// Send performs a GET against the given API path and returns the raw body.
// A quota-exhausted response blocks until the reported reset instant and
// retries the same request; any other non-2xx status yields an *APIError.
func (c *GitHubClient) Send(ctx context.Context, path string, headers map[string]string) ([]byte, error) {
	for {
		c.pace()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		c.updateQuota(resp.Header)
		c.requestCount++

		exhausted := resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests
		if exhausted && c.quotaSeen && c.remaining == 0 {
			wait := c.resetAt.Sub(c.now()) + resetBuffer
			if wait < resetBuffer {
				wait = resetBuffer
			}
			c.sleep(wait)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				URL:        req.URL.String(),
				Body:       strings.TrimSpace(string(body)),
			}
		}

		return body, nil
	}
}

func (c *GitHubClient) getJSON(ctx context.Context, path string, headers map[string]string, v interface{}) error {
	body, err := c.Send(ctx, path, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// ListStargazers fetches every stargazer of a repository, page by page, using
// the star media type so each entry carries its starred_at timestamp.
// Pagination stops on the first short or empty page.
func (c *GitHubClient) ListStargazers(ctx context.Context, owner, repo string) ([]Stargazer, error) {
	headers := map[string]string{"Accept": "application/vnd.github.star+json"}

	var all []Stargazer
	for page := 1; ; page++ {
		path := fmt.Sprintf("/repos/%s/%s/stargazers?page=%d&per_page=%d", owner, repo, page, pageSize)

		var stargazers []Stargazer
		if err := c.getJSON(ctx, path, headers, &stargazers); err != nil {
			return nil, fmt.Errorf("failed to fetch stargazers page %d: %w", page, err)
		}

		all = append(all, stargazers...)
		if len(stargazers) < pageSize {
			break
		}
	}
	return all, nil
}

// GetUser fetches a user's public profile. The raw body is kept on the
// returned User for the audit snapshot.
func (c *GitHubClient) GetUser(ctx context.Context, login string) (*User, error) {
	body, err := c.Send(ctx, "/users/"+login, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", login, err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", login, err)
	}
	user.Raw = body
	return &user, nil
}

// ListRecentRepos fetches up to limit of the user's own repositories, most
// recently updated first, with forks filtered out
func (c *GitHubClient) ListRecentRepos(ctx context.Context, login string, limit int) ([]Repository, error) {
	path := fmt.Sprintf("/users/%s/repos?sort=updated&type=owner&per_page=%d", login, limit)

	var repos []Repository
	if err := c.getJSON(ctx, path, nil, &repos); err != nil {
		return nil, fmt.Errorf("failed to fetch repositories for %s: %w", login, err)
	}

	owned := make([]Repository, 0, len(repos))
	for _, r := range repos {
		if !r.Fork {
			owned = append(owned, r)
		}
	}
	return owned, nil
}

// ListRecentCommits fetches up to limit commits authored by the given login
// within a repository
func (c *GitHubClient) ListRecentCommits(ctx context.Context, owner, repo, author string, limit int) ([]Commit, error) {
	path := fmt.Sprintf("/repos/%s/%s/commits?author=%s&per_page=%d", owner, repo, author, limit)

	var commits []Commit
	if err := c.getJSON(ctx, path, nil, &commits); err != nil {
		return nil, fmt.Errorf("failed to fetch commits for %s/%s: %w", owner, repo, err)
	}
	return commits, nil
}

// ListSocialAccounts fetches the social accounts a user has declared on their
// profile
func (c *GitHubClient) ListSocialAccounts(ctx context.Context, login string) ([]SocialAccount, error) {
	path := fmt.Sprintf("/users/%s/social_accounts", login)

	var accounts []SocialAccount
	if err := c.getJSON(ctx, path, nil, &accounts); err != nil {
		return nil, fmt.Errorf("failed to fetch social accounts for %s: %w", login, err)
	}
	return accounts, nil
}
