package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"
)

// MockTransport is a mock implementation of http.RoundTripper for testing purposes
type MockTransport struct {
	RoundTripper func(req *http.Request) (*http.Response, error)
}

func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripper(req)
}

// newTestClient builds a client with a fixed clock and a sleep recorder
func newTestClient(base time.Time, rt func(req *http.Request) (*http.Response, error)) (*GitHubClient, *[]time.Duration) {
	sleeps := &[]time.Duration{}
	client := &GitHubClient{
		httpClient: &http.Client{Transport: &MockTransport{RoundTripper: rt}},
		now:        func() time.Time { return base },
		sleep:      func(d time.Duration) { *sleeps = append(*sleeps, d) },
	}
	return client, sleeps
}

func jsonResponse(status int, body string, remaining int, resetAt time.Time) *http.Response {
	h := http.Header{}
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func TestPacingBeforeQuotaObserved(t *testing.T) {
	client, sleeps := newTestClient(time.Now(), nil)

	client.pace()

	if len(*sleeps) != 1 || (*sleeps)[0] != minDelay {
		t.Errorf("Expected a single minimum delay, got %v", *sleeps)
	}
}

func TestPacingFastMode(t *testing.T) {
	base := time.Now()
	client, sleeps := newTestClient(base, nil)
	client.quotaSeen = true
	client.remaining = 4800
	client.resetAt = base.Add(time.Hour)

	client.pace()

	if (*sleeps)[0] != minDelay {
		t.Errorf("Expected minimum delay above the fast threshold, got %v", (*sleeps)[0])
	}
}

func TestPacingSpreadsBudgetAcrossReset(t *testing.T) {
	base := time.Now()
	client, sleeps := newTestClient(base, nil)
	client.quotaSeen = true
	client.remaining = 120
	client.resetAt = base.Add(10 * time.Minute)

	client.pace()

	// 100 spendable calls over 10 minutes
	expected := 10 * time.Minute / 100
	if (*sleeps)[0] != expected {
		t.Errorf("Expected delay %v, got %v", expected, (*sleeps)[0])
	}
}

func TestPacingClampedToMaxDelay(t *testing.T) {
	base := time.Now()
	client, sleeps := newTestClient(base, nil)
	client.quotaSeen = true
	client.remaining = quotaReserve + 1
	client.resetAt = base.Add(time.Hour)

	client.pace()

	if (*sleeps)[0] != maxDelay {
		t.Errorf("Expected delay clamped to %v, got %v", maxDelay, (*sleeps)[0])
	}
}

func TestPacingStaleResetFallsBackToMinDelay(t *testing.T) {
	base := time.Now()
	client, sleeps := newTestClient(base, nil)
	client.quotaSeen = true
	client.remaining = 50
	client.resetAt = base.Add(-time.Minute)

	client.pace()

	if (*sleeps)[0] != minDelay {
		t.Errorf("Expected minimum delay for a stale reset instant, got %v", (*sleeps)[0])
	}
}

// For every remaining value below the fast threshold, the computed delay must
// never let the projected spend before reset eat into the reserve
func TestPacingNeverSpendsReserve(t *testing.T) {
	base := time.Now()
	until := 30 * time.Minute

	for remaining := quotaReserve + 1; remaining <= fastThreshold; remaining++ {
		client, sleeps := newTestClient(base, nil)
		client.quotaSeen = true
		client.remaining = remaining
		client.resetAt = base.Add(until)

		client.pace()

		delay := (*sleeps)[0]
		available := remaining - quotaReserve
		if until/time.Duration(available) > maxDelay {
			// the even spread is slower than the clamp; the clamp is the backstop
			if delay != maxDelay {
				t.Errorf("remaining=%d: expected max delay, got %v", remaining, delay)
			}
			continue
		}
		projected := float64(until) / float64(delay)
		if projected > float64(available)+1e-9 {
			t.Errorf("remaining=%d: projected %f requests before reset exceeds available %d", remaining, projected, available)
		}
	}
}

func TestSendRetriesAfterQuotaExhaustion(t *testing.T) {
	base := time.Now()
	resetAt := base.Add(90 * time.Second)
	calls := 0

	client, sleeps := newTestClient(base, func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return jsonResponse(http.StatusForbidden, `{"message":"rate limit exceeded"}`, 0, resetAt), nil
		}
		return jsonResponse(http.StatusOK, `{"ok":true}`, 4999, base.Add(time.Hour)), nil
	})

	body, err := client.Send(context.Background(), "/users/octocat", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("Unexpected body: %s", body)
	}
	if calls != 2 {
		t.Errorf("Expected 2 requests, got %d", calls)
	}

	expectedWait := resetAt.Sub(base) + resetBuffer
	found := false
	for _, d := range *sleeps {
		if d == expectedWait {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a %v wait until reset, got sleeps %v", expectedWait, *sleeps)
	}
}

func TestSendReturnsAPIErrorOnNon2xx(t *testing.T) {
	client, _ := newTestClient(time.Now(), func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"message":"Not Found"}`, 4000, time.Now().Add(time.Hour)), nil
	})

	_, err := client.Send(context.Background(), "/users/ghost", nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", apiErr.StatusCode)
	}
}

func makeStargazerPage(start, count int) string {
	entries := make([]string, count)
	for i := 0; i < count; i++ {
		id := start + i
		entries[i] = fmt.Sprintf(
			`{"starred_at":"2024-08-19T10:00:00Z","user":{"id":%d,"login":"user%d"}}`, id, id)
	}
	return "[" + strings.Join(entries, ",") + "]"
}

func TestListStargazersPagination(t *testing.T) {
	base := time.Now()
	pages := []int{100, 100, 100, 60}
	calls := 0

	client, _ := newTestClient(base, func(req *http.Request) (*http.Response, error) {
		calls++
		if got := req.Header.Get("Accept"); got != "application/vnd.github.star+json" {
			t.Errorf("Expected star media type, got %s", got)
		}
		expectedURL := fmt.Sprintf("%s/repos/octocat/hello-world/stargazers?page=%d&per_page=%d", baseURL, calls, pageSize)
		if req.URL.String() != expectedURL {
			t.Errorf("Unexpected request URL: %s", req.URL.String())
		}
		if calls > len(pages) {
			t.Fatalf("Fetched past the final short page, call %d", calls)
		}
		body := makeStargazerPage(calls*1000, pages[calls-1])
		return jsonResponse(http.StatusOK, body, 4000, base.Add(time.Hour)), nil
	})

	stargazers, err := client.ListStargazers(context.Background(), "octocat", "hello-world")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(stargazers) != 360 {
		t.Errorf("Expected 360 stargazers, got %d", len(stargazers))
	}
	if calls != 4 {
		t.Errorf("Expected pagination to stop after 4 pages, got %d", calls)
	}
	if client.RequestCount() != 4 {
		t.Errorf("Expected request count 4, got %d", client.RequestCount())
	}
	if stargazers[0].User.Login != "user1000" {
		t.Errorf("Expected pages concatenated in order, first login %s", stargazers[0].User.Login)
	}
}

func TestListStargazersEmptyFirstPage(t *testing.T) {
	calls := 0
	client, _ := newTestClient(time.Now(), func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusOK, "[]", 4000, time.Now().Add(time.Hour)), nil
	})

	stargazers, err := client.ListStargazers(context.Background(), "octocat", "hello-world")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(stargazers) != 0 || calls != 1 {
		t.Errorf("Expected one empty page, got %d entries in %d calls", len(stargazers), calls)
	}
}

func TestGetUserKeepsRawSnapshot(t *testing.T) {
	raw := `{"id":42,"login":"octocat","name":"The Octocat","email":"","location":"San Francisco"}`
	client, _ := newTestClient(time.Now(), func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, raw, 4000, time.Now().Add(time.Hour)), nil
	})

	user, err := client.GetUser(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user.Login != "octocat" || user.Name != "The Octocat" {
		t.Errorf("Unexpected user: %+v", user)
	}
	if string(user.Raw) != raw {
		t.Errorf("Expected raw snapshot preserved, got %s", user.Raw)
	}
}

func TestListRecentReposFiltersForks(t *testing.T) {
	body := `[
		{"id":1,"name":"own","full_name":"octocat/own","fork":false,"owner":{"login":"octocat"}},
		{"id":2,"name":"forked","full_name":"octocat/forked","fork":true,"owner":{"login":"octocat"}}
	]`
	client, _ := newTestClient(time.Now(), func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.RawQuery, "sort=updated") || !strings.Contains(req.URL.RawQuery, "type=owner") {
			t.Errorf("Unexpected query: %s", req.URL.RawQuery)
		}
		return jsonResponse(http.StatusOK, body, 4000, time.Now().Add(time.Hour)), nil
	})

	repos, err := client.ListRecentRepos(context.Background(), "octocat", 5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(repos) != 1 || repos[0].Name != "own" {
		t.Errorf("Expected only the non-fork repository, got %+v", repos)
	}
}

func TestListRecentCommitsBuildsAuthorQuery(t *testing.T) {
	client, _ := newTestClient(time.Now(), func(req *http.Request) (*http.Response, error) {
		expectedURL := fmt.Sprintf("%s/repos/octocat/own/commits?author=octocat&per_page=30", baseURL)
		if req.URL.String() != expectedURL {
			t.Errorf("Unexpected request URL: %s", req.URL.String())
		}
		return jsonResponse(http.StatusOK, `[{"sha":"abc","commit":{"author":{"email":"o@example.com"},"committer":{"email":"o@example.com"}}}]`, 4000, time.Now().Add(time.Hour)), nil
	})

	commits, err := client.ListRecentCommits(context.Background(), "octocat", "own", "octocat", 30)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(commits) != 1 || commits[0].Commit.Author.Email != "o@example.com" {
		t.Errorf("Unexpected commits: %+v", commits)
	}
}
