package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/just-nibble/stargazer-service/internal/adapters/api"
	"github.com/just-nibble/stargazer-service/internal/adapters/db"
	"github.com/just-nibble/stargazer-service/internal/adapters/llm"
	"github.com/just-nibble/stargazer-service/internal/core/domain/entities"
)

// fakeStore is an in-memory StargazerStore for tests
type fakeStore struct {
	stargazers map[int64]*entities.Stargazer
	order      []int64
	profiles   map[int64]*entities.EnrichedProfile
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stargazers: make(map[int64]*entities.Stargazer),
		profiles:   make(map[int64]*entities.EnrichedProfile),
	}
}

func (f *fakeStore) InsertStargazer(s *entities.Stargazer) error {
	if _, exists := f.stargazers[s.ID]; exists {
		return errors.New("duplicate stargazer id")
	}
	copied := *s
	f.stargazers[s.ID] = &copied
	f.order = append(f.order, s.ID)
	return nil
}

func (f *fakeStore) ExistingIDs() (map[int64]bool, error) {
	known := make(map[int64]bool, len(f.stargazers))
	for id := range f.stargazers {
		known[id] = true
	}
	return known, nil
}

func (f *fakeStore) CountByStatus(status string) (int64, error) {
	var count int64
	for _, s := range f.stargazers {
		if s.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) SelectPending(limit int, random bool) ([]entities.Stargazer, error) {
	var batch []entities.Stargazer
	for _, id := range f.order {
		if len(batch) == limit {
			break
		}
		if s := f.stargazers[id]; s.Status == entities.StatusPending {
			batch = append(batch, *s)
		}
	}
	return batch, nil
}

func (f *fakeStore) CreateProfile(p *entities.EnrichedProfile) error {
	if _, exists := f.profiles[p.StargazerID]; exists {
		return errors.New("duplicate profile")
	}
	copied := *p
	f.profiles[p.StargazerID] = &copied
	return nil
}

func (f *fakeStore) MarkStatus(id int64, status string, enrichedAt *time.Time) error {
	s, ok := f.stargazers[id]
	if !ok || s.Status != entities.StatusPending {
		return nil
	}
	s.Status = status
	s.EnrichedAt = enrichedAt
	return nil
}

func (f *fakeStore) ExportRows() ([]db.ExportRow, error) {
	var rows []db.ExportRow
	for _, id := range f.order {
		s := f.stargazers[id]
		row := db.ExportRow{Login: s.Login, StarredAt: s.StarredAt}
		if p, ok := f.profiles[id]; ok {
			row.Name = p.Name
			row.Email = p.Email
			row.Country = p.Country
			row.Employers = []byte(p.Employers)
			row.LinkedinURL = p.LinkedinURL
			row.TwitterUsername = p.TwitterUsername
			row.WebsiteURL = p.WebsiteURL
			row.University = p.University
			row.SocialAccounts = []byte(p.SocialAccounts)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].StarredAt.After(rows[j].StarredAt)
	})
	return rows, nil
}

// fakeGitHub is a canned GitHubAPI with per-endpoint error injection
type fakeGitHub struct {
	stargazers []api.Stargazer
	listErr    error

	users   map[string]*api.User
	userErr map[string]error

	repos    map[string][]api.Repository
	reposErr error

	commits     []api.Commit
	commitsErr  error
	commitCalls int

	socials    map[string][]api.SocialAccount
	socialsErr error
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		users:   make(map[string]*api.User),
		userErr: make(map[string]error),
		repos:   make(map[string][]api.Repository),
		socials: make(map[string][]api.SocialAccount),
	}
}

func (f *fakeGitHub) ListStargazers(ctx context.Context, owner, repo string) ([]api.Stargazer, error) {
	return f.stargazers, f.listErr
}

func (f *fakeGitHub) GetUser(ctx context.Context, login string) (*api.User, error) {
	if err := f.userErr[login]; err != nil {
		return nil, err
	}
	if u, ok := f.users[login]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func (f *fakeGitHub) ListRecentRepos(ctx context.Context, login string, limit int) ([]api.Repository, error) {
	if f.reposErr != nil {
		return nil, f.reposErr
	}
	return f.repos[login], nil
}

func (f *fakeGitHub) ListRecentCommits(ctx context.Context, owner, repo, author string, limit int) ([]api.Commit, error) {
	f.commitCalls++
	if f.commitsErr != nil {
		return nil, f.commitsErr
	}
	return f.commits, nil
}

func (f *fakeGitHub) ListSocialAccounts(ctx context.Context, login string) ([]api.SocialAccount, error) {
	if f.socialsErr != nil {
		return nil, f.socialsErr
	}
	return f.socials[login], nil
}

// stubExtractor records candidate lists and returns a canned extraction
type stubExtractor struct {
	result *llm.Extraction
	err    error
	calls  [][]string
}

func (s *stubExtractor) Extract(ctx context.Context, user *api.User, candidateEmails []string) (*llm.Extraction, error) {
	s.calls = append(s.calls, candidateEmails)
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &llm.Extraction{}, nil
}

func makeStargazer(id int64, login string, starred time.Time) api.Stargazer {
	var sg api.Stargazer
	sg.StarredAt = starred
	sg.User.ID = id
	sg.User.Login = login
	return sg
}

func addPending(store *fakeStore, id int64, login string, starred time.Time) {
	store.InsertStargazer(&entities.Stargazer{
		ID:        id,
		Login:     login,
		StarredAt: starred,
		Status:    entities.StatusPending,
	})
}
