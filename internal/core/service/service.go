package service

import (
	"context"

	"github.com/just-nibble/stargazer-service/internal/adapters/api"
	"github.com/just-nibble/stargazer-service/internal/adapters/llm"
)

// GitHubAPI is the slice of the GitHub client used by the orchestrators
type GitHubAPI interface {
	ListStargazers(ctx context.Context, owner, repo string) ([]api.Stargazer, error)
	GetUser(ctx context.Context, login string) (*api.User, error)
	ListRecentRepos(ctx context.Context, login string, limit int) ([]api.Repository, error)
	ListRecentCommits(ctx context.Context, owner, repo, author string, limit int) ([]api.Commit, error)
	ListSocialAccounts(ctx context.Context, login string) ([]api.SocialAccount, error)
}

// Extractor turns a profile plus optional candidate emails into structured
// fields; a deterministic stub substitutes for the real provider in tests
type Extractor interface {
	Extract(ctx context.Context, user *api.User, candidateEmails []string) (*llm.Extraction, error)
}
