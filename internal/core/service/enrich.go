package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/just-nibble/stargazer-service/internal/adapters/api"
	"github.com/just-nibble/stargazer-service/internal/adapters/db"
	"github.com/just-nibble/stargazer-service/internal/adapters/llm"
	"github.com/just-nibble/stargazer-service/internal/core/domain/entities"
	"github.com/just-nibble/stargazer-service/internal/normalize"
)

const (
	defaultBatchSize = 500
	recentRepoLimit  = 5
	commitScanLimit  = 30
	noreplyMarker    = "noreply"
)

// Enricher drives pending stargazers through profile fetch, candidate-email
// discovery, social-account fetch, extraction, and persistence. Records fail
// independently; one bad record never stops the batch.
type Enricher struct {
	store     db.StargazerStore
	client    GitHubAPI
	extractor Extractor
	log       *logrus.Logger
}

func NewEnricher(store db.StargazerStore, client GitHubAPI, extractor Extractor, log *logrus.Logger) *Enricher {
	return &Enricher{store: store, client: client, extractor: extractor, log: log}
}

// EnrichOptions selects the working set. Limit wins over Sample; with
// neither set, up to defaultBatchSize records are taken in insertion order.
type EnrichOptions struct {
	Limit  int
	Sample float64
}

// EnrichReport summarises one enrichment run
type EnrichReport struct {
	RunID    string `json:"run_id"`
	Enriched int    `json:"enriched"`
	Failed   int    `json:"failed"`
	Pending  int    `json:"pending"`
}

// batchSize resolves the working-set size and whether selection is random
func batchSize(pending int64, opts EnrichOptions) (int, bool) {
	if opts.Limit > 0 {
		return opts.Limit, false
	}
	if opts.Sample > 0 && opts.Sample <= 1 {
		n := int(math.Round(float64(pending) * opts.Sample))
		if n < 1 {
			n = 1
		}
		return n, true
	}
	return defaultBatchSize, false
}

// Run enriches one batch of pending stargazers, sequentially
func (s *Enricher) Run(ctx context.Context, opts EnrichOptions) (*EnrichReport, error) {
	runID := xid.New().String()
	log := s.log.WithField("run_id", runID)

	pending, err := s.store.CountByStatus(entities.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending stargazers: %w", err)
	}

	size, random := batchSize(pending, opts)
	batch, err := s.store.SelectPending(size, random)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending stargazers: %w", err)
	}

	report := &EnrichReport{RunID: runID}
	for i := range batch {
		sg := &batch[i]
		if err := s.enrichOne(ctx, log, sg); err != nil {
			log.WithError(err).WithField("user", sg.Login).Warn("enrichment failed")
			if err := s.store.MarkStatus(sg.ID, entities.StatusFailed, nil); err != nil {
				return nil, fmt.Errorf("failed to mark %s failed: %w", sg.Login, err)
			}
			report.Failed++
			continue
		}
		report.Enriched++
	}

	report.Pending = int(pending) - report.Enriched - report.Failed
	log.WithFields(logrus.Fields{
		"enriched": report.Enriched,
		"failed":   report.Failed,
		"pending":  report.Pending,
	}).Info("enrichment run finished")

	return report, nil
}

func (s *Enricher) enrichOne(ctx context.Context, log *logrus.Entry, sg *entities.Stargazer) error {
	user, err := s.client.GetUser(ctx, sg.Login)
	if err != nil {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	var candidates []string
	if user.Email == "" {
		candidates = s.discoverEmails(ctx, log, user)
	}

	accounts := s.fetchSocialAccounts(ctx, log, user.Login)

	extracted, err := s.extractor.Extract(ctx, user, candidates)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	profile := buildProfile(sg.ID, user, extracted, accounts)
	if err := s.store.CreateProfile(profile); err != nil {
		return fmt.Errorf("failed to persist profile: %w", err)
	}

	now := time.Now().UTC()
	if err := s.store.MarkStatus(sg.ID, entities.StatusCompleted, &now); err != nil {
		return fmt.Errorf("failed to mark completed: %w", err)
	}
	return nil
}

// discoverEmails harvests candidate addresses from the user's most recently
// updated own repository. Failures here only cost candidates, never the
// record: the result is an empty list, not an error.
func (s *Enricher) discoverEmails(ctx context.Context, log *logrus.Entry, user *api.User) []string {
	repos, err := s.client.ListRecentRepos(ctx, user.Login, recentRepoLimit)
	if err != nil {
		log.WithError(err).WithField("user", user.Login).Debug("repository listing failed, skipping email discovery")
		return nil
	}
	if len(repos) == 0 {
		return nil
	}

	repo := repos[0]
	commits, err := s.client.ListRecentCommits(ctx, repo.Owner.Login, repo.Name, user.Login, commitScanLimit)
	if err != nil {
		log.WithError(err).WithField("user", user.Login).Debug("commit listing failed, skipping email discovery")
		return nil
	}

	seen := make(map[string]bool)
	var emails []string
	for _, c := range commits {
		for _, addr := range []string{c.Commit.Author.Email, c.Commit.Committer.Email} {
			if addr == "" || strings.Contains(addr, noreplyMarker) || seen[addr] {
				continue
			}
			seen[addr] = true
			emails = append(emails, addr)
		}
	}
	return emails
}

// fetchSocialAccounts is best-effort: a failure yields an empty list
func (s *Enricher) fetchSocialAccounts(ctx context.Context, log *logrus.Entry, login string) []api.SocialAccount {
	accounts, err := s.client.ListSocialAccounts(ctx, login)
	if err != nil {
		log.WithError(err).WithField("user", login).Debug("social account listing failed")
		return nil
	}
	return accounts
}

func buildProfile(id int64, user *api.User, ex *llm.Extraction, accounts []api.SocialAccount) *entities.EnrichedProfile {
	employers, _ := json.Marshal(ex.Employers)
	socials, _ := json.Marshal(accounts)

	email := ex.Email
	if email == "" {
		email = user.Email
	}

	return &entities.EnrichedProfile{
		StargazerID:     id,
		Name:            user.Name,
		Email:           email,
		Bio:             user.Bio,
		Location:        user.Location,
		Company:         user.Company,
		Blog:            user.Blog,
		TwitterUsername: user.TwitterUsername,
		Country:         normalize.Country(ex.Country),
		Employers:       datatypes.JSON(employers),
		LinkedinURL:     ex.LinkedinURL,
		WebsiteURL:      ex.WebsiteURL,
		University:      ex.University,
		SocialAccounts:  datatypes.JSON(socials),
		RawProfile:      datatypes.JSON(user.Raw),
	}
}
