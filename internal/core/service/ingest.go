package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/just-nibble/stargazer-service/internal/adapters/db"
	"github.com/just-nibble/stargazer-service/internal/core/domain/entities"
)

// Ingestor fetches the stargazer list and inserts records it has not seen
// before. Re-running against an unchanged upstream list inserts nothing.
type Ingestor struct {
	store  db.StargazerStore
	client GitHubAPI
	log    *logrus.Logger
}

func NewIngestor(store db.StargazerStore, client GitHubAPI, log *logrus.Logger) *Ingestor {
	return &Ingestor{store: store, client: client, log: log}
}

// IngestReport summarises one ingestion run
type IngestReport struct {
	Observed int `json:"observed"`
	Inserted int `json:"inserted"`
}

// Run fetches all stargazers of owner/repo and inserts the unseen ones as
// pending records. A positive limit keeps only the most recent entries, the
// tail of the chronologically ordered list.
func (s *Ingestor) Run(ctx context.Context, owner, repo string, limit int) (*IngestReport, error) {
	stargazers, err := s.client.ListStargazers(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stargazers for %s/%s: %w", owner, repo, err)
	}

	if limit > 0 && len(stargazers) > limit {
		stargazers = stargazers[len(stargazers)-limit:]
	}

	known, err := s.store.ExistingIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to load known stargazers: %w", err)
	}

	inserted := 0
	for _, sg := range stargazers {
		if known[sg.User.ID] {
			continue
		}
		row := &entities.Stargazer{
			ID:        sg.User.ID,
			Login:     sg.User.Login,
			StarredAt: sg.StarredAt,
			Status:    entities.StatusPending,
		}
		if err := s.store.InsertStargazer(row); err != nil {
			return nil, fmt.Errorf("failed to insert stargazer %s: %w", sg.User.Login, err)
		}
		inserted++
	}

	s.log.WithFields(logrus.Fields{
		"repo":     owner + "/" + repo,
		"observed": len(stargazers),
		"inserted": inserted,
	}).Info("ingestion finished")

	return &IngestReport{Observed: len(stargazers), Inserted: inserted}, nil
}
