package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Monitor re-runs ingestion and enrichment on a fixed interval for serve
// mode. Run errors are logged and the loop continues; state is durable, so
// the next tick picks up where the failed one left off.
type Monitor struct {
	ingestor *Ingestor
	enricher *Enricher
	owner    string
	repo     string
	interval time.Duration
	log      *logrus.Logger
}

func NewMonitor(ingestor *Ingestor, enricher *Enricher, owner, repo string, interval time.Duration, log *logrus.Logger) *Monitor {
	return &Monitor{
		ingestor: ingestor,
		enricher: enricher,
		owner:    owner,
		repo:     repo,
		interval: interval,
		log:      log,
	}
}

// Start runs one pass immediately, then once per interval until ctx is done
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.runOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Monitor) runOnce(ctx context.Context) {
	if _, err := m.ingestor.Run(ctx, m.owner, m.repo, 0); err != nil {
		m.log.WithError(err).Error("scheduled ingestion failed")
	}
	if _, err := m.enricher.Run(ctx, EnrichOptions{}); err != nil {
		m.log.WithError(err).Error("scheduled enrichment failed")
	}
}
