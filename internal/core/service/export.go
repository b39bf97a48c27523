package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/just-nibble/stargazer-service/internal/adapters/db"
	"github.com/just-nibble/stargazer-service/internal/normalize"
)

var csvHeader = []string{
	"username", "starred_at", "name", "email", "country",
	"current_employer", "past_employers", "linkedin_url", "twitter_url",
	"website_url", "university", "other_socials",
}

// Exporter renders the stargazer table, left-joined with profiles, as CSV
type Exporter struct {
	store db.StargazerStore
}

func NewExporter(store db.StargazerStore) *Exporter {
	return &Exporter{store: store}
}

// Write streams the full export to w, header first, most recent star first
func (s *Exporter) Write(w io.Writer) error {
	rows, err := s.store.ExportRows()
	if err != nil {
		return fmt.Errorf("failed to load export rows: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range rows {
		current, past := normalize.SplitEmployerJSON(r.Employers)
		linkedin, twitter, other := normalize.ResolveSocials(
			normalize.ParseSocialJSON(r.SocialAccounts), r.LinkedinURL, r.TwitterUsername,
		)

		record := []string{
			r.Login,
			r.StarredAt.UTC().Format(time.RFC3339),
			r.Name,
			r.Email,
			r.Country,
			current,
			past,
			linkedin,
			twitter,
			r.WebsiteURL,
			r.University,
			other,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", r.Login, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
